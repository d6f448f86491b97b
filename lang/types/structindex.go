package types

import "github.com/dolthub/swiss"

// structIndex backs nominal struct-name lookup in the Registry with a
// swiss table.
type structIndex struct {
	m *swiss.Map[string, int]
}

func newStructIndex() *structIndex {
	return &structIndex{m: swiss.NewMap[string, int](8)}
}

func (s *structIndex) set(name string, id int) {
	s.m.Put(name, id)
}

func (s *structIndex) get(name string) (int, bool) {
	return s.m.Get(name)
}
