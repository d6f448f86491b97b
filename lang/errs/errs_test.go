package errs_test

import (
	"testing"

	"github.com/mna/toylang/lang/errs"
	"github.com/mna/toylang/lang/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateOKAndLen(t *testing.T) {
	s := &errs.State{Filename: "f.toy", Source: []byte("abc")}
	assert.True(t, s.OK())
	assert.Equal(t, 0, s.Len())

	s.Add(token.Pos{Line: 1, Offset: 0}, "bad thing: %d", 42)
	assert.False(t, s.OK())
	assert.Equal(t, 1, s.Len())
}

func TestStateErrSortedByPosition(t *testing.T) {
	s := &errs.State{Filename: "f.toy", Source: []byte("line1\nline2\nline3")}
	s.Add(token.Pos{Line: 3, Offset: 12}, "third")
	s.Add(token.Pos{Line: 1, Offset: 0}, "first")
	s.Add(token.Pos{Line: 2, Offset: 6}, "second")

	err := s.Err()
	require.Error(t, err)
	list, ok := err.(errs.List)
	require.True(t, ok)
	require.Len(t, list, 3)
	assert.Equal(t, "first", list[0].Msg)
	assert.Equal(t, "second", list[1].Msg)
	assert.Equal(t, "third", list[2].Msg)
}

func TestStateReportIncludesSourceLineAndCaret(t *testing.T) {
	s := &errs.State{Filename: "f.toy", Source: []byte("x = 1")}
	s.Add(token.Pos{Line: 1, Offset: 0, LineStart: 0}, "oops")
	report := s.Report()
	assert.Contains(t, report, "oops")
	assert.Contains(t, report, "x = 1")
	assert.Contains(t, report, "^")
}
