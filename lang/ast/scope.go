package ast

import (
	"github.com/dolthub/swiss"

	"github.com/mna/toylang/lang/types"
)

// ScopeKind discriminates the kind of lexical region a Scope represents.
type ScopeKind uint8

const (
	GlobalScope ScopeKind = iota
	BlockScope
	FunctionScope
	FunctionTypeScope
	StructScope
)

// EntityKind discriminates what a declared name denotes.
type EntityKind uint8

const (
	VariableEntity EntityKind = iota
	ConstantEntity
	FunctionEntity
)

// Status tracks an Entity's resolution lifecycle, used to support
// order-independent constant references and detect circular dependencies:
// encountering an InProgress entity while resolving another one is a cycle.
type Status uint8

const (
	Unresolved Status = iota
	InProgress
	Resolved
)

// Entity is the compile-time record for one declared name, independent of
// its syntactic occurrence. It is created by the collector and mutated by
// the checker.
type Entity struct {
	Name string
	Kind EntityKind
	Decl Node // the *Decl or *Param that introduces this entity

	// OwnerScope is the scope the collector installed this entity into: the
	// scope the checker must use when lazily resolving a forward reference.
	OwnerScope *Scope

	// Type is the resolved type id, valid once Status == Resolved. It is
	// also set early for function entities, as soon as their signature is
	// checked and before their body is, so a recursive call inside the body
	// sees a usable type instead of tripping the circular-dependency check.
	// -1 means not yet known.
	Type   int
	Status Status

	// IsLive is true once a non-constant entity's own declaration has been
	// type-checked; references before that point are "used before
	// definition" errors. Constants may be referenced before IsLive (their
	// order-independence is the point), so this only matters for variables.
	IsLive bool

	// IsAddressed is true once some `&` expression has taken this
	// variable's address. A scalar-typed variable with this set is
	// heap-boxed by the code generator instead of living directly on the
	// locals stack, since its address must remain valid independent of
	// where on the operand stack the declaration happens to sit.
	IsAddressed bool

	// ConstantValue holds the resolved value for Constant/Function
	// entities once Resolved.
	HasConstantValue bool
	ConstantValue    types.Value

	// CodegenIndex is the constant-table index assigned by the code
	// generator, -1 until assigned.
	CodegenIndex int
}

// Scope is a lexical region owning a name-to-entity map and a parent link.
type Scope struct {
	Kind   ScopeKind
	Parent *Scope

	entities *swiss.Map[string, *Entity]
	order    []string // insertion order, for deterministic iteration

	// Temporaries carries the struct-literal nodes the collector finds in
	// this scope. No later pass reads it.
	Temporaries []Node

	// FuncType is set when Kind is FunctionScope or FunctionTypeScope: the
	// function-type node that scope belongs to.
	FuncType *FuncTypeExpr

	StartLine, EndLine int
}

// NewScope creates a Scope of the given kind with the given parent (nil for
// the global scope).
func NewScope(kind ScopeKind, parent *Scope) *Scope {
	return &Scope{Kind: kind, Parent: parent, entities: swiss.NewMap[string, *Entity](4)}
}

// Declare installs ent under its Name. It returns false without modifying
// the scope if an entity of that name already exists directly in this
// scope (the collector is responsible for the function-parameter-shadow
// exception, which only applies across scopes, never within one).
func (s *Scope) Declare(ent *Entity) bool {
	if _, ok := s.entities.Get(ent.Name); ok {
		return false
	}
	s.entities.Put(ent.Name, ent)
	s.order = append(s.order, ent.Name)
	return true
}

// Local returns the entity named name declared directly in this scope.
func (s *Scope) Local(name string) (*Entity, bool) {
	return s.entities.Get(name)
}

// Lookup searches this scope and its ancestors for name.
func (s *Scope) Lookup(name string) (*Entity, bool) {
	for sc := s; sc != nil; sc = sc.Parent {
		if e, ok := sc.entities.Get(name); ok {
			return e, true
		}
	}
	return nil, false
}

// Entities returns this scope's own entities in declaration order.
func (s *Scope) Entities() []*Entity {
	out := make([]*Entity, 0, len(s.order))
	for _, name := range s.order {
		e, _ := s.entities.Get(name)
		out = append(out, e)
	}
	return out
}

// IsDataScope reports whether statements within this scope are restricted
// to declarations only (struct bodies and function signatures).
func (s *Scope) IsDataScope() bool {
	return s.Kind == StructScope || s.Kind == FunctionTypeScope
}
