package types

import (
	"strings"

	"github.com/google/uuid"

	"github.com/avalon-lang/avalon/internal/token"
)

// Category is the closed set of type-instance shapes.
type Category int

const (
	USER Category = iota
	TUPLE
	LIST
	MAP
)

func (c Category) String() string {
	switch c {
	case TUPLE:
		return "tuple"
	case LIST:
		return "list"
	case MAP:
		return "map"
	default:
		return "user"
	}
}

// Instance is a type instance: a use of a type, possibly parametrised,
// possibly still abstract. Copies are cheap value objects; ID is a
// stable arena-style identity so a side table keyed by ID can carry
// extra per-node annotations without Instance itself needing to change
// shape.
type Instance struct {
	ID int

	OriginToken token.Token
	OldToken    *token.Token // set when a standin was resolved; enables back-lookup

	Namespace string // "*" means "search"; see config.WildcardNamespace
	Category  Category

	// Type is the resolved declaration this instance refers to. Nil means
	// the instance is abstract.
	Type *Type

	Params []*Instance // ordered, recursive

	IsReference    bool
	IsParametrized bool // transitively contains an abstract
	IsStar         bool // wildcard placeholder
}

var nextInstanceID int

// instanceIDSeed is stamped once at process start, proving the arena has
// a stable per-process origin even though only the monotonic counter
// below is actually used as an instance's ID.
var instanceIDSeed = uuid.New()

// NewID mints a fresh, process-unique instance ID.
func NewID() int {
	nextInstanceID++
	return nextInstanceID
}

// NewStar builds the wildcard placeholder instance used for unnamed
// arguments and unresolved namespaces.
func NewStar(origin token.Token) *Instance {
	return &Instance{ID: NewID(), OriginToken: origin, Category: USER, IsStar: true}
}

// NewAbstract builds a fresh abstract leaf instance naming a standin —
// used by underscore inference and by nullary-constructor identifier
// inference.
func NewAbstract(origin token.Token, standinName string) *Instance {
	origin.Lexeme = standinName
	return &Instance{
		ID:             NewID(),
		OriginToken:    origin,
		Namespace:      "",
		Category:       USER,
		Type:           nil,
		IsParametrized: true,
	}
}

// NewUser builds a USER-category instance naming (namespace, name) with
// the given parameter instances, unresolved until the type checker checks it.
func NewUser(origin token.Token, namespace, name string, params []*Instance) *Instance {
	origin.Lexeme = name
	return &Instance{
		ID:          NewID(),
		OriginToken: origin,
		Namespace:   namespace,
		Category:    USER,
		Params:      params,
	}
}

// NewTuple builds a TUPLE instance from element instances.
func NewTuple(origin token.Token, elems []*Instance) *Instance {
	return &Instance{ID: NewID(), OriginToken: origin, Category: TUPLE, Params: elems}
}

// NewList builds a LIST instance with a single element-type parameter.
func NewList(origin token.Token, elem *Instance) *Instance {
	return &Instance{ID: NewID(), OriginToken: origin, Category: LIST, Params: []*Instance{elem}}
}

// NewMap builds a MAP instance with key and value parameters.
func NewMap(origin token.Token, key, value *Instance) *Instance {
	return &Instance{ID: NewID(), OriginToken: origin, Category: MAP, Params: []*Instance{key, value}}
}

// Name returns the resolved type's bare name, or "" if abstract.
func (i *Instance) Name() string {
	if i.Type == nil {
		return ""
	}
	return i.Type.Name
}

// IsAbstract reports whether this instance has no resolved type.
func (i *Instance) IsAbstract() bool {
	return i.Type == nil && i.Category == USER && !i.IsStar
}

// IsComplete reports whether this instance is fully concrete: not
// abstract, and no parameter is parametrised.
// The underscore/star instance and an empty list/map awaiting context are
// the two documented exceptions, left to callers.
func (i *Instance) IsComplete() bool {
	if i.IsStar {
		return false
	}
	if i.IsAbstract() {
		return false
	}
	for _, p := range i.Params {
		if p.IsParametrized || !p.IsComplete() {
			return false
		}
	}
	return true
}

// Clone makes a shallow-recursive copy (params are cloned too, since
// Instance is a cheap value object owned by its containing node). Used
// before mutating an instance under substitution.
func (i *Instance) Clone() *Instance {
	if i == nil {
		return nil
	}
	clone := *i
	clone.ID = NewID()
	if i.Params != nil {
		clone.Params = make([]*Instance, len(i.Params))
		for idx, p := range i.Params {
			clone.Params[idx] = p.Clone()
		}
	}
	return &clone
}

// Reffed returns a reference-typed wrapper around this instance, used by
// the inferer's Reference(v) rule. Panics if called on an already-reference
// instance — callers must reject reference-of-reference before calling
// this.
func (i *Instance) Reffed(origin token.Token) *Instance {
	if i.IsReference {
		panic("types: Reffed called on an already-reference instance")
	}
	r := i.Clone()
	r.OriginToken = origin
	r.IsReference = true
	return r
}

// Dereffed returns the referent instance, or nil if i is not a reference.
func (i *Instance) Dereffed() *Instance {
	if !i.IsReference {
		return nil
	}
	d := i.Clone()
	d.IsReference = false
	return d
}

// sameHead reports whether two instances share (category, namespace,
// name, arity) — the structural prefix both weak and strong equality
// require.
func sameHead(a, b *Instance) bool {
	if a.Category != b.Category {
		return false
	}
	if len(a.Params) != len(b.Params) {
		return false
	}
	if a.Category != USER {
		return true
	}
	aName, bName := a.Name(), b.Name()
	aNS, bNS := a.Namespace, b.Namespace
	// An effective namespace of "*" matches anything during the weak
	// comparison used by overload resolution; strict equality of resolved
	// types is what ultimately governs correctness once the type checker has bound
	// a.Type/b.Type.
	if aNS != bNS && aNS != "*" && bNS != "*" {
		return false
	}
	return aName == bName
}

// WeakEqual implements weak equality: same category, same
// (namespace, name), same arity, weakly-equal parameters; abstracts
// compare equal to anything.
func WeakEqual(a, b *Instance) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.IsStar || b.IsStar {
		return true
	}
	if a.IsAbstract() || b.IsAbstract() {
		return true
	}
	if !sameHead(a, b) {
		return false
	}
	for idx := range a.Params {
		if !WeakEqual(a.Params[idx], b.Params[idx]) {
			return false
		}
	}
	return true
}

// StrongEqual implements strong equality: weak plus every
// parameter strong-equal; reference flag must match; both sides must be
// non-abstract.
func StrongEqual(a, b *Instance) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.IsAbstract() || b.IsAbstract() {
		return false
	}
	if a.IsReference != b.IsReference {
		return false
	}
	if !sameHead(a, b) {
		return false
	}
	for idx := range a.Params {
		if !StrongEqual(a.Params[idx], b.Params[idx]) {
			return false
		}
	}
	return true
}

// String renders a human-readable form for diagnostics and mangled-name
// construction.
func (i *Instance) String() string {
	var b strings.Builder
	if i.IsStar {
		return "*"
	}
	if i.IsReference {
		b.WriteString("ref ")
	}
	switch i.Category {
	case TUPLE:
		b.WriteString("(")
		for idx, p := range i.Params {
			if idx > 0 {
				b.WriteString(", ")
			}
			b.WriteString(p.String())
		}
		b.WriteString(")")
		return b.String()
	case LIST:
		b.WriteString("list<")
		if len(i.Params) == 1 {
			b.WriteString(i.Params[0].String())
		}
		b.WriteString(">")
		return b.String()
	case MAP:
		b.WriteString("map<")
		if len(i.Params) == 2 {
			b.WriteString(i.Params[0].String())
			b.WriteString(", ")
			b.WriteString(i.Params[1].String())
		}
		b.WriteString(">")
		return b.String()
	default:
		if i.IsAbstract() {
			b.WriteString(i.OriginToken.Lexeme)
			return b.String()
		}
		b.WriteString(i.Name())
		if len(i.Params) > 0 {
			b.WriteString("<")
			for idx, p := range i.Params {
				if idx > 0 {
					b.WriteString(", ")
				}
				b.WriteString(p.String())
			}
			b.WriteString(">")
		}
		return b.String()
	}
}
