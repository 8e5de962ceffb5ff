package symbols

import (
	"fmt"

	"github.com/avalon-lang/avalon/internal/config"
	"github.com/avalon-lang/avalon/internal/token"
	"github.com/avalon-lang/avalon/internal/types"
)

// registerPrelude declares the built-in scalar and container types every
// program gets for free, before any user declaration is processed: the
// four zero-constructor numeric/text scalars, bool's two nullary
// constructors, maybe<T>'s Just/None pair, and the fixed-width bit/qubit
// scalar families. A program that redeclares one of these names fails
// with the same symbol-already-declared diagnostic a duplicate user type
// would.
func registerPrelude(root *Scope) {
	registerScalar(root, config.TypeInt)
	registerScalar(root, config.TypeFloat)
	registerScalar(root, config.TypeDec)
	registerScalar(root, config.TypeString)
	registerBool(root)
	registerMaybe(root)
	for width := range config.QuantumBitWidths {
		registerScalar(root, fmt.Sprintf("%s%d", config.BitTypePrefix, width))
		registerScalar(root, fmt.Sprintf("%s%d", config.QubitTypePrefix, width))
	}
}

// registerScalar declares name as a public, standin-free type with no
// constructors: its values come from literal syntax, never a Call.
func registerScalar(root *Scope, name string) {
	t := &types.Type{Token: token.Zero, Namespace: config.GlobalNamespace, Name: name, IsPublic: true}
	if err := root.AddType(t); err != nil {
		panic(err)
	}
}

func registerBool(root *Scope) {
	t := &types.Type{Token: token.Zero, Namespace: config.GlobalNamespace, Name: config.TypeBool, IsPublic: true}
	if err := root.AddType(t); err != nil {
		panic(err)
	}
	for _, name := range []string{config.TrueCtor, config.FalseCtor} {
		c := &types.Constructor{Token: token.Zero, Owner: t, Name: name, Kind: types.DefaultConstructor}
		t.Constructors = append(t.Constructors, c)
		if err := root.AddConstructor(config.GlobalNamespace, c); err != nil {
			panic(err)
		}
	}
}

func registerMaybe(root *Scope) {
	t := &types.Type{
		Token:     token.Zero,
		Namespace: config.GlobalNamespace,
		Name:      config.MaybeTypeName,
		Standins:  []string{"T"},
		IsPublic:  true,
	}
	if err := root.AddType(t); err != nil {
		panic(err)
	}
	just := &types.Constructor{
		Token: token.Zero, Owner: t, Name: config.JustCtor, Kind: types.DefaultConstructor,
		Params: []*types.Instance{types.NewAbstract(token.Zero, "T")},
	}
	none := &types.Constructor{Token: token.Zero, Owner: t, Name: config.NoneCtor, Kind: types.DefaultConstructor}
	t.Constructors = append(t.Constructors, just, none)
	if err := root.AddConstructor(config.GlobalNamespace, just); err != nil {
		panic(err)
	}
	if err := root.AddConstructor(config.GlobalNamespace, none); err != nil {
		panic(err)
	}
}
