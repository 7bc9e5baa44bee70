package logic_test

import (
	"fmt"

	. "github.com/brunokim/sasp/logic"
)

func ExampleAtom() {
	fmt.Println(Atom{"a"}, Atom{"space-> <-"}, Atom{"Upper"})
	// Output: a 'space-> <-' 'Upper'
}

func ExampleLiteral_Complement() {
	p := NewLiteral("p", NewVar("X"))
	fmt.Println(p.Complement())
	fmt.Println(p.Complement().Complement())
	// Output: not p(X)
	// p(X)
}
