package parser_test

import (
	"testing"

	"github.com/brunokim/sasp/parser"
)

func FuzzParse(f *testing.F) {
	for _, seed := range []string{
		"p.",
		"p(X) :- q(X), not r(X).",
		":- p, -q.",
		"?- X is 1 + 2 * 3.",
		"#compute 0 { p(X) }.",
		"#abducible p(X).",
		"p([a, b|T], 'Q x').",
	} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, text string) {
		p, err := parser.Parse("", text)
		if err != nil {
			return
		}
		if _, err := parser.Parse("", p.String()); err != nil {
			t.Errorf("printed program doesn't parse: %v\n%s", err, p)
		}
	})
}
