// Package report prints models for people to read.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/brunokim/sasp/logic"
	"github.com/brunokim/sasp/resolve"
)

// Options control what is printed for each model.
type Options struct {
	// Justification prints the proof tree of each model.
	Justification bool
	// HideCheck omits the consistency check from justifications.
	HideCheck bool
	// Abducibles whose assumed literals are listed, if any.
	Abducibles []*logic.Literal
}

// Printer writes a numbered sequence of models.
type Printer struct {
	w     io.Writer
	opts  Options
	count int
}

// New returns a printer that writes to w.
func New(w io.Writer, opts Options) *Printer {
	return &Printer{w: w, opts: opts}
}

// Count returns the number of models printed.
func (p *Printer) Count() int {
	return p.count
}

// Model prints the next model.
func (p *Printer) Model(m *resolve.Model) error {
	p.count++
	_, err := io.WriteString(p.w, Format(p.count, m, p.opts))
	return err
}

// Done prints a notice if no model was printed.
func (p *Printer) Done() error {
	if p.count > 0 {
		return nil
	}
	_, err := io.WriteString(p.w, "no models\n")
	return err
}

// Format returns the text for the n-th model.
func Format(n int, m *resolve.Model, opts Options) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Answer %d:\n", n)
	b.WriteString(literalSet(m.Literals))
	b.WriteString("\n")
	for _, x := range m.Vars {
		if t, ok := m.Bindings[x]; ok {
			fmt.Fprintf(&b, "%v = %v\n", x, t)
			continue
		}
		cs := m.Constraints[x]
		if len(cs) == 0 {
			continue
		}
		parts := make([]string, len(cs))
		for i, c := range cs {
			parts[i] = fmt.Sprintf("%v \\= %v", x, c)
		}
		fmt.Fprintf(&b, "%s\n", strings.Join(parts, ", "))
	}
	if opts.Justification {
		b.WriteString("Justification:\n")
		for _, node := range flatten(m.Justification, opts.HideCheck) {
			writeNode(&b, node, "  ")
		}
	}
	if len(opts.Abducibles) > 0 {
		fmt.Fprintf(&b, "Abducibles: %s\n", literalSet(assumed(m.Literals, opts.Abducibles)))
	}
	return b.String()
}

func literalSet(lits []*logic.Literal) string {
	if len(lits) == 0 {
		return "{ }"
	}
	parts := make([]string, len(lits))
	for i, lit := range lits {
		parts[i] = lit.String()
	}
	return fmt.Sprintf("{ %s }", strings.Join(parts, ", "))
}

// assumed returns the positive literals of the model that match an abducible.
func assumed(lits, abducibles []*logic.Literal) []*logic.Literal {
	keys := make(map[logic.Key]bool)
	for _, abd := range abducibles {
		keys[abd.Key()] = true
	}
	var result []*logic.Literal
	for _, lit := range lits {
		if keys[lit.Key()] {
			result = append(result, lit)
		}
	}
	return result
}

// flatten replaces auxiliary nodes by their children. Consistency check nodes are
// kept so that the check reads as a unit, or dropped entirely if hideCheck is set.
func flatten(nodes []*resolve.Node, hideCheck bool) []*resolve.Node {
	var result []*resolve.Node
	for _, node := range nodes {
		check := node.Goal.Provenance == logic.Check
		switch {
		case check && hideCheck:
		case node.Goal.Aux && !check:
			result = append(result, flatten(node.Children, hideCheck)...)
		default:
			result = append(result, &resolve.Node{
				Goal:     node.Goal,
				Kind:     node.Kind,
				Children: flatten(node.Children, hideCheck),
			})
		}
	}
	return result
}

func writeNode(b *strings.Builder, node *resolve.Node, indent string) {
	b.WriteString(indent)
	b.WriteString(node.Goal.String())
	if node.Kind != resolve.Expanded {
		fmt.Fprintf(b, " [%v]", node.Kind)
	}
	b.WriteString("\n")
	for _, child := range node.Children {
		writeNode(b, child, indent+"  ")
	}
}
