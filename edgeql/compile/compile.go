// Package compile turns an edgeql expression tree into EdgeQL text.
//
// Compilation is a pure function of the tree: the same tree always
// produces byte-identical text. Subexpressions that appear more than
// once by identity are hoisted into with-bindings so the server
// evaluates them once, mirroring how the tree shares them in memory.
package compile

import (
	"fmt"

	"github.com/gelq/gelq/edgeql"
)

// ParamDesc describes one query parameter: its name, its EdgeQL type,
// and whether the empty set is an accepted value.
type ParamDesc struct {
	Name     string
	Type     string
	Optional bool
}

// Compiled is the result of compiling an expression tree. Text is
// exactly what is sent to the server; Params lists the parameters the
// query expects, in first-appearance order.
type Compiled struct {
	Text        string
	Params      []ParamDesc
	Cardinality edgeql.Cardinality
}

type options struct {
	layout Layout
}

// Option adjusts how a tree is compiled.
type Option func(*options)

// WithLayout selects the whitespace layout. The default is Pretty.
func WithLayout(l Layout) Option {
	return func(o *options) { o.layout = l }
}

// Compile renders root as an EdgeQL statement. A root that is not
// itself a statement is wrapped in a select. The returned error
// reports trees that cannot be expressed as EdgeQL text; Compile
// never panics on a well-constructed tree.
func Compile(root edgeql.Expr, opts ...Option) (*Compiled, error) {
	o := options{layout: Pretty}
	for _, opt := range opts {
		opt(&o)
	}
	if o.layout == nil {
		return nil, fmt.Errorf("compile: nil layout")
	}

	params, err := validateTree(root)
	if err != nil {
		return nil, err
	}
	p, err := buildPlan(root)
	if err != nil {
		return nil, err
	}
	text, err := render(root, p, o.layout)
	if err != nil {
		return nil, err
	}
	return &Compiled{
		Text:        text,
		Params:      params,
		Cardinality: root.Cardinality(),
	}, nil
}
