// Copyright © 2024 The ELPS authors

package signature

import (
	"strings"

	"github.com/luthersystems/luaulsp/analysis"
	"github.com/luthersystems/luaulsp/ast"
	"github.com/luthersystems/luaulsp/astutil"
	"github.com/luthersystems/luaulsp/types"
)

// Options control how signatures are rendered.
type Options struct {
	// HideTableKind abbreviates table types by omitting their sealed and
	// unsealed markers.
	HideTableKind bool
}

// Rendered is the label of a candidate bound to a call.
type Rendered struct {
	Label  string
	Params []RenderedParam
}

// RenderedParam is the text of one parameter shown in a label.
type RenderedParam struct {
	// Index is the position of the parameter in the function type,
	// counting an elided self parameter.
	Index int
	Text  string
}

// Render returns the label `name(a: A, b: B): R` of c as called by call.
// When call uses method syntax and c takes self first, self is not shown.
// Types are printed with the aliases visible from scope, which may be nil.
func Render(c Candidate, call *ast.ExprCall, scope *analysis.Scope, opts Options) Rendered {
	f := c.Function
	topts := types.ToStringOptions{HideTableKind: opts.HideTableKind}
	if scope != nil {
		topts.Aliases = scope
	}

	var params []RenderedParam
	for i, t := range f.Params.Head {
		if i == 0 && elideSelf(f, call) {
			continue
		}
		text := types.ToString(t, topts)
		if name := f.ArgName(i); name != "" {
			text = name + ": " + text
		}
		params = append(params, RenderedParam{Index: i, Text: text})
	}
	if f.Params.Tail != nil {
		params = append(params, RenderedParam{
			Index: len(f.Params.Head),
			Text:  "...: " + types.ToString(f.Params.Tail, topts),
		})
	}

	var sb strings.Builder
	sb.WriteString(CalleeName(call.Func))
	if len(f.Generics) > 0 {
		sb.WriteString("<" + strings.Join(f.Generics, ", ") + ">")
	}
	sb.WriteString("(")
	for i, p := range params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.Text)
	}
	sb.WriteString("): ")
	sb.WriteString(types.PackToString(f.Returns, topts))
	return Rendered{Label: sb.String(), Params: params}
}

// elideSelf reports whether the first parameter of f is the receiver
// supplied by a method call.  Functions typed by annotation do not carry
// HasSelf, so a first parameter named self counts too.
func elideSelf(f *types.Function, call *ast.ExprCall) bool {
	if call == nil || !call.Self || len(f.Params.Head) == 0 {
		return false
	}
	return f.HasSelf || f.ArgName(0) == "self"
}

// CalleeName returns the name a call's callee is shown under: a variable
// name or a dotted path such as a.b:c.  Other expressions are shown as
// "function".
func CalleeName(e ast.Expr) string {
	if name := astutil.CalleeName(e); name != "" {
		return name
	}
	return "function"
}
