// Copyright © 2024 The ELPS authors

package signature

import "strings"

// Span is a half-open byte range of a label.
type Span struct {
	Start int
	End   int
}

// Parameter describes one parameter of a signature.  Span locates Text in
// the signature label; it is nil when Text could not be found there and the
// text is shown on its own.
type Parameter struct {
	Text          string
	Span          *Span
	Documentation string
}

// spanFold is the state carried from one parameter to the next.  Searches
// start at cursor, so a repeated parameter text never matches the region
// of an earlier parameter.
type spanFold struct {
	cursor int
	params []Parameter
}

func (s spanFold) step(label string, text string) spanFold {
	p := Parameter{Text: text}
	if i := strings.Index(label[s.cursor:], text); i >= 0 {
		start := s.cursor + i
		p.Span = &Span{Start: start, End: start + len(text)}
		s.cursor = p.Span.End
	}
	s.params = append(s.params, p)
	return s
}

// LocateSpans finds each parameter text in label, in order.
func LocateSpans(label string, texts []string) []Parameter {
	state := spanFold{params: make([]Parameter, 0, len(texts))}
	for _, text := range texts {
		state = state.step(label, text)
	}
	return state.params
}
