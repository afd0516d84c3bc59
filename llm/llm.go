// Package llm defines the text generation contract used by the suite.
package llm

import "context"

// Kind classifies the outcome of a generation call.
type Kind string

const (
	// KindOK means the generated text was extracted from the reply.
	KindOK Kind = "ok"
	// KindTransport means the request never produced a usable reply body
	// (connection failure, timeout, non-2xx status).
	KindTransport Kind = "transport"
	// KindParse means a reply arrived but the text could not be extracted.
	KindParse Kind = "parse"
)

// Result is the outcome of a single generation call.
//
// Text is always printable: on failure it holds the provider's diagnostic
// message, so callers that only show Text behave the same for every Kind.
type Result struct {
	Text string
	Kind Kind
	Err  error
}

// OK reports whether Text is generated content.
func (r Result) OK() bool {
	return r.Kind == KindOK
}

// Generator turns a final prompt into a Result.
// Implementations perform exactly one remote call per invocation.
type Generator interface {
	Generate(ctx context.Context, prompt string) Result
}
