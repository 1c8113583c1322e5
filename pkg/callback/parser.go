// Package callback splits inline dialogue function calls of the form
//
//	name arg1 "arg two" arg\ three
//
// into a function name and positional string arguments.
package callback

import (
	"log/slog"
	"strings"

	"github.com/aretw0/parley/internal/logging"
)

// Callback is a parsed inline call.
type Callback struct {
	Name string
	Args []string
}

// Empty returns the callback produced for blank input: no name and a non-nil,
// empty argument list. Each call returns a fresh value.
func Empty() Callback {
	return Callback{Args: []string{}}
}

// IsEmpty reports whether the callback has no name.
func (c Callback) IsEmpty() bool {
	return c.Name == ""
}

// String renders the callback back into source form, quoting arguments that need it.
func (c Callback) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, quote(c.Name))
	for _, a := range c.Args {
		parts = append(parts, quote(a))
	}
	return strings.Join(parts, " ")
}

func quote(s string) string {
	if s == "" {
		return `""`
	}
	if !strings.ContainsAny(s, ` "\`) {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		if r == ' ' || r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Parser is a single-pass lexer for inline calls.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a parser. A nil logger discards diagnostics.
func NewParser(logger *slog.Logger) *Parser {
	return &Parser{logger: logging.OrNop(logger)}
}

// Parse splits text into a callback.
//
// A backslash appends the next character literally and wins over quoting and
// splitting. A double quote toggles quoting and is not part of the token. A
// space outside quotes ends the current token. Runs of spaces do not produce
// empty arguments, but "" does. An unterminated quote extends to the end of the
// input and a trailing backslash is dropped.
func (p *Parser) Parse(text string) Callback {
	if strings.TrimSpace(text) == "" {
		p.logger.Warn("empty callback text")
		return Empty()
	}

	var (
		tokens   []string
		buf      strings.Builder
		inQuotes bool
		verbatim bool
		quoted   bool
	)

	flush := func() {
		if buf.Len() > 0 || quoted {
			tokens = append(tokens, buf.String())
		}
		buf.Reset()
		quoted = false
	}

	for _, r := range text {
		switch {
		case verbatim:
			buf.WriteRune(r)
			verbatim = false
		case r == '\\':
			verbatim = true
		case r == '"':
			inQuotes = !inQuotes
			quoted = true
		case r == ' ' && !inQuotes:
			flush()
		default:
			buf.WriteRune(r)
		}
	}

	if verbatim {
		p.logger.Debug("trailing backslash dropped", "callback", text)
	}
	if inQuotes {
		p.logger.Debug("unterminated quote in callback", "callback", text)
	}
	flush()

	if len(tokens) == 0 {
		return Empty()
	}
	return Callback{Name: tokens[0], Args: append([]string{}, tokens[1:]...)}
}
