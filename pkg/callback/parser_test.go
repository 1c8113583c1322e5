package callback_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/callback"
	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  callback.Callback
	}{
		{"Plain", "foo a b", callback.Callback{Name: "foo", Args: []string{"a", "b"}}},
		{"Quoted Argument", `foo "a b" c`, callback.Callback{Name: "foo", Args: []string{"a b", "c"}}},
		{"Escaped Space", `foo a\ b c`, callback.Callback{Name: "foo", Args: []string{"a b", "c"}}},
		{"Name Only", "greet", callback.Callback{Name: "greet", Args: []string{}}},
		{"Escaped Quote", `say \"hi\"`, callback.Callback{Name: "say", Args: []string{`"hi"`}}},
		{"Escape Inside Quotes", `say "a \" b"`, callback.Callback{Name: "say", Args: []string{`a " b`}}},
		{"Quotes Join Token", `set name "Sir "Robin`, callback.Callback{Name: "set", Args: []string{"name", "Sir Robin"}}},
		{"Repeated Spaces", "foo  a   b ", callback.Callback{Name: "foo", Args: []string{"a", "b"}}},
		{"Explicit Empty Argument", `foo "" b`, callback.Callback{Name: "foo", Args: []string{"", "b"}}},
		{"Unterminated Quote", `foo "a b`, callback.Callback{Name: "foo", Args: []string{"a b"}}},
		{"Trailing Backslash", `foo a\`, callback.Callback{Name: "foo", Args: []string{"a"}}},
		{"Quoted Name", `"odd name" x`, callback.Callback{Name: "odd name", Args: []string{"x"}}},
	}

	p := callback.NewParser(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Parse(tt.input))
		})
	}
}

func TestParse_EmptyWarns(t *testing.T) {
	var buf bytes.Buffer
	p := callback.NewParser(logging.NewWithWriter(&buf, slog.LevelDebug))

	for _, input := range []string{"", "   "} {
		got := p.Parse(input)
		assert.Equal(t, callback.Empty(), got)
		assert.True(t, got.IsEmpty())
		assert.NotNil(t, got.Args)
	}
	assert.Contains(t, buf.String(), "empty callback text")

	// A lone trailing backslash is dropped and leaves nothing.
	assert.Equal(t, callback.Empty(), p.Parse(`\`))

	got := p.Parse("")
	got.Args = append(got.Args, "leak")
	assert.Empty(t, callback.Empty().Args)
}

func TestCallback_String(t *testing.T) {
	p := callback.NewParser(nil)
	cb := callback.Callback{Name: "give", Args: []string{"big shield", `say "x"`, ""}}

	assert.Equal(t, `give big\ shield say\ \"x\" ""`, cb.String())
	assert.Equal(t, cb, p.Parse(cb.String()))
}
