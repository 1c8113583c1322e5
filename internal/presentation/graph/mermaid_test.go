package graph_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/parley/internal/presentation/graph"
	"github.com/aretw0/parley/pkg/dsl"
)

func TestGenerateMermaid(t *testing.T) {
	chain := dsl.New("gate").
		Say("guard", `Say "please".`).
		Choice().
		Option("Please.", "friend").
		Option("No.", "nowhere").
		Done().
		Label("friend").
		Call("set mood calm").
		Jump("end").
		Label("end").
		JumpCall("pick").
		Exit(3).
		Build()

	out := graph.GenerateMermaid(chain, nil)

	for _, want := range []string{
		"graph TD\n",
		`n0["guard: Say 'please'."]`,
		"n0 --> n1",
		`n1{"choice"}`,
		`n1 -- "Please." --> n2`,
		`n1 -. "No." .-> missing1["missing label"]`,
		`n2(("friend"))`,
		`n3[["set mood calm"]]`,
		"n3 --> n5",
		`n6[["pick"]]`,
		`n6 -. "result" .-> n7`,
		`n7(["exit 3"])`,
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "n4[", "jumps are not drawn")
	assert.NotContains(t, out, "classDef")
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	chain := dsl.New("loop").
		Label("top").
		Say("npc", "again").
		Jump("top").
		Build()

	out := graph.GenerateMermaid(chain, &graph.Overlay{Visited: []int{0, 1, 2, 0}, Current: 1})

	assert.Contains(t, out, "n1 --> n0")
	assert.Equal(t, 1, strings.Count(out, "class n0 visited;"), "jump resolves to its label and duplicates collapse")
	assert.Contains(t, out, "class n1 visited;")
	assert.Contains(t, out, "class n1 current;")
}

func TestGenerateMermaid_TruncatesLongLines(t *testing.T) {
	chain := dsl.New("long").Say("npc", strings.Repeat("a", 40)).Build()

	out := graph.GenerateMermaid(chain, nil)
	assert.Contains(t, out, "npc: "+strings.Repeat("a", 31)+"…")
}
