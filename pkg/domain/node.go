package domain

// NodeKind identifies a node variant. The values double as the keys used by
// compiled chain documents.
type NodeKind string

const (
	NodeKindLine     NodeKind = "say"
	NodeKindLabel    NodeKind = "label"
	NodeKindJump     NodeKind = "jump"
	NodeKindExit     NodeKind = "exit"
	NodeKindCall     NodeKind = "call"
	NodeKindJumpCall NodeKind = "jump_call"
	NodeKindChoice   NodeKind = "choice"
)

// Node is one step of a Chain. The set of variants is closed: only the types
// declared in this package implement it.
type Node interface {
	Kind() NodeKind
	node()
}

// SpokenLine shows one or more lines of text attributed to a speaker.
// Speaker is the npc key; the display name is resolved at runtime.
type SpokenLine struct {
	ID           string   `json:"id,omitempty" yaml:"id,omitempty"`
	Speaker      string   `json:"say" yaml:"say"`
	SpeakerKnown bool     `json:"known" yaml:"known"`
	Lines        []string `json:"lines" yaml:"lines"`
}

// Label is a named jump target. Displaying it does nothing.
type Label struct {
	Name string `json:"label" yaml:"label"`
}

// Jump moves execution to the label with the given name.
type Jump struct {
	Label string `json:"jump" yaml:"jump"`
}

// Exit ends the run with Code.
type Exit struct {
	Code int `json:"exit" yaml:"exit"`
}

// MethodCall invokes a dialogue function. A result naming a label is followed.
type MethodCall struct {
	Method string   `json:"method" yaml:"method"`
	Args   []string `json:"args,omitempty" yaml:"args,omitempty"`
}

// JumpMethodCall invokes a dialogue function whose result must name a label.
type JumpMethodCall struct {
	Method string   `json:"method" yaml:"method"`
	Args   []string `json:"args,omitempty" yaml:"args,omitempty"`
}

// Option is one entry of a Choice.
type Option struct {
	Text  string `json:"text" yaml:"text" mapstructure:"text"`
	Label string `json:"to" yaml:"to" mapstructure:"to"`
}

// Choice presents options to the player and jumps to the label of the selected one.
type Choice struct {
	Options []Option `json:"choice" yaml:"choice"`
}

func (*SpokenLine) Kind() NodeKind     { return NodeKindLine }
func (*Label) Kind() NodeKind          { return NodeKindLabel }
func (*Jump) Kind() NodeKind           { return NodeKindJump }
func (*Exit) Kind() NodeKind           { return NodeKindExit }
func (*MethodCall) Kind() NodeKind     { return NodeKindCall }
func (*JumpMethodCall) Kind() NodeKind { return NodeKindJumpCall }
func (*Choice) Kind() NodeKind         { return NodeKindChoice }

func (*SpokenLine) node()     {}
func (*Label) node()          {}
func (*Jump) node()           {}
func (*Exit) node()           {}
func (*MethodCall) node()     {}
func (*JumpMethodCall) node() {}
func (*Choice) node()         {}
