package dsl

import (
	"github.com/aretw0/parley/pkg/callback"
	"github.com/aretw0/parley/pkg/domain"
)

// Builder accumulates the nodes of one chain in order.
type Builder struct {
	name   string
	nodes  []domain.Node
	parser *callback.Parser
}

// New starts a chain called name.
func New(name string) *Builder {
	return &Builder{name: name, parser: callback.NewParser(nil)}
}

// Say adds lines spoken by a known speaker.
func (b *Builder) Say(speaker string, lines ...string) *Builder {
	return b.add(&domain.SpokenLine{Speaker: speaker, SpeakerKnown: true, Lines: lines})
}

// SayUnknown adds lines whose speaker has not been introduced yet.
func (b *Builder) SayUnknown(speaker string, lines ...string) *Builder {
	return b.add(&domain.SpokenLine{Speaker: speaker, Lines: lines})
}

// Label adds a jump target.
func (b *Builder) Label(name string) *Builder {
	return b.add(&domain.Label{Name: name})
}

// Jump adds an unconditional jump.
func (b *Builder) Jump(label string) *Builder {
	return b.add(&domain.Jump{Label: label})
}

// Exit ends the chain with code.
func (b *Builder) Exit(code int) *Builder {
	return b.add(&domain.Exit{Code: code})
}

// Call adds a dialogue function call written inline, e.g. `set mood "very happy"`.
func (b *Builder) Call(text string) *Builder {
	cb := b.parser.Parse(text)
	return b.add(&domain.MethodCall{Method: cb.Name, Args: cb.Args})
}

// JumpCall adds a dialogue function call whose result must name a label.
func (b *Builder) JumpCall(text string) *Builder {
	cb := b.parser.Parse(text)
	return b.add(&domain.JumpMethodCall{Method: cb.Name, Args: cb.Args})
}

// Choice opens a choice; close it with Done.
func (b *Builder) Choice() *ChoiceBuilder {
	c := &domain.Choice{}
	b.add(c)
	return &ChoiceBuilder{parent: b, choice: c}
}

// Build returns the finished chain. The builder may keep being used; later
// additions do not affect chains already built.
func (b *Builder) Build() *domain.Chain {
	return domain.NewChain(b.name, b.nodes...)
}

func (b *Builder) add(n domain.Node) *Builder {
	if line, ok := n.(*domain.SpokenLine); ok && line.ID == "" {
		line.ID = nodeID(b.name, len(b.nodes))
	}
	b.nodes = append(b.nodes, n)
	return b
}

// ChoiceBuilder adds options to a choice.
type ChoiceBuilder struct {
	parent *Builder
	choice *domain.Choice
}

// Option adds an option jumping to label when selected.
func (c *ChoiceBuilder) Option(text, label string) *ChoiceBuilder {
	c.choice.Options = append(c.choice.Options, domain.Option{Text: text, Label: label})
	return c
}

// Done returns to the chain builder.
func (c *ChoiceBuilder) Done() *Builder {
	return c.parent
}
