// Package compiler turns compiled chain documents (YAML or JSON) into chains
// and back, and checks chains for authoring mistakes.
package compiler

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/callback"
	"github.com/aretw0/parley/pkg/domain"
)

// nodeDTO is the document shape of one node. Exactly one kind key is set.
type nodeDTO struct {
	ID       string          `yaml:"id,omitempty" mapstructure:"id"`
	Say      *string         `yaml:"say,omitempty" mapstructure:"say"`
	Known    *bool           `yaml:"known,omitempty" mapstructure:"known"`
	Text     string          `yaml:"text,omitempty" mapstructure:"text"`
	Lines    []string        `yaml:"lines,omitempty" mapstructure:"lines"`
	Label    *string         `yaml:"label,omitempty" mapstructure:"label"`
	Jump     *string         `yaml:"jump,omitempty" mapstructure:"jump"`
	Exit     *int            `yaml:"exit,omitempty" mapstructure:"exit"`
	Call     *string         `yaml:"call,omitempty" mapstructure:"call"`
	JumpCall *string         `yaml:"jump_call,omitempty" mapstructure:"jump_call"`
	Choice   []domain.Option `yaml:"choice,omitempty" mapstructure:"choice"`
}

type document struct {
	Name  string           `yaml:"name" mapstructure:"name"`
	Nodes []map[string]any `yaml:"nodes" mapstructure:"nodes"`
}

var kindKeys = []domain.NodeKind{
	domain.NodeKindLine,
	domain.NodeKindLabel,
	domain.NodeKindJump,
	domain.NodeKindExit,
	domain.NodeKindCall,
	domain.NodeKindJumpCall,
	domain.NodeKindChoice,
}

// DecodeError reports a node that could not be decoded.
type DecodeError struct {
	Index int
	Kind  domain.NodeKind
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("node %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("node %d (%s): %v", e.Index, e.Kind, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decoder reads chain documents.
type Decoder struct {
	parser *callback.Parser
	logger *slog.Logger
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithLogger configures the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Decoder) {
		d.logger = logging.OrNop(logger)
	}
}

// NewDecoder creates a decoder.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	d.parser = callback.NewParser(d.logger)
	return d
}

// Decode parses data, a YAML or JSON document. The document is either a
// mapping with `name` and `nodes` or a bare node list; fallbackName names the
// chain when the document does not.
func (d *Decoder) Decode(fallbackName string, data []byte) (*domain.Chain, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse chain document: %w", err)
	}
	return d.DecodeValue(fallbackName, raw)
}

// DecodeValue builds a chain from an already parsed document, as produced by
// a YAML or JSON unmarshal into any or by a frontmatter reader.
func (d *Decoder) DecodeValue(fallbackName string, raw any) (*domain.Chain, error) {
	var doc document
	switch v := raw.(type) {
	case nil:
	case []any:
		if err := weakDecode(map[string]any{"nodes": v}, &doc); err != nil {
			return nil, fmt.Errorf("decode chain document: %w", err)
		}
	case map[string]any:
		if err := weakDecode(v, &doc); err != nil {
			return nil, fmt.Errorf("decode chain document: %w", err)
		}
	default:
		return nil, fmt.Errorf("chain document must be a mapping or a list, got %T", raw)
	}

	name := doc.Name
	if name == "" {
		name = fallbackName
	}

	nodes := make([]domain.Node, 0, len(doc.Nodes))
	for i, rawNode := range doc.Nodes {
		n, err := d.decodeNode(name, i, rawNode)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	d.logger.Debug("chain decoded", "chain", name, "nodes", len(nodes))
	return domain.NewChain(name, nodes...), nil
}

func (d *Decoder) decodeNode(chain string, index int, raw map[string]any) (domain.Node, error) {
	kind, err := kindOf(raw)
	if err != nil {
		return nil, &DecodeError{Index: index, Err: err}
	}
	if raw[string(kind)] == nil {
		return nil, &DecodeError{Index: index, Kind: kind, Err: errors.New("missing value")}
	}

	var dto nodeDTO
	if err := weakDecode(raw, &dto); err != nil {
		return nil, &DecodeError{Index: index, Kind: kind, Err: err}
	}

	switch kind {
	case domain.NodeKindLine:
		lines := dto.Lines
		if dto.Text != "" {
			lines = append([]string{dto.Text}, lines...)
		}
		known := true
		if dto.Known != nil {
			known = *dto.Known
		}
		id := dto.ID
		if id == "" {
			id = chain + "#" + strconv.Itoa(index)
		}
		return &domain.SpokenLine{ID: id, Speaker: *dto.Say, SpeakerKnown: known, Lines: lines}, nil
	case domain.NodeKindLabel:
		if strings.TrimSpace(*dto.Label) == "" {
			return nil, &DecodeError{Index: index, Kind: kind, Err: errors.New("label name is empty")}
		}
		return &domain.Label{Name: *dto.Label}, nil
	case domain.NodeKindJump:
		return &domain.Jump{Label: *dto.Jump}, nil
	case domain.NodeKindExit:
		return &domain.Exit{Code: *dto.Exit}, nil
	case domain.NodeKindCall:
		cb := d.parser.Parse(*dto.Call)
		return &domain.MethodCall{Method: cb.Name, Args: cb.Args}, nil
	case domain.NodeKindJumpCall:
		cb := d.parser.Parse(*dto.JumpCall)
		return &domain.JumpMethodCall{Method: cb.Name, Args: cb.Args}, nil
	case domain.NodeKindChoice:
		return &domain.Choice{Options: dto.Choice}, nil
	}
	return nil, &DecodeError{Index: index, Kind: kind, Err: domain.ErrUnknownNode}
}

func kindOf(raw map[string]any) (domain.NodeKind, error) {
	var found []string
	var kind domain.NodeKind
	for _, k := range kindKeys {
		if _, ok := raw[string(k)]; ok {
			found = append(found, string(k))
			kind = k
		}
	}
	switch len(found) {
	case 1:
		return kind, nil
	case 0:
		keys := make([]string, 0, len(raw))
		for k := range raw {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return "", fmt.Errorf("no node kind among keys %v", keys)
	default:
		return "", fmt.Errorf("node has several kinds: %s", strings.Join(found, ", "))
	}
}

func weakDecode(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}
