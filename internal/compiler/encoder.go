package compiler

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/parley/pkg/callback"
	"github.com/aretw0/parley/pkg/domain"
)

type outDocument struct {
	Name  string    `yaml:"name"`
	Nodes []nodeDTO `yaml:"nodes"`
}

// Encode renders chain as a YAML document that Decode reads back.
func Encode(chain *domain.Chain) ([]byte, error) {
	doc := outDocument{Name: chain.Name(), Nodes: make([]nodeDTO, 0, chain.Len())}
	for i, n := range chain.Nodes() {
		dto, err := toDTO(n)
		if err != nil {
			return nil, &DecodeError{Index: i, Kind: n.Kind(), Err: err}
		}
		doc.Nodes = append(doc.Nodes, dto)
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode chain %s: %w", chain.Name(), err)
	}
	return out, nil
}

func toDTO(node domain.Node) (nodeDTO, error) {
	switch n := node.(type) {
	case *domain.SpokenLine:
		known := n.SpeakerKnown
		return nodeDTO{ID: n.ID, Say: &n.Speaker, Known: &known, Lines: n.Lines}, nil
	case *domain.Label:
		return nodeDTO{Label: &n.Name}, nil
	case *domain.Jump:
		return nodeDTO{Jump: &n.Label}, nil
	case *domain.Exit:
		return nodeDTO{Exit: &n.Code}, nil
	case *domain.MethodCall:
		s := callback.Callback{Name: n.Method, Args: n.Args}.String()
		return nodeDTO{Call: &s}, nil
	case *domain.JumpMethodCall:
		s := callback.Callback{Name: n.Method, Args: n.Args}.String()
		return nodeDTO{JumpCall: &s}, nil
	case *domain.Choice:
		return nodeDTO{Choice: n.Options}, nil
	default:
		return nodeDTO{}, fmt.Errorf("%w: %T", domain.ErrUnknownNode, node)
	}
}
