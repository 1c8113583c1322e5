package loam

// ChainMetadata is the frontmatter (or whole JSON/YAML body) of a chain
// document: the same keys the compiled chain format uses.
type ChainMetadata struct {
	Name        string `json:"name" mapstructure:"name"`
	Description string `json:"description" mapstructure:"description"`
	Nodes       []any  `json:"nodes" mapstructure:"nodes"`
}
