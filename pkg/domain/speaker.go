package domain

// Speaker describes who says a line. Key is the npc key used in chains.
type Speaker struct {
	Key   string `json:"key" yaml:"key"`
	Name  string `json:"name" yaml:"name"`
	Voice string `json:"voice,omitempty" yaml:"voice,omitempty"`
}
