package memory

import (
	"strings"

	"github.com/aretw0/parley/pkg/domain"
)

// Directory implements ports.SpeakerDirectory over a fixed set of speakers.
// Keys are matched case-insensitively.
type Directory struct {
	speakers map[string]domain.Speaker
}

// NewDirectory creates a directory from speakers.
func NewDirectory(speakers ...domain.Speaker) *Directory {
	d := &Directory{speakers: make(map[string]domain.Speaker, len(speakers))}
	for _, s := range speakers {
		d.speakers[strings.ToLower(s.Key)] = s
	}
	return d
}

// Lookup returns the speaker registered under key.
func (d *Directory) Lookup(key string) (domain.Speaker, bool) {
	s, ok := d.speakers[strings.ToLower(key)]
	return s, ok
}
