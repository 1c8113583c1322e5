package ports

import "github.com/aretw0/parley/pkg/domain"

// SpeakerDirectory maps npc keys to display descriptors.
type SpeakerDirectory interface {
	Lookup(key string) (domain.Speaker, bool)
}
