package tui

import (
	"hash/fnv"

	"github.com/muesli/termenv"
)

var speakerPalette = []string{"#818cf8", "#34d399", "#fbbf24", "#f472b6", "#60a5fa", "#fb7185"}

// SpeakerStyle colours each speaker name consistently; unknown speakers are dimmed.
func SpeakerStyle() func(name string, known bool) string {
	p := termenv.ColorProfile()
	return func(name string, known bool) string {
		s := termenv.String(name)
		if !known {
			return s.Faint().Italic().String()
		}
		h := fnv.New32a()
		_, _ = h.Write([]byte(name))
		color := speakerPalette[h.Sum32()%uint32(len(speakerPalette))]
		return s.Foreground(p.Color(color)).Bold().String()
	}
}
