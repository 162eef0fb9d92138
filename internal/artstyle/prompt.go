package artstyle

import (
	"fmt"
	"strings"
)

type IntensityBand int

const (
	Subtle IntensityBand = iota
	Balanced
	Overhaul
)

const (
	MinIntensity = 0
	MaxIntensity = 100

	balancedFrom = 30
	overhaulFrom = 70
)

func (b IntensityBand) String() string {
	switch b {
	case Subtle:
		return "subtle"
	case Balanced:
		return "balanced"
	default:
		return "complete overhaul"
	}
}

// Phrase is the wording used inside the prompt.
func (b IntensityBand) Phrase() string {
	switch b {
	case Subtle:
		return "subtle influence, retaining original structure"
	case Balanced:
		return "balanced transformation"
	default:
		return "overwhelming, complete stylistic overhaul"
	}
}

type BandRange struct {
	Band string `json:"band"`
	From int    `json:"from"`
	To   int    `json:"to"`
}

// Bands lists the inclusive ranges of every band, lowest first.
func Bands() []BandRange {
	return []BandRange{
		{Band: Subtle.String(), From: MinIntensity, To: balancedFrom - 1},
		{Band: Balanced.String(), From: balancedFrom, To: overhaulFrom - 1},
		{Band: Overhaul.String(), From: overhaulFrom, To: MaxIntensity},
	}
}

func ClampIntensity(v int) int {
	if v < MinIntensity {
		return MinIntensity
	}
	if v > MaxIntensity {
		return MaxIntensity
	}
	return v
}

func Band(intensity int) IntensityBand {
	intensity = ClampIntensity(intensity)
	switch {
	case intensity < balancedFrom:
		return Subtle
	case intensity < overhaulFrom:
		return Balanced
	default:
		return Overhaul
	}
}

// BuildPrompt renders the restyling instruction for d at the given intensity.
// The same string is shown as the preview and sent to the model.
func BuildPrompt(d Descriptor, intensity int) string {
	intensity = ClampIntensity(intensity)

	var b strings.Builder
	b.WriteString("Professional Artistic Restyling Task:\n")
	b.WriteString("Target Style: " + d.Label + "\n\n")

	writeSection(&b, "Detailed Technical Specifications", []string{
		"Lighting: " + d.Lighting,
		"Color Palette: " + d.Palette,
		"Atmosphere/Vibe: " + d.Vibe,
		"Texture/Medium: " + d.Texture,
		fmt.Sprintf("Effect Intensity: %s (%d%%)", Band(intensity).Phrase(), intensity),
	})
	b.WriteString("\n")

	b.WriteString("Instructions:\n")
	b.WriteString("Redraw the input image following the specifications above.\n")
	b.WriteString("Keep the main subject composition recognizable but completely re-render it using the described artistic medium and lighting.")

	return b.String()
}

func writeSection(b *strings.Builder, title string, lines []string) {
	b.WriteString(title + ":\n")
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		b.WriteString("- " + line + "\n")
	}
}
