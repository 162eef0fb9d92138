package artstyle

import "strings"

type ID string

const (
	Cyberpunk  ID = "Cyberpunk"
	Pollock    ID = "Jackson Pollock"
	Joker      ID = "The Joker"
	Minimalist ID = "Minimalist"
)

const (
	DefaultID        = Cyberpunk
	DefaultIntensity = 75
)

type Descriptor struct {
	ID          ID     `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Lighting    string `json:"lighting"`
	Palette     string `json:"palette"`
	Vibe        string `json:"vibe"`
	Texture     string `json:"texture"`
	Accent      string `json:"accent"` // UI gradient classes
}

var order = []ID{Cyberpunk, Pollock, Joker, Minimalist}

var descriptors = map[ID]Descriptor{
	Cyberpunk: {
		ID:          Cyberpunk,
		Label:       "Cyberpunk",
		Description: "Neon lights, futuristic tech, high contrast, dystopic atmosphere.",
		Lighting:    "Cinematic neon side-lighting, volumetric fog, bioluminescent environmental glow, harsh artificial highlights",
		Palette:     "Deep cyan and magenta complementary colors, crushed blacks, iridescent chrome reflections",
		Vibe:        "Dystopian, high-tech low-life, rainy urban night, futuristic melancholia",
		Texture:     "Wet pavement reflections, glossy synthetic surfaces, digital noise artifacts, rain-slicked metal",
		Accent:      "from-pink-500 to-cyan-500",
	},
	Pollock: {
		ID:          Pollock,
		Label:       "Jackson Pollock",
		Description: "Abstract expressionism, chaotic drip painting, energetic splashes.",
		Lighting:    "Flat, even studio lighting to emphasize texture and depth of paint layers",
		Palette:     "Chaotic mix of industrial enamels, beige canvas raw background, vibrant primary splatters",
		Vibe:        "Manic energy, non-representational, subconscious expression, rhythmic chaos",
		Texture:     "Thick impasto, poured paint, complex fractal patterns, layered drips, visceral physical strokes",
		Accent:      "from-yellow-500 to-red-600",
	},
	Joker: {
		ID:          Joker,
		Label:       "The Joker",
		Description: "Manic energy, vibrant green and purple, chaotic psychological vibe.",
		Lighting:    "Dramatic theatrical spotlighting, high-contrast chiaroscuro, unsettling shadows, harsh overhead fluorescent",
		Palette:     "Sickly green and royal purple, washed-out skin tones, desaturated urban greys",
		Vibe:        "Psychological thriller, manic, distorted reality, society in decay, unstable and tense",
		Texture:     "Coarse 35mm film grain, gritty cinematic realism, sweat and grease, smeared makeup texture",
		Accent:      "from-purple-600 to-green-500",
	},
	Minimalist: {
		ID:          Minimalist,
		Label:       "Minimalist",
		Description: "Clean lines, flat colors, negative space, simple geometry.",
		Lighting:    "Soft diffused global illumination, minimal shadows, high-key exposure",
		Palette:     "Monochromatic or pastel duotone, matte finish, pure white negative space",
		Vibe:        "Serene, organized, reductionist, clarity, modern elegance",
		Texture:     "Smooth vector-like surfaces, lack of noise, flat paper texture, crisp edges",
		Accent:      "from-gray-200 to-gray-400",
	},
}

// Lookup returns the descriptor for id. IDs outside the catalog resolve to the
// default style; use ParseID at untyped boundaries.
func Lookup(id ID) Descriptor {
	if d, ok := descriptors[id]; ok {
		return d
	}
	return descriptors[DefaultID]
}

// ParseID accepts the wire value ("The Joker") or the short key ("joker"),
// case-insensitively.
func ParseID(value string) (ID, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	for _, id := range order {
		if strings.EqualFold(value, string(id)) || strings.EqualFold(value, id.Key()) {
			return id, true
		}
	}
	return "", false
}

// Key is the short lower-case form used in URLs.
func (id ID) Key() string {
	switch id {
	case Cyberpunk:
		return "cyberpunk"
	case Pollock:
		return "pollock"
	case Joker:
		return "joker"
	case Minimalist:
		return "minimalist"
	}
	return ""
}

func (id ID) Valid() bool {
	_, ok := descriptors[id]
	return ok
}

func All() []Descriptor {
	out := make([]Descriptor, 0, len(order))
	for _, id := range order {
		out = append(out, descriptors[id])
	}
	return out
}
