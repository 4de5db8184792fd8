package prompt

// Catalog lists the preset values offered for each choice. Values outside
// the catalog are accepted; the lists are suggestions only.
type Catalog struct {
	Themes           []string `json:"themes"`
	BackgroundStyles []string `json:"backgroundStyles"`
	CharacterStyles  []string `json:"characterStyles"`
	Compositions     []string `json:"compositions"`
}

// DefaultCatalog returns a fresh copy of the built-in presets.
func DefaultCatalog() Catalog {
	return Catalog{
		Themes: []string{
			"Cyberpunk", "Fantasy", "Sci-Fi", "Modern", "Vintage",
			"Minimalist", "Dark", "Bright", "Cinematic", "Artistic",
			"Dreamy", "Horror", "Steampunk", "Noir", "Futuristic",
		},
		BackgroundStyles: []string{
			"Rainy neon-lit city street", "Mystical enchanted forest",
			"Futuristic spaceship interior", "Modern office building",
			"Vintage coffee shop", "Minimalist white room", "Dark alley",
			"Bright sunny park", "Movie set", "Art gallery", "Digital void",
			"Cityscape", "Nature landscape", "Underground tunnel",
			"Rooftop terrace",
		},
		CharacterStyles: []string{
			"3D realistic", "2D anime", "Photorealistic", "Cartoon",
			"Oil painting", "Watercolor", "Sketch", "Pixel art",
			"Digital art", "Renaissance style", "Claymation", "Manga style",
			"Comic book style", "Impressionist", "Pop art",
		},
		Compositions: []string{
			"Wide angle", "Close-up", "Medium shot", "Bird's eye view",
			"Low angle", "High angle", "Portrait", "Landscape", "Macro",
			"Panoramic", "Drone shot", "Overhead", "Dutch angle",
			"Extreme close-up", "Establishing shot",
		},
	}
}

// Section returns the list for a named section ("themes", "backgrounds",
// "characters", "compositions") and whether the name was known.
func (c Catalog) Section(name string) ([]string, bool) {
	switch name {
	case "themes", "theme":
		return c.Themes, true
	case "backgrounds", "background", "backgroundStyles":
		return c.BackgroundStyles, true
	case "characters", "character", "characterStyles":
		return c.CharacterStyles, true
	case "compositions", "composition":
		return c.Compositions, true
	default:
		return nil, false
	}
}
