// Package prompt assembles a generation prompt from the user's form choices.
package prompt

import (
	"fmt"
	"strings"
)

// Mode selects what the prompt is for.
type Mode string

const (
	ModeImage Mode = "image"
	ModeVideo Mode = "video"
)

// ParseMode accepts "image" or "video", case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeImage:
		return ModeImage, nil
	case ModeVideo:
		return ModeVideo, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want image or video)", s)
	}
}

// Selection is the structured form input. IncludeAudio only matters for
// video; Composition is optional, every other string is required.
type Selection struct {
	Mode            Mode   `json:"mode" validate:"required,oneof=image video"`
	IncludeAudio    bool   `json:"includeAudio"`
	Theme           string `json:"theme" validate:"notblank"`
	BackgroundStyle string `json:"backgroundStyle" validate:"notblank"`
	CharacterStyle  string `json:"characterStyle" validate:"notblank"`
	Composition     string `json:"composition,omitempty"`
	UserInput       string `json:"userInput" validate:"notblank"`
}

// NewSelection returns a selection with the form defaults: image mode, no
// audio.
func NewSelection() Selection {
	return Selection{Mode: ModeImage}
}
