package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/valpere/promptg/internal/detector"
	"github.com/valpere/promptg/internal/validator"
)

// ErrInvalidSelection wraps boundary validation failures from
// Assembler.Assemble. The underlying *validator.ValidationError is reachable
// with errors.As.
var ErrInvalidSelection = errors.New("invalid selection")

const (
	openingVideo = "A cinematic video of"
	openingImage = "A high-quality image of"

	audioOn  = "with immersive audio"
	audioOff = "without audio"
)

// Assemble builds the prompt with the default language heuristic, appending
// its advisory inline. It never fails; required fields are the caller's
// responsibility.
func Assemble(sel Selection) string {
	return build(sel, detector.Default().Annotate(sel.UserInput))
}

func build(sel Selection, input string) string {
	opening := openingImage
	audio := ""
	if sel.Mode == ModeVideo {
		opening = openingVideo
		audio = audioOff
		if sel.IncludeAudio {
			audio = audioOn
		}
	}

	composition := ""
	if sel.Composition != "" {
		composition = sel.Composition + " composition,"
	}

	p := fmt.Sprintf("%s %s, %s style, set in %s. %s %s theme, professional quality, highly detailed %s",
		opening, input, sel.CharacterStyle, sel.BackgroundStyle, composition, sel.Theme, audio)
	return strings.TrimSpace(p)
}

// Assembly is the output of Assembler.Assemble.
type Assembly struct {
	Prompt string `json:"prompt"`
	// Advisory carries the heuristic marker when the input looked
	// non-English, whether or not it was also appended to Prompt.
	Advisory   string `json:"advisory,omitempty"`
	NonEnglish bool   `json:"nonEnglish"`
}

// Assembler is the configurable form of Assemble.
type Assembler struct {
	heuristic *detector.Heuristic
	inline    bool
}

// AssemblerOption configures an Assembler.
type AssemblerOption func(*Assembler)

// WithHeuristic replaces the default language heuristic.
func WithHeuristic(h *detector.Heuristic) AssemblerOption {
	return func(a *Assembler) {
		if h != nil {
			a.heuristic = h
		}
	}
}

// WithInlineAdvisory controls whether the advisory marker is appended to the
// prompt text (the default) or only reported in Assembly.Advisory.
func WithInlineAdvisory(inline bool) AssemblerOption {
	return func(a *Assembler) { a.inline = inline }
}

// NewAssembler returns an assembler using detector.Default with inline
// advisories unless overridden.
func NewAssembler(opts ...AssemblerOption) *Assembler {
	a := &Assembler{heuristic: detector.Default(), inline: true}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble validates sel and builds the prompt.
func (a *Assembler) Assemble(sel Selection) (*Assembly, error) {
	if err := validator.Struct(sel); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSelection, err)
	}

	out := &Assembly{}
	input := sel.UserInput
	if a.heuristic.Detect(input) {
		out.NonEnglish = true
		out.Advisory = strings.TrimSpace(a.heuristic.Marker())
		if a.inline {
			input += a.heuristic.Marker()
		}
	}
	out.Prompt = build(sel, input)
	return out, nil
}
