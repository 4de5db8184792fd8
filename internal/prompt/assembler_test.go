package prompt

import (
	"errors"
	"strings"
	"testing"

	"github.com/valpere/promptg/internal/detector"
	"github.com/valpere/promptg/internal/validator"
)

func exampleSelection() Selection {
	return Selection{
		Mode:            ModeImage,
		IncludeAudio:    false,
		Theme:           "Cyberpunk",
		BackgroundStyle: "Rainy neon-lit city street",
		CharacterStyle:  "3D realistic",
		Composition:     "Wide angle",
		UserInput:       "a woman walking",
	}
}

func TestAssemble_Example(t *testing.T) {
	want := "A high-quality image of a woman walking, 3D realistic style, set in Rainy neon-lit city street. Wide angle composition, Cyberpunk theme, professional quality, highly detailed"

	if got := Assemble(exampleSelection()); got != want {
		t.Errorf("Assemble() =\n%q\nwant\n%q", got, want)
	}
}

func TestAssemble_Modes(t *testing.T) {
	tests := []struct {
		name         string
		mode         Mode
		includeAudio bool
		wantPrefix   string
		wantSuffix   string
	}{
		{
			name:       "image ignores audio off",
			mode:       ModeImage,
			wantPrefix: "A high-quality image of",
			wantSuffix: "highly detailed",
		},
		{
			name:         "image ignores audio on",
			mode:         ModeImage,
			includeAudio: true,
			wantPrefix:   "A high-quality image of",
			wantSuffix:   "highly detailed",
		},
		{
			name:         "video with audio",
			mode:         ModeVideo,
			includeAudio: true,
			wantPrefix:   "A cinematic video of",
			wantSuffix:   "highly detailed with immersive audio",
		},
		{
			name:       "video without audio",
			mode:       ModeVideo,
			wantPrefix: "A cinematic video of",
			wantSuffix: "highly detailed without audio",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := exampleSelection()
			sel.Mode = tt.mode
			sel.IncludeAudio = tt.includeAudio

			got := Assemble(sel)
			if !strings.HasPrefix(got, tt.wantPrefix) {
				t.Errorf("expected prefix %q, got %q", tt.wantPrefix, got)
			}
			if !strings.HasSuffix(got, tt.wantSuffix) {
				t.Errorf("expected suffix %q, got %q", tt.wantSuffix, got)
			}
			if tt.mode == ModeImage && strings.Contains(got, "audio") {
				t.Errorf("image prompt must not mention audio, got %q", got)
			}
		})
	}
}

func TestAssemble_Composition(t *testing.T) {
	sel := exampleSelection()

	sel.Composition = ""
	got := Assemble(sel)
	if strings.Contains(got, "composition") {
		t.Errorf("expected no composition clause, got %q", got)
	}

	sel.Composition = "Wide angle"
	got = Assemble(sel)
	if !strings.Contains(got, "Wide angle composition,") {
		t.Errorf("expected composition clause, got %q", got)
	}
}

func TestAssemble_NonEnglishInput(t *testing.T) {
	sel := exampleSelection()
	sel.UserInput = "seorang wanita yang berjalan di jalan"

	got := Assemble(sel)
	if strings.Count(got, detector.DefaultMarker) != 1 {
		t.Errorf("expected marker once, got %q", got)
	}
	if !strings.Contains(got, "jalan"+detector.DefaultMarker+", 3D realistic style") {
		t.Errorf("expected marker right after the user input, got %q", got)
	}
}

func TestAssemble_DoesNotMutateSelection(t *testing.T) {
	sel := exampleSelection()
	sel.UserInput = "kucing yang tidur di sofa"
	before := sel

	_ = Assemble(sel)
	if _, err := NewAssembler().Assemble(sel); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sel != before {
		t.Errorf("selection mutated: %+v", sel)
	}
}

func TestAssembler_Assemble(t *testing.T) {
	a := NewAssembler()

	out, err := a.Assemble(exampleSelection())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Prompt != Assemble(exampleSelection()) {
		t.Errorf("expected same text as Assemble, got %q", out.Prompt)
	}
	if out.NonEnglish || out.Advisory != "" {
		t.Errorf("expected no advisory, got %+v", out)
	}
}

func TestAssembler_SeparateAdvisory(t *testing.T) {
	a := NewAssembler(WithInlineAdvisory(false))

	sel := exampleSelection()
	sel.UserInput = "kucing yang tidur di sofa"

	out, err := a.Assemble(sel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.NonEnglish {
		t.Error("expected NonEnglish")
	}
	if out.Advisory == "" {
		t.Error("expected advisory text")
	}
	if strings.Contains(out.Prompt, "detected") {
		t.Errorf("advisory leaked into prompt: %q", out.Prompt)
	}
}

func TestAssembler_CustomHeuristic(t *testing.T) {
	a := NewAssembler(WithHeuristic(detector.New([]string{"woman"}, 0.1, " [flag]")))

	out, err := a.Assemble(exampleSelection())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.Prompt, "a woman walking [flag],") {
		t.Errorf("expected custom marker inline, got %q", out.Prompt)
	}
}

func TestAssembler_InvalidSelection(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*Selection)
		field string
	}{
		{name: "missing theme", edit: func(s *Selection) { s.Theme = "" }, field: "theme"},
		{name: "missing background", edit: func(s *Selection) { s.BackgroundStyle = " " }, field: "backgroundStyle"},
		{name: "missing character", edit: func(s *Selection) { s.CharacterStyle = "" }, field: "characterStyle"},
		{name: "missing input", edit: func(s *Selection) { s.UserInput = "" }, field: "userInput"},
		{name: "unknown mode", edit: func(s *Selection) { s.Mode = "audio" }, field: "mode"},
	}

	a := NewAssembler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := exampleSelection()
			tt.edit(&sel)

			_, err := a.Assemble(sel)
			if !errors.Is(err, ErrInvalidSelection) {
				t.Fatalf("expected ErrInvalidSelection, got %v", err)
			}
			var verr *validator.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *validator.ValidationError, got %v", err)
			}
			if !verr.Has(tt.field) {
				t.Errorf("expected field %q, got %v", tt.field, verr.Fields)
			}
		})
	}
}

func TestAssembler_CompositionOptional(t *testing.T) {
	sel := exampleSelection()
	sel.Composition = ""

	if _, err := NewAssembler().Assemble(sel); err != nil {
		t.Errorf("composition should be optional, got %v", err)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "image", want: ModeImage},
		{in: "VIDEO", want: ModeVideo},
		{in: " video ", want: ModeVideo},
		{in: "gif", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()

	for _, name := range []string{"themes", "backgrounds", "characters", "compositions"} {
		items, ok := c.Section(name)
		if !ok {
			t.Errorf("section %q not found", name)
			continue
		}
		if len(items) != 15 {
			t.Errorf("section %q: expected 15 presets, got %d", name, len(items))
		}
	}

	if _, ok := c.Section("colors"); ok {
		t.Error("unexpected section colors")
	}

	c.Themes[0] = "changed"
	if DefaultCatalog().Themes[0] != "Cyberpunk" {
		t.Error("DefaultCatalog must return a fresh copy")
	}
}
