// Package detector flags user text that is probably not English, using a
// closed list of common function words from one target language.
//
// It is a coarse lexical heuristic, not a classifier: false positives and
// negatives are expected. It never translates anything.
package detector

import "strings"

// DefaultThreshold is the share of matched tokens above which text is
// considered to be in the target language.
const DefaultThreshold = 0.2

// DefaultMarker is appended to flagged text.
const DefaultMarker = " (Indonesian detected - manual translation may be needed)"

// DefaultWords are short Indonesian function words.
var DefaultWords = []string{
	"yang", "dan", "dengan", "di", "ke", "dari", "untuk", "pada", "dalam",
	"adalah", "akan", "telah", "sudah", "bisa", "dapat", "harus", "seperti",
	"juga", "tidak", "ada", "saya", "kamu", "dia", "mereka", "kami", "kita",
}

// Heuristic holds the word list, threshold and marker. Build one with
// Default or New; the fields are fixed after construction.
type Heuristic struct {
	words     []string
	threshold float64
	marker    string

	set map[string]struct{}
}

// Default returns a heuristic with the package defaults.
func Default() *Heuristic {
	return New(DefaultWords, DefaultThreshold, DefaultMarker)
}

// New builds a heuristic. Words are matched case-insensitively; an empty
// marker falls back to DefaultMarker.
func New(words []string, threshold float64, marker string) *Heuristic {
	if marker == "" {
		marker = DefaultMarker
	}
	set := make(map[string]struct{}, len(words))
	kept := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if _, dup := set[w]; !dup {
			kept = append(kept, w)
		}
		set[w] = struct{}{}
	}
	return &Heuristic{
		words:     kept,
		threshold: threshold,
		marker:    marker,
		set:       set,
	}
}

// Words returns a copy of the normalised word list.
func (h *Heuristic) Words() []string {
	return append([]string(nil), h.words...)
}

func (h *Heuristic) Threshold() float64 { return h.threshold }

func (h *Heuristic) Marker() string { return h.marker }

// Ratio returns matched tokens / total tokens. Text without tokens yields 0.
func (h *Heuristic) Ratio(text string) float64 {
	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) == 0 {
		return 0
	}

	matched := 0
	for _, tok := range tokens {
		if _, ok := h.set[tok]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(tokens))
}

// Detect reports whether the ratio is strictly above the threshold.
func (h *Heuristic) Detect(text string) bool {
	return h.Ratio(text) > h.threshold
}

// Annotate appends the marker when Detect is true and returns text unchanged
// otherwise.
func (h *Heuristic) Annotate(text string) string {
	if !h.Detect(text) {
		return text
	}
	return text + h.marker
}
