// Package postprocess strips chat-model artifacts from an enhanced prompt
// before it is shown or stored.
package postprocess

import (
	"regexp"
	"strings"
)

// Clean removes, in order, reasoning blocks, a leading "Here is the enhanced
// prompt:" style preamble, and one layer of wrapping quotes. If nothing would
// be left, the trimmed input is returned instead.
func Clean(text string) string {
	out := removeThinkingBlocks(text)
	out = removePreamble(out)
	out = removeQuoteWrapping(out)
	out = strings.TrimSpace(out)
	if out == "" {
		return strings.TrimSpace(text)
	}
	return out
}

// RE2 has no backreferences, so each tag pair is spelled out.
var thinkingBlockRe = regexp.MustCompile(
	`(?is)<thinking>.*?</thinking>|<think>.*?</think>|<reasoning>.*?</reasoning>|<reflection>.*?</reflection>`,
)

// An opening tag with no close means the model was cut off mid-thought.
var truncatedThinkingRe = regexp.MustCompile(
	`(?is)(?:<thinking>|<think>|<reasoning>|<reflection>).*$`,
)

func removeThinkingBlocks(text string) string {
	text = thinkingBlockRe.ReplaceAllString(text, "")
	text = truncatedThinkingRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// preamblePatterns are anchored at the start and require a colon.
var preamblePatterns = []*regexp.Regexp{
	// "Certainly! / Sure, / Of course." lead-in, optional.
	regexp.MustCompile(`(?i)^(?:certainly|sure|of course|absolutely)[!,.]?\s*`),
	// "Here is / Here's [the|an|your] [enhanced|improved|refined] prompt [for ...]:"
	regexp.MustCompile(`(?i)^\**here(?:'s| is)(?: the| an| your)? (?:enhanced |improved |refined |rewritten )?(?:version of the )?prompt[^:\n]{0,60}:\**`),
	// "[**]Enhanced prompt:[**]"
	regexp.MustCompile(`(?i)^\**(?:the )?(?:enhanced|improved|refined|rewritten) prompt\s*:\**`),
}

func removePreamble(text string) string {
	stripped := text
	for i, re := range preamblePatterns {
		loc := re.FindStringIndex(stripped)
		if loc == nil {
			continue
		}
		rest := strings.TrimSpace(stripped[loc[1]:])
		// The lead-in alone is not a preamble; only drop it when a real
		// preamble follows.
		if i == 0 {
			if !preamblePatterns[1].MatchString(rest) && !preamblePatterns[2].MatchString(rest) {
				return text
			}
		}
		stripped = rest
	}
	return stripped
}

// quotePairs maps an opening quote to its closing quote.
var quotePairs = map[rune]rune{
	'"':  '"',
	'\'': '\'',
	'«':  '»',
	'“':  '”',
	'‘':  '’',
}

// removeQuoteWrapping strips one pair of outer quotes, but only when that
// pair is the only occurrence of those quote characters. A reply such as
// "Neon" signs over a "wet street" starts and ends with quotes that belong
// to different phrases and is left alone.
func removeQuoteWrapping(text string) string {
	runes := []rune(text)
	n := len(runes)
	if n < 2 {
		return text
	}
	first, last := runes[0], runes[n-1]
	closing, ok := quotePairs[first]
	if !ok || last != closing {
		return text
	}

	inner := string(runes[1 : n-1])
	if strings.ContainsRune(inner, first) || strings.ContainsRune(inner, closing) {
		return text
	}
	return strings.TrimSpace(inner)
}
