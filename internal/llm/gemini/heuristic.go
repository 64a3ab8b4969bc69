package gemini

import (
	"fmt"
	"strings"
)

// neutralConfidence is used when no video-derived confidence signal
// accompanies an answer.
const neutralConfidence = 50.0

// structureMarkers indicate structured thinking in prose answers.
var structureMarkers = []string{
	"firstly", "secondly", "however", "moreover", "for example",
	"in addition", "furthermore", "therefore", "in conclusion",
	"on the other hand", "specifically", "for instance",
}

// keywordCoverage does plain case-insensitive substring matching of the
// expected keywords against the answer.
func keywordCoverage(keywords []string, answer string) (matched, missed []string, pct float64) {
	lower := strings.ToLower(answer)
	for _, k := range keywords {
		if strings.Contains(lower, strings.ToLower(k)) {
			matched = append(matched, k)
		} else {
			missed = append(missed, k)
		}
	}
	if len(keywords) == 0 {
		return nil, nil, neutralConfidence
	}
	return matched, missed, float64(len(matched)) / float64(len(keywords)) * 100
}

// communicationScore rates prose structure from length and marker
// heuristics. Word-count bands, with bonuses for multi-sentence answers
// and transition words.
func communicationScore(answer string) float64 {
	words := len(strings.Fields(answer))

	var score float64
	switch {
	case words < 10:
		score = 15
	case words < 20:
		score = 35
	case words < 50:
		score = 55
	case words < 100:
		score = 70
	case words < 200:
		score = 82
	default:
		score = 88
	}

	sentences := 0
	for _, s := range strings.Split(answer, ".") {
		if strings.TrimSpace(s) != "" {
			sentences++
		}
	}
	if sentences >= 3 {
		score += 8
	}
	if sentences >= 5 {
		score += 5
	}

	lower := strings.ToLower(answer)
	for _, m := range structureMarkers {
		if strings.Contains(lower, m) {
			score += 3
		}
	}

	if score > 100 {
		score = 100
	}
	return score
}

// heuristicFeedback composes feedback without the model, mirroring what a
// reviewer would flag from coverage and length alone.
func heuristicFeedback(keywordPct float64, missed []string, answer string) string {
	var parts []string

	if keywordPct >= 70 {
		parts = append(parts, "Good use of relevant technical terminology.")
	} else if len(missed) > 0 {
		n := len(missed)
		if n > 3 {
			n = 3
		}
		parts = append(parts, fmt.Sprintf("Consider mentioning: %s.", strings.Join(missed[:n], ", ")))
	}

	if len(strings.Fields(answer)) < 30 {
		parts = append(parts, "Try to elaborate more with specific examples and details.")
	}

	if len(parts) == 0 {
		parts = append(parts, "Solid response; compare it against the expected answer for gaps.")
	}
	return strings.Join(parts, " ")
}
