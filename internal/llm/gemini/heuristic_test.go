package gemini

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeywordCoverage(t *testing.T) {
	matched, missed, pct := keywordCoverage(
		[]string{"index", "B-tree", "cardinality", "covering"},
		"I would add a composite INDEX, ideally a covering one.")

	assert.ElementsMatch(t, []string{"index", "covering"}, matched)
	assert.ElementsMatch(t, []string{"B-tree", "cardinality"}, missed)
	assert.Equal(t, 50.0, pct)
}

func TestKeywordCoverageNoKeywords(t *testing.T) {
	matched, missed, pct := keywordCoverage(nil, "anything at all")
	assert.Nil(t, matched)
	assert.Nil(t, missed)
	assert.Equal(t, 50.0, pct, "no expectations means a neutral score")
}

func TestCommunicationScoreBands(t *testing.T) {
	assert.Equal(t, 15.0, communicationScore("too short"))

	medium := "This answer has enough words to land in the mid band because it keeps going on for a while without stopping early"
	assert.Equal(t, 55.0, communicationScore(medium))
}

func TestCommunicationScoreBonuses(t *testing.T) {
	structured := "Firstly, I would profile the system. Secondly, I would add caching. Moreover, measuring before and after matters. For example, a flame graph shows hotspots."
	score := communicationScore(structured)

	plain := strings.Repeat("word ", 25)
	assert.Greater(t, score, communicationScore(plain))
	assert.LessOrEqual(t, score, 100.0)
}

func TestHeuristicFeedback(t *testing.T) {
	fb := heuristicFeedback(50, []string{"sharding", "replication", "quorum", "consensus"}, "short answer")
	assert.Contains(t, fb, "sharding, replication, quorum")
	assert.Contains(t, fb, "elaborate")

	fb = heuristicFeedback(80, nil, strings.Repeat("detailed ", 40))
	assert.Contains(t, fb, "terminology")
}
