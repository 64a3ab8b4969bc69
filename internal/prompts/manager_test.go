package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerLoadsEmbeddedTemplates(t *testing.T) {
	m, err := NewManager()
	require.NoError(t, err)

	for _, mode := range []string{"question", "evaluate"} {
		for _, variant := range []string{"technical", "hr"} {
			prompt, err := m.BuildPrompt(mode, variant, nil)
			require.NoError(t, err, "mode %s variant %s", mode, variant)
			assert.NotEmpty(t, prompt)
		}
	}

	prompt, err := m.BuildPrompt("code_eval", "default", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, prompt)
}

func TestBuildPromptSubstitutesPlaceholders(t *testing.T) {
	m, err := NewManager()
	require.NoError(t, err)

	prompt, err := m.BuildPrompt("question", "technical", map[string]string{
		"JobRole":    "Backend Engineer",
		"Difficulty": "hard",
	})
	require.NoError(t, err)
	assert.Contains(t, prompt, "Backend Engineer")
	assert.Contains(t, prompt, "hard")
	assert.NotContains(t, prompt, "{{.JobRole}}")
	assert.NotContains(t, prompt, "{{.Difficulty}}")
}

func TestBuildPromptUnknownModeOrVariant(t *testing.T) {
	m, err := NewManager()
	require.NoError(t, err)

	_, err = m.BuildPrompt("nonsense", "technical", nil)
	assert.Error(t, err)

	_, err = m.BuildPrompt("question", "nonsense", nil)
	assert.Error(t, err)
}
