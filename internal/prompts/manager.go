package prompts

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed templates/*.yaml
var templateFS embed.FS

// Manager loads the prompt templates embedded at compile time and renders
// them with simple placeholder substitution.
type Manager struct {
	prompts map[string]map[string]string // mode -> variant -> complete prompt
}

// PromptTemplate is the on-disk shape of one template file.
type PromptTemplate struct {
	BasePrompt string            `yaml:"base_prompt"`
	Variants   map[string]string `yaml:"variants"`
}

func NewManager() (*Manager, error) {
	m := &Manager{prompts: make(map[string]map[string]string)}
	if err := m.loadPrompts(); err != nil {
		return nil, fmt.Errorf("failed to load prompt templates: %w", err)
	}
	return m, nil
}

// BuildPrompt renders the template for a mode and variant. Placeholders
// use {{.Name}} syntax and are replaced verbatim from data.
func (m *Manager) BuildPrompt(mode, variant string, data map[string]string) (string, error) {
	modePrompts, exists := m.prompts[mode]
	if !exists {
		return "", fmt.Errorf("template not found for mode: %s", mode)
	}

	prompt, exists := modePrompts[variant]
	if !exists {
		return "", fmt.Errorf("variant '%s' not found for mode '%s'", variant, mode)
	}

	for key, value := range data {
		prompt = strings.ReplaceAll(prompt, "{{."+key+"}}", value)
	}
	return prompt, nil
}

func (m *Manager) loadPrompts() error {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return fmt.Errorf("failed to read templates directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		data, err := templateFS.ReadFile("templates/" + entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read template %s: %w", entry.Name(), err)
		}

		var tmpl PromptTemplate
		if err := yaml.Unmarshal(data, &tmpl); err != nil {
			return fmt.Errorf("failed to parse template %s: %w", entry.Name(), err)
		}

		mode := strings.TrimSuffix(entry.Name(), ".yaml")
		m.prompts[mode] = make(map[string]string)
		for variant, extra := range tmpl.Variants {
			m.prompts[mode][variant] = tmpl.BasePrompt + "\n" + extra
		}
		if len(tmpl.Variants) == 0 {
			m.prompts[mode]["default"] = tmpl.BasePrompt
		}
	}

	return nil
}
