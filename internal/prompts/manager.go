package prompts

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"chatrelay/internal/models"
)

// maxEntryLen caps each rendered "(sender)content" transcript line.
const maxEntryLen = 1000

// embeds all .yaml files in the templates folder into the binary
//
//go:embed templates/*.yaml
var templateFS embed.FS

// Manager loads the chat persona template and renders room transcripts into
// provider prompts.
type Manager struct {
	basePrompt string
}

// template file shape
type promptTemplate struct {
	BasePrompt string `yaml:"base_prompt"`
}

func NewManager() (*Manager, error) {
	data, err := templateFS.ReadFile("templates/chat.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read chat prompt template: %w", err)
	}

	var tmpl promptTemplate
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("failed to parse chat prompt template: %w", err)
	}
	if strings.TrimSpace(tmpl.BasePrompt) == "" {
		return nil, fmt.Errorf("chat prompt template has an empty base_prompt")
	}

	return &Manager{basePrompt: tmpl.BasePrompt}, nil
}

// BuildChatPrompt renders the transcript under the persona prompt. Each entry
// becomes one "(sender)content" line, truncated to the per-entry cap.
func (m *Manager) BuildChatPrompt(transcript []models.TranscriptEntry) string {
	var b strings.Builder
	b.WriteString(m.basePrompt)
	b.WriteString("\n\n")
	for _, entry := range transcript {
		line := fmt.Sprintf("(%s)%s", entry.Username, entry.Content)
		if runes := []rune(line); len(runes) > maxEntryLen {
			line = string(runes[:maxEntryLen])
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
