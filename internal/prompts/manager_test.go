package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatrelay/internal/models"
)

func TestNewManagerLoadsEmbeddedTemplate(t *testing.T) {
	pm, err := NewManager()
	require.NoError(t, err)
	assert.NotEmpty(t, pm.basePrompt)
}

func TestBuildChatPromptRendersTranscriptLines(t *testing.T) {
	pm, err := NewManager()
	require.NoError(t, err)

	prompt := pm.BuildChatPrompt([]models.TranscriptEntry{
		{Username: "alice", Content: "hello"},
		{Username: "bob", Content: "hi alice"},
	})

	assert.True(t, strings.HasPrefix(prompt, pm.basePrompt))
	assert.Contains(t, prompt, "(alice)hello\n")
	assert.Contains(t, prompt, "(bob)hi alice\n")
}

func TestBuildChatPromptTruncatesLongEntries(t *testing.T) {
	pm, err := NewManager()
	require.NoError(t, err)

	long := strings.Repeat("x", 2000)
	prompt := pm.BuildChatPrompt([]models.TranscriptEntry{{Username: "alice", Content: long}})

	for _, line := range strings.Split(prompt, "\n") {
		assert.LessOrEqual(t, len([]rune(line)), maxEntryLen)
	}
	// The sender prefix counts toward the cap.
	assert.Contains(t, prompt, "(alice)"+long[:maxEntryLen-len("(alice)")])
	assert.NotContains(t, prompt, long[:maxEntryLen])
}
