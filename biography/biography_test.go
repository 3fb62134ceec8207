package biography

import (
	"circle/ai"
	"circle/models"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubModel struct {
	reply string
	err   error
	req   ai.Request
}

func (s *stubModel) Complete(_ context.Context, req ai.Request) (string, error) {
	s.req = req
	return s.reply, s.err
}

func withModels(t *testing.T, deepSeek, claude ai.Completer) {
	t.Helper()
	prevDeepSeek, prevClaude := ai.DeepSeek, ai.Claude
	ai.DeepSeek, ai.Claude = deepSeek, claude
	t.Cleanup(func() { ai.DeepSeek, ai.Claude = prevDeepSeek, prevClaude })
}

func year(y int) *int { return &y }

var memories = []models.Memory{
	{ID: 1, Text: "I was born in Leeds.", Year: year(1955)},
	{ID: 2, Text: "We never had a telephone."},
}

const narrative = `Here is the biography:

# Chapter 1: Early Years (1955-1965)

Jon was born in Leeds.

The house had no telephone.
## Chapter 2: Music
  He joined a band.

`

func TestParseChapters(t *testing.T) {
	chapters := ParseChapters(narrative)
	require.Len(t, chapters, 2)
	assert.Equal(t, models.Chapter{
		Title:     "Chapter 1: Early Years (1955-1965)",
		Narrative: "Jon was born in Leeds.\nThe house had no telephone.",
	}, chapters[0])
	assert.Equal(t, models.Chapter{Title: "Chapter 2: Music", Narrative: "He joined a band."}, chapters[1])

	chapters = ParseChapters("Just one paragraph.\n\nAnd another.")
	require.Len(t, chapters, 1)
	assert.Equal(t, "Just one paragraph.\nAnd another.", chapters[0].Narrative)

	assert.Empty(t, ParseChapters("  \n"))
	assert.Equal(t, []models.Chapter{{Title: "Empty"}}, ParseChapters("# Empty\n\n"))
}

func TestModels(t *testing.T) {
	withModels(t, &stubModel{}, nil)
	names, err := Models(ai.ModelDeepSeek)
	require.NoError(t, err)
	assert.Equal(t, []string{ai.ModelDeepSeek}, names)

	_, err = Models(ModelBoth)
	assert.EqualError(t, err, "Anthropic API key not configured")
	_, err = Models(ai.ModelClaude)
	assert.EqualError(t, err, "Anthropic API key not configured")
	_, err = Models("gpt")
	assert.Error(t, err)

	withModels(t, nil, &stubModel{})
	_, err = Models("")
	assert.EqualError(t, err, "DeepSeek API key not configured")
}

func TestGenerateAll(t *testing.T) {
	deepSeek := &stubModel{reply: narrative}
	claude := &stubModel{err: errors.New("overloaded")}
	withModels(t, deepSeek, claude)

	results, err := GenerateAll(context.Background(), []string{ai.ModelDeepSeek, ai.ModelClaude}, memories)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Len(t, results[ai.ModelDeepSeek].Chapters, 2)
	assert.Equal(t, narrative, results[ai.ModelDeepSeek].FullText)
	assert.Empty(t, results[ai.ModelDeepSeek].Error)
	assert.Equal(t, "overloaded", results[ai.ModelClaude].Error)
	assert.Empty(t, results[ai.ModelClaude].Chapters)

	assert.Contains(t, deepSeek.req.Prompt, "Year: 1955\nI was born in Leeds.\n\nYear: Unknown\nWe never had a telephone.")
	assert.Contains(t, deepSeek.req.Prompt, "magazine-style narrative")
	assert.Contains(t, claude.req.Prompt, "family memoir or magazine feature")
	assert.Equal(t, 4000, deepSeek.req.MaxTokens)
	assert.Equal(t, 0.7, claude.req.Temperature)

	_, err = GenerateAll(context.Background(), []string{ai.ModelDeepSeek}, nil)
	assert.ErrorIs(t, err, ErrNoMemories)
}

func TestValidChapters(t *testing.T) {
	chapters := ValidChapters([]models.Chapter{
		{Title: "  One ", Narrative: "text"},
		{Title: " ", Narrative: "  "},
		{Title: "", Narrative: "orphan"},
	})
	assert.Equal(t, []models.Chapter{{Title: "One", Narrative: "text"}, {Title: "", Narrative: "orphan"}}, chapters)
}
