// Package biography turns a user's memories into a chaptered narrative
package biography

import (
	"circle/ai"
	"circle/models"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	ModelBoth = "both"

	DefaultTitle    = "The Making of a Life"
	DefaultSubtitle = "A Family Story"

	generateTimeout = 5 * time.Minute
	maxTokens       = 4000
	temperature     = 0.7
)

var (
	ErrNoMemories = errors.New("No memories found to generate biography")
	headingPrefix = regexp.MustCompile(`^#+\s*`)
)

// Result is one model's draft; Error is set instead when the model failed
type Result struct {
	Chapters []models.Chapter `json:"chapters,omitempty"`
	FullText string           `json:"full_text,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// Models resolves the requested model ("deepseek", "claude" or "both")
// and checks the API keys are configured
func Models(requested string) ([]string, error) {
	var names []string
	switch requested {
	case "", ModelBoth:
		names = []string{ai.ModelDeepSeek, ai.ModelClaude}
	case ai.ModelDeepSeek, ai.ModelClaude:
		names = []string{requested}
	default:
		return nil, fmt.Errorf("Unknown model: %s", requested)
	}
	for _, name := range names {
		if _, err := ai.ByName(name); err != nil {
			if name == ai.ModelDeepSeek {
				return nil, errors.New("DeepSeek API key not configured")
			}
			return nil, errors.New("Anthropic API key not configured")
		}
	}
	return names, nil
}

func memoriesText(memories []models.Memory) string {
	parts := make([]string, len(memories))
	for i := range memories {
		year := "Unknown"
		if memories[i].Year != nil {
			year = strconv.Itoa(*memories[i].Year)
		}
		parts[i] = "Year: " + year + "\n" + memories[i].Text
	}
	return strings.Join(parts, "\n\n")
}

func prompt(model string, memories []models.Memory) string {
	if model == ai.ModelClaude {
		return fmt.Sprintf(claudePrompt, memoriesText(memories))
	}
	return fmt.Sprintf(deepSeekPrompt, memoriesText(memories))
}

// Generate asks one model for the biography and splits it into chapters
func Generate(ctx context.Context, model string, memories []models.Memory) (Result, error) {
	if len(memories) == 0 {
		return Result{}, ErrNoMemories
	}
	client, err := ai.ByName(model)
	if err != nil {
		return Result{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()
	text, err := client.Complete(ctx, ai.Request{
		Prompt:      prompt(model, memories),
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Chapters: ParseChapters(text), FullText: text}, nil
}

// GenerateAll runs the models concurrently. A failing model doesn't fail the
// others, its error is reported in its Result.
func GenerateAll(ctx context.Context, names []string, memories []models.Memory) (map[string]Result, error) {
	if len(memories) == 0 {
		return nil, ErrNoMemories
	}
	results := make([]Result, len(names))
	g, ctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			started := time.Now()
			result, err := Generate(ctx, name, memories)
			if err != nil {
				zap.S().Errorf("%s biography generation error: %v", name, err)
				result = Result{Error: err.Error()}
			} else {
				zap.S().Infof("%s biography: %d chapters in %v", name, len(result.Chapters), time.Since(started))
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	byName := make(map[string]Result, len(names))
	for i, name := range names {
		byName[name] = results[i]
	}
	return byName, nil
}

// ParseChapters splits markdown text on '#' headings. Text before the first
// heading is dropped, blank lines are removed. Text without any heading
// becomes a single chapter.
func ParseChapters(text string) []models.Chapter {
	chapters := []models.Chapter{}
	var current *models.Chapter
	var lines []string
	flush := func() {
		if current != nil {
			current.Narrative = strings.TrimSpace(strings.Join(lines, "\n"))
			chapters = append(chapters, *current)
		}
		lines = nil
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.HasPrefix(line, "#") {
			flush()
			current = &models.Chapter{Title: strings.TrimSpace(headingPrefix.ReplaceAllString(line, ""))}
			continue
		}
		if current != nil && strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	flush()

	if len(chapters) == 0 && strings.TrimSpace(text) != "" {
		narrative := []string{}
		for _, line := range strings.Split(text, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				narrative = append(narrative, line)
			}
		}
		chapters = append(chapters, models.Chapter{Title: "Chapter 1", Narrative: strings.Join(narrative, "\n")})
	}
	return chapters
}

// ValidChapters drops chapters without a title and narrative
func ValidChapters(chapters []models.Chapter) []models.Chapter {
	result := []models.Chapter{}
	for _, c := range chapters {
		c.Title = strings.TrimSpace(c.Title)
		if c.Title == "" && strings.TrimSpace(c.Narrative) == "" {
			continue
		}
		result = append(result, c)
	}
	return result
}
