package search

import (
	"circle/ai"
	"circle/models"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	maxContextMemories = 30
	maxSupporting      = 3
	maxFallback        = 5
	aiTimeout          = 60 * time.Second
)

const answerSystemPrompt = `You are a family memory expert.
Answer questions based ONLY on the provided family memories.
If the information isn't in the memories, say so clearly.

IMPORTANT: Be specific and direct. If asked "Where was [person] born?"
and you find "He was born in London" in the memories, answer "London".

Format your response as JSON:
{
    "answer": "direct answer to the question",
    "supporting_memory_ids": [list of memory IDs that support the answer],
    "confidence": 0.0 to 1.0,
    "direct_answer": true/false
}`

const maxLocationRunes = 50

// Checked in order, the location runs to the end of the sentence
var birthPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)born in([^.]*)(\.?)`),
	regexp.MustCompile(`(?i)born at([^.]*)(\.?)`),
	regexp.MustCompile(`(?i)birthplace([^.]*)(\.?)`),
}

type Answer struct {
	Answer       string   `json:"answer"`
	Confidence   float64  `json:"confidence"`
	Memories     []Result `json:"memories"`
	DirectAnswer bool     `json:"direct_answer"`
	AIGenerated  bool     `json:"ai_generated"`
}

type aiReply struct {
	Answer              string   `json:"answer"`
	SupportingMemoryIDs []uint64 `json:"supporting_memory_ids"`
	Confidence          float64  `json:"confidence"`
	DirectAnswer        bool     `json:"direct_answer"`
}

// Ask answers the question with the model when given one, otherwise (or when
// the model fails) from the smart search results
func Ask(ctx context.Context, model ai.Completer, memories []models.Memory, query string) Answer {
	if len(memories) == 0 {
		return Answer{Answer: "No family memories found yet.", Memories: []Result{}}
	}
	if model != nil {
		answer, err := askModel(ctx, model, memories, query)
		if err == nil {
			return answer
		}
		zap.S().Warnf("AI search error, falling back to smart search: %v", err)
	}
	return fallback(memories, query)
}

func memoryContext(memories []models.Memory) string {
	lines := []string{}
	for i := range memories {
		if i == maxContextMemories {
			break
		}
		m := &memories[i]
		line := fmt.Sprintf("[Memory ID: %d] %s", m.ID, m.Text)
		if date := m.DisplayDate(); date != "" {
			line += " (Date: " + date + ")"
		}
		if people := m.PeopleList(); len(people) > 0 {
			line += " [People: " + strings.Join(people, ", ") + "]"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n\n")
}

func askModel(ctx context.Context, model ai.Completer, memories []models.Memory, query string) (Answer, error) {
	ctx, cancel := context.WithTimeout(ctx, aiTimeout)
	defer cancel()

	prompt := "Family Memories:\n" + memoryContext(memories) +
		"\n\nQuestion: " + query +
		"\n\nAnswer based ONLY on the memories above. Be specific and direct."
	text, err := model.Complete(ctx, ai.Request{
		System:      answerSystemPrompt,
		Prompt:      prompt,
		MaxTokens:   1000,
		Temperature: 0.1,
		JSON:        true,
	})
	if err != nil {
		return Answer{}, err
	}
	// Claude has no JSON mode and may wrap the object in prose
	raw := ai.ExtractJSON(text)
	if raw == "" {
		return Answer{}, errors.New("no JSON in reply")
	}
	reply := aiReply{}
	if err = json.Unmarshal([]byte(raw), &reply); err != nil {
		return Answer{}, fmt.Errorf("decoding reply: %w", err)
	}

	byID := map[uint64]*models.Memory{}
	for i := range memories {
		byID[memories[i].ID] = &memories[i]
	}
	supporting := []Result{}
	for _, id := range reply.SupportingMemoryIDs {
		if len(supporting) == maxSupporting {
			break
		}
		if m, ok := byID[id]; ok {
			supporting = append(supporting, resultFrom(m, 0))
		}
	}
	if reply.Answer == "" {
		reply.Answer = "I couldn't find that information in the family memories."
	}
	return Answer{
		Answer:       reply.Answer,
		Confidence:   reply.Confidence,
		Memories:     supporting,
		DirectAnswer: reply.DirectAnswer,
		AIGenerated:  true,
	}, nil
}

func fallback(memories []models.Memory, query string) Answer {
	results := Smart(memories, query)
	result := Answer{
		Confidence: math.Min(0.7, float64(len(results))/10),
		Memories:   results,
	}
	if len(results) > maxFallback {
		result.Memories = results[:maxFallback]
	}
	lower := strings.ToLower(query)
	if len(results) > 0 && strings.Contains(lower, "where") && strings.Contains(lower, "born") {
		if location := birthLocation(results[0].Text); location != "" {
			result.Answer = "According to family memories: " + location
			result.DirectAnswer = true
			return result
		}
	}
	result.Answer = fmt.Sprintf("I found %d relevant memories, but couldn't extract a direct answer. Try looking at the memories below.", len(results))
	return result
}

// birthLocation returns what follows "born in" up to the end of the sentence,
// or the next few words when there is no full stop
func birthLocation(text string) string {
	for _, re := range birthPatterns {
		match := re.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		location := match[1]
		if match[2] == "" {
			if runes := []rune(location); len(runes) > maxLocationRunes {
				location = string(runes[:maxLocationRunes])
			}
		}
		return strings.TrimSpace(location)
	}
	return ""
}
