// Package search finds memories matching a natural language question
package search

import (
	"circle/models"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

const (
	Threshold  = 10.0
	MaxResults = 10
	maxNameLen = 4 // words
)

var stopWords = map[string]bool{
	"who": true, "what": true, "when": true, "where": true, "why": true, "how": true,
	"was": true, "is": true, "are": true, "were": true, "did": true, "do": true, "does": true,
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true, "in": true, "on": true,
	"at": true, "to": true, "for": true, "of": true, "with": true, "by": true, "about": true,
}

var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`who was ([\p{L}\p{N}_\s]+?)\??$`),
	regexp.MustCompile(`who is ([\p{L}\p{N}_\s]+?)\??$`),
	regexp.MustCompile(`about ([\p{L}\p{N}_\s]+?)\??$`),
}

type Result struct {
	ID             uint64   `json:"id"`
	Text           string   `json:"text"`
	Category       string   `json:"category"`
	Date           *string  `json:"date"`
	Year           *int     `json:"year"`
	People         []string `json:"people"`
	RelevanceScore float64  `json:"relevance_score"`
}

func resultFrom(m *models.Memory, score float64) Result {
	return Result{
		ID:             m.ID,
		Text:           m.Text,
		Category:       m.Category,
		Date:           m.MemoryDate,
		Year:           m.Year,
		People:         m.PeopleList(),
		RelevanceScore: math.Round(score*100) / 100,
	}
}

// ExtractNames finds the person asked about in questions like "Who was Peter Elgar?"
func ExtractNames(query string) []string {
	names := []string{}
	lower := strings.ToLower(strings.TrimSpace(query))
	for _, pattern := range namePatterns {
		match := pattern.FindStringSubmatch(lower)
		if match == nil {
			continue
		}
		name := strings.TrimSpace(match[1])
		if name != "" && len(strings.Fields(name)) <= maxNameLen {
			names = append(names, name)
		}
	}
	return names
}

// queryWords are the lower cased query words without stop words and surrounding punctuation
func queryWords(query string) []string {
	words := []string{}
	for _, w := range strings.Fields(strings.ToLower(query)) {
		w = strings.TrimFunc(w, func(r rune) bool { return unicode.IsPunct(r) })
		if w != "" && !stopWords[w] {
			words = append(words, w)
		}
	}
	return words
}

// Relevance scores text against the query, 0..100
func Relevance(text, query string, names []string) float64 {
	score := 0.0
	text = strings.ToLower(text)
	query = strings.ToLower(strings.TrimSpace(query))

	if query != "" && strings.Contains(text, query) {
		score += 50
	}
	for _, name := range names {
		if strings.Contains(text, strings.ToLower(name)) {
			score += 40
		}
	}
	words := queryWords(query)
	matches := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			matches++
		}
	}
	if matches > 0 {
		score += float64(matches) / float64(len(words)) * 30
	}
	return math.Min(score, 100)
}

// Smart returns the best matching memories, most relevant first
func Smart(memories []models.Memory, query string) []Result {
	names := ExtractNames(query)
	results := []Result{}
	for i := range memories {
		m := &memories[i]
		text := m.Text
		if m.People != "" {
			text += " " + m.People
		}
		if score := Relevance(text, query, names); score >= Threshold {
			results = append(results, resultFrom(m, score))
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RelevanceScore > results[j].RelevanceScore
	})
	if len(results) > MaxResults {
		results = results[:MaxResults]
	}
	return results
}
