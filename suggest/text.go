package suggest

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

var (
	visualPatterns = []*regexp.Regexp{
		// "One shows my mother, aged 24, sitting on the grass"
		regexp.MustCompile(`(?i)(?:shows?|photographs?|images?|pictures?)\s+([^.]+?)(?:\.|In this)`),
		regexp.MustCompile(`(?i)(?:One|Another|This|The)\s+(?:shows?|photographs?|images?)\s+([^.]+?)(?:\.|,\s+(?:suggesting|which|and|behind))`),
		regexp.MustCompile(`(?i)In this\s+(?:image|photograph|photo),\s+([^.]+?)(?:\.|He appears|Given)`),
		// people doing things
		regexp.MustCompile(`([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)\s+(?:sitting|standing|holding|smiling|looking)`),
		regexp.MustCompile(`(?:sitting|standing|holding)\s+(?:with|on|in|beside|a)\s+([a-z\s]+?)(?:\.|,)`),
	}
	namePattern = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\b`)
	wordPattern = regexp.MustCompile(`\b\w+\b`)
)

var nameStopWords = toSet("The", "And", "Or", "But", "In", "On", "At", "To", "For", "From",
	"With", "This", "That", "These", "Those", "It", "He", "She", "They",
	"Mr", "Mrs", "Miss", "Ms", "Dr", "Battle", "Hastings", "London",
	"England", "UK", "USA", "World", "War", "Year", "Day", "Month",
	"One", "Another", "Behind", "Given", "Fast")

var keywordStopWords = toSet("the", "and", "or", "but", "in", "on", "at", "to", "for", "of", "with",
	"a", "an", "is", "was", "were", "are", "been", "be", "have", "has", "had",
	"do", "does", "did", "will", "would", "could", "should", "may", "might",
	"i", "you", "he", "she", "it", "we", "they", "my", "your", "his", "her",
	"its", "our", "their", "this", "that", "these", "those", "me", "him",
	"them", "what", "which", "who", "when", "where", "why", "how")

func toSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// VisualDescriptions finds phrases describing what is in a photo, lower cased
func VisualDescriptions(text string) []string {
	result := []string{}
	for _, pattern := range visualPatterns {
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			desc := strings.TrimSpace(match[1])
			if n := utf8.RuneCountInString(desc); n > 10 && n < 200 {
				result = append(result, strings.ToLower(desc))
			}
		}
	}
	return result
}

// Names returns capitalised word runs that look like names, first occurrence order
func Names(text string) []string {
	seen := map[string]bool{}
	names := []string{}
	for _, w := range namePattern.FindAllString(text, -1) {
		if nameStopWords[w] || len(w) <= 2 || seen[w] {
			continue
		}
		seen[w] = true
		names = append(names, w)
	}
	return names
}

// Keywords returns up to 30 of the most frequent words, ties in order of appearance
func Keywords(text string) []string {
	counts := map[string]int{}
	order := []string{}
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if keywordStopWords[w] || utf8.RuneCountInString(w) <= 3 {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > 30 {
		order = order[:30]
	}
	return order
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
