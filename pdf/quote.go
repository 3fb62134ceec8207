package pdf

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var sentenceEnd = regexp.MustCompile(`[.!?]+`)

var quoteWords = []string{
	"strangl", "murder", "petrified", "furious", "gob smacked", "gobsmacked",
	"loved", "remember", "laughed", "excited", "amazing", "stunned", "shocked",
	"bloody", "banned", "arrested", "disaster",
	"incredible", "magnificent", "wonderful", "terrible", "dreadful",
}

var firstPerson = []string{" i ", "i'd", "i've", "i'm", "my "}

// PullQuote picks the most striking sentence of the text, or "" when none fits
func PullQuote(text string) string {
	sentences := sentenceEnd.Split(text, -1)
	best, bestScore := "", 0
	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if n := utf8.RuneCountInString(sentence); n < 15 || n > 150 {
			continue
		}
		lower := strings.ToLower(sentence)
		score := 0
		for _, w := range quoteWords {
			if strings.Contains(lower, w) {
				score += 10
			}
		}
		if strings.Contains(sentence, `"`) {
			score += 5
		}
		for _, w := range firstPerson {
			if strings.Contains(lower, w) {
				score += 2
				break
			}
		}
		if score > bestScore {
			best, bestScore = strings.ReplaceAll(strings.ReplaceAll(sentence, `"`, ""), "  ", " "), score
		}
	}
	if bestScore >= 5 {
		return best
	}
	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if n := utf8.RuneCountInString(sentence); n > 30 && n < 120 {
			return strings.ReplaceAll(sentence, `"`, "")
		}
	}
	return ""
}
