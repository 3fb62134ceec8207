// Package suggest scores photos against a memory's text to propose links
package suggest

import (
	"circle/models"
	"fmt"
	"sort"
	"strings"
)

const (
	DefaultThreshold    = 50
	DefaultAllThreshold = 70
)

type Match struct {
	Score   int
	Reasons []string
}

type Suggestion struct {
	models.MediaInfo
	Score       int    `json:"score"`
	MatchReason string `json:"match_reason"`
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}

func known(year *int) bool {
	return year != nil && *year != 0
}

// Score rates how well a photo's title, description and year fit the memory, 0..100
func Score(memoryText string, memoryYear *int, title, description string, photoYear *int) Match {
	score := 0
	reasons := []string{}
	title = strings.ToLower(title)
	photoText := strings.TrimSpace(title + " " + strings.ToLower(description))
	memoryLower := strings.ToLower(memoryText)

	// Year
	yearsKnown := known(memoryYear) && known(photoYear)
	yearDiff := 0
	if yearsKnown {
		mem, photo := *memoryYear, *photoYear
		yearDiff = abs(mem - photo)
		switch {
		case yearDiff == 0:
			score += 30
			reasons = append(reasons, fmt.Sprintf("Exact year match: %d", mem))
		case yearDiff <= 1:
			score += 25
			reasons = append(reasons, fmt.Sprintf("Year within 1: %d vs %d", mem, photo))
		case yearDiff <= 2:
			score += 20
			reasons = append(reasons, fmt.Sprintf("Year within 2: %d vs %d", mem, photo))
		case yearDiff <= 5:
			score += 10
			reasons = append(reasons, fmt.Sprintf("Year within 5: %d vs %d", mem, photo))
		}
	}

	// What the memory says is in the photo
	descriptions := VisualDescriptions(memoryText)
	descScore := 0
	matched := []string{}
	for _, desc := range descriptions {
		matches := 0
		for _, w := range strings.Fields(desc) {
			if len(w) > 3 && strings.Contains(photoText, w) {
				matches++
			}
		}
		if matches >= 2 {
			descScore += min(15, matches*5)
			matched = append(matched, truncate(desc, 50))
		}
	}
	if len(matched) > 0 {
		score += min(40, descScore)
		reasons = append(reasons, "Visual match: "+matched[0]+"...")
	}

	// Title phrases
	if len(title) > 10 {
		if strings.Contains(memoryLower, title) {
			score += 35
			reasons = append(reasons, fmt.Sprintf("Exact title in text: '%s'", title))
		} else {
			words := strings.Fields(title)
			for i := 0; i+3 <= len(words); i++ {
				phrase := strings.Join(words[i:i+3], " ")
				if len(phrase) > 10 && strings.Contains(memoryLower, phrase) {
					score += 25
					reasons = append(reasons, fmt.Sprintf("Strong phrase match: '%s'", phrase))
					break
				}
			}
		}
	}

	// Names
	names := []string{}
	for _, name := range Names(memoryText) {
		if strings.Contains(photoText, strings.ToLower(name)) {
			names = append(names, name)
		}
	}
	switch {
	case len(names) >= 3:
		score += 25
		reasons = append(reasons, "Multiple names: "+strings.Join(names[:3], ", "))
	case len(names) == 2:
		score += 20
		reasons = append(reasons, "Two names: "+strings.Join(names, ", "))
	case len(names) == 1:
		score += 15
		reasons = append(reasons, "Name: "+names[0])
	}

	// Keywords
	keywords := Keywords(memoryText)
	if len(keywords) > 15 {
		keywords = keywords[:15]
	}
	matchedKeywords := []string{}
	for _, k := range keywords {
		if strings.Contains(photoText, k) {
			matchedKeywords = append(matchedKeywords, k)
		}
	}
	if len(matchedKeywords) > 0 {
		score += min(15, len(matchedKeywords)*3)
		if len(matchedKeywords) > 3 {
			reasons = append(reasons, "Keywords: "+strings.Join(matchedKeywords[:3], ", ")+"...")
		}
	}

	// Several independent signals agreeing
	signals := 0
	if len(names) > 0 {
		signals++
	}
	if visualWordIn(descriptions, photoText) {
		signals++
	}
	if yearsKnown && yearDiff <= 2 {
		signals++
	}
	if signals >= 3 {
		score += 10
		reasons = append(reasons, "Strong combined match")
	}

	return Match{Score: min(100, score), Reasons: reasons}
}

func visualWordIn(descriptions []string, photoText string) bool {
	for _, desc := range descriptions {
		for _, w := range strings.Fields(desc) {
			if len(w) > 4 && strings.Contains(photoText, w) {
				return true
			}
		}
	}
	return false
}

// ForMemory returns the photos scoring at least threshold, best first
func ForMemory(memory *models.Memory, photos []models.Media, threshold int) []Suggestion {
	result := []Suggestion{}
	for i := range photos {
		photo := &photos[i]
		match := Score(memory.Text, memory.Year, photo.Title, photo.Description, photo.Year)
		if match.Score < threshold {
			continue
		}
		reason := "Potential match"
		if len(match.Reasons) > 0 {
			reason = strings.Join(match.Reasons, " | ")
		}
		result = append(result, Suggestion{
			MediaInfo:   photo.Info(),
			Score:       match.Score,
			MatchReason: reason,
		})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Score > result[j].Score
	})
	return result
}
