package categorize

import (
	"circle/ai"
	"circle/config"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	Childhood = "childhood"
	Teenage   = "teenage"
	Education = "education"
	Work      = "work"
	Music     = "music"
	Family    = "family"
	Travel    = "travel"
	Military  = "military"
	Hobbies   = "hobbies"
	LifeEvent = "life-event"
	AdultLife = "adult-life"
	LaterLife = "later-life"
	Other     = "other"

	aiTimeout     = 20 * time.Second
	maxPromptText = 500
)

// Categories the AI is allowed to answer with
var Categories = []string{Childhood, Teenage, Education, Work, Music, Family, Travel, Military, Hobbies, LifeEvent, Other}

// AllCategories also includes the age based ones only the keyword scorer gives
func AllCategories() []string {
	return append(slices.Clone(Categories), AdultLife, LaterLife)
}

type keywordCategory struct {
	name     string
	keywords []string
}

// Ties go to the first category in this list
var keywordCategories = []keywordCategory{
	{Music, []string{"band", "bass", "guitar", "drums", "singer", "gig", "concert", "musician", "rehearsal"}},
	{Work, []string{"worked", "job", "career", "office", "boss", "colleague", "employed", "serving", "manager", "company", "garage", "petrol"}},
	{Education, []string{"school", "college", "university", "teacher", "student", "class", "exam", "degree", "studying"}},
	{Military, []string{"army", "navy", "air force", "military", "service", "soldier", "regiment", "deployed"}},
	{Family, []string{"mother", "father", "parent", "sibling", "daughter", "son", "wife", "husband", "born", "sister", "brother"}},
	{Travel, []string{"travel", "trip", "vacation", "holiday", "journey", "visited", "abroad"}},
	{Hobbies, []string{"hobby", "sport", "game", "fishing", "cycling", "running"}},
	{LifeEvent, []string{"born", "birth", "married", "wedding", "died", "funeral", "graduated"}},
}

var (
	childhoodWords = []string{"born", "baby", "child", "kid", "primary"}
	teenageWords   = []string{"teen", "secondary", "high school"}
)

// Categorize asks DeepSeek (when configured) and falls back to keyword matching
func Categorize(ctx context.Context, text string, year *int) string {
	age := ageIn(year)
	if ai.DeepSeek != nil {
		if category, err := categorizeAI(ctx, text, year, age); err == nil {
			return category
		} else {
			zap.S().Warnf("AI categorization failed: %v", err)
		}
	}
	return ByKeywords(text, age)
}

func ageIn(year *int) *int {
	if year == nil || config.BIRTH_YEAR == 0 {
		return nil
	}
	age := *year - config.BIRTH_YEAR
	return &age
}

func categorizeAI(ctx context.Context, text string, year, age *int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, aiTimeout)
	defer cancel()

	ageContext := ""
	if age != nil {
		ageContext = fmt.Sprintf("The person was %d years old in %d. ", *age, *year)
	}
	if runes := []rune(text); len(runes) > maxPromptText {
		text = string(runes[:maxPromptText])
	}
	prompt := ageContext + `Categorize this memory into ONE category. Choose the MOST appropriate:

Categories:
- childhood (ages 0-12)
- teenage (ages 13-19)
- education (school, college, university - any age)
- work (employment, jobs, career)
- music (bands, playing instruments, performances)
- family (family members, relationships)
- travel (trips, holidays, vacations)
- military (service, armed forces)
- hobbies (sports, games, pastimes)
- life-event (major milestones like birth, marriage)
- other (if none fit)

Memory: "` + text + `"

Respond with ONLY the category name, nothing else.`

	reply, err := ai.DeepSeek.Complete(ctx, ai.Request{Prompt: prompt, MaxTokens: 20, Temperature: 0.3})
	if err != nil {
		return "", err
	}
	category := strings.ToLower(strings.TrimSpace(reply))
	for _, c := range Categories {
		if c == category {
			return category, nil
		}
	}
	return "", fmt.Errorf("unexpected category %q", reply)
}

// ByKeywords picks a category from the age and keyword counts
func ByKeywords(text string, age *int) string {
	lower := strings.ToLower(text)
	if age != nil {
		if *age <= 12 && containsAny(lower, childhoodWords) {
			return Childhood
		}
		if *age >= 13 && *age <= 19 && containsAny(lower, teenageWords) {
			return Teenage
		}
	}

	best, bestScore := Other, 0
	for _, category := range keywordCategories {
		score := 0
		for _, keyword := range category.keywords {
			if strings.Contains(lower, keyword) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = category.name, score
		}
	}
	if bestScore > 0 || age == nil {
		return best
	}

	switch {
	case *age <= 12:
		return Childhood
	case *age <= 19:
		return Teenage
	case *age <= 65:
		return AdultLife
	default:
		return LaterLife
	}
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
