package suggest

import (
	"circle/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const carrycotMemory = "One shows my mother, aged 24, sitting on the grass beside a traditional carrycot. " +
	"Another photograph from the same period shows my mother standing with her sister-in-law, " +
	"Yvonne Stiles, each holding a baby of similar age."

const bandMemory = "Peter Elgar and Dave Jones played at the Rainbow with Susan Clark. The band was loud."

func year(y int) *int { return &y }

func TestVisualDescriptions(t *testing.T) {
	assert.Equal(t, []string{
		"my mother, aged 24, sitting on the grass beside a traditional carrycot",
		"from the same period shows my mother standing with her sister-in-law, yvonne stiles, each holding a baby of similar age",
		"my mother, aged 24, sitting on the grass beside a traditional carrycot",
		"from the same period shows my mother standing with her sister-in-law, yvonne stiles, each holding a baby of similar age",
		"the grass beside a traditional carrycot",
		"baby of similar age",
	}, VisualDescriptions(carrycotMemory))
	assert.Empty(t, VisualDescriptions(bandMemory))
}

func TestNamesAndKeywords(t *testing.T) {
	assert.Equal(t, []string{"Peter Elgar", "Dave Jones", "Rainbow", "Susan Clark"}, Names(bandMemory))
	assert.Equal(t, []string{"Yvonne Stiles"}, Names(carrycotMemory))

	keywords := Keywords(carrycotMemory)
	require.GreaterOrEqual(t, len(keywords), 15)
	assert.Equal(t, []string{
		"shows", "mother", "aged", "sitting", "grass", "beside", "traditional", "carrycot",
		"another", "photograph", "from", "same", "period", "standing", "sister",
	}, keywords[:15])
}

func TestScore(t *testing.T) {
	tests := []struct {
		name        string
		memory      string
		memoryYear  *int
		title       string
		description string
		photoYear   *int
		score       int
		reasons     []string
	}{
		{
			name:   "visual description",
			memory: carrycotMemory, memoryYear: year(1956),
			title: "Mother sitting on the grass", description: "My mother beside the carrycot", photoYear: year(1956),
			score: 100,
			reasons: []string{
				"Exact year match: 1956",
				"Visual match: my mother, aged 24, sitting on the grass beside a ...",
				"Strong phrase match: 'sitting on the'",
				"Keywords: mother, sitting, grass...",
			},
		},
		{
			name:   "names",
			memory: bandMemory, memoryYear: year(1974),
			title: "Gig photo", description: "peter elgar, dave jones and susan clark on stage", photoYear: year(1975),
			score: 65,
			reasons: []string{
				"Year within 1: 1974 vs 1975",
				"Multiple names: Peter Elgar, Dave Jones, Susan Clark",
				"Keywords: peter, elgar, dave...",
			},
		},
		{
			name:   "exact title",
			memory: bandMemory,
			title:  "the rainbow", description: "peter elgar",
			score:   64,
			reasons: []string{"Exact title in text: 'the rainbow'", "Two names: Peter Elgar, Rainbow"},
		},
		{
			name:   "unrelated",
			memory: bandMemory, memoryYear: year(1974),
			title: "Beach", photoYear: year(1990),
			score:   0,
			reasons: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match := Score(tt.memory, tt.memoryYear, tt.title, tt.description, tt.photoYear)
			assert.Equal(t, tt.score, match.Score)
			assert.Equal(t, tt.reasons, match.Reasons)
		})
	}
}

func TestScoreCombinedBonus(t *testing.T) {
	memory := "This photograph shows Alice Brown standing beside the lighthouse at dawn."
	match := Score(memory, year(1980), "Alice Brown", "lighthouse at dawn", year(1981))
	assert.Equal(t, 100, match.Score)
	assert.Equal(t, []string{
		"Year within 1: 1980 vs 1981",
		"Visual match: shows alice brown standing beside the lighthouse a...",
		"Exact title in text: 'alice brown'",
		"Name: Alice Brown",
		"Keywords: alice, brown, lighthouse...",
		"Strong combined match",
	}, match.Reasons)
}

func TestForMemory(t *testing.T) {
	memory := &models.Memory{ID: 1, Text: bandMemory, Year: year(1974)}
	photos := []models.Media{
		{ID: 10, Filename: "beach.jpg", Title: "Beach", Year: year(1990)},
		{ID: 11, Filename: "gig.jpg", Title: "Gig photo", Description: "peter elgar, dave jones and susan clark on stage", Year: year(1975)},
		{ID: 12, Filename: "rainbow.jpg", Title: "the rainbow", Description: "peter elgar"},
	}
	suggestions := ForMemory(memory, photos, 50)
	require.Len(t, suggestions, 2)
	assert.Equal(t, uint64(11), suggestions[0].ID)
	assert.Equal(t, 65, suggestions[0].Score)
	assert.Equal(t, "/uploads/gig.jpg", suggestions[0].URL)
	assert.Equal(t, "Year within 1: 1974 vs 1975 | Multiple names: Peter Elgar, Dave Jones, Susan Clark | Keywords: peter, elgar, dave...", suggestions[0].MatchReason)
	assert.Equal(t, uint64(12), suggestions[1].ID)

	assert.Empty(t, ForMemory(memory, photos, 70))
}
