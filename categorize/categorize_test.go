package categorize

import (
	"circle/ai"
	"circle/config"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubCompleter struct {
	reply string
	err   error
	got   ai.Request
}

func (s *stubCompleter) Complete(_ context.Context, req ai.Request) (string, error) {
	s.got = req
	return s.reply, s.err
}

func withDeepSeek(t *testing.T, c ai.Completer) {
	t.Helper()
	previous := ai.DeepSeek
	ai.DeepSeek = c
	t.Cleanup(func() { ai.DeepSeek = previous })
}

func intPtr(i int) *int { return &i }

func TestByKeywords(t *testing.T) {
	tests := []struct {
		name string
		text string
		age  *int
		want string
	}{
		{"music", "We had a gig with the band and I played bass", nil, Music},
		{"work", "I worked at the petrol garage, my boss was kind", nil, Work},
		{"education", "My teacher at school made the exam easy", nil, Education},
		{"military", "I joined the army and my regiment was deployed", nil, Military},
		{"travel", "Our holiday trip abroad", nil, Travel},
		{"nothing", "A quiet afternoon", nil, Other},
		{"childhood words", "I was just a kid then", intPtr(8), Childhood},
		{"teenage words", "First year at secondary", intPtr(15), Teenage},
		{"age default child", "A quiet afternoon", intPtr(5), Childhood},
		{"age default teen", "A quiet afternoon", intPtr(17), Teenage},
		{"age default adult", "A quiet afternoon", intPtr(40), AdultLife},
		{"age default later", "A quiet afternoon", intPtr(70), LaterLife},
		{"keywords beat age default", "We went fishing every sunday", intPtr(40), Hobbies},
		// tie between family and life-event goes to family
		{"tie", "The baby was born", nil, Family},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ByKeywords(tt.text, tt.age))
		})
	}
}

func TestCategorizeWithAI(t *testing.T) {
	config.BIRTH_YEAR = 1955
	stub := &stubCompleter{reply: " Music\n"}
	withDeepSeek(t, stub)

	assert.Equal(t, Music, Categorize(context.Background(), "Something happened", intPtr(1975)))
	assert.Contains(t, stub.got.Prompt, "The person was 20 years old in 1975. ")
	assert.Contains(t, stub.got.Prompt, `Memory: "Something happened"`)
	assert.Equal(t, 20, stub.got.MaxTokens)
	assert.Equal(t, 0.3, stub.got.Temperature)
}

func TestCategorizeFallsBack(t *testing.T) {
	t.Run("unknown category", func(t *testing.T) {
		withDeepSeek(t, &stubCompleter{reply: "sports and games"})
		assert.Equal(t, Work, Categorize(context.Background(), "My first job in an office", nil))
	})
	t.Run("error", func(t *testing.T) {
		withDeepSeek(t, &stubCompleter{err: errors.New("timeout")})
		assert.Equal(t, Work, Categorize(context.Background(), "My first job in an office", nil))
	})
	t.Run("not configured", func(t *testing.T) {
		withDeepSeek(t, nil)
		assert.Equal(t, Other, Categorize(context.Background(), "A quiet afternoon", nil))
	})
}
