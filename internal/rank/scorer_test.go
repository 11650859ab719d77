package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentRoundsHalfUp(t *testing.T) {
	tests := []struct {
		name           string
		overlap, total int
		want           int
	}{
		{name: "one eighth is 12.5", overlap: 1, total: 8, want: 13},
		{name: "three eighths is 37.5", overlap: 3, total: 8, want: 38},
		{name: "five eighths is 62.5", overlap: 5, total: 8, want: 63},
		{name: "one of 200 is 0.5", overlap: 1, total: 200, want: 1},
		{name: "two thirds", overlap: 2, total: 3, want: 67},
		{name: "one third", overlap: 1, total: 3, want: 33},
		{name: "half", overlap: 1, total: 2, want: 50},
		{name: "full", overlap: 4, total: 4, want: 100},
		{name: "none", overlap: 0, total: 4, want: 0},
		{name: "no skills", overlap: 0, total: 0, want: 0},
		{name: "overlap above total is capped", overlap: 5, total: 3, want: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, percent(tt.overlap, tt.total))
		})
	}
}

func TestSkillScorer(t *testing.T) {
	user := NewSkillSet([]string{"Go", "Docker"})

	score, matched := SkillScorer{}.Score(user, internship("a", "go", "kubernetes", "DOCKER", "aws"))

	assert.Equal(t, 50, score)
	assert.Equal(t, []string{"go", "DOCKER"}, matched)
}

func TestSkillSetHas(t *testing.T) {
	set := NewSkillSet([]string{"Python", "python", "SQL"})
	assert.Len(t, set, 2)
	assert.True(t, set.Has("PYTHON"))
	assert.True(t, set.Has("sql"))
	assert.False(t, set.Has("excel"))
}
