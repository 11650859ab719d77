package rank

import (
	"strings"

	"interndesk/internal/domain"
)

// SkillSet is a user's skills, lower-cased for comparison.
type SkillSet map[string]struct{}

func NewSkillSet(skills []string) SkillSet {
	set := make(SkillSet, len(skills))
	for _, s := range skills {
		set[strings.ToLower(s)] = struct{}{}
	}
	return set
}

func (s SkillSet) Has(skill string) bool {
	_, ok := s[strings.ToLower(skill)]
	return ok
}

type Scorer interface {
	Score(user SkillSet, in domain.Internship) (score int, matched []string)
}

// SkillScorer scores an internship by the share of its declared skills the user has.
// Every declared occurrence counts, so duplicate tokens on a listing weigh twice.
type SkillScorer struct{}

func (SkillScorer) Score(user SkillSet, in domain.Internship) (int, []string) {
	matched := make([]string, 0, len(in.Skills))
	for _, s := range in.Skills {
		if user.Has(s) {
			matched = append(matched, s)
		}
	}
	return percent(len(matched), len(in.Skills)), matched
}

// percent returns round-half-up(overlap/total*100) clamped to [0,100].
// A listing with no skills scores 0.
func percent(overlap, total int) int {
	if total <= 0 || overlap <= 0 {
		return 0
	}
	score := (overlap*200 + total) / (2 * total)
	if score > 100 {
		return 100
	}
	return score
}
