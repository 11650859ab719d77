package rank

import (
	"sort"

	"interndesk/internal/domain"
)

// MaxResults caps how many recommendations are returned. Existing clients rely on it.
const MaxResults = 5

// Result is the view of one recommended internship sent to clients.
type Result struct {
	ID            string   `json:"_id"`
	Title         string   `json:"title"`
	Company       string   `json:"company"`
	Location      string   `json:"location"`
	Stipend       string   `json:"stipend"`
	ApplyLink     string   `json:"applyLink"`
	SkillsMatched []string `json:"skillsMatched"`
	MatchScore    int      `json:"matchScore"`
}

// Engine ranks a catalog against one user's skills. The zero value uses SkillScorer.
type Engine struct {
	Scorer Scorer
	Limit  int
}

// Recommend ranks internships with the default engine.
func Recommend(userSkills []string, internships []domain.Internship) []Result {
	return Engine{}.Recommend(userSkills, internships)
}

// Recommend scores every internship, orders by score (input order among ties)
// and keeps the best Limit. Inputs are only read.
func (e Engine) Recommend(userSkills []string, internships []domain.Internship) []Result {
	scorer := e.Scorer
	if scorer == nil {
		scorer = SkillScorer{}
	}
	limit := e.Limit
	if limit <= 0 || limit > MaxResults {
		limit = MaxResults
	}

	user := NewSkillSet(userSkills)
	out := make([]Result, 0, len(internships))
	for _, in := range internships {
		score, matched := scorer.Score(user, in)
		out = append(out, project(in, clamp(score), matched))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MatchScore > out[j].MatchScore
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func project(in domain.Internship, score int, matched []string) Result {
	if matched == nil {
		matched = []string{}
	}
	return Result{
		ID:            in.ID,
		Title:         in.Program,
		Company:       in.Organization,
		Location:      in.Location,
		Stipend:       in.Stipend,
		ApplyLink:     in.ApplyLink,
		SkillsMatched: matched,
		MatchScore:    score,
	}
}

func clamp(score int) int {
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	}
	return score
}
