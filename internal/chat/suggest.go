package chat

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/goccy/go-json"

	"interndesk/internal/domain"
)

// Suggestion is a model-proposed internship idea. It is not a catalog entry.
type Suggestion struct {
	Role      string   `json:"role"`
	Company   string   `json:"company"`
	Location  string   `json:"location"`
	Skills    []string `json:"skills"`
	ApplyLink string   `json:"applyLink"`
}

var (
	fenceRe = regexp.MustCompile("(?i)```json|```")
	arrayRe = regexp.MustCompile(`(?s)\[.*\]`)
)

// Suggest asks the generator for 3 to 5 internship ideas matching u.
func Suggest(ctx context.Context, gen Generator, u domain.User, location, interests string) ([]Suggestion, error) {
	if gen == nil {
		return nil, ErrNoAPIKey
	}
	text, err := gen.GenerateReply(ctx, suggestionPrompt(u, location, interests))
	if err != nil {
		return nil, err
	}
	return parseSuggestions(text)
}

func suggestionPrompt(u domain.User, location, interests string) string {
	return fmt.Sprintf(`You are an AI career assistant. Based on the following student profile,
recommend 3-5 internships as a JSON array.
Each object must include:
role, company, location, skills, applyLink.

Degree: %s
Skills: %s
Location: %s
Interests: %s

Output format ONLY (no text outside JSON):

[
  {
    "role": "",
    "company": "",
    "location": "",
    "skills": [],
    "applyLink": ""
  }
]`, u.Education.Degree, strings.Join(u.Skills, ", "), location, interests)
}

func parseSuggestions(text string) ([]Suggestion, error) {
	text = strings.TrimSpace(fenceRe.ReplaceAllString(text, ""))
	if m := arrayRe.FindString(text); m != "" {
		text = m
	}
	var out []Suggestion
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("parse suggestions: %w", err)
	}
	if out == nil {
		out = []Suggestion{}
	}
	return out, nil
}
