// Package chat answers assistant questions, using the catalog for platform
// questions and a Generator for everything else.
package chat

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"interndesk/internal/domain"
	"interndesk/internal/store"
)

const (
	defaultHistoryLimit = 5
	openListLimit       = 10

	fallbackReply   = "I apologize, but I couldn't generate a response. Please try again."
	noOpenReply     = "There are no open internships right now. Please check back later."
	loginReply      = "Please log in to view your applied internships."
	noAppliedReply  = "You haven't applied to any internships yet."
	defaultPersona  = "You are an AI Internship Recommendation Assistant helping a student."
	assistantPrompt = "You are a helpful and friendly AI assistant for an internship platform. " +
		"Your role is to help students find internships, provide career advice, and answer questions about the platform."
)

var (
	ErrEmptyMessage = errors.New("message is required")

	openIntent    = regexp.MustCompile(`\b(open|available|list|show)\b.*\b(internship|internships)\b`)
	appliedIntent = regexp.MustCompile(`(applied|applications)`)
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Request struct {
	Message string
	History []Message
	User    *domain.User // nil for anonymous callers
}

type Catalog interface {
	ListInternships(ctx context.Context, opts store.ListInternshipsOpts) ([]domain.Internship, error)
}

type Assistant struct {
	Catalog      Catalog
	Generator    Generator
	HistoryLimit int
}

// Reply answers one chat turn.
func (a *Assistant) Reply(ctx context.Context, req Request) (string, error) {
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		return "", ErrEmptyMessage
	}

	lower := strings.ToLower(msg)
	switch {
	case openIntent.MatchString(lower):
		return a.openInternships(ctx)
	case appliedIntent.MatchString(lower):
		return a.appliedInternships(ctx, req.User)
	}

	gen := a.Generator
	if gen == nil {
		gen = Unavailable{}
	}
	reply, err := gen.GenerateReply(ctx, a.prompt(req))
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(reply) == "" {
		return fallbackReply, nil
	}
	return reply, nil
}

func (a *Assistant) openInternships(ctx context.Context) (string, error) {
	list, err := a.Catalog.ListInternships(ctx, store.ListInternshipsOpts{
		Status: domain.StatusApproved,
		Limit:  openListLimit,
	})
	if err != nil {
		return "", fmt.Errorf("list open internships: %w", err)
	}
	if len(list) == 0 {
		return noOpenReply, nil
	}

	var b strings.Builder
	b.WriteString("Here are some open internships:\n")
	for i, in := range list {
		b.WriteString("\n" + listingLine(i, in))
		if in.ApplyLink != "" {
			b.WriteString("\n   Apply: " + in.ApplyLink)
		}
	}
	return b.String(), nil
}

func (a *Assistant) appliedInternships(ctx context.Context, u *domain.User) (string, error) {
	if u == nil {
		return loginReply, nil
	}
	list, err := a.Catalog.ListInternships(ctx, store.ListInternshipsOpts{AppliedBy: u.ID})
	if err != nil {
		return "", fmt.Errorf("list applied internships: %w", err)
	}
	if len(list) == 0 {
		return noAppliedReply, nil
	}

	var b strings.Builder
	b.WriteString("You have applied to:\n")
	for i, in := range list {
		b.WriteString("\n" + listingLine(i, in))
	}
	return b.String(), nil
}

func listingLine(i int, in domain.Internship) string {
	line := fmt.Sprintf("%d. %s - %s", i+1, in.Program, in.Organization)
	if in.Location != "" {
		line += " (" + in.Location + ")"
	}
	return line
}

func (a *Assistant) prompt(req Request) string {
	var b strings.Builder
	b.WriteString(profileContext(req.User))
	b.WriteString("\n\n")
	b.WriteString(assistantPrompt)
	b.WriteString("\n\n")

	if h := a.history(req.History); h != "" {
		b.WriteString("Previous conversation:\n")
		b.WriteString(h)
		b.WriteString("\n\n")
	}

	b.WriteString("Please respond to this question in a helpful, encouraging, and concise manner: ")
	b.WriteString(strings.TrimSpace(req.Message))
	b.WriteString("\n\nKeep your response under 300 words and be conversational and friendly.")
	return b.String()
}

func (a *Assistant) history(msgs []Message) string {
	limit := a.HistoryLimit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		who := "Assistant"
		if m.Role == "user" {
			who = "Student"
		}
		lines = append(lines, who+": "+m.Content)
	}
	return strings.Join(lines, "\n")
}

func profileContext(u *domain.User) string {
	if u == nil || (u.FullName == "" && u.Email == "") {
		return defaultPersona
	}
	name := u.FullName
	if name == "" {
		name = u.Email
	}
	degree := orDefault(u.Education.Degree, "student")
	university := orDefault(u.Education.University, "university")

	s := fmt.Sprintf("You are helping %s, a %s at %s. ", name, degree, university)
	if len(u.Skills) > 0 {
		s += "Their skills include: " + strings.Join(u.Skills, ", ") + ". "
	}
	if len(u.Experience) > 0 {
		parts := make([]string, 0, len(u.Experience))
		for _, e := range u.Experience {
			parts = append(parts, e.Title+" at "+e.Company)
		}
		s += "They have experience as: " + strings.Join(parts, ", ") + ". "
	}
	return strings.TrimSpace(s)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
