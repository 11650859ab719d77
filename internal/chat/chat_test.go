package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interndesk/internal/domain"
	"interndesk/internal/store"
)

type fakeGenerator struct {
	reply  string
	err    error
	prompt string
}

func (f *fakeGenerator) GenerateReply(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.reply, f.err
}

type fakeCatalog struct {
	items []domain.Internship
	opts  store.ListInternshipsOpts
	err   error
}

func (f *fakeCatalog) ListInternships(_ context.Context, opts store.ListInternshipsOpts) ([]domain.Internship, error) {
	f.opts = opts
	return f.items, f.err
}

func TestReplyRejectsEmptyMessage(t *testing.T) {
	a := &Assistant{Catalog: &fakeCatalog{}, Generator: &fakeGenerator{}}
	_, err := a.Reply(context.Background(), Request{Message: "   "})
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestReplyOpenInternshipsIntent(t *testing.T) {
	cat := &fakeCatalog{items: []domain.Internship{
		{Program: "Backend Intern", Organization: "Acme", Location: "Remote", ApplyLink: "https://acme.example"},
		{Program: "Data Intern", Organization: "Globex"},
	}}
	gen := &fakeGenerator{reply: "should not be called"}
	a := &Assistant{Catalog: cat, Generator: gen}

	reply, err := a.Reply(context.Background(), Request{Message: "Show me available internships"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, cat.opts.Status)
	assert.Equal(t, 10, cat.opts.Limit)
	assert.Contains(t, reply, "1. Backend Intern - Acme (Remote)")
	assert.Contains(t, reply, "Apply: https://acme.example")
	assert.Contains(t, reply, "2. Data Intern - Globex")
	assert.Empty(t, gen.prompt)

	cat.items = nil
	reply, err = a.Reply(context.Background(), Request{Message: "list internships"})
	require.NoError(t, err)
	assert.Equal(t, noOpenReply, reply)
}

func TestReplyAppliedIntent(t *testing.T) {
	cat := &fakeCatalog{items: []domain.Internship{{Program: "P", Organization: "O"}}}
	a := &Assistant{Catalog: cat, Generator: &fakeGenerator{}}

	reply, err := a.Reply(context.Background(), Request{Message: "what have I applied to?"})
	require.NoError(t, err)
	assert.Equal(t, loginReply, reply)

	u := &domain.User{ID: "u1"}
	reply, err = a.Reply(context.Background(), Request{Message: "my applications", User: u})
	require.NoError(t, err)
	assert.Equal(t, "u1", cat.opts.AppliedBy)
	assert.Contains(t, reply, "You have applied to:")
	assert.Contains(t, reply, "1. P - O")

	cat.items = nil
	reply, err = a.Reply(context.Background(), Request{Message: "my applications", User: u})
	require.NoError(t, err)
	assert.Equal(t, noAppliedReply, reply)
}

func TestReplyCatalogFailure(t *testing.T) {
	a := &Assistant{Catalog: &fakeCatalog{err: errors.New("db down")}}
	_, err := a.Reply(context.Background(), Request{Message: "show open internships"})
	assert.Error(t, err)
}

func TestReplyBuildsPrompt(t *testing.T) {
	gen := &fakeGenerator{reply: "Try the Acme internship!"}
	a := &Assistant{Catalog: &fakeCatalog{}, Generator: gen}

	var history []Message
	for i := 1; i <= 7; i++ {
		role := "user"
		if i%2 == 0 {
			role = "assistant"
		}
		history = append(history, Message{Role: role, Content: fmt.Sprintf("turn %d", i)})
	}
	u := &domain.User{
		FullName:   "Ada",
		Skills:     []string{"Go", "SQL"},
		Education:  domain.Education{Degree: "BSc", University: "MIT"},
		Experience: []domain.Experience{{Title: "Tutor", Company: "School"}},
	}

	reply, err := a.Reply(context.Background(), Request{Message: "How do I write a CV?", History: history, User: u})
	require.NoError(t, err)
	assert.Equal(t, "Try the Acme internship!", reply)

	p := gen.prompt
	assert.Contains(t, p, "You are helping Ada, a BSc at MIT.")
	assert.Contains(t, p, "Their skills include: Go, SQL.")
	assert.Contains(t, p, "They have experience as: Tutor at School.")
	assert.NotContains(t, p, "turn 2\n")
	assert.Contains(t, p, "Student: turn 3")
	assert.Contains(t, p, "Assistant: turn 4")
	assert.Contains(t, p, "Student: turn 7")
	assert.Contains(t, p, "How do I write a CV?")
}

func TestReplyAnonymousPersonaAndFallback(t *testing.T) {
	gen := &fakeGenerator{reply: "  "}
	a := &Assistant{Catalog: &fakeCatalog{}, Generator: gen}

	reply, err := a.Reply(context.Background(), Request{Message: "hello"})
	require.NoError(t, err)
	assert.Equal(t, fallbackReply, reply)
	assert.True(t, strings.HasPrefix(gen.prompt, defaultPersona))
	assert.NotContains(t, gen.prompt, "Previous conversation")
}

func TestReplyGeneratorErrors(t *testing.T) {
	a := &Assistant{Catalog: &fakeCatalog{}}
	_, err := a.Reply(context.Background(), Request{Message: "hello"})
	require.Error(t, err)
	assert.True(t, IsConfigError(err))

	a.Generator = &fakeGenerator{err: errors.New("API_KEY_INVALID")}
	_, err = a.Reply(context.Background(), Request{Message: "hello"})
	assert.True(t, IsConfigError(err))

	a.Generator = &fakeGenerator{err: errors.New("503 overloaded")}
	_, err = a.Reply(context.Background(), Request{Message: "hello"})
	require.Error(t, err)
	assert.False(t, IsConfigError(err))
}

func TestParseSuggestions(t *testing.T) {
	text := "Here you go:\n```json\n[{\"role\":\"SWE Intern\",\"company\":\"Acme\",\"skills\":[\"Go\"]}]\n```"
	got, err := parseSuggestions(text)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "SWE Intern", got[0].Role)
	assert.Equal(t, []string{"Go"}, got[0].Skills)

	_, err = parseSuggestions("no json here")
	assert.Error(t, err)
}

func TestSuggest(t *testing.T) {
	gen := &fakeGenerator{reply: `[{"role":"Data Intern","company":"Globex"}]`}
	u := domain.User{Skills: []string{"Python"}, Education: domain.Education{Degree: "BSc"}}

	got, err := Suggest(context.Background(), gen, u, "Remote", "ML")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Contains(t, gen.prompt, "Skills: Python")
	assert.Contains(t, gen.prompt, "Degree: BSc")

	_, err = Suggest(context.Background(), nil, u, "", "")
	assert.ErrorIs(t, err, ErrNoAPIKey)
}
