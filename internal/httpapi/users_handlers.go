package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"interndesk/internal/chat"
	"interndesk/internal/domain"
	"interndesk/internal/logging"
	"interndesk/internal/store"
)

type UsersHandler struct {
	Store     Store
	Generator chat.Generator
}

// skillList accepts either a JSON array or one comma-separated string.
type skillList []string

func (s *skillList) UnmarshalJSON(b []byte) error {
	var raw []string
	if len(b) > 0 && b[0] == '"' {
		var joined string
		if err := json.Unmarshal(b, &joined); err != nil {
			return err
		}
		raw = strings.Split(joined, ",")
	} else if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	*s = out
	return nil
}

type educationReq struct {
	University     *string `json:"university"`
	Degree         *string `json:"degree"`
	GraduationYear *int    `json:"graduationYear"`
}

type profileReq struct {
	FullName      *string              `json:"fullName"`
	Skills        *skillList           `json:"skills"`
	Education     *educationReq        `json:"education"`
	Experience    *[]domain.Experience `json:"experience"`
	PortfolioLink *string              `json:"portfolioLink"`
	ResumeLink    *string              `json:"resumeLink"`
}

func (p profileReq) update() store.ProfileUpdate {
	upd := store.ProfileUpdate{
		FullName:      p.FullName,
		PortfolioLink: p.PortfolioLink,
		ResumeLink:    p.ResumeLink,
	}
	if p.Skills != nil {
		upd.Skills, upd.SkillsSet = []string(*p.Skills), true
	}
	if e := p.Education; e != nil {
		upd.Education = &store.EducationUpdate{
			University:     e.University,
			Degree:         e.Degree,
			GraduationYear: e.GraduationYear,
		}
	}
	if p.Experience != nil {
		upd.Experience, upd.ExperienceSet = *p.Experience, true
	}
	return upd
}

// callerID is set by RequireAuth. An empty id means the route was wired without it.
func callerID(r *http.Request) string {
	c, _ := ClaimsFrom(r.Context())
	return c.ID
}

func (h UsersHandler) Profile(w http.ResponseWriter, r *http.Request) {
	u, err := h.Store.GetUser(r.Context(), callerID(r))
	if errors.Is(err, store.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("profile: load failed")
		writeMessage(w, http.StatusInternalServerError, "Server Error")
		return
	}
	writeJSON(w, u)
}

func (h UsersHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileReq
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	u, err := h.Store.UpdateProfile(r.Context(), callerID(r), req.update())
	if errors.Is(err, store.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("profile: update failed")
		writeMessage(w, http.StatusInternalServerError, "Server Error")
		return
	}
	writeJSON(w, u)
}

// AISuggestions asks the generator for internship ideas. Any AI failure yields [].
func (h UsersHandler) AISuggestions(w http.ResponseWriter, r *http.Request) {
	u, err := h.Store.GetUser(r.Context(), callerID(r))
	if errors.Is(err, store.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("ai-suggestions: load failed")
		writeMessage(w, http.StatusInternalServerError, "Server Error")
		return
	}

	q := r.URL.Query()
	out, err := chat.Suggest(r.Context(), h.Generator, u, q.Get("location"), q.Get("interests"))
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("ai-suggestions: generator failed")
		out = []chat.Suggestion{}
	}
	writeJSON(w, out)
}
