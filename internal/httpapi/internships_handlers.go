package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"interndesk/internal/domain"
	"interndesk/internal/events"
	"interndesk/internal/logging"
	"interndesk/internal/metrics"
	"interndesk/internal/store"
	"interndesk/internal/validation"
)

type InternshipsHandler struct {
	Store Store
	Hub   *events.Hub
}

type createInternshipReq struct {
	Program      string    `json:"program" validate:"required,max=200"`
	Organization string    `json:"organization" validate:"required,max=200"`
	ApplyLink    string    `json:"applyLink" validate:"required,url"`
	Location     string    `json:"location" validate:"required,max=200"`
	Stipend      string    `json:"stipend" validate:"max=100"`
	Skills       skillList `json:"skills" validate:"max=50"`
}

type statusReq struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected"`
}

// publicInternship is a listing as anonymous callers see it: no applicant or creator ids.
type publicInternship struct {
	ID           string        `json:"_id"`
	Program      string        `json:"program"`
	Organization string        `json:"organization"`
	ApplyLink    string        `json:"applyLink"`
	Location     string        `json:"location"`
	Stipend      string        `json:"stipend"`
	Skills       []string      `json:"skills"`
	Status       domain.Status `json:"status"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

func public(in domain.Internship) publicInternship {
	return publicInternship{
		ID:           in.ID,
		Program:      in.Program,
		Organization: in.Organization,
		ApplyLink:    in.ApplyLink,
		Location:     in.Location,
		Stipend:      in.Stipend,
		Skills:       in.Skills,
		Status:       in.Status,
		CreatedAt:    in.CreatedAt,
		UpdatedAt:    in.UpdatedAt,
	}
}

// adminInternship is a listing with its applicants expanded.
type adminInternship struct {
	ID           string             `json:"_id"`
	Program      string             `json:"program"`
	Organization string             `json:"organization"`
	ApplyLink    string             `json:"applyLink"`
	Location     string             `json:"location"`
	Stipend      string             `json:"stipend"`
	Skills       []string           `json:"skills"`
	Status       domain.Status      `json:"status"`
	CreatedBy    string             `json:"createdBy,omitempty"`
	AppliedBy    []domain.Applicant `json:"appliedBy"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

func expand(in domain.Internship, applicants []domain.Applicant) adminInternship {
	return adminInternship{
		ID:           in.ID,
		Program:      in.Program,
		Organization: in.Organization,
		ApplyLink:    in.ApplyLink,
		Location:     in.Location,
		Stipend:      in.Stipend,
		Skills:       in.Skills,
		Status:       in.Status,
		CreatedBy:    in.CreatedBy,
		AppliedBy:    applicants,
		CreatedAt:    in.CreatedAt,
		UpdatedAt:    in.UpdatedAt,
	}
}

// List returns the approved catalog. Public.
func (h InternshipsHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Store.ListInternships(r.Context(), store.ListInternshipsOpts{
		Status:         domain.StatusApproved,
		SkipApplicants: true,
	})
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("list internships failed")
		writeMessage(w, http.StatusInternalServerError, "Server Error")
		return
	}
	out := make([]publicInternship, 0, len(list))
	for _, in := range list {
		out = append(out, public(in))
	}
	writeJSON(w, out)
}

func (h InternshipsHandler) Applied(w http.ResponseWriter, r *http.Request) {
	list, err := h.Store.ListInternships(r.Context(), store.ListInternshipsOpts{AppliedBy: callerID(r)})
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("list applied internships failed")
		writeMessage(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, list)
}

func (h InternshipsHandler) Apply(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	userID := callerID(r)

	err := h.Store.Apply(r.Context(), id, userID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "Internship not found")
		return
	case errors.Is(err, store.ErrDuplicate):
		writeMessage(w, http.StatusBadRequest, "You have already applied")
		return
	case err != nil:
		logging.Ctx(r.Context()).Error().Err(err).Str("internship_id", id).Msg("apply failed")
		writeMessage(w, http.StatusInternalServerError, "Server error")
		return
	}

	metrics.Applications.Inc()
	h.Hub.Publish(events.MakeEvent(RequestIDFrom(r.Context()), events.TypeInternshipApplied, 1,
		map[string]string{"internshipId": id, "userId": userID}))
	writeMessage(w, http.StatusOK, "Application successful")
}

// All returns every listing, any status, with applicant details. Admin only.
func (h InternshipsHandler) All(w http.ResponseWriter, r *http.Request) {
	list, err := h.Store.ListInternships(r.Context(), store.ListInternshipsOpts{})
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("list all internships failed")
		writeMessage(w, http.StatusInternalServerError, "Server Error")
		return
	}

	out := make([]adminInternship, 0, len(list))
	for _, in := range list {
		applicants := []domain.Applicant{}
		if len(in.AppliedBy) > 0 {
			applicants, err = h.Store.ListApplicants(r.Context(), in.ID)
			if err != nil {
				logging.Ctx(r.Context()).Error().Err(err).Str("internship_id", in.ID).Msg("list applicants failed")
				writeMessage(w, http.StatusInternalServerError, "Server Error")
				return
			}
		}
		out = append(out, expand(in, applicants))
	}
	writeJSON(w, out)
}

func (h InternshipsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createInternshipReq
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Program = strings.TrimSpace(req.Program)
	req.Organization = strings.TrimSpace(req.Organization)
	req.ApplyLink = strings.TrimSpace(req.ApplyLink)
	req.Location = strings.TrimSpace(req.Location)
	if err := validation.ValidateStruct(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	in, err := h.Store.CreateInternship(r.Context(), domain.Internship{
		Program:      req.Program,
		Organization: req.Organization,
		ApplyLink:    req.ApplyLink,
		Location:     req.Location,
		Stipend:      strings.TrimSpace(req.Stipend),
		Skills:       []string(req.Skills),
		Status:       domain.StatusPending,
		CreatedBy:    callerID(r),
	})
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("create internship failed")
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.Hub.Publish(events.MakeEvent(RequestIDFrom(r.Context()), events.TypeInternshipCreated, 1,
		map[string]string{"id": in.ID}))
	WriteJSON(w, http.StatusCreated, in)
}

func (h InternshipsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusReq
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	id := r.PathValue("id")
	in, err := h.Store.UpdateInternshipStatus(r.Context(), id, domain.Status(req.Status))
	if errors.Is(err, store.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "Internship not found")
		return
	}
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("internship_id", id).Msg("update status failed")
		writeMessage(w, http.StatusInternalServerError, "Failed to update status")
		return
	}

	h.Hub.Publish(events.MakeEvent(RequestIDFrom(r.Context()), events.TypeInternshipStatus, 1,
		map[string]string{"id": in.ID, "status": string(in.Status)}))
	writeJSON(w, in)
}

func (h InternshipsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	err := h.Store.DeleteInternship(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "Internship not found")
		return
	}
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("internship_id", id).Msg("delete failed")
		writeMessage(w, http.StatusInternalServerError, "Failed to delete internship")
		return
	}

	h.Hub.Publish(events.MakeEvent(RequestIDFrom(r.Context()), events.TypeInternshipDeleted, 1,
		map[string]string{"id": id}))
	writeMessage(w, http.StatusOK, "Internship deleted successfully")
}
