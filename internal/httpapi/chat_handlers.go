package httpapi

import (
	"errors"
	"net/http"

	"interndesk/internal/chat"
	"interndesk/internal/domain"
	"interndesk/internal/logging"
	"interndesk/internal/metrics"
)

type ChatHandler struct {
	Store     Store
	Assistant *chat.Assistant
}

type chatReq struct {
	Message             string         `json:"message"`
	ConversationHistory []chat.Message `json:"conversationHistory"`
}

func (h ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatReq
	if err := decodeJSON(r, &req); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	creq := chat.Request{Message: req.Message, History: req.ConversationHistory}
	if c, ok := ClaimsFrom(r.Context()); ok {
		u, err := h.Store.GetUser(r.Context(), c.ID)
		if err == nil {
			creq.User = &u
		} else {
			// fall back to what the token says about the caller
			creq.User = &domain.User{ID: c.ID, Email: c.Email, Role: c.Role}
		}
	}

	reply, err := h.Assistant.Reply(r.Context(), creq)
	if errors.Is(err, chat.ErrEmptyMessage) {
		WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "Message is required"})
		return
	}
	if err != nil {
		metrics.ChatReplies.WithLabelValues("error").Inc()
		logging.Ctx(r.Context()).Error().Err(err).Msg("chat failed")
		msg := "AI service temporarily unavailable. Please try again later."
		if chat.IsConfigError(err) {
			msg = "AI service configuration error"
		}
		WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": msg})
		return
	}

	metrics.ChatReplies.WithLabelValues("ok").Inc()
	writeJSON(w, map[string]string{"reply": reply})
}
