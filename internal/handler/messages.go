package handler

import (
	"net/http"

	"github.com/quiniela/platform/internal/service"
)

// MessageHandler serves the messages left by jornada winners.
type MessageHandler struct {
	messages *service.WinnerMessageService
}

// NewMessageHandler creates a MessageHandler.
func NewMessageHandler(messages *service.WinnerMessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

type postMessageRequest struct {
	TournamentID int64  `json:"tournament_id"`
	Jornada      int    `json:"jornada"`
	Message      string `json:"message"`
}

// List handles GET /standings/messages?tournament_id.
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := RequiredQueryInt64(r, "tournament_id")
	if err != nil {
		RespondError(w, err)
		return
	}
	msgs, err := h.messages.ListWinnerMessages(r.Context(), tournamentID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, msgs)
}

// Post handles POST /standings/messages. Only the jornada's winner may post,
// once.
func (h *MessageHandler) Post(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())

	var input postMessageRequest
	if err := DecodeBody(r, &input); err != nil {
		RespondError(w, err)
		return
	}

	msg, err := h.messages.PostWinnerMessage(r.Context(), user.ID, input.TournamentID, input.Jornada, input.Message)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, msg)
}
