package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/okian/cvscreen/internal/domain/model"
)

// ChatHandler serves the conversational screening endpoint.
type ChatHandler struct {
	chatter  Chatter
	maxBytes int64
	validate *validator.Validate
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(chatter Chatter, st Settings, validate *validator.Validate) *ChatHandler {
	maxChars := max(st.MaxCVLength, st.MaxJobLength)
	// UTF-8 runes take up to four bytes.
	return &ChatHandler{chatter: chatter, maxBytes: int64(maxChars)*4 + 1024, validate: validate}
}

type chatRequest struct {
	Content   string `json:"content" validate:"required"`
	Type      string `json:"message_type" validate:"omitempty,oneof=text file job"`
	FileName  string `json:"file_name" validate:"max=255"`
	SessionID string `json:"session_id" validate:"max=128"`
}

// HandleChat handles POST /api/chat requests. The session comes from the
// body or the session_id query parameter; a new one is assigned when both
// are empty.
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	const op = "api.chat"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.SessionID == "" {
		req.SessionID = r.URL.Query().Get("session_id")
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, structError(err)))
		return
	}

	reply, err := h.chatter.Chat(r.Context(), req.SessionID, model.ChatMessage{
		Content:  req.Content,
		Type:     req.Type,
		FileName: req.FileName,
	})
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

// structError reports the first failing field of a validated request.
func structError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return errMissing(fe.Field())
	case "oneof":
		return fmt.Errorf("%s must be one of: %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Errorf("%s exceeds %s characters", fe.Field(), fe.Param())
	}
	return fmt.Errorf("invalid %s: %w", fe.Field(), err)
}
