package api

import (
	"net/http"
	"time"

	"texttoner/internal/database"
	"texttoner/internal/tone"
)

type analyzeRequest struct {
	Text string `json:"text" validate:"required,min=1,max=2000"`
}

// handleAnalyze runs the tone analysis pipeline on the submitted text.
// The engine contract is total, so a well-formed analysis is always
// returned once validation passes.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow(clientKey(r)) {
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	var req analyzeRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := s.engine.Analyze(r.Context(), req.Text)
	writeJSON(w, http.StatusOK, result)
}

type createMessageRequest struct {
	Text    string  `json:"text" validate:"required,min=1,max=1000"`
	Context *string `json:"context"`
}

type messageResponse struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Text         string    `json:"text"`
	Context      *string   `json:"context,omitempty"`
	Tone         string    `json:"tone"`
	ImprovedText string    `json:"improved_text"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toMessageResponse(m *database.Message) messageResponse {
	return messageResponse{
		ID:           m.ID.String(),
		UserID:       m.UserID.String(),
		Text:         m.Text,
		Context:      m.Context,
		Tone:         m.Tone,
		ImprovedText: m.ImprovedText,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toMessageResponses(messages []database.Message) []messageResponse {
	out := make([]messageResponse, 0, len(messages))
	for i := range messages {
		out = append(out, toMessageResponse(&messages[i]))
	}
	return out
}

// handleCreateMessage analyzes the submitted text and stores it with the
// result.
func (s *Server) handleCreateMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	var req createMessageRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := s.engine.Analyze(ctx, req.Text)

	message, err := s.db.CreateMessage(ctx, database.CreateMessageParams{
		UserID:       user.ID,
		Text:         req.Text,
		Context:      req.Context,
		Tone:         string(result.Tone),
		ImprovedText: result.ImprovedText,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create message")
		return
	}

	writeJSON(w, http.StatusCreated, toMessageResponse(message))
}

// handleListMessages returns the current user's messages.
func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	limit := queryInt(r, "limit", 50, 1, 100)
	offset := queryInt(r, "offset", 0, 0, 1<<30)

	messages, err := s.db.ListUserMessages(r.Context(), user.ID, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}

	writeJSON(w, http.StatusOK, toMessageResponses(messages))
}

// handleGetMessage returns a single message owned by the current user.
func (s *Server) handleGetMessage(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	messageID, err := parsePathID(r, "messageID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid message ID")
		return
	}

	message, err := s.db.GetMessageByID(r.Context(), messageID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	if message == nil {
		writeError(w, http.StatusNotFound, "message not found")
		return
	}
	if message.UserID != user.ID {
		writeError(w, http.StatusForbidden, "access denied")
		return
	}

	writeJSON(w, http.StatusOK, toMessageResponse(message))
}

// handleListMessagesByTone returns the current user's messages with the
// given tone.
func (s *Server) handleListMessagesByTone(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	label, valid := tone.ParseLabel(r.PathValue("tone"))
	if !valid {
		writeError(w, http.StatusBadRequest, "unknown tone")
		return
	}

	limit := queryInt(r, "limit", 50, 1, 100)

	messages, err := s.db.ListUserMessagesByTone(r.Context(), user.ID, string(label), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}

	writeJSON(w, http.StatusOK, toMessageResponses(messages))
}

// handleSearchMessages searches the current user's messages by substring.
func (s *Server) handleSearchMessages(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}

	limit := queryInt(r, "limit", 20, 1, 50)

	messages, err := s.db.SearchUserMessages(r.Context(), user.ID, query, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to search messages")
		return
	}

	writeJSON(w, http.StatusOK, toMessageResponses(messages))
}

// handleDeleteMessage deletes a message owned by the current user.
func (s *Server) handleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	messageID, err := parsePathID(r, "messageID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid message ID")
		return
	}

	deleted, err := s.db.DeleteMessage(r.Context(), messageID, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete message")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "message not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "message deleted successfully"})
}

// handleUserStats returns message statistics for the current user.
func (s *Server) handleUserStats(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	stats, err := s.db.GetUserStats(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total_messages":     stats.TotalMessages,
		"most_common_tone":   stats.MostCommonTone,
		"tone_counts":        stats.ToneCounts,
		"messages_this_week": stats.MessagesThisWeek,
	})
}
