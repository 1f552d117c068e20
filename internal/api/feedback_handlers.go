package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"texttoner/internal/database"
)

type createFeedbackRequest struct {
	MessageID             string  `json:"message_id" validate:"required,uuid"`
	ToneAccuracy          int     `json:"tone_accuracy" validate:"required,min=1,max=5"`
	SuggestionHelpfulness int     `json:"suggestion_helpfulness" validate:"required,min=1,max=5"`
	Comments              *string `json:"comments"`
}

type feedbackResponse struct {
	ID                    string    `json:"id"`
	MessageID             string    `json:"message_id"`
	UserID                string    `json:"user_id"`
	ToneAccuracy          int       `json:"tone_accuracy"`
	SuggestionHelpfulness int       `json:"suggestion_helpfulness"`
	Comments              *string   `json:"comments,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
}

func toFeedbackResponse(f *database.Feedback) feedbackResponse {
	return feedbackResponse{
		ID:                    f.ID.String(),
		MessageID:             f.MessageID.String(),
		UserID:                f.UserID.String(),
		ToneAccuracy:          f.ToneAccuracy,
		SuggestionHelpfulness: f.SuggestionHelpfulness,
		Comments:              f.Comments,
		CreatedAt:             f.CreatedAt,
	}
}

func toFeedbackResponses(items []database.Feedback) []feedbackResponse {
	out := make([]feedbackResponse, 0, len(items))
	for i := range items {
		out = append(out, toFeedbackResponse(&items[i]))
	}
	return out
}

// handleCreateFeedback records a rating for one of the current user's
// messages.
func (s *Server) handleCreateFeedback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	var req createFeedbackRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	messageID, err := uuid.Parse(req.MessageID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid message ID")
		return
	}

	message, err := s.db.GetMessageByID(ctx, messageID)
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

	feedback, err := s.db.CreateFeedback(ctx, database.CreateFeedbackParams{
		MessageID:             messageID,
		UserID:                user.ID,
		ToneAccuracy:          req.ToneAccuracy,
		SuggestionHelpfulness: req.SuggestionHelpfulness,
		Comments:              req.Comments,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create feedback")
		return
	}

	writeJSON(w, http.StatusCreated, toFeedbackResponse(feedback))
}

// handleGetFeedback returns a single feedback entry owned by the current
// user.
func (s *Server) handleGetFeedback(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	feedbackID, err := parsePathID(r, "feedbackID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid feedback ID")
		return
	}

	feedback, err := s.db.GetFeedbackByID(r.Context(), feedbackID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	if feedback == nil {
		writeError(w, http.StatusNotFound, "feedback not found")
		return
	}
	if feedback.UserID != user.ID {
		writeError(w, http.StatusForbidden, "access denied")
		return
	}

	writeJSON(w, http.StatusOK, toFeedbackResponse(feedback))
}

// handleListMessageFeedback returns all feedback for a message owned by the
// current user.
func (s *Server) handleListMessageFeedback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	messageID, err := parsePathID(r, "messageID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid message ID")
		return
	}

	message, err := s.db.GetMessageByID(ctx, messageID)
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

	items, err := s.db.ListMessageFeedback(ctx, messageID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list feedback")
		return
	}

	writeJSON(w, http.StatusOK, toFeedbackResponses(items))
}

// handleListUserFeedback returns the current user's feedback entries.
func (s *Server) handleListUserFeedback(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	limit := queryInt(r, "limit", 50, 1, 100)
	offset := queryInt(r, "offset", 0, 0, 1<<30)

	items, err := s.db.ListUserFeedback(r.Context(), user.ID, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list feedback")
		return
	}

	writeJSON(w, http.StatusOK, toFeedbackResponses(items))
}

type updateFeedbackRequest struct {
	ToneAccuracy          int     `json:"tone_accuracy" validate:"required,min=1,max=5"`
	SuggestionHelpfulness int     `json:"suggestion_helpfulness" validate:"required,min=1,max=5"`
	Comments              *string `json:"comments"`
}

// handleUpdateFeedback updates a feedback entry owned by the current user.
func (s *Server) handleUpdateFeedback(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	feedbackID, err := parsePathID(r, "feedbackID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid feedback ID")
		return
	}

	var req updateFeedbackRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	feedback, err := s.db.UpdateFeedback(r.Context(), feedbackID, user.ID, database.UpdateFeedbackParams{
		ToneAccuracy:          req.ToneAccuracy,
		SuggestionHelpfulness: req.SuggestionHelpfulness,
		Comments:              req.Comments,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update feedback")
		return
	}
	if feedback == nil {
		writeError(w, http.StatusNotFound, "feedback not found")
		return
	}

	writeJSON(w, http.StatusOK, toFeedbackResponse(feedback))
}

// handleDeleteFeedback deletes a feedback entry owned by the current user.
func (s *Server) handleDeleteFeedback(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	feedbackID, err := parsePathID(r, "feedbackID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid feedback ID")
		return
	}

	deleted, err := s.db.DeleteFeedback(r.Context(), feedbackID, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete feedback")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "feedback not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "feedback deleted successfully"})
}

// handleFeedbackStats returns overall feedback statistics.
func (s *Server) handleFeedbackStats(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.currentUser(w, r); !ok {
		return
	}

	stats, err := s.db.GetFeedbackStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total_feedback":             stats.TotalFeedback,
		"avg_tone_accuracy":          stats.AvgToneAccuracy,
		"avg_suggestion_helpfulness": stats.AvgSuggestionHelpfulness,
	})
}
