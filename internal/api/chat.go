package api

import (
	"net/http"

	"github.com/google/uuid"

	"devwise/internal/domain/chat"
)

type chatRequest struct {
	Message    string     `json:"message"`
	LineItemID *uuid.UUID `json:"line_item_id"`
	ProposalID *uuid.UUID `json:"proposal_id"`
}

// handleChat runs one conversation turn.
// POST /api/chat
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	userID, err := s.identity.UserID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := s.chat.Send(r.Context(), userID, req.Message, chat.Thread{
		LineItemID: req.LineItemID,
		ProposalID: req.ProposalID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	cost, _ := result.Cost.Float64()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":     result.Message,
		"tokens_used": result.TokensUsed,
		"cost_usd":    cost,
	})
}
