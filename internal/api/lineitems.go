package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	ratingsvc "devwise/internal/services/rating"
	"devwise/pkg/errors"
)

// handleResearch runs market research for a line item.
// POST /api/line-items/{id}/research
func (s *Server) handleResearch(w http.ResponseWriter, r *http.Request) {
	userID, err := s.identity.UserID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	lineItemID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrInvalidInput, "invalid line item id"))
		return
	}

	result, rl, err := s.research.Run(r.Context(), userID, lineItemID)
	setRateLimitHeaders(w, rl)
	if err != nil {
		writeError(w, err)
		return
	}

	cost, _ := result.Cost.Float64()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"cached":               result.Cached,
		"job_id":               result.JobID,
		"market_low":           result.MarketLow,
		"market_high":          result.MarketHigh,
		"market_avg":           result.MarketAvg,
		"variance_percent":     result.VariancePercent,
		"flag_color":           result.FlagColor,
		"confidence_score":     result.ConfidenceScore,
		"explanation":          result.Explanation,
		"sources":              result.Sources,
		"cost_usd":             cost,
		"search_results_count": result.SearchResultsCount,
	})
}

type rateRequest struct {
	Rating           int      `json:"rating"`
	AccuracyFeedback *string  `json:"accuracy_feedback"`
	ActualCost       *float64 `json:"actual_cost"`
	Comments         *string  `json:"comments"`
}

// handleRate stores research accuracy feedback for a line item.
// POST /api/line-items/{id}/rate
func (s *Server) handleRate(w http.ResponseWriter, r *http.Request) {
	userID, err := s.identity.UserID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	lineItemID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrInvalidInput, "invalid line item id"))
		return
	}

	var req rateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	outcome, err := s.ratings.Rate(r.Context(), userID, lineItemID, ratingsvc.Params{
		Value:            req.Rating,
		AccuracyFeedback: req.AccuracyFeedback,
		ActualCost:       req.ActualCost,
		Comments:         req.Comments,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"rating_id": outcome.Rating.ID,
		"rating":    outcome.Rating.Value,
		"cached":    outcome.Cached,
	})
}

// handleListRatings returns the caller's ratings for a line item.
// GET /api/line-items/{id}/rate
func (s *Server) handleListRatings(w http.ResponseWriter, r *http.Request) {
	userID, err := s.identity.UserID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	lineItemID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrInvalidInput, "invalid line item id"))
		return
	}

	ratings, err := s.ratings.List(r.Context(), userID, lineItemID)
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]map[string]interface{}, 0, len(ratings))
	for _, rt := range ratings {
		items = append(items, map[string]interface{}{
			"id":                rt.ID,
			"rating":            rt.Value,
			"accuracy_feedback": rt.AccuracyFeedback,
			"actual_cost":       rt.ActualCost,
			"comments":          rt.Comments,
			"created_at":        rt.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"ratings": items})
}

type updateLineItemRequest struct {
	Description *string  `json:"description"`
	Location    *string  `json:"location"`
	Category    *string  `json:"category"`
	Unit        *string  `json:"unit"`
	Quantity    *float64 `json:"quantity"`
	UnitPrice   *float64 `json:"unit_price"`
	TotalPrice  *float64 `json:"total_price"`
	Notes       *string  `json:"notes"`
}

// handleUpdateLineItem applies a manual edit to a line item. The first
// edit snapshots the extraction-time values.
// PATCH /api/line-items/{id}
func (s *Server) handleUpdateLineItem(w http.ResponseWriter, r *http.Request) {
	userID, err := s.identity.UserID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	lineItemID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrInvalidInput, "invalid line item id"))
		return
	}

	var req updateLineItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	li, err := s.lineItems.GetByIDForUser(r.Context(), lineItemID, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	li.CaptureOriginals()

	if req.Description != nil {
		if *req.Description == "" {
			writeError(w, errors.NewValidationError("description", "must not be empty", *req.Description))
			return
		}
		li.Description = *req.Description
	}
	if req.Location != nil {
		li.Location = req.Location
	}
	if req.Category != nil {
		li.Category = req.Category
	}
	if req.Unit != nil {
		li.Unit = req.Unit
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			writeError(w, errors.NewValidationError("quantity", "must not be negative", *req.Quantity))
			return
		}
		li.Quantity = req.Quantity
	}
	if req.UnitPrice != nil {
		if *req.UnitPrice < 0 {
			writeError(w, errors.NewValidationError("unit_price", "must not be negative", *req.UnitPrice))
			return
		}
		li.UnitPrice = req.UnitPrice
	}
	if req.TotalPrice != nil {
		li.TotalPrice = *req.TotalPrice
	}
	if req.Notes != nil {
		li.Notes = req.Notes
	}

	if err := li.ValidateTotals(); err != nil {
		writeError(w, err)
		return
	}

	li.IsEdited = true
	li.UpdatedAt = time.Now()

	if err := s.lineItems.Update(r.Context(), li); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":          li.ID,
		"description": li.Description,
		"location":    li.Location,
		"category":    li.Category,
		"unit":        li.Unit,
		"quantity":    li.Quantity,
		"unit_price":  li.UnitPrice,
		"total_price": li.TotalPrice,
		"notes":       li.Notes,
		"is_edited":   li.IsEdited,
		"updated_at":  li.UpdatedAt,
	})
}
