package api

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

const recentUsageLimit = 20

// handleBudget returns the caller's spending summary together with
// cache effectiveness and recent API usage.
// GET /api/budget
func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	userID, err := s.identity.UserID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	summary, err := s.budget.Summary(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	stats, err := s.cache.Stats(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	recent, err := s.usage.ListRecent(r.Context(), userID, recentUsageLimit)
	if err != nil {
		writeError(w, err)
		return
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	byOperation, err := s.usage.CostsByOperationSince(r.Context(), userID, monthStart)
	if err != nil {
		writeError(w, err)
		return
	}

	usageRows := make([]map[string]interface{}, 0, len(recent))
	for _, e := range recent {
		usageRows = append(usageRows, map[string]interface{}{
			"operation":   e.Operation,
			"provider":    e.Provider,
			"tokens_used": e.TokensUsed,
			"cost_usd":    e.Cost,
			"created_at":  e.CreatedAt,
		})
	}

	operations := make(map[string]map[string]interface{}, len(byOperation))
	for op, st := range byOperation {
		operations[string(op)] = map[string]interface{}{
			"count":    st.Count,
			"cost_usd": st.Cost,
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"budget": map[string]interface{}{
			"daily_spent":       summary.DailySpent,
			"daily_limit":       summary.DailyLimit,
			"daily_remaining":   summary.DailyRemaining,
			"monthly_spent":     summary.MonthlySpent,
			"monthly_limit":     summary.MonthlyLimit,
			"monthly_remaining": summary.MonthlyRemaining,
		},
		"cache": map[string]interface{}{
			"total_research":    stats.TotalResearch,
			"cache_hits":        stats.CacheHits,
			"api_calls":         stats.APICalls,
			"hit_rate":          stats.HitRate,
			"estimated_savings": stats.EstimatedSavings,
		},
		"recent_usage":       usageRows,
		"usage_by_operation": operations,
	})
}

type updateBudgetRequest struct {
	DailyLimit   *float64 `json:"daily_limit"`
	MonthlyLimit *float64 `json:"monthly_limit"`
}

// handleUpdateBudget updates the caller's spending limits. Omitted
// fields keep their current values.
// PATCH /api/budget
func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	userID, err := s.identity.UserID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req updateBudgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	var daily, monthly *decimal.Decimal
	if req.DailyLimit != nil {
		d := decimal.NewFromFloat(*req.DailyLimit)
		daily = &d
	}
	if req.MonthlyLimit != nil {
		m := decimal.NewFromFloat(*req.MonthlyLimit)
		monthly = &m
	}

	b, err := s.budget.UpdateLimits(r.Context(), userID, daily, monthly)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"daily_limit":   b.DailyLimit,
		"monthly_limit": b.MonthlyLimit,
	})
}
