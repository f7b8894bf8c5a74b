package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"devwise/internal/services/ratelimit"
	"devwise/pkg/errors"
	"devwise/pkg/logger"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Get().Errorw("Failed to encode response", "error", err)
	}
}

// writeError maps domain sentinels to HTTP status codes. Messages are
// passed through as-is: wrapped sentinel chains read fine to API users
// and carry no internals.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, errors.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, errors.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, errors.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errors.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, errors.ErrBudgetExceeded):
		status = http.StatusPaymentRequired
	case errors.Is(err, errors.ErrRateLimited):
		status = http.StatusTooManyRequests
	case errors.Is(err, errors.ErrExternal), errors.Is(err, errors.ErrMalformedResponse):
		status = http.StatusBadGateway
	case errors.Is(err, errors.ErrTimeout):
		status = http.StatusGatewayTimeout
	}

	if status == http.StatusInternalServerError {
		logger.Get().Errorw("Request failed", "error", err)
	}

	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// setRateLimitHeaders emits quota headers on every response where the
// limiter was consulted, allowed or not
func setRateLimitHeaders(w http.ResponseWriter, rl *ratelimit.Result) {
	if rl == nil {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(rl.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(rl.ResetAt.Unix(), 10))
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, "invalid JSON body")
	}
	return nil
}
