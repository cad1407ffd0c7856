package web

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"activation-code-service/internal/domain"
	"activation-code-service/internal/infra/logging"
	"activation-code-service/internal/infra/metrics"
	red "activation-code-service/internal/infra/redis"
	"activation-code-service/internal/usecase"
)

// Response envelope shared by all API routes.
type apiResponse struct {
	OK      bool       `json:"ok"`
	Message string     `json:"message,omitempty"`
	Error   string     `json:"error,omitempty"`
	Code    string     `json:"code,omitempty"`
	UsedBy  *string    `json:"used_by,omitempty"`
	UsedAt  *time.Time `json:"used_at,omitempty"`
}

type activateRequest struct {
	Code   string `json:"code"`
	UserID string `json:"user_id"`
}

func (s *Server) activateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var code, requester string
		switch r.Method {
		case http.MethodGet:
			code = r.URL.Query().Get("code")
			requester = r.URL.Query().Get("user_id")
		case http.MethodPost:
			var req activateRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeJSON(w, http.StatusBadRequest, apiResponse{OK: false, Error: "invalid JSON body"})
				return
			}
			code = req.Code
			requester = req.UserID
		}

		ac, err := s.redeemUC.Redeem(ctx, code, requester)
		if err != nil {
			s.writeRedeemFailure(w, r, err)
			return
		}

		metrics.IncRedemption("success")
		writeJSON(w, http.StatusOK, apiResponse{
			OK:      true,
			Message: "activation successful",
			Code:    ac.Code,
			UsedBy:  ac.UsedBy,
			UsedAt:  ac.UsedAt,
		})
	}
}

// Business failures keep HTTP 200 with ok=false; only transport faults and
// storage errors change the status code.
func (s *Server) writeRedeemFailure(w http.ResponseWriter, r *http.Request, err error) {
	var used *usecase.AlreadyUsedError
	switch {
	case errors.Is(err, domain.ErrEmptyCode):
		metrics.IncRedemption("empty")
		writeJSON(w, http.StatusOK, apiResponse{OK: false, Error: "activation code is required"})
	case errors.Is(err, domain.ErrBadCodeFormat):
		metrics.IncRedemption("bad_format")
		writeJSON(w, http.StatusOK, apiResponse{OK: false, Error: "activation code format is invalid"})
	case errors.Is(err, domain.ErrCodeNotFound):
		metrics.IncRedemption("invalid")
		writeJSON(w, http.StatusOK, apiResponse{OK: false, Error: "activation code is invalid"})
	case errors.As(err, &used):
		metrics.IncRedemption("already_used")
		writeJSON(w, http.StatusOK, apiResponse{
			OK:     false,
			Error:  "activation code already used",
			UsedBy: used.Prior.UsedBy,
			UsedAt: used.Prior.UsedAt,
		})
	default:
		metrics.IncRedemption("error")
		logging.With(r.Context(), s.log).Error().Err(err).Msg("redeem failed")
		writeJSON(w, http.StatusInternalServerError, apiResponse{OK: false, Error: "internal error"})
	}
}

type statusResponse struct {
	OK        bool               `json:"ok"`
	Timestamp time.Time          `json:"timestamp"`
	Stats     statusStats        `json:"stats"`
	Recent    []recentActivation `json:"recent_activations"`
}

type statusStats struct {
	Total     int64 `json:"total"`
	Used      int64 `json:"used"`
	Available int64 `json:"available"`
}

type recentActivation struct {
	Code   string     `json:"code"`
	UsedBy string     `json:"used_by"`
	UsedAt *time.Time `json:"used_at"`
}

func (s *Server) statusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ov, err := s.statsUC.Overview(r.Context())
		if err != nil {
			logging.With(r.Context(), s.log).Error().Err(err).Msg("status query failed")
			writeJSON(w, http.StatusInternalServerError, apiResponse{OK: false, Error: "failed to fetch stats"})
			return
		}

		metrics.SetCodeCounts(ov.Stats.Used, ov.Stats.Available)
		resp := statusResponse{
			OK:        true,
			Timestamp: ov.AsOf,
			Stats: statusStats{
				Total:     ov.Stats.Total,
				Used:      ov.Stats.Used,
				Available: ov.Stats.Available,
			},
			Recent: make([]recentActivation, 0, len(ov.Recent)),
		}
		for _, ac := range ov.Recent {
			usedBy := "anonymous"
			if ac.UsedBy != nil && *ac.UsedBy != "" {
				usedBy = *ac.UsedBy
			}
			resp.Recent = append(resp.Recent, recentActivation{Code: ac.Code, UsedBy: usedBy, UsedAt: ac.UsedAt})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Database  struct {
		Connected bool   `json:"connected"`
		Error     string `json:"error,omitempty"`
	} `json:"database"`
}

func (s *Server) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Timestamp: time.Now().UTC()}
		if err := s.codes.Ping(r.Context()); err != nil {
			resp.Status = "unhealthy"
			resp.Database.Error = err.Error()
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
		resp.Status = "healthy"
		resp.Database.Connected = true
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) rateLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		ok, err := s.limiter.Allow(r.Context(), red.ClientKey(ip, "activate"), s.rateLimit, s.rateWindow)
		if err != nil {
			// Limiter outage must not take redemption down with it.
			logging.With(r.Context(), s.log).Warn().Err(err).Msg("rate limiter unavailable")
			next(w, r)
			return
		}
		if !ok {
			writeJSON(w, http.StatusTooManyRequests, apiResponse{OK: false, Error: "too many requests"})
			return
		}
		next(w, r)
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, apiResponse{OK: false, Error: "method not allowed"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
