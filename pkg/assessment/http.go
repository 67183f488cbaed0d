package assessment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/synaptica-ai/mobility/pkg/common/logger"
	"github.com/synaptica-ai/mobility/pkg/common/models"
	"github.com/synaptica-ai/mobility/pkg/gateway/middleware"
	"github.com/synaptica-ai/mobility/pkg/observability/metrics"
)

const dateLayout = "2006-01-02"

// AuditLister serves recent computation audit rows.
type AuditLister interface {
	Recent(ctx context.Context, limit int) ([]models.AssessmentAudit, error)
}

// DailyStats matches metrics.DailyCounter.
type DailyStats interface {
	Count(ctx context.Context, day time.Time) (int64, error)
	ByRiskLevel(ctx context.Context, day time.Time) (map[string]int64, error)
}

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

type HTTPHandler struct {
	service *Service
	audits  AuditLister
	stats   DailyStats
	checks  map[string]ReadinessCheck
}

func NewHTTPHandler(service *Service, audits AuditLister, checks map[string]ReadinessCheck) *HTTPHandler {
	return &HTTPHandler{service: service, audits: audits, checks: checks}
}

// WithDailyStats enables the daily totals route.
func (h *HTTPHandler) WithDailyStats(stats DailyStats) *HTTPHandler {
	h.stats = stats
	return h
}

func (h *HTTPHandler) Register(r *mux.Router) {
	r.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/ready", h.handleReady).Methods(http.MethodGet)
	r.HandleFunc("/metrics", h.handleMetrics).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1/mobility").Subrouter()
	api.HandleFunc("/assessments", h.handleAssess).Methods(http.MethodPost)
	api.HandleFunc("/profiles", h.handleAssessProfile).Methods(http.MethodPost)
	api.HandleFunc("/vocabulary", h.handleVocabulary).Methods(http.MethodGet)
	if h.audits != nil {
		api.HandleFunc("/audits", h.handleAudits).Methods(http.MethodGet)
	}
	if h.stats != nil {
		api.HandleFunc("/stats/daily", h.handleDailyStats).Methods(http.MethodGet)
	}
}

func (h *HTTPHandler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *HTTPHandler) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			status = http.StatusServiceUnavailable
			results[name] = err.Error()
			continue
		}
		results[name] = "ok"
	}
	writeJSON(w, status, map[string]interface{}{"ready": status == http.StatusOK, "checks": results})
}

func (h *HTTPHandler) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	metrics.WritePrometheus(w)
}

func (h *HTTPHandler) handleAssess(w http.ResponseWriter, r *http.Request) {
	var base models.BaseRiskResult
	if err := json.NewDecoder(r.Body).Decode(&base); err != nil {
		metrics.ObserveRejection()
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.service.Assess(r.Context(), middleware.RequestID(r.Context()), base)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *HTTPHandler) handleAssessProfile(w http.ResponseWriter, r *http.Request) {
	var profile models.PatientProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		metrics.ObserveRejection()
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.service.AssessProfile(r.Context(), middleware.RequestID(r.Context()), profile)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *HTTPHandler) handleVocabulary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Engine().Vocabulary())
}

func (h *HTTPHandler) handleAudits(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	audits, err := h.audits.Recent(r.Context(), limit)
	if err != nil {
		logger.WithError(err).Error("failed to list assessment audits")
		writeError(w, http.StatusInternalServerError, "failed to list audits")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"audits": audits})
}

func (h *HTTPHandler) handleDailyStats(w http.ResponseWriter, r *http.Request) {
	day := time.Now().UTC()
	if v := r.URL.Query().Get("date"); v != "" {
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		day = parsed
	}

	total, err := h.stats.Count(r.Context(), day)
	if err != nil {
		h.statsUnavailable(w, err)
		return
	}
	levels, err := h.stats.ByRiskLevel(r.Context(), day)
	if err != nil {
		h.statsUnavailable(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"date":                day.Format(dateLayout),
		"assessments":         total,
		"by_readmission_risk": levels,
	})
}

func (h *HTTPHandler) statsUnavailable(w http.ResponseWriter, err error) {
	logger.WithError(err).Error("failed to read daily counters")
	writeError(w, http.StatusServiceUnavailable, "daily counters unavailable")
}

func (h *HTTPHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case IsValidationError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrBaseCalculatorUnavailable):
		writeError(w, http.StatusNotImplemented, err.Error())
	default:
		logger.WithError(err).WithField("request_id", middleware.RequestID(r.Context())).Error("assessment failed")
		writeError(w, http.StatusBadGateway, "upstream base risk calculator failed")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Log.WithError(err).Error("failed to write json response")
	}
}
