package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/parlay-calculator-service/internal/models"
	"github.com/cypherlabdev/parlay-calculator-service/internal/service"
	"github.com/cypherlabdev/parlay-calculator-service/internal/session"
)

// CalculatorHandler handles HTTP requests for wager evaluation and sessions
type CalculatorHandler struct {
	service *service.CalculatorService
	store   *session.Store
	logger  zerolog.Logger
}

// NewCalculatorHandler creates a new calculator HTTP handler
func NewCalculatorHandler(svc *service.CalculatorService, store *session.Store, logger zerolog.Logger) *CalculatorHandler {
	return &CalculatorHandler{
		service: svc,
		store:   store,
		logger:  logger.With().Str("component", "calculator_handler").Logger(),
	}
}

// RegisterRoutes registers HTTP routes with the provided mux
func (h *CalculatorHandler) RegisterRoutes(mux *http.ServeMux) {
	// POST /api/v1/evaluate - One-shot stateless evaluation
	mux.HandleFunc("/api/v1/evaluate", h.handleEvaluate)

	// GET /api/v1/results/:request_id - Cached evaluation result
	mux.HandleFunc("/api/v1/results/", h.handleGetResult)

	// POST /api/v1/sessions - Create a session
	mux.HandleFunc("/api/v1/sessions", h.handleCreateSession)

	// /api/v1/sessions/:id/... - Session state and evaluation
	mux.HandleFunc("/api/v1/sessions/", h.handleSession)
}

// handleEvaluate handles POST /api/v1/evaluate
func (h *CalculatorHandler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.errorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req models.EvaluationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RequestID == "" {
		req.RequestID = uuid.New().String()
	}

	result, err := h.service.Evaluate(r.Context(), &req)
	if err != nil {
		h.logger.Debug().
			Err(err).
			Str("request_id", req.RequestID).
			Msg("evaluation rejected")
		h.errorResponse(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	h.jsonResponse(w, http.StatusOK, result)
}

// handleGetResult handles GET /api/v1/results/:request_id
func (h *CalculatorHandler) handleGetResult(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.errorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	requestID := strings.TrimPrefix(r.URL.Path, "/api/v1/results/")
	if requestID == "" || strings.Contains(requestID, "/") {
		h.errorResponse(w, http.StatusBadRequest, "invalid path: expected /api/v1/results/:request_id")
		return
	}

	result, err := h.service.GetResult(r.Context(), requestID)
	if err != nil {
		h.logger.Debug().
			Err(err).
			Str("request_id", requestID).
			Msg("result not found")
		h.errorResponse(w, http.StatusNotFound, "result not found")
		return
	}

	h.jsonResponse(w, http.StatusOK, result)
}

// createSessionRequest is the body for POST /api/v1/sessions
type createSessionRequest struct {
	Stake string `json:"stake"`
}

// handleCreateSession handles POST /api/v1/sessions
func (h *CalculatorHandler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.errorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	stake, err := decimal.NewFromString(req.Stake)
	if err != nil || !stake.IsPositive() {
		h.errorResponse(w, http.StatusBadRequest, "stake must be a positive number")
		return
	}

	sess := h.store.Create(stake)
	h.service.PersistSession(r.Context(), sess)

	h.jsonResponse(w, http.StatusCreated, sess)
}

// handleSession dispatches /api/v1/sessions/:id/...
func (h *CalculatorHandler) handleSession(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/sessions/")
	parts := strings.Split(strings.TrimSuffix(path, "/"), "/")

	if len(parts) == 0 || parts[0] == "" {
		h.errorResponse(w, http.StatusBadRequest, "session id is required")
		return
	}

	id, err := uuid.Parse(parts[0])
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "invalid session id")
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.getSession(w, r, id)
	case len(parts) == 2 && parts[1] == "legs" && r.Method == http.MethodPost:
		h.addLeg(w, r, id)
	case len(parts) == 3 && parts[1] == "legs":
		h.legByID(w, r, id, parts[2])
	case len(parts) == 4 && parts[1] == "legs" && parts[3] == "preview" && r.Method == http.MethodPost:
		h.togglePreview(w, r, id, parts[2])
	case len(parts) == 2 && parts[1] == "stake" && r.Method == http.MethodPut:
		h.setStake(w, r, id)
	case len(parts) == 2 && parts[1] == "book-total" && r.Method == http.MethodPut:
		h.setBookTotal(w, r, id)
	case len(parts) == 2 && parts[1] == "evaluate" && r.Method == http.MethodPost:
		h.evaluateSession(w, r, id)
	default:
		h.errorResponse(w, http.StatusNotFound, "unknown session route")
	}
}

func (h *CalculatorHandler) getSession(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	sess, err := h.store.Get(id)
	if err != nil {
		// Fall back to the persisted snapshot for session restore.
		sess, err = h.service.LoadSession(r.Context(), id.String())
		if err != nil {
			h.errorResponse(w, http.StatusNotFound, "session not found")
			return
		}
		h.store.Restore(sess)
	}
	h.jsonResponse(w, http.StatusOK, sess)
}

func (h *CalculatorHandler) addLeg(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	sess, err := h.store.AddLeg(id)
	if err != nil {
		h.errorResponse(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	h.service.PersistSession(r.Context(), sess)
	h.jsonResponse(w, http.StatusOK, sess)
}

func (h *CalculatorHandler) legByID(w http.ResponseWriter, r *http.Request, id uuid.UUID, rawLegID string) {
	legID, err := strconv.Atoi(rawLegID)
	if err != nil || legID <= 0 {
		h.errorResponse(w, http.StatusBadRequest, "invalid leg id")
		return
	}

	switch r.Method {
	case http.MethodPut:
		var leg models.Leg
		if err := json.NewDecoder(r.Body).Decode(&leg); err != nil {
			h.errorResponse(w, http.StatusBadRequest, "invalid request body")
			return
		}
		leg.ID = legID
		sess, err := h.store.UpdateLeg(id, leg)
		if err != nil {
			h.errorResponse(w, http.StatusNotFound, err.Error())
			return
		}
		h.service.PersistSession(r.Context(), sess)
		h.jsonResponse(w, http.StatusOK, sess)

	case http.MethodDelete:
		sess, err := h.store.RemoveLeg(id, legID)
		if err != nil {
			h.errorResponse(w, http.StatusNotFound, err.Error())
			return
		}
		h.service.PersistSession(r.Context(), sess)
		h.jsonResponse(w, http.StatusOK, sess)

	default:
		h.errorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *CalculatorHandler) togglePreview(w http.ResponseWriter, r *http.Request, id uuid.UUID, rawLegID string) {
	legID, err := strconv.Atoi(rawLegID)
	if err != nil || legID <= 0 {
		h.errorResponse(w, http.StatusBadRequest, "invalid leg id")
		return
	}

	sess, err := h.store.TogglePreview(id, legID)
	if err != nil {
		h.errorResponse(w, http.StatusNotFound, err.Error())
		return
	}
	h.service.PersistSession(r.Context(), sess)
	h.jsonResponse(w, http.StatusOK, sess)
}

type setStakeRequest struct {
	Stake string `json:"stake"`
}

func (h *CalculatorHandler) setStake(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req setStakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	stake, err := decimal.NewFromString(req.Stake)
	if err != nil || !stake.IsPositive() {
		h.errorResponse(w, http.StatusBadRequest, "stake must be a positive number")
		return
	}

	sess, err := h.store.SetStake(id, stake)
	if err != nil {
		h.errorResponse(w, http.StatusNotFound, err.Error())
		return
	}
	h.service.PersistSession(r.Context(), sess)
	h.jsonResponse(w, http.StatusOK, sess)
}

type setBookTotalRequest struct {
	Odds string `json:"odds"`
}

func (h *CalculatorHandler) setBookTotal(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req setBookTotalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess, err := h.store.SetBookTotal(id, req.Odds)
	if err != nil {
		h.errorResponse(w, http.StatusNotFound, err.Error())
		return
	}
	h.service.PersistSession(r.Context(), sess)
	h.jsonResponse(w, http.StatusOK, sess)
}

func (h *CalculatorHandler) evaluateSession(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	sess, err := h.store.Get(id)
	if err != nil {
		h.errorResponse(w, http.StatusNotFound, "session not found")
		return
	}

	result, err := h.service.Evaluate(r.Context(), session.ToRequest(sess))
	if err != nil {
		h.logger.Debug().
			Err(err).
			Str("session_id", id.String()).
			Msg("session evaluation rejected")
		h.errorResponse(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	h.jsonResponse(w, http.StatusOK, result)
}

// jsonResponse writes a JSON response
func (h *CalculatorHandler) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// errorResponse writes a JSON error response
func (h *CalculatorHandler) errorResponse(w http.ResponseWriter, status int, message string) {
	h.jsonResponse(w, status, map[string]string{
		"error": message,
	})
}
