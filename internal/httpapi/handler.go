// Package httpapi is the HTTP façade binding the orchestrator's
// Pipeline.Quote and the bucketed cache's admin operations onto
// gorilla/mux routes (§6 "HTTP/RPC façade", SPEC_FULL.md §2), modeled on
// the teacher's internal/api/handler.go: route handlers that check
// Content-Type, decode/encode JSON, and read mux.Vars/query params.
package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"dex-aggregator/internal/orchestrator"
	"dex-aggregator/internal/ports"
	"dex-aggregator/internal/reqctx"
	"dex-aggregator/internal/types"

	"github.com/gorilla/mux"
)

// Handler bundles the orchestrator pipeline and the cache's admin
// operations behind HTTP endpoints.
type Handler struct {
	pipeline *orchestrator.Pipeline
	cached   ports.CachedRoutesRepository
	metrics  ports.Metrics
}

// New builds a Handler. cached may be nil, in which case the
// /cached-routes endpoints respond 404.
func New(pipeline *orchestrator.Pipeline, cached ports.CachedRoutesRepository, metrics ports.Metrics) *Handler {
	return &Handler{pipeline: pipeline, cached: cached, metrics: metrics}
}

// Routes registers every endpoint on a gorilla/mux router, the teacher's
// own wiring idiom in main.go.
func (h *Handler) Routes(r *mux.Router) {
	r.HandleFunc("/quote", h.PostQuote).Methods(http.MethodPost)
	r.HandleFunc("/cached-routes", h.GetCachedRoutes).Methods(http.MethodGet)
	r.HandleFunc("/cached-routes", h.DeleteCachedRoutes).Methods(http.MethodDelete)
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
}

// PostQuote runs the full §4.1 pipeline for one request and writes the
// QuoteResponse, using the response's own Error.Code as the HTTP status
// when present (the orchestrator, not this handler, owns error semantics).
func (h *Handler) PostQuote(w http.ResponseWriter, r *http.Request) {
	if ct := r.Header.Get("Content-Type"); ct != "application/json" {
		http.Error(w, "Content-Type must be application/json", http.StatusBadRequest)
		return
	}

	var req types.QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON format: "+err.Error(), http.StatusBadRequest)
		return
	}

	rc := reqctx.New(h.metrics)
	resp := h.pipeline.Quote(r.Context(), rc, &req)

	status := http.StatusOK
	if resp.Error != nil {
		status = resp.Error.Code
	}
	writeJSON(w, status, resp)
}

// GetCachedRoutes exposes §4.6's getCachedRoutes read path for operational
// inspection: every configured bucket for (chain, in, out, tradeType).
func (h *Handler) GetCachedRoutes(w http.ResponseWriter, r *http.Request) {
	if h.cached == nil {
		http.Error(w, "cache not configured", http.StatusNotFound)
		return
	}

	chainID, in, out, tradeType, err := parseCacheQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	results, err := h.cached.GetCachedRoutes(r.Context(), chainID, in, out, tradeType)
	if err != nil {
		http.Error(w, "failed to read cached routes: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"buckets": results})
}

// DeleteCachedRoutes exposes §4.6's deleteCachedRoutes admin operation for
// one bucket of (chain, in, out, tradeType).
func (h *Handler) DeleteCachedRoutes(w http.ResponseWriter, r *http.Request) {
	if h.cached == nil {
		http.Error(w, "cache not configured", http.StatusNotFound)
		return
	}

	chainID, in, out, tradeType, err := parseCacheQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	bucket := types.UsdBucket(r.URL.Query().Get("bucket"))
	if bucket == "" {
		http.Error(w, "bucket is required", http.StatusBadRequest)
		return
	}

	key := types.CacheKey{ChainID: chainID, TokenIn: in, TokenOut: out, TradeType: tradeType, Bucket: bucket}
	success, message := h.cached.DeleteCachedRoutes(r.Context(), key)
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": success, "message": message})
}

// Health is a liveness probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func parseCacheQuery(r *http.Request) (chainID int64, in, out types.Address, tradeType types.TradeType, err error) {
	q := r.URL.Query()
	chainID, err = strconv.ParseInt(q.Get("chainId"), 10, 64)
	if err != nil {
		return 0, "", "", "", errInvalidQuery("chainId")
	}
	in, err = types.NewAddress(q.Get("tokenIn"))
	if err != nil || in == types.NilAddress {
		return 0, "", "", "", errInvalidQuery("tokenIn")
	}
	out, err = types.NewAddress(q.Get("tokenOut"))
	if err != nil || out == types.NilAddress {
		return 0, "", "", "", errInvalidQuery("tokenOut")
	}
	tradeType = types.TradeType(q.Get("tradeType"))
	if tradeType != types.ExactIn && tradeType != types.ExactOut {
		return 0, "", "", "", errInvalidQuery("tradeType")
	}
	return chainID, in, out, tradeType, nil
}

func errInvalidQuery(field string) error {
	return &queryError{field: field}
}

type queryError struct{ field string }

func (e *queryError) Error() string { return "invalid or missing query parameter: " + e.field }

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
