package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/hazyhaar/provider-directory/pkg/directory"
	"github.com/hazyhaar/provider-directory/pkg/kit"
	"github.com/hazyhaar/provider-directory/pkg/metrics"
	"github.com/hazyhaar/provider-directory/pkg/validation"
)

// Options configures the router. Zero values disable the optional parts.
type Options struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	// Limiter throttles /v1/ requests.
	Limiter *Limiter
	// MCP is mounted at /mcp when set.
	MCP http.Handler
}

// NewRouter returns an http.Handler with all directory API routes.
func NewRouter(reg *directory.Registry, opts Options) http.Handler {
	var obs kit.Observer
	if opts.Metrics != nil {
		obs = opts.Metrics
	}
	eps := MakeEndpoints(reg, opts.Logger, obs)
	h := &handler{eps: eps, reg: reg}

	v1 := http.NewServeMux()
	v1.HandleFunc("GET /v1/providers", h.handleSearch)
	v1.HandleFunc("GET /v1/adequacy", h.handleAdequacy)
	v1.HandleFunc("GET /v1/facets", h.handleFacets)
	v1.HandleFunc("GET /v1/health", h.handleHealth)

	var api http.Handler = v1
	if opts.Limiter != nil {
		api = opts.Limiter.Middleware(api)
	}

	mux := http.NewServeMux()
	mux.Handle("/v1/", api)
	if opts.Metrics != nil {
		mux.Handle("GET /metrics", opts.Metrics.Handler())
	}
	if opts.MCP != nil {
		mux.Handle("/mcp", opts.MCP)
	}
	return kit.RequestID(cors(mux))
}

type handler struct {
	eps Endpoints
	reg *directory.Registry
}

// --- search ---

func (h *handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	req, err := parseSearch(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := h.eps.Search(r.Context(), req)
	if err != nil {
		writeEndpointError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- adequacy ---

func (h *handler) handleAdequacy(w http.ResponseWriter, r *http.Request) {
	req, err := parseSearch(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := h.eps.Adequacy(r.Context(), req)
	if err != nil {
		writeEndpointError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- facets ---

func (h *handler) handleFacets(w http.ResponseWriter, r *http.Request) {
	resp, err := h.eps.Facets(r.Context(), nil)
	if err != nil {
		writeEndpointError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- health ---

type healthResponse struct {
	Status string `json:"status"`
	directory.Info
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Info: h.reg.Info()})
}

// --- helpers ---

// parseSearch reads a SearchRequest from the query string. List parameters
// may be repeated; states also accept a comma-separated list.
func parseSearch(r *http.Request) (*SearchRequest, error) {
	q := r.URL.Query()
	req := &SearchRequest{
		Query:       q.Get("q"),
		Specialties: q["specialty"],
		Location:    q.Get("location"),
	}
	for _, s := range q["state"] {
		req.States = append(req.States, kit.SplitList(strings.ToUpper(s))...)
	}

	var err error
	if req.Lat, err = optFloat(q.Get("lat"), "lat"); err != nil {
		return nil, err
	}
	if req.Lon, err = optFloat(q.Get("lon"), "lon"); err != nil {
		return nil, err
	}
	if v := q.Get("radius"); v != "" {
		if req.Radius, err = strconv.ParseFloat(v, 64); err != nil {
			return nil, fmt.Errorf("radius: not a number")
		}
	}
	if v := q.Get("page"); v != "" {
		if req.Page, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("page: not an integer")
		}
	}
	return req, nil
}

func optFloat(s, name string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: not a number", name)
	}
	return &f, nil
}

func writeEndpointError(w http.ResponseWriter, err error) {
	var verrs validation.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request", "fields": verrs})
	case errors.Is(err, errHalfCentre):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// cors is a simple CORS middleware for browser-based clients.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Mcp-Session-Id, X-Request-Id")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
