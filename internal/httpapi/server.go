// Package httpapi exposes an Allocator over HTTP: generate and parse
// identifiers, and a Prometheus scrape endpoint.
//
// Grounded on the original Rust implementation's http.rs/dto.rs (the
// /generate?count=&domains= endpoint and its response shape) and on the
// teacher repository's own net/http usage throughout examples/prometheus
// and cmd/snowflake — this codebase's idiom is the standard library's
// net/http directly, never a web framework, since none appears anywhere
// in the retrieval pack.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sxyafiq/idgen"
	"github.com/sxyafiq/idgen/internal/audit"
	"github.com/sxyafiq/idgen/internal/domains"
	"github.com/sxyafiq/idgen/metrics"
)

// Server adapts an Allocator to HTTP. AuditSink and Domains are optional:
// a nil AuditSink disables batch auditing, a nil Domains disables named
// domain lookup (callers then address domains purely by numeric index).
type Server struct {
	Allocator *idgen.Allocator
	AuditSink *audit.Sink
	Domains   *domains.Registry
	Logger    *log.Logger
}

// NewServer builds a Server with a default logger writing to the
// process's standard log output, matching the stdlib log idiom used
// throughout the teacher repository.
func NewServer(alloc *idgen.Allocator) *Server {
	return &Server{Allocator: alloc, Logger: log.Default()}
}

// Handler returns the adapter's routes mounted on a fresh ServeMux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/generate", s.withRequestID(s.handleGenerate))
	mux.HandleFunc("/parse", s.withRequestID(s.handleParse))
	mux.HandleFunc("/metrics", s.handleMetrics)
	return mux
}

// withRequestID tags each request with a UUID for correlating a response
// with the corresponding log line, and logs the outcome.
func (s *Server) withRequestID(next func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		start := time.Now()
		next(w, r, reqID)
		s.Logger.Printf("request_id=%s method=%s path=%s duration=%s", reqID, r.Method, r.URL.Path, time.Since(start))
	}
}

type generateResponse struct {
	IDsByDomain map[string][]idgen.ID `json:"ids_by_domain"`
}

// handleGenerate implements GET /generate?count=N&domains=a,b,c
//
// count defaults to 10. domains may be a comma-separated list of either
// domain indices or, if a domain registry is configured, domain names; it
// defaults to every domain the allocator knows about.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request, reqID string) {
	count := 10
	if raw := r.URL.Query().Get("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "count must be a positive integer")
			return
		}
		count = parsed
	}

	domainList, err := s.resolveDomains(r.URL.Query().Get("domains"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out := make(map[string][]idgen.ID, len(domainList))
	for _, domain := range domainList {
		words, err := s.Allocator.GenerateIDs(count, domain)
		if err != nil {
			var domErr *idgen.IncorrectDomainError
			if errors.As(err, &domErr) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			s.Logger.Printf("request_id=%s generate error: %v", reqID, err)
			writeError(w, http.StatusInternalServerError, "failed to generate identifiers")
			return
		}

		ids := make([]idgen.ID, len(words))
		for i, word := range words {
			ids[i] = idgen.ID(word)
		}
		out[domainKey(domain, s.Domains)] = ids

		if s.AuditSink != nil {
			go func(words []uint64, domain uint64) {
				if err := s.AuditSink.RecordBatch(context.Background(), words, domain, s.Allocator.InstanceID()); err != nil {
					s.Logger.Printf("audit: record batch for domain %d: %v", domain, err)
				}
			}(words, domain)
		}
	}

	writeJSON(w, http.StatusOK, generateResponse{IDsByDomain: out})
}

func domainKey(domain uint64, reg *domains.Registry) string {
	if reg != nil {
		if name := reg.Name(domain); name != "" {
			return name
		}
	}
	return strconv.FormatUint(domain, 10)
}

func (s *Server) resolveDomains(raw string) ([]uint64, error) {
	if raw == "" {
		all := make([]uint64, 0, s.Allocator.MaxDomain()+1)
		for d := uint64(0); d <= s.Allocator.MaxDomain(); d++ {
			all = append(all, d)
		}
		return all, nil
	}

	parts := strings.Split(raw, ",")
	seen := make(map[uint64]struct{}, len(parts))
	out := make([]uint64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		domain, ok := s.lookupDomain(part)
		if !ok {
			return nil, errUnknownDomain(part)
		}
		if _, dup := seen[domain]; dup {
			continue
		}
		seen[domain] = struct{}{}
		out = append(out, domain)
	}
	return out, nil
}

func (s *Server) lookupDomain(token string) (uint64, bool) {
	if s.Domains != nil {
		if idx, ok := s.Domains.Index(token); ok {
			return idx, true
		}
	}
	v, err := strconv.ParseUint(token, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func errUnknownDomain(token string) error {
	return &unknownDomainError{token: token}
}

type unknownDomainError struct{ token string }

func (e *unknownDomainError) Error() string {
	return "unknown domain '" + e.token + "'"
}

type parseResponse struct {
	Domain           uint64 `json:"domain"`
	Timestamp        uint64 `json:"timestamp"`
	DecodedTimestamp string `json:"decoded_timestamp"`
	InstanceID       uint64 `json:"instance_id"`
	Counter          uint64 `json:"counter"`
}

// handleParse implements GET /parse?id=N
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request, reqID string) {
	raw := r.URL.Query().Get("id")
	id, err := idgen.ParseID(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be a decimal identifier")
		return
	}

	domain, counter, instance, at := id.Components(s.Allocator.Layout())
	writeJSON(w, http.StatusOK, parseResponse{
		Domain:           domain,
		Timestamp:        uint64(at.Unix()),
		DecodedTimestamp: at.Format(time.RFC3339),
		InstanceID:       instance,
		Counter:          counter,
	})
}

// handleMetrics implements GET /metrics in Prometheus text exposition
// format. Not present in the original Rocket service; added per
// SPEC_FULL.md §4.9, rendered by the metrics package.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	snap := s.Allocator.Metrics()
	if err := metrics.WritePrometheus(w, s.Allocator.InstanceID(), snap); err != nil {
		s.Logger.Printf("metrics: write error: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("httpapi: encode response: %v", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
