package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/himanishpuri/OsuBridge/pkg/models"
	"github.com/himanishpuri/OsuBridge/pkg/osubridge"
	"github.com/himanishpuri/OsuBridge/pkg/osubridge/catalog"
	"github.com/himanishpuri/OsuBridge/pkg/utils"
)

type Logger = catalog.Logger

// Server encapsulates the HTTP server and its dependencies
type Server struct {
	service catalog.Service
	config  *ServerConfig
	log     Logger
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	DBPath         string
	AllowedOrigins []string
}

// NewServer creates a new server instance
func NewServer(service catalog.Service, config *ServerConfig, log Logger) *Server {
	return &Server{
		service: service,
		config:  config,
		log:     log,
	}
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorf("Failed to encode JSON response: %v", err)
	}
}

// respondError writes an error response
func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

// respondEnvelope writes the {error, data} shape used by the wasm module so
// browser code can share one result handler.
func (s *Server) respondEnvelope(w http.ResponseWriter, env osubridge.Envelope) {
	status := http.StatusOK
	switch env.Error {
	case osubridge.ErrorNone:
	case osubridge.ErrorParse:
		status = http.StatusUnprocessableEntity
	case osubridge.ErrorInvalidArgs:
		status = http.StatusBadRequest
	default:
		status = http.StatusInternalServerError
	}
	s.respondJSON(w, status, env)
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	case osubridge.IsParseError(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, osubridge.ErrUnknownField), errors.Is(err, osubridge.ErrInvalidValue), errors.Is(err, osubridge.ErrLineBreak):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// readBody reads at most MaxBeatmapBytes of the request body.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBeatmapBytes)
	return io.ReadAll(r.Body)
}

// handleRoot handles GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"service": "OsuBridge API",
		"version": "1.0.0",
		"fields":  osubridge.FieldNames(),
		"endpoints": map[string]string{
			"health":        "GET /health",
			"metrics":       "GET /api/health/metrics",
			"parse":         "POST /api/parse",
			"edit":          "POST /api/edit",
			"beatmaps":      "GET /api/beatmaps",
			"addBeatmap":    "POST /api/beatmaps",
			"getBeatmap":    "GET /api/beatmaps/{id}",
			"deleteBeatmap": "DELETE /api/beatmaps/{id}",
			"beatmapJSON":   "GET /api/beatmaps/{id}/json",
			"beatmapOsu":    "GET /api/beatmaps/{id}/osu",
			"tagBeatmap":    "POST /api/beatmaps/{id}/tags",
		},
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleMetrics handles GET /api/health/metrics
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	entries, err := s.service.List()
	if err != nil {
		s.log.Errorf("Failed to count beatmaps: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve metrics")
		return
	}

	s.respondJSON(w, http.StatusOK, MetricsResponse{
		Status:       "healthy",
		DatabasePath: s.config.DBPath,
		BeatmapCount: len(entries),
	})
}

// handleParse handles POST /api/parse. The body is raw .osu text.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, http.StatusRequestEntityTooLarge, err.Error())
			return
		}
		s.respondError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	bm, err := osubridge.Parse(string(body))
	if err != nil {
		s.log.Debugf("Parse rejected: %v", err)
		s.respondEnvelope(w, osubridge.Fail(err))
		return
	}
	m, err := bm.AsJSON()
	if err != nil {
		s.respondEnvelope(w, osubridge.Fail(err))
		return
	}
	s.respondEnvelope(w, osubridge.OK(m))
}

// handleEdit handles POST /api/edit
func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBeatmapBytes)
	var req EditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	bm, err := osubridge.Parse(req.Source)
	if err != nil {
		s.respondEnvelope(w, osubridge.Fail(err))
		return
	}
	for name, value := range req.Fields {
		if err := bm.SetFieldValue(name, value); err != nil {
			s.respondEnvelope(w, osubridge.Fail(err))
			return
		}
	}
	m, err := bm.AsJSON()
	if err != nil {
		s.respondEnvelope(w, osubridge.Fail(err))
		return
	}
	text, err := bm.Text()
	if err != nil {
		s.respondEnvelope(w, osubridge.Fail(err))
		return
	}
	s.respondEnvelope(w, osubridge.OK(EditResponse{Source: text, Beatmap: m}))
}

// handleListBeatmaps handles GET /api/beatmaps[?tag=]
func (s *Server) handleListBeatmaps(w http.ResponseWriter, r *http.Request) {
	list := s.service.List
	if tag := r.URL.Query().Get("tag"); tag != "" {
		list = func() ([]models.Entry, error) { return s.service.FindByTag(tag) }
	}
	entries, err := list()
	if err != nil {
		s.log.Errorf("Failed to list beatmaps: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve beatmaps")
		return
	}

	s.respondJSON(w, http.StatusOK, ListBeatmapsResponse{
		Beatmaps: entries,
		Count:    len(entries),
	})
}

// handleAddBeatmap handles POST /api/beatmaps (multipart upload, field "beatmap")
func (s *Server) handleAddBeatmap(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), time.Minute)
	defer cancel()

	if err := r.ParseMultipartForm(MaxBeatmapBytes); err != nil {
		s.log.Errorf("Failed to parse form: %v", err)
		s.respondError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	file, header, err := r.FormFile("beatmap")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "beatmap file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxBeatmapBytes+1))
	if err != nil {
		s.log.Errorf("Failed to read upload: %v", err)
		s.respondError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}
	if len(data) > MaxBeatmapBytes {
		s.respondError(w, http.StatusRequestEntityTooLarge, "Beatmap file too large")
		return
	}

	res, err := s.service.ImportData(ctx, filepath.Base(header.Filename), data)
	if err != nil {
		s.log.Warnf("Failed to import upload %s: %v", header.Filename, err)
		s.respondError(w, statusFor(err), err.Error())
		return
	}

	status, msg := http.StatusCreated, "Beatmap added successfully"
	if res.Skipped {
		status, msg = http.StatusOK, "Beatmap already in the catalog"
	}
	s.respondJSON(w, status, AddBeatmapResponse{Message: msg, ID: res.ID, Skipped: res.Skipped})
}

// handleGetBeatmap handles GET /api/beatmaps/{id}
func (s *Server) handleGetBeatmap(w http.ResponseWriter, r *http.Request, id string) {
	e, err := s.service.Get(id)
	if err != nil {
		s.respondServiceError(w, id, err)
		return
	}
	s.respondJSON(w, http.StatusOK, e)
}

// handleBeatmapJSON handles GET /api/beatmaps/{id}/json
func (s *Server) handleBeatmapJSON(w http.ResponseWriter, r *http.Request, id string) {
	bm, err := s.service.Load(id)
	if err != nil {
		s.respondServiceError(w, id, err)
		return
	}
	s.respondJSON(w, http.StatusOK, bm)
}

// handleBeatmapOsu handles GET /api/beatmaps/{id}/osu
func (s *Server) handleBeatmapOsu(w http.ResponseWriter, r *http.Request, id string) {
	bm, err := s.service.Load(id)
	if err != nil {
		s.respondServiceError(w, id, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+".osu"))
	if _, err := bm.WriteTo(w); err != nil {
		s.log.Errorf("Failed to write beatmap %s: %v", id, err)
	}
}

// handleTagBeatmap handles POST /api/beatmaps/{id}/tags
func (s *Server) handleTagBeatmap(w http.ResponseWriter, r *http.Request, id string) {
	var req TagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.service.Tag(id, req.Tags...); err != nil {
		s.respondServiceError(w, id, err)
		return
	}
	s.handleGetBeatmap(w, r, id)
}

// handleDeleteBeatmap handles DELETE /api/beatmaps/{id}
func (s *Server) handleDeleteBeatmap(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.service.Delete(id); err != nil {
		s.respondServiceError(w, id, err)
		return
	}
	s.respondJSON(w, http.StatusOK, DeleteBeatmapResponse{
		Message: "Beatmap deleted successfully",
		ID:      id,
	})
}

func (s *Server) respondServiceError(w http.ResponseWriter, id string, err error) {
	status := statusFor(err)
	if status == http.StatusNotFound {
		s.respondError(w, status, fmt.Sprintf("Beatmap %s not found", id))
		return
	}
	s.log.Errorf("Beatmap %s: %v", id, err)
	s.respondError(w, status, err.Error())
}

// handleParseRoute routes requests to /api/parse
func (s *Server) handleParseRoute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.handleParse(w, r)
}

// handleEditRoute routes requests to /api/edit
func (s *Server) handleEditRoute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.handleEdit(w, r)
}

// handleBeatmaps routes requests to /api/beatmaps
func (s *Server) handleBeatmaps(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListBeatmaps(w, r)
	case http.MethodPost:
		s.handleAddBeatmap(w, r)
	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleBeatmap routes requests to /api/beatmaps/{id}[/json|/osu|/tags]
func (s *Server) handleBeatmap(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/beatmaps/"), "/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		s.respondError(w, http.StatusBadRequest, "Beatmap ID required")
		return
	}
	if !utils.IsUUID(id) {
		s.respondError(w, http.StatusBadRequest, "Invalid beatmap ID")
		return
	}

	switch {
	case sub == "" && r.Method == http.MethodGet:
		s.handleGetBeatmap(w, r, id)
	case sub == "" && r.Method == http.MethodDelete:
		s.handleDeleteBeatmap(w, r, id)
	case sub == "json" && r.Method == http.MethodGet:
		s.handleBeatmapJSON(w, r, id)
	case sub == "osu" && r.Method == http.MethodGet:
		s.handleBeatmapOsu(w, r, id)
	case sub == "tags" && r.Method == http.MethodPost:
		s.handleTagBeatmap(w, r, id)
	case sub != "" && sub != "json" && sub != "osu" && sub != "tags":
		http.NotFound(w, r)
	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
