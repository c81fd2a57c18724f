package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"docfill/internal/access"
	"docfill/internal/converter"
	"docfill/internal/docx"
	"docfill/internal/pipeline"
	"docfill/internal/resolver"
	"docfill/internal/scanner"
	"docfill/internal/scorer"
	"docfill/internal/storage"
)

const maxUploadBytes = 20 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Templates ---

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.uploadTemplate(w, r)
	case http.MethodGet:
		s.listTemplates(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type templateInfo struct {
	TemplateID     string   `json:"template_id"`
	Name           string   `json:"name"`
	Tokens         []string `json:"tokens"`
	MalformedCount int      `json:"malformed_count"`
}

func (s *Server) uploadTemplate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestUser(r)

	if err := s.access.CheckPermission(ctx, userID, access.ActionUploadTemplate); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	owned, err := s.countTemplates(ctx, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.plans.CheckTemplateLimit(userID, owned); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	data, name, err := readUpload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "empty upload")
		return
	}
	if len(data) > maxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "template too large")
		return
	}

	doc, err := docx.Open(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("not a word document: %v", err))
		return
	}
	named, cleanup, _ := scanner.Normalize(scanner.Scan(doc.Text()))

	seen := make(map[string]bool)
	names := make([]string, 0, len(named))
	for _, tok := range named {
		if !seen[tok.Name] {
			seen[tok.Name] = true
			names = append(names, tok.Name)
		}
	}

	id := uuid.NewString()
	if name == "" {
		name = id + ".docx"
	}
	if _, err := s.store.PutBlob(ctx, pipeline.TemplateKey(id), data); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to store template: %v", err))
		return
	}
	record := storage.Record{
		"name":            name,
		"owner":           userID,
		"uploaded_at":     time.Now().UTC().Format(time.RFC3339),
		"tokens":          names,
		"malformed_count": len(cleanup),
	}
	if err := s.store.PutMetadata(ctx, pipeline.TemplateKey(id), record); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to store template metadata: %v", err))
		return
	}

	s.logger.Info("template uploaded",
		zap.String("template_id", id),
		zap.String("user_id", userID),
		zap.Int("tokens", len(names)))

	writeJSON(w, http.StatusCreated, templateInfo{
		TemplateID:     id,
		Name:           name,
		Tokens:         names,
		MalformedCount: len(cleanup),
	})
}

type templateSummary struct {
	TemplateID string `json:"template_id"`
	Name       string `json:"name"`
	UploadedAt string `json:"uploaded_at,omitempty"`
}

func (s *Server) listTemplates(w http.ResponseWriter, r *http.Request) {
	userID := requestUser(r)
	entries, err := s.store.ListMetadata(r.Context(), "templates/")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	summaries := make([]templateSummary, 0)
	for _, e := range entries {
		if owner, _ := e.Record["owner"].(string); owner != userID {
			continue
		}
		name, _ := e.Record["name"].(string)
		uploadedAt, _ := e.Record["uploaded_at"].(string)
		summaries = append(summaries, templateSummary{
			TemplateID: strings.TrimPrefix(e.Key, "templates/"),
			Name:       name,
			UploadedAt: uploadedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": summaries})
}

func (s *Server) countTemplates(ctx context.Context, userID string) (int, error) {
	entries, err := s.store.ListMetadata(ctx, "templates/")
	if err != nil {
		return 0, fmt.Errorf("failed to list templates: %w", err)
	}
	n := 0
	for _, e := range entries {
		if owner, _ := e.Record["owner"].(string); owner == userID {
			n++
		}
	}
	return n, nil
}

func readUpload(r *http.Request) ([]byte, string, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, "", fmt.Errorf("missing file field: %w", err)
		}
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
		if err != nil {
			return nil, "", fmt.Errorf("failed to read upload: %w", err)
		}
		return data, header.Filename, nil
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read upload: %w", err)
	}
	return data, r.URL.Query().Get("name"), nil
}

// --- Documents ---

type fillRequestBody struct {
	TemplateID string   `json:"template_id"`
	Formats    []string `json:"formats"`
	VesselIMO  string   `json:"vessel_imo"`
}

type fillResponseBody struct {
	DocumentID     string                      `json:"document_id"`
	Quality        scorer.Report               `json:"quality"`
	ResolvedValues []resolver.ResolvedValue    `json:"resolved_values"`
	Issues         []scanner.Issue             `json:"issues"`
	Outcomes       []*converter.Outcome        `json:"outcomes"`
	Outputs        map[converter.Format]string `json:"outputs"`
}

func (s *Server) handleFill(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body fillRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.TemplateID == "" {
		writeError(w, http.StatusBadRequest, "template_id is required")
		return
	}
	formats := make([]converter.Format, 0, len(body.Formats))
	for _, f := range body.Formats {
		format, err := converter.ParseFormat(f)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		formats = append(formats, format)
	}

	resp, err := s.engine.FillAndRender(r.Context(), pipeline.FillRequest{
		UserID:     requestUser(r),
		TemplateID: body.TemplateID,
		Formats:    formats,
		VesselIMO:  body.VesselIMO,
	})
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, fillResponseBody{
		DocumentID:     resp.DocumentID,
		Quality:        resp.Quality,
		ResolvedValues: resp.Fill.ResolvedValues,
		Issues:         resp.Fill.Issues,
		Outcomes:       resp.Outcomes,
		Outputs:        resp.OutputKeys,
	})
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/documents/")
	parts := strings.SplitN(rest, "/", 2)
	if parts[0] == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	switch {
	case len(parts) == 1:
		s.documentStatus(w, r, parts[0])
	case parts[1] == "download":
		s.downloadDocument(w, r, parts[0])
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *Server) documentStatus(w http.ResponseWriter, r *http.Request, id string) {
	record, err := s.store.GetMetadata(r.Context(), pipeline.DocumentKey(id))
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) downloadDocument(w http.ResponseWriter, r *http.Request, id string) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = string(converter.FormatDocx)
	}
	parsed, err := converter.ParseFormat(format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	record, err := s.store.GetMetadata(r.Context(), pipeline.DocumentKey(id))
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	outputs, _ := record["outputs"].(map[string]any)
	key, _ := outputs[string(parsed)].(string)
	if key == "" {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no %s rendering for document %s", parsed, id))
		return
	}

	data, err := s.store.GetBlob(r.Context(), key)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", contentTypeForKey(key))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(key)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// contentTypeForKey picks the media type from the stored key, so degraded
// plain-text fallbacks are served as text even when a pdf was requested.
func contentTypeForKey(key string) string {
	switch path.Ext(key) {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "text/plain; charset=utf-8"
	}
}

// --- Users ---

func (s *Server) handleUserPlan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/users/")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] != "permissions" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	plan := s.plans.PlanFor(parts[0])
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id": parts[0],
		"plan":    plan,
	})
}
