package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Aireenelz/rag-employee-learning-system/internal/apperr"
	"github.com/Aireenelz/rag-employee-learning-system/internal/auth"
	"github.com/Aireenelz/rag-employee-learning-system/internal/document"
)

type DocumentHandler struct {
	svc *document.Service
}

func NewDocumentHandler(svc *document.Service) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

// Upload ingests a file end to end: blob, record, chunks, vectors. Admin
// only. Tags arrive as a comma-separated form value.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if !user.IsAdmin() {
		writeAppError(w, apperr.Permission("admin role required to upload documents"))
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeAppError(w, apperr.Validation("invalid multipart form"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeAppError(w, apperr.Validation("file required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeAppError(w, apperr.Validation("unreadable upload: %v", err))
		return
	}

	docID, err := h.svc.Ingest(r.Context(), document.IngestRequest{
		Data:        data,
		Filename:    header.Filename,
		Tags:        parseTags(r.FormValue("tags")),
		AccessLevel: r.FormValue("access_level"),
		Owner:       user.Email,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"document_id": docID.String(),
		"filename":    header.Filename,
	})
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 {
		limit = 20
	}

	docs, err := h.svc.List(r.Context(), limit, offset)
	if err != nil {
		writeAppError(w, apperr.Dependency("list documents", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"documents": docs, "count": len(docs)})
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, apperr.Validation("invalid document ID"))
		return
	}

	doc, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "document not found"})
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

type updateDocumentRequest struct {
	Tags        []string `json:"tags"`
	AccessLevel string   `json:"access_level"`
}

// Update patches tags and/or access level. Admin only. The response reports
// whether the denormalized chunk copies were updated inline; false means a
// background resync is queued.
func (h *DocumentHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !auth.UserFromContext(r.Context()).IsAdmin() {
		writeAppError(w, apperr.Permission("admin role required to update documents"))
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, apperr.Validation("invalid document ID"))
		return
	}

	var req updateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAppError(w, apperr.Validation("invalid request body"))
		return
	}

	summary, err := h.svc.Update(r.Context(), id, document.UpdateRequest{
		Tags:        req.Tags,
		AccessLevel: req.AccessLevel,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !auth.UserFromContext(r.Context()).IsAdmin() {
		writeAppError(w, apperr.Permission("admin role required to delete documents"))
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, apperr.Validation("invalid document ID"))
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func parseTags(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
