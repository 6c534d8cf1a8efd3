package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/cloo-solutions/docqa/internal/api"
	"github.com/cloo-solutions/docqa/internal/domain"
	"github.com/cloo-solutions/docqa/internal/pagination"
	"github.com/go-chi/chi/v5"
)

type IngestionService interface {
	Ingest(ctx context.Context, fileName, text string) (*domain.IngestResult, error)
}

type DocumentService interface {
	List(ctx context.Context, limit int, cursor string) (*pagination.PageResult[*domain.Document], error)
	Get(ctx context.Context, documentID string) (*domain.Document, error)
	SourceURL(ctx context.Context, fileName string) (string, error)
}

type DocumentHandler struct {
	ingest IngestionService
	docs   DocumentService
}

func NewDocumentHandler(ingest IngestionService, docs DocumentService) *DocumentHandler {
	return &DocumentHandler{ingest: ingest, docs: docs}
}

type IngestRequest struct {
	FileName string `json:"file_name"`
	Text     string `json:"text"`
}

type IngestResponse struct {
	FileName      string `json:"file_name"`
	ChunksCreated int    `json:"chunks_created"`
	Success       bool   `json:"success"`
	ErrorMessage  string `json:"error_message,omitempty"`
}

type DocumentResponse struct {
	ID         string `json:"id"`
	FileName   string `json:"file_name"`
	ChunkCount int    `json:"chunk_count"`
	CreatedAt  string `json:"created_at"`
}

type ListDocumentsResponse struct {
	Documents []*DocumentResponse `json:"documents"`
	Cursor    string              `json:"cursor,omitempty"`
	HasMore   bool                `json:"has_more"`
}

type SourceResponse struct {
	FileName string `json:"file_name"`
	URL      string `json:"url"`
}

// Ingest handles POST /documents with a JSON body.
func (h *DocumentHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.HandleError(w, r, err)
		return
	}

	h.runIngest(w, r, req.FileName, req.Text)
}

// IngestRaw handles POST /documents/raw?file_name=... with the document as the
// plain-text body.
func (h *DocumentHandler) IngestRaw(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			api.HandleError(w, r, api.ErrBodyTooLarge)
			return
		}
		api.Error(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	if !utf8.Valid(body) {
		api.Error(w, http.StatusBadRequest, "document must be UTF-8 text")
		return
	}

	h.runIngest(w, r, r.URL.Query().Get("file_name"), string(body))
}

func (h *DocumentHandler) runIngest(w http.ResponseWriter, r *http.Request, fileName, text string) {
	result, err := h.ingest.Ingest(r.Context(), fileName, text)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	status := http.StatusCreated
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}
	api.Success(w, status, IngestResponse{
		FileName:      result.FileName,
		ChunksCreated: result.ChunksCreated,
		Success:       result.Success,
		ErrorMessage:  result.ErrorMessage,
	})
}

// List handles GET /documents?limit=&cursor=.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			api.Error(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	page, err := h.docs.List(r.Context(), limit, r.URL.Query().Get("cursor"))
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	docs := make([]*DocumentResponse, len(page.Items))
	for i, doc := range page.Items {
		docs[i] = toDocumentResponse(doc)
	}

	api.Success(w, http.StatusOK, ListDocumentsResponse{
		Documents: docs,
		Cursor:    page.Cursor,
		HasMore:   page.HasMore,
	})
}

// Get handles GET /documents/{fileName}.
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	fileName, err := fileNameParam(r)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	doc, err := h.docs.Get(r.Context(), fileName)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.Success(w, http.StatusOK, toDocumentResponse(doc))
}

// Source handles GET /documents/{fileName}/source.
func (h *DocumentHandler) Source(w http.ResponseWriter, r *http.Request) {
	fileName, err := fileNameParam(r)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	sourceURL, err := h.docs.SourceURL(r.Context(), fileName)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.Success(w, http.StatusOK, SourceResponse{FileName: fileName, URL: sourceURL})
}

// fileNameParam returns the decoded {fileName} path segment. chi matches on
// the raw path when the URL carries escapes such as %2F, leaving the segment
// encoded.
func fileNameParam(r *http.Request) (string, error) {
	fileName := chi.URLParam(r, "fileName")
	if r.URL.RawPath == "" {
		return fileName, nil
	}
	decoded, err := url.PathUnescape(fileName)
	if err != nil {
		return "", domain.NewInvalidArgument("file name is not a valid path segment")
	}
	return decoded, nil
}

func toDocumentResponse(doc *domain.Document) *DocumentResponse {
	return &DocumentResponse{
		ID:         doc.ID,
		FileName:   doc.FileName,
		ChunkCount: doc.ChunkCount,
		CreatedAt:  doc.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}
