package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/cloo-solutions/docqa/internal/api"
	"github.com/cloo-solutions/docqa/internal/domain"
	"github.com/cloo-solutions/docqa/internal/service"
	"github.com/cloo-solutions/docqa/internal/telemetry"
)

type AnswerService interface {
	Ask(ctx context.Context, input service.AskInput) (*domain.AnswerResult, error)
}

type AskHandler struct {
	svc         AnswerService
	logRepo     service.AskLogRepository
	defaultTopK int
}

// NewAskHandler creates an AskHandler. logRepo may be nil.
func NewAskHandler(svc AnswerService, logRepo service.AskLogRepository, defaultTopK int) *AskHandler {
	return &AskHandler{svc: svc, logRepo: logRepo, defaultTopK: defaultTopK}
}

// AskRequest is the body of POST /ask. A missing top_k falls back to the
// server default; an explicit non-positive value is rejected.
type AskRequest struct {
	Question   string `json:"question"`
	TopK       *int   `json:"top_k,omitempty"`
	FileName   string `json:"file_name,omitempty"`
	DocumentID string `json:"document_id,omitempty"`
}

type AskResponse struct {
	Answer    string   `json:"answer"`
	Citations []string `json:"citations"`
	AskID     string   `json:"ask_id,omitempty"`
}

// Ask handles POST /ask.
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req AskRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.HandleError(w, r, err)
		return
	}

	topK := h.defaultTopK
	if req.TopK != nil {
		topK = *req.TopK
	}

	input := service.AskInput{
		Question:   req.Question,
		TopK:       topK,
		FileName:   req.FileName,
		DocumentID: req.DocumentID,
	}

	result, err := h.svc.Ask(r.Context(), input)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	resp := AskResponse{
		Answer:    result.Answer,
		Citations: result.Citations,
	}
	if resp.Citations == nil {
		resp.Citations = []string{}
	}

	if h.logRepo != nil {
		entry := service.AskLogEntry{
			Question:   input.Question,
			TopK:       input.TopK,
			FileName:   input.FileName,
			DocumentID: input.DocumentID,
			Citations:  resp.Citations,
			DurationMs: int(time.Since(start).Milliseconds()),
		}
		askID, err := h.logRepo.CreateAskLog(r.Context(), entry)
		if err != nil {
			telemetry.AddBreadcrumb(r.Context(), "ask_log", "failed to record ask: "+err.Error())
		} else {
			resp.AskID = askID
		}
	}

	api.Success(w, http.StatusOK, resp)
}
