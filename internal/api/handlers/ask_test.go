package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cloo-solutions/docqa/internal/domain"
	"github.com/cloo-solutions/docqa/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func postAsk(h *AskHandler, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.Ask(w, httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(body)))
	return w
}

func TestAskHandler_Success(t *testing.T) {
	svc := new(MockAnswerService)
	h := NewAskHandler(svc, nil, 5)

	svc.On("Ask", mock.Anything, service.AskInput{Question: "Refunds?", TopK: 3, FileName: "policy.md"}).
		Return(&domain.AnswerResult{Answer: "30 days.", Citations: []string{"policy.md: Refunds..."}}, nil)

	w := postAsk(h, `{"question":"Refunds?","top_k":3,"file_name":"policy.md"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp AskResponse
	decodeData(t, w.Body.Bytes(), &resp)
	assert.Equal(t, "30 days.", resp.Answer)
	assert.Equal(t, []string{"policy.md: Refunds..."}, resp.Citations)
	assert.Empty(t, resp.AskID)
}

func TestAskHandler_DefaultTopK(t *testing.T) {
	svc := new(MockAnswerService)
	h := NewAskHandler(svc, nil, 5)

	svc.On("Ask", mock.Anything, service.AskInput{Question: "Q?", TopK: 5}).
		Return(&domain.AnswerResult{Answer: "A", Citations: nil}, nil)

	w := postAsk(h, `{"question":"Q?"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"citations":[]`)
	svc.AssertExpectations(t)
}

func TestAskHandler_ExplicitZeroTopKIsPassedThrough(t *testing.T) {
	svc := new(MockAnswerService)
	h := NewAskHandler(svc, nil, 5)

	svc.On("Ask", mock.Anything, service.AskInput{Question: "Q?", TopK: 0}).Return(nil, domain.ErrInvalidTopK)

	w := postAsk(h, `{"question":"Q?","top_k":0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAskHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"empty question", domain.ErrEmptyQuestion, http.StatusBadRequest},
		{"embedding failure", domain.NewEmbeddingServiceFailure(errors.New("down")), http.StatusServiceUnavailable},
		{"chat failure", domain.NewChatServiceFailure(errors.New("down")), http.StatusServiceUnavailable},
		{"store failure", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockAnswerService)
			h := NewAskHandler(svc, nil, 5)
			svc.On("Ask", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := postAsk(h, `{"question":"Q?"}`)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestAskHandler_InvalidBody(t *testing.T) {
	svc := new(MockAnswerService)
	h := NewAskHandler(svc, nil, 5)

	w := postAsk(h, `{"question": 12}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Ask", mock.Anything, mock.Anything)
}

func TestAskHandler_LogsAnsweredQuestions(t *testing.T) {
	svc := new(MockAnswerService)
	logRepo := new(MockAskLogRepository)
	h := NewAskHandler(svc, logRepo, 5)

	svc.On("Ask", mock.Anything, mock.Anything).
		Return(&domain.AnswerResult{Answer: "A", Citations: []string{"a.md: x"}}, nil)
	logRepo.On("CreateAskLog", mock.Anything, mock.MatchedBy(func(e service.AskLogEntry) bool {
		return e.Question == "Q?" && e.TopK == 5 && len(e.Citations) == 1
	})).Return("ask-1", nil)

	w := postAsk(h, `{"question":"Q?"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp AskResponse
	decodeData(t, w.Body.Bytes(), &resp)
	assert.Equal(t, "ask-1", resp.AskID)
	logRepo.AssertExpectations(t)
}

func TestAskHandler_LogFailureDoesNotFailRequest(t *testing.T) {
	svc := new(MockAnswerService)
	logRepo := new(MockAskLogRepository)
	h := NewAskHandler(svc, logRepo, 5)

	svc.On("Ask", mock.Anything, mock.Anything).Return(&domain.AnswerResult{Answer: "A", Citations: []string{}}, nil)
	logRepo.On("CreateAskLog", mock.Anything, mock.Anything).Return("", errors.New("db down"))

	w := postAsk(h, `{"question":"Q?"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}
