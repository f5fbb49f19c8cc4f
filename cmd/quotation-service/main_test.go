package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"quotation-service/internal/app"
	"quotation-service/internal/cache"
	"quotation-service/internal/config"
	"quotation-service/internal/draft"
	"quotation-service/internal/llm"
	"quotation-service/internal/notify"
	"quotation-service/internal/pdf"
)

func newTestDeps(llmClient llm.Client, notifier notify.Notifier) app.Deps {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	draftCache := cache.NewNoOpCache()
	return app.Deps{
		Config:   config.Config{},
		Log:      log,
		LLM:      llmClient,
		Cache:    draftCache,
		Notifier: notifier,
		Composer: draft.NewComposer(llmClient, draftCache, time.Hour, log),
		PDF:      pdf.NewGenerator(),
	}
}

const validRequest = `{
	"client": {"name": "Acme Corp", "contact": "buyer@acme.example", "lang": "en"},
	"currency": "SAR",
	"items": [{"sku": "A1", "qty": 2, "unit_cost": 100.0, "margin_pct": 10.0}],
	"delivery_terms": "2 weeks"
}`

type errorEnvelope struct {
	Error struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

func TestQuoteHandler(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    string
		setup          func(*llm.MockClient)
		wantStatusCode int
		wantErrorKind  string
		checkResponse  func(*testing.T, quoteResponse)
	}{
		{
			name:        "successful quote with generated draft",
			requestBody: validRequest,
			setup: func(l *llm.MockClient) {
				l.On("Generate", mock.Anything, mock.Anything, "en").
					Return("Subject: Your quotation\n\nDear buyer, see attached.", nil).Once()
			},
			wantStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, resp quoteResponse) {
				q := resp.Quotation
				if len(q.Items) != 1 {
					t.Fatalf("Expected 1 item, got %d", len(q.Items))
				}
				if !q.Items[0].UnitPrice.Equal(decimal.RequireFromString("110")) {
					t.Errorf("Expected unit_price 110.00, got %s", q.Items[0].UnitPrice)
				}
				if !q.Items[0].LineTotal.Equal(decimal.RequireFromString("220")) {
					t.Errorf("Expected line_total 220.00, got %s", q.Items[0].LineTotal)
				}
				if !q.GrandTotal.Equal(decimal.RequireFromString("220")) {
					t.Errorf("Expected grand_total 220.00, got %s", q.GrandTotal)
				}
				if resp.EmailDraft.Subject != "Your quotation" {
					t.Errorf("Expected generated subject, got %q", resp.EmailDraft.Subject)
				}
				if resp.EmailDraft.Lang != "en" {
					t.Errorf("Expected draft lang en, got %q", resp.EmailDraft.Lang)
				}
			},
		},
		{
			name:        "adapter failure falls back to template",
			requestBody: validRequest,
			setup: func(l *llm.MockClient) {
				l.On("Generate", mock.Anything, mock.Anything, "en").
					Return("", &llm.GenerationError{Err: errors.New("timeout")}).Once()
			},
			wantStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, resp quoteResponse) {
				if !strings.Contains(resp.EmailDraft.Body, "A1") {
					t.Error("Fallback draft missing item sku")
				}
				if !strings.Contains(resp.EmailDraft.Body, "220.00") {
					t.Error("Fallback draft missing grand total")
				}
				if resp.EmailDraft.Subject == "" {
					t.Error("Fallback draft missing subject")
				}
			},
		},
		{
			name: "arabic draft is tagged ar even in fallback mode",
			requestBody: `{
				"client": {"name": "Acme Corp", "contact": "buyer@acme.example", "lang": "ar"},
				"currency": "SAR",
				"items": [{"sku": "A1", "qty": 2, "unit_cost": 100.0, "margin_pct": 10.0}]
			}`,
			setup: func(l *llm.MockClient) {
				l.On("Generate", mock.Anything, mock.Anything, "ar").
					Return("", &llm.GenerationError{Err: llm.ErrNotConfigured}).Once()
			},
			wantStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, resp quoteResponse) {
				if resp.EmailDraft.Lang != "ar" {
					t.Errorf("Expected draft lang ar, got %q", resp.EmailDraft.Lang)
				}
				if !strings.Contains(resp.EmailDraft.Body, "220.00") {
					t.Error("Arabic fallback draft missing grand total")
				}
			},
		},
		{
			name:           "invalid JSON payload returns 400",
			requestBody:    `{invalid json}`,
			wantStatusCode: http.StatusBadRequest,
			wantErrorKind:  "validation_error",
		},
		{
			name: "empty item list fails validation",
			requestBody: `{
				"client": {"name": "Acme", "contact": "a@b.c", "lang": "en"},
				"currency": "SAR",
				"items": []
			}`,
			wantStatusCode: http.StatusBadRequest,
			wantErrorKind:  "validation_error",
		},
		{
			name: "zero quantity fails validation",
			requestBody: `{
				"client": {"name": "Acme", "contact": "a@b.c", "lang": "en"},
				"currency": "SAR",
				"items": [{"sku": "A1", "qty": 0, "unit_cost": 10.0, "margin_pct": 0}]
			}`,
			wantStatusCode: http.StatusBadRequest,
			wantErrorKind:  "validation_error",
		},
		{
			name: "negative unit cost is rejected by the calculator",
			requestBody: `{
				"client": {"name": "Acme", "contact": "a@b.c", "lang": "en"},
				"currency": "SAR",
				"items": [{"sku": "A1", "qty": 1, "unit_cost": -5.0, "margin_pct": 0}]
			}`,
			wantStatusCode: http.StatusBadRequest,
			wantErrorKind:  "validation_error",
		},
		{
			name: "unsupported language fails validation",
			requestBody: `{
				"client": {"name": "Acme", "contact": "a@b.c", "lang": "fr"},
				"currency": "SAR",
				"items": [{"sku": "A1", "qty": 1, "unit_cost": 10.0, "margin_pct": 0}]
			}`,
			wantStatusCode: http.StatusBadRequest,
			wantErrorKind:  "validation_error",
		},
		{
			name: "missing client name fails validation",
			requestBody: `{
				"client": {"name": "", "contact": "a@b.c", "lang": "en"},
				"currency": "SAR",
				"items": [{"sku": "A1", "qty": 1, "unit_cost": 10.0, "margin_pct": 0}]
			}`,
			wantStatusCode: http.StatusBadRequest,
			wantErrorKind:  "validation_error",
		},
		{
			name: "malformed currency fails validation",
			requestBody: `{
				"client": {"name": "Acme", "contact": "a@b.c", "lang": "en"},
				"currency": "S4",
				"items": [{"sku": "A1", "qty": 1, "unit_cost": 10.0, "margin_pct": 0}]
			}`,
			wantStatusCode: http.StatusBadRequest,
			wantErrorKind:  "validation_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockLLM := new(llm.MockClient)
			if tt.setup != nil {
				tt.setup(mockLLM)
			}
			deps := newTestDeps(mockLLM, notify.NewNoOpNotifier())
			handler := quoteHandler(deps)

			req := httptest.NewRequest(http.MethodPost, "/api/quotes", bytes.NewBufferString(tt.requestBody))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler(w, req)

			resp := w.Result()
			if resp.StatusCode != tt.wantStatusCode {
				body, _ := io.ReadAll(resp.Body)
				t.Fatalf("Expected status %d, got %d. Body: %s", tt.wantStatusCode, resp.StatusCode, string(body))
			}

			if tt.wantErrorKind != "" {
				var envelope errorEnvelope
				if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
					t.Fatalf("Failed to decode error response: %v", err)
				}
				if envelope.Error.Kind != tt.wantErrorKind {
					t.Errorf("Expected error kind %q, got %q", tt.wantErrorKind, envelope.Error.Kind)
				}
				if envelope.Error.Message == "" {
					t.Error("Expected a descriptive error message")
				}
			}

			if tt.checkResponse != nil {
				var quoteResp quoteResponse
				if err := json.NewDecoder(resp.Body).Decode(&quoteResp); err != nil {
					t.Fatalf("Failed to decode response: %v", err)
				}
				tt.checkResponse(t, quoteResp)
			}

			mockLLM.AssertExpectations(t)
		})
	}
}

func TestQuoteHandlerPublishesEvent(t *testing.T) {
	mockLLM := new(llm.MockClient)
	mockLLM.On("Generate", mock.Anything, mock.Anything, "en").
		Return("Subject: S\n\nB", nil).Once()

	mockNotifier := new(notify.MockNotifier)
	mockNotifier.On("QuoteGenerated", mock.Anything, mock.MatchedBy(func(ev notify.Event) bool {
		return ev.ClientName == "Acme Corp" &&
			ev.Currency == "SAR" &&
			ev.GrandTotal.Equal(decimal.RequireFromString("220"))
	})).Return(nil).Once()

	deps := newTestDeps(mockLLM, mockNotifier)
	handler := quoteHandler(deps)

	req := httptest.NewRequest(http.MethodPost, "/api/quotes", bytes.NewBufferString(validRequest))
	w := httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	mockNotifier.AssertExpectations(t)
}

func TestQuoteHandlerNotifierFailureDoesNotFailRequest(t *testing.T) {
	mockNotifier := new(notify.MockNotifier)
	mockNotifier.On("QuoteGenerated", mock.Anything, mock.Anything).
		Return(errors.New("broker down"))

	deps := newTestDeps(llm.NewStub(), mockNotifier)
	handler := quoteHandler(deps)

	req := httptest.NewRequest(http.MethodPost, "/api/quotes", bytes.NewBufferString(validRequest))
	w := httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Broker outage must not fail the request, got %d", w.Code)
	}
}

func TestQuotePDFHandler(t *testing.T) {
	deps := newTestDeps(llm.NewStub(), notify.NewNoOpNotifier())
	handler := quotePDFHandler(deps)

	req := httptest.NewRequest(http.MethodPost, "/api/quotes/pdf", bytes.NewBufferString(validRequest))
	w := httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d. Body: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Expected application/pdf, got %q", ct)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")) {
		t.Error("Expected PDF magic header in response body")
	}
}

func TestQuotePDFHandlerValidation(t *testing.T) {
	deps := newTestDeps(llm.NewStub(), notify.NewNoOpNotifier())
	handler := quotePDFHandler(deps)

	req := httptest.NewRequest(http.MethodPost, "/api/quotes/pdf", bytes.NewBufferString(`{"items": []}`))
	w := httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}
}

func TestStatusHandler(t *testing.T) {
	w := httptest.NewRecorder()
	statusHandler()(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body["service"] != serviceName {
		t.Errorf("Expected service %q, got %v", serviceName, body["service"])
	}
	if body["status"] != "running" {
		t.Errorf("Expected status running, got %v", body["status"])
	}
}

func TestHealthHandler(t *testing.T) {
	w := httptest.NewRecorder()
	healthHandler()(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("Expected status healthy, got %v", body["status"])
	}
	if _, ok := body["timestamp"]; !ok {
		t.Error("Expected timestamp in health response")
	}
}
