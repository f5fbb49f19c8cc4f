package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"quotation-service/internal/app"
	"quotation-service/internal/draft"
	"quotation-service/internal/httputil"
	"quotation-service/internal/notify"
	"quotation-service/internal/pricing"
)

const serviceName = "quotation-service"

type clientRequest struct {
	Name    string `json:"name" validate:"required"`
	Contact string `json:"contact" validate:"required"`
	Lang    string `json:"lang" validate:"required,oneof=en ar"`
}

type itemRequest struct {
	SKU       string          `json:"sku" validate:"required"`
	Qty       int             `json:"qty" validate:"required,gt=0"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	MarginPct decimal.Decimal `json:"margin_pct"`
}

type quoteRequest struct {
	Client        clientRequest `json:"client" validate:"required"`
	Currency      string        `json:"currency" validate:"required,len=3,alpha"`
	Items         []itemRequest `json:"items" validate:"required,min=1,dive"`
	DeliveryTerms string        `json:"delivery_terms"`
	Notes         string        `json:"notes"`
}

type quoteResponse struct {
	Quotation  pricing.Quotation `json:"quotation"`
	EmailDraft draft.Draft       `json:"email_draft"`
}

func main() {
	deps, err := app.Build()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	defer deps.Cache.Close()
	defer deps.Notifier.Close()

	r := httputil.NewRouter(deps.Log)
	r.Post("/api/quotes", quoteHandler(deps))
	r.Post("/api/quotes/pdf", quotePDFHandler(deps))
	r.Get("/", statusHandler())
	r.Get("/healthz", healthHandler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", deps.Config.Port), Handler: r}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		deps.Log.Info("quotation service listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		deps.Log.Error("server stopped", "err", err)
	}
}

func quoteHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, ok := parseQuote(deps, w, r)
		if !ok {
			return
		}
		d, err := deps.Composer.Compose(r.Context(), q)
		if err != nil {
			writeQuoteError(deps, w, err)
			return
		}
		publishQuote(r.Context(), deps, q, d)
		httputil.WriteJSON(w, http.StatusOK, quoteResponse{Quotation: q, EmailDraft: d})
	}
}

func quotePDFHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, ok := parseQuote(deps, w, r)
		if !ok {
			return
		}
		out, err := deps.PDF.Render(q)
		if err != nil {
			httputil.WriteError(deps.Log, w, httputil.KindInternalError, "failed to render quotation pdf", err, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", q.Number+".pdf"))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(out); err != nil {
			deps.Log.Warn("pdf response write failed", "err", err)
		}
	}
}

// parseQuote decodes, validates and prices the request body. On failure
// it writes the error response and reports false.
func parseQuote(deps app.Deps, w http.ResponseWriter, r *http.Request) (pricing.Quotation, bool) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(deps.Log, w, httputil.KindValidationError, "invalid payload", err, http.StatusBadRequest)
		return pricing.Quotation{}, false
	}
	if err := httputil.Validator.Struct(&req); err != nil {
		httputil.ValidationFailed(deps.Log, w, err)
		return pricing.Quotation{}, false
	}

	items := make([]pricing.LineItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = pricing.LineItem{SKU: it.SKU, Qty: it.Qty, UnitCost: it.UnitCost, MarginPct: it.MarginPct}
	}
	q, err := pricing.NewQuotation(pricing.Params{
		Client:        pricing.Client{Name: req.Client.Name, Contact: req.Client.Contact, Lang: req.Client.Lang},
		Currency:      req.Currency,
		Items:         items,
		DeliveryTerms: req.DeliveryTerms,
		Notes:         req.Notes,
	})
	if err != nil {
		writeQuoteError(deps, w, err)
		return pricing.Quotation{}, false
	}
	return q, true
}

func writeQuoteError(deps app.Deps, w http.ResponseWriter, err error) {
	var verr *pricing.ValidationError
	if errors.As(err, &verr) {
		httputil.WriteError(deps.Log, w, httputil.KindValidationError, verr.Error(), err, http.StatusBadRequest)
		return
	}
	httputil.WriteError(deps.Log, w, httputil.KindInternalError, "failed to compute quotation", err, http.StatusInternalServerError)
}

// publishQuote announces the generated quotation for downstream mailers.
// Delivery is best effort; a broker outage never fails the request.
func publishQuote(ctx context.Context, deps app.Deps, q pricing.Quotation, d draft.Draft) {
	ev := notify.Event{
		QuoteID:    q.ID,
		Number:     q.Number,
		ClientName: q.Client.Name,
		Contact:    q.Client.Contact,
		Lang:       q.Client.Lang,
		Currency:   q.Currency,
		GrandTotal: q.GrandTotal,
		Subject:    d.Subject,
		CreatedAt:  q.GeneratedAt,
	}
	if err := notify.PublishWithRetry(ctx, deps.Notifier, ev, 3, 200*time.Millisecond); err != nil {
		deps.Log.Warn("failed to publish quote event", "err", err, "quote", q.Number)
	}
}

func statusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"service": serviceName,
			"status":  "running",
		})
	}
}

func healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}
