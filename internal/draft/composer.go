package draft

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"quotation-service/internal/cache"
	"quotation-service/internal/llm"
	"quotation-service/internal/pricing"
)

// Draft is the email text accompanying a quotation.
type Draft struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Lang    string `json:"lang"`
}

// Composer turns a priced quotation into an email draft. It delegates
// prose to the generation provider and falls back to a deterministic
// template whenever the provider is unavailable or fails; the caller
// always gets a complete draft either way.
type Composer struct {
	llm   llm.Client
	cache cache.Cache
	ttl   time.Duration
	log   *slog.Logger
}

// NewComposer wires the composer against its generation provider and
// draft cache. Both are chosen once at startup.
func NewComposer(client llm.Client, c cache.Cache, ttl time.Duration, log *slog.Logger) *Composer {
	return &Composer{llm: client, cache: c, ttl: ttl, log: log}
}

// Compose produces the email draft for q in the client's language.
// Provider failures never escape: at most one generation attempt is
// made, then the template path answers.
func (c *Composer) Compose(ctx context.Context, q pricing.Quotation) (Draft, error) {
	lang := q.Client.Lang
	if !pricing.SupportedLang(lang) {
		return Draft{}, &pricing.ValidationError{Field: "client.lang", Reason: `must be "en" or "ar"`}
	}

	prompt := buildPrompt(q)
	key := cache.Key(lang, prompt)

	if cached, err := c.cache.GetDraft(ctx, key); err == nil && cached != nil {
		c.log.Debug("draft cache hit", "quote", q.Number)
		return Draft{Subject: cached.Subject, Body: cached.Body, Lang: cached.Lang}, nil
	} else if err != nil {
		c.log.Warn("draft cache read failed", "err", err)
	}

	text, err := c.llm.Generate(ctx, prompt, lang)
	if err != nil {
		c.log.Warn("generation unavailable, using template draft", "err", err, "quote", q.Number)
		return fallbackDraft(q), nil
	}

	d := Draft{Lang: lang}
	d.Subject, d.Body = splitSubject(text, q)

	if err := c.cache.SetDraft(ctx, key, &cache.Draft{Subject: d.Subject, Body: d.Body, Lang: d.Lang}, c.ttl); err != nil {
		// A failed cache write only costs the next request a model call.
		c.log.Warn("draft cache write failed", "err", err)
	}
	return d, nil
}

// buildPrompt renders the full quotation as a structured prompt so the
// model has every figure it is allowed to mention.
func buildPrompt(q pricing.Quotation) string {
	var b strings.Builder
	if q.Client.Lang == pricing.LangArabic {
		fmt.Fprintf(&b, "اكتب مسودة بريد إلكتروني احترافية لعرض السعر التالي للعميل %s (%s).\n", q.Client.Name, q.Client.Contact)
	} else {
		fmt.Fprintf(&b, "Write a professional quotation email draft for client %s (%s).\n", q.Client.Name, q.Client.Contact)
	}
	fmt.Fprintf(&b, "Quotation %s, currency %s.\nItems:\n", q.Number, q.Currency)
	for _, item := range q.Items {
		fmt.Fprintf(&b, "- %s: qty %d, unit price %s, line total %s\n",
			item.SKU, item.Qty, item.UnitPrice.StringFixed(2), item.LineTotal.StringFixed(2))
	}
	fmt.Fprintf(&b, "Grand total: %s %s\n", q.GrandTotal.StringFixed(2), q.Currency)
	if q.DeliveryTerms != "" {
		fmt.Fprintf(&b, "Delivery terms: %s\n", q.DeliveryTerms)
	}
	if q.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", q.Notes)
	}
	return b.String()
}

// splitSubject separates the "Subject:" first line the provider was
// instructed to emit. When the convention is not followed the whole
// text becomes the body under a deterministic subject, so the draft
// shape never depends on model behavior.
func splitSubject(text string, q pricing.Quotation) (subject, body string) {
	trimmed := strings.TrimSpace(text)
	first, rest, _ := strings.Cut(trimmed, "\n")
	for _, prefix := range []string{"Subject:", "الموضوع:"} {
		if strings.HasPrefix(first, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(first, prefix)), strings.TrimSpace(rest)
		}
	}
	return fallbackSubject(q), trimmed
}
