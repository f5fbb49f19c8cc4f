package draft

import (
	"fmt"
	"strings"

	"quotation-service/internal/pricing"
)

// fallbackDraft renders the deterministic template for the client's
// language. It carries every field of the quotation, so the response
// contract is identical with and without model-generated prose.
func fallbackDraft(q pricing.Quotation) Draft {
	if q.Client.Lang == pricing.LangArabic {
		return Draft{Subject: fallbackSubject(q), Body: arabicBody(q), Lang: pricing.LangArabic}
	}
	return Draft{Subject: fallbackSubject(q), Body: englishBody(q), Lang: pricing.LangEnglish}
}

func fallbackSubject(q pricing.Quotation) string {
	if q.Client.Lang == pricing.LangArabic {
		return fmt.Sprintf("عرض سعر %s - %s", q.Number, q.Client.Name)
	}
	return fmt.Sprintf("Quotation %s - %s", q.Number, q.Client.Name)
}

func englishBody(q pricing.Quotation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", q.Client.Contact)
	b.WriteString("We are pleased to provide you with the following quotation:\n\n")
	for _, item := range q.Items {
		fmt.Fprintf(&b, "- %s: %d x %s = %s %s\n",
			item.SKU, item.Qty, item.UnitPrice.StringFixed(2), item.LineTotal.StringFixed(2), q.Currency)
	}
	fmt.Fprintf(&b, "\nTotal Amount: %s %s\n", q.GrandTotal.StringFixed(2), q.Currency)
	if q.DeliveryTerms != "" {
		fmt.Fprintf(&b, "Delivery Terms: %s\n", q.DeliveryTerms)
	}
	if q.Notes != "" {
		fmt.Fprintf(&b, "Additional Notes: %s\n", q.Notes)
	}
	b.WriteString("\nWe hope our proposal meets your requirements and look forward to working with you.\n\n")
	b.WriteString("Best regards,\nSales Team")
	return b.String()
}

func arabicBody(q pricing.Quotation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "عزيزي/عزيزتي %s،\n\n", q.Client.Contact)
	b.WriteString("نتشرف بتقديم عرض السعر التالي:\n\n")
	for _, item := range q.Items {
		fmt.Fprintf(&b, "- %s: %d x %s = %s %s\n",
			item.SKU, item.Qty, item.UnitPrice.StringFixed(2), item.LineTotal.StringFixed(2), q.Currency)
	}
	fmt.Fprintf(&b, "\nإجمالي المبلغ: %s %s\n", q.GrandTotal.StringFixed(2), q.Currency)
	if q.DeliveryTerms != "" {
		fmt.Fprintf(&b, "شروط التسليم: %s\n", q.DeliveryTerms)
	}
	if q.Notes != "" {
		fmt.Fprintf(&b, "ملاحظات إضافية: %s\n", q.Notes)
	}
	b.WriteString("\nنأمل أن يحوز عرضنا على رضاكم، ونتطلع للعمل معكم.\n\n")
	b.WriteString("مع أطيب التحيات،\nفريق المبيعات")
	return b.String()
}
