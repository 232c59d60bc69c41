package service

import (
	"fmt"
	"strings"

	recdom "leadrelay/internal/services/records/domain"
)

// digest renders the notification sent to the target channel. The original
// text rides below a three line header so operators can triage without
// opening the source chat
func digest(rec recdom.Record) string {
	lang := rec.Language
	if lang == "" {
		lang = "n/a"
	}
	sender := rec.SenderName
	if sender == "" {
		sender = rec.SenderID
	}

	var b strings.Builder
	fmt.Fprintf(&b, "New lead: %s (%d%%)\n", rec.Service, rec.Confidence)
	fmt.Fprintf(&b, "Urgency %d/5 | lang %s\n", rec.Urgency, lang)
	fmt.Fprintf(&b, "From %s in %s\n\n", sender, rec.ChatID)
	b.WriteString(rec.Text)
	return b.String()
}
