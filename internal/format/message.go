package format

import (
	"context"
	"strings"

	"github.com/Adda-Baaj/bazaar-samachar/internal/domain"
	"github.com/Adda-Baaj/bazaar-samachar/internal/translate"
)

const (
	header        = "🔴 महत्वपूर्ण शेयर बाज़ार समाचार"
	readMoreLabel = "पूरी खबर पढ़ें"
	separator     = "─────────────"

	// descriptionChars is how much of the description is translated and shown.
	descriptionChars = 200
)

// Translator is the part of translate.Adapter the formatter needs.
type Translator interface {
	Translate(ctx context.Context, text string) translate.Result
}

// Message is a rendered channel post.
type Message struct {
	Text string
	// Degraded is set when at least one translation fell back to English.
	Degraded bool
}

// Formatter renders bilingual channel posts.
type Formatter struct {
	tr Translator
}

func New(tr Translator) *Formatter {
	return &Formatter{tr: tr}
}

// Format renders one article. Text is meant for Telegram's Markdown mode and is not
// escaped, so markdown characters in titles can break rendering.
func (f *Formatter) Format(ctx context.Context, a domain.Article) Message {
	title := f.tr.Translate(ctx, a.Title)
	desc := f.tr.Translate(ctx, firstRunes(a.Description, descriptionChars))

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")
	b.WriteString("📰 " + title.Text + "\n\n")
	b.WriteString("📝 " + desc.Text + "\n\n")
	b.WriteString("🕐 " + a.PublishedAt + "\n\n")
	b.WriteString("🔗 [" + readMoreLabel + "](" + a.URL + ")\n\n")
	b.WriteString(separator + "\n")
	b.WriteString("🇬🇧 " + a.Title)

	return Message{
		Text:     b.String(),
		Degraded: title.Fallback() || desc.Fallback(),
	}
}

func firstRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
