package filter

import "strings"

// DefaultKeywords marks articles worth publishing to the market news channel.
var DefaultKeywords = []string{
	"fed", "interest rate", "inflation", "gdp", "earnings", "profit", "loss",
	"merger", "ipo", "dividend", "crude oil", "gold", "recession", "nse",
	"bse", "sensex", "nifty", "rbi", "sebi",
}

// Keywords is a substring based relevance predicate over article text.
type Keywords struct {
	words []string
}

// NewKeywords normalises the given keywords to lowercase and drops blanks.
// A nil slice falls back to DefaultKeywords.
func NewKeywords(words []string) *Keywords {
	if words == nil {
		words = DefaultKeywords
	}
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		out = append(out, w)
	}
	return &Keywords{words: out}
}

// Important reports whether any keyword occurs in title+description, ignoring case.
// Plain substring match: "loss" also matches "glossy".
func (k *Keywords) Important(title, description string) bool {
	text := strings.ToLower(title + description)
	for _, w := range k.words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// Words returns a copy of the normalised keyword list.
func (k *Keywords) Words() []string {
	out := make([]string, len(k.words))
	copy(out, k.words)
	return out
}
