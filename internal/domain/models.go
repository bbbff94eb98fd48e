package domain

// Domain contains core models shared across fetchers, the harvester and publishers.

// Article is one news item as reported by a news source. It is immutable once fetched.
type Article struct {
	ID          string
	Title       string
	Description string
	URL         string
	// PublishedAt is kept exactly as the source reported it.
	PublishedAt string
	Source      string
}
