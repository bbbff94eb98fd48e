package httpclient

import (
	"regexp"
)

var (
	botTokenPattern = regexp.MustCompile(`/bot[^/]+/`)
	apiTokenPattern = regexp.MustCompile(`(?i)(api_token|apikey|api_key|token)=[^&\s"]+`)
)

// redact hides credentials that travel in request paths or query strings.
func redact(s string) string {
	s = botTokenPattern.ReplaceAllString(s, "/bot<redacted>/")
	return apiTokenPattern.ReplaceAllString(s, "$1=<redacted>")
}

// requestError carries a redacted message while keeping the cause unwrappable.
type requestError struct {
	msg string
	err error
}

func (e *requestError) Error() string { return e.msg }
func (e *requestError) Unwrap() error { return e.err }

func wrap(method, url string, err error) error {
	return &requestError{
		msg: method + " " + redact(url) + ": " + redact(err.Error()),
		err: err,
	}
}
