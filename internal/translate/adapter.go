package translate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/Adda-Baaj/bazaar-samachar/internal/logger"
)

const (
	// DefaultMaxChars is the longest input the translation service accepts.
	DefaultMaxChars = 4500
	DefaultSource   = "en"
	DefaultTarget   = "hi"
)

var errEmptyTranslation = errors.New("empty translation")

// Translator is an external translation capability.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// Cache stores finished translations by key.
type Cache interface {
	Get(key string) (string, bool, error)
	Put(key, value string) error
}

// Kind tells callers whether a Result carries real or degraded output.
type Kind int

const (
	Translated Kind = iota
	FallbackOriginal
)

// Result is the outcome of one adapter call.
type Result struct {
	Text string
	Kind Kind
	// Err is the translator failure behind a FallbackOriginal result.
	Err error
}

// Fallback reports whether the result is the untranslated input.
func (r Result) Fallback() bool { return r.Kind == FallbackOriginal }

// Adapter wraps a Translator with truncation, an optional cache and fallback to the source text.
type Adapter struct {
	translator Translator
	cache      Cache
	source     string
	target     string
	maxChars   int
	log        logger.Logger
}

// Option customises an Adapter.
type Option func(*Adapter)

func WithCache(c Cache) Option { return func(a *Adapter) { a.cache = c } }

func WithLanguages(source, target string) Option {
	return func(a *Adapter) {
		if source != "" {
			a.source = source
		}
		if target != "" {
			a.target = target
		}
	}
}

func WithMaxChars(n int) Option {
	return func(a *Adapter) {
		if n > 0 {
			a.maxChars = n
		}
	}
}

func WithLogger(l logger.Logger) Option { return func(a *Adapter) { a.log = logger.OrNop(l) } }

// NewAdapter translates en -> hi with a 4500 character limit unless options say otherwise.
func NewAdapter(t Translator, opts ...Option) *Adapter {
	a := &Adapter{
		translator: t,
		source:     DefaultSource,
		target:     DefaultTarget,
		maxChars:   DefaultMaxChars,
		log:        logger.NopLogger{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Translate never fails: on any error the original text comes back as FallbackOriginal.
func (a *Adapter) Translate(ctx context.Context, text string) Result {
	if text == "" {
		return Result{Text: "", Kind: Translated}
	}

	input := truncateRunes(text, a.maxChars)
	key := cacheKey(a.source, a.target, input)

	if a.cache != nil {
		if cached, ok, err := a.cache.Get(key); err != nil {
			a.log.WarnObj("translation cache read failed", "translate_cache_error", map[string]any{
				"error": err.Error(),
			})
		} else if ok {
			return Result{Text: cached, Kind: Translated}
		}
	}

	out, err := a.translator.Translate(ctx, input, a.source, a.target)
	if err == nil && strings.TrimSpace(out) == "" {
		err = errEmptyTranslation
	}
	if err != nil {
		a.log.WarnObj("translation failed, using original text", "translate_fallback", map[string]any{
			"source": a.source,
			"target": a.target,
			"chars":  len([]rune(input)),
			"error":  err.Error(),
		})
		return Result{Text: text, Kind: FallbackOriginal, Err: err}
	}

	if a.cache != nil {
		if err := a.cache.Put(key, out); err != nil {
			a.log.WarnObj("translation cache write failed", "translate_cache_error", map[string]any{
				"error": err.Error(),
			})
		}
	}
	return Result{Text: out, Kind: Translated}
}

// truncateRunes keeps the first n characters of s.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func cacheKey(source, target, text string) string {
	sum := sha256.Sum256([]byte(source + "|" + target + "|" + text))
	return hex.EncodeToString(sum[:])
}
