// Package config loads runtime settings from an optional YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Adda-Baaj/bazaar-samachar/internal/filter"
	"github.com/Adda-Baaj/bazaar-samachar/internal/translate"
	"github.com/Adda-Baaj/bazaar-samachar/pkg/providers"
)

const (
	envPrefix         = "SAMACHAR"
	defaultConfigName = "samachar"
	defaultConfigDir  = "./config"
)

type Config struct {
	Telegram   TelegramConfig   `mapstructure:"telegram"   yaml:"telegram"`
	News       NewsConfig       `mapstructure:"news"       yaml:"news"`
	Translate  TranslateConfig  `mapstructure:"translate"  yaml:"translate"`
	Harvester  HarvesterConfig  `mapstructure:"harvester"  yaml:"harvester"`
	Publishers PublishersConfig `mapstructure:"publishers" yaml:"publishers"`
	Log        LogConfig        `mapstructure:"log"        yaml:"log"`
}

type TelegramConfig struct {
	Token       string        `mapstructure:"token"        yaml:"token"`
	ChannelID   string        `mapstructure:"channel_id"   yaml:"channel_id"`
	APIURL      string        `mapstructure:"api_url"      yaml:"api_url"`
	PollTimeout time.Duration `mapstructure:"poll_timeout" yaml:"poll_timeout"`
}

type NewsConfig struct {
	Provider           string            `mapstructure:"provider"            yaml:"provider"` // "marketaux" or "rss"
	APIKey             string            `mapstructure:"api_key"             yaml:"api_key"`
	Endpoint           string            `mapstructure:"endpoint"            yaml:"endpoint"`
	Language           string            `mapstructure:"language"            yaml:"language"`
	Limit              int               `mapstructure:"limit"               yaml:"limit"`
	Lookback           time.Duration     `mapstructure:"lookback"            yaml:"lookback"`
	Timeout            time.Duration     `mapstructure:"timeout"             yaml:"timeout"`
	Feeds              []string          `mapstructure:"feeds"               yaml:"feeds"`
	Headers            map[string]string `mapstructure:"headers"             yaml:"headers"`
	RequestDelay       time.Duration     `mapstructure:"request_delay"       yaml:"request_delay"` // between page scrapes
	EnrichDescriptions bool              `mapstructure:"enrich_descriptions" yaml:"enrich_descriptions"`
}

type TranslateConfig struct {
	Endpoint  string `mapstructure:"endpoint"   yaml:"endpoint"`
	Source    string `mapstructure:"source"     yaml:"source"`
	Target    string `mapstructure:"target"     yaml:"target"`
	MaxChars  int    `mapstructure:"max_chars"  yaml:"max_chars"`
	CachePath string `mapstructure:"cache_path" yaml:"cache_path"` // empty disables the cache
}

type HarvesterConfig struct {
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
	Pause    time.Duration `mapstructure:"pause"    yaml:"pause"`
	Keywords []string      `mapstructure:"keywords" yaml:"keywords"`
}

type PublishersConfig struct {
	File string `mapstructure:"file" yaml:"file"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"` // "json" or "console"
}

// Load reads settings. With an empty path ./config/samachar.yaml is used when present;
// an explicit path must exist.
func Load(path string) (*Config, error) {
	v := newViper()

	if path = strings.TrimSpace(path); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName(defaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(defaultConfigDir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.normalize()
	return &cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The secrets also answer to their conventional unprefixed names.
	_ = v.BindEnv("telegram.token", envPrefix+"_TELEGRAM_TOKEN", "TELEGRAM_BOT_TOKEN")
	_ = v.BindEnv("news.api_key", envPrefix+"_NEWS_API_KEY", "NEWS_API_KEY")
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.channel_id", "@stockmarket_important_news")
	v.SetDefault("telegram.api_url", "https://api.telegram.org")
	v.SetDefault("telegram.poll_timeout", 30*time.Second)

	v.SetDefault("news.provider", providers.ProviderTypeMarketaux)
	v.SetDefault("news.api_key", "")
	v.SetDefault("news.endpoint", providers.DefaultMarketauxEndpoint)
	v.SetDefault("news.language", "en")
	v.SetDefault("news.limit", 50)
	v.SetDefault("news.lookback", 2*time.Hour)
	v.SetDefault("news.timeout", 10*time.Second)
	v.SetDefault("news.feeds", []string{})
	v.SetDefault("news.enrich_descriptions", false)
	v.SetDefault("news.headers", map[string]string{})
	v.SetDefault("news.request_delay", time.Duration(0))

	v.SetDefault("translate.endpoint", translate.DefaultGoogleEndpoint)
	v.SetDefault("translate.source", translate.DefaultSource)
	v.SetDefault("translate.target", translate.DefaultTarget)
	v.SetDefault("translate.max_chars", translate.DefaultMaxChars)
	v.SetDefault("translate.cache_path", "")

	v.SetDefault("harvester.interval", 15*time.Minute)
	v.SetDefault("harvester.pause", 2*time.Second)
	v.SetDefault("harvester.keywords", filter.DefaultKeywords)

	v.SetDefault("publishers.file", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

func (c *Config) normalize() {
	c.Telegram.Token = strings.TrimSpace(c.Telegram.Token)
	c.Telegram.ChannelID = strings.TrimSpace(c.Telegram.ChannelID)
	c.News.Provider = strings.ToLower(strings.TrimSpace(c.News.Provider))
	c.News.APIKey = strings.TrimSpace(c.News.APIKey)

	feeds := c.News.Feeds[:0]
	for _, f := range c.News.Feeds {
		if f = strings.TrimSpace(f); f != "" {
			feeds = append(feeds, f)
		}
	}
	c.News.Feeds = feeds
}

// Validate reports the first setting that would keep the bot from running.
func (c *Config) Validate() error {
	switch {
	case c.Telegram.Token == "":
		return errors.New("telegram.token is required (set TELEGRAM_BOT_TOKEN)")
	case c.Telegram.ChannelID == "":
		return errors.New("telegram.channel_id is required")
	case c.Harvester.Interval <= 0:
		return fmt.Errorf("harvester.interval must be positive, got %s", c.Harvester.Interval)
	case c.Harvester.Pause < 0:
		return fmt.Errorf("harvester.pause must not be negative, got %s", c.Harvester.Pause)
	case c.News.Timeout <= 0:
		return fmt.Errorf("news.timeout must be positive, got %s", c.News.Timeout)
	case c.News.RequestDelay < 0:
		return fmt.Errorf("news.request_delay must not be negative, got %s", c.News.RequestDelay)
	case c.News.Limit <= 0:
		return fmt.Errorf("news.limit must be positive, got %d", c.News.Limit)
	case c.Translate.MaxChars <= 0:
		return fmt.Errorf("translate.max_chars must be positive, got %d", c.Translate.MaxChars)
	}

	switch c.News.Provider {
	case providers.ProviderTypeMarketaux:
		if c.News.APIKey == "" {
			return errors.New("news.api_key is required for marketaux (set NEWS_API_KEY)")
		}
	case providers.ProviderTypeRSS:
		if len(c.News.Feeds) == 0 {
			return errors.New("news.feeds must list at least one feed for the rss provider")
		}
	default:
		return fmt.Errorf("news.provider %q is not supported", c.News.Provider)
	}
	return nil
}

// Provider turns the news section into a fetcher descriptor.
func (c *Config) Provider() providers.Provider {
	return providers.Provider{
		ID:       c.News.Provider,
		Type:     c.News.Provider,
		Endpoint: c.News.Endpoint,
		APIKey:   c.News.APIKey,
		Language: c.News.Language,
		Limit:    c.News.Limit,
		Lookback: c.News.Lookback,
		Timeout:  c.News.Timeout,
		Feeds:    c.News.Feeds,
		Headers:  c.News.Headers,

		RequestDelayMS: int(c.News.RequestDelay / time.Millisecond),
	}
}
