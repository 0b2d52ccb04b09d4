package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lorekeep/iris/src/iris/data"
	"gorm.io/gorm"
)

type Config struct {
	Token      string
	GuildID    string
	ChannelIDs []string

	RedisURL string
	MySQLDSN string

	WikiBaseURL string
	WikiDomain  string

	WebSearchURL string
	WebSearchKey string
	WebSearchCX  string

	HTTPAddr string

	MarkTTL time.Duration
	Backoff time.Duration

	TumblrTag      string
	TwitterMention string
}

// Load reads configuration from the settings table with environment
// fallbacks. db may be nil, in which case only the environment is consulted.
func Load(db *gorm.DB) Config {
	if db != nil {
		if err := data.LoadSettings(db); err != nil {
			log.Printf("Failed to load settings: %v", err)
		}
	}

	cfg := Config{
		Token:          get("discord_token", "DISCORD_TOKEN", ""),
		GuildID:        get("guild_id", "GUILD_ID", ""),
		RedisURL:       get("redis_url", "REDIS_URL", "redis://127.0.0.1:6379/0"),
		MySQLDSN:       os.Getenv("MYSQL_DSN"),
		WikiBaseURL:    get("wiki_base_url", "WIKI_BASE_URL", "https://choices-stories-you-play.fandom.com"),
		WebSearchURL:   get("web_search_url", "WEB_SEARCH_URL", "https://www.googleapis.com/customsearch/v1"),
		WebSearchKey:   get("web_search_key", "WEB_SEARCH_KEY", ""),
		WebSearchCX:    get("web_search_cx", "WEB_SEARCH_CX", ""),
		HTTPAddr:       get("http_addr", "HTTP_ADDR", ":8087"),
		MarkTTL:        duration("mark_ttl", "MARK_TTL", 0),
		Backoff:        duration("restart_backoff", "RESTART_BACKOFF", 15*time.Second),
		TumblrTag:      get("tumblr_tag", "TUMBLR_TAG", "%23playchoices"),
		TwitterMention: get("twitter_mention", "TWITTER_MENTION", "%40playchoices"),
	}

	if channels := get("channel_ids", "CHANNEL_IDS", ""); channels != "" {
		for _, id := range strings.Split(channels, ",") {
			if id = strings.TrimSpace(id); id != "" {
				cfg.ChannelIDs = append(cfg.ChannelIDs, id)
			}
		}
	}

	cfg.WikiDomain = domainOf(cfg.WikiBaseURL)

	return cfg
}

func get(name, envKey, defaultValue string) string {
	val := data.GetSetting(name)
	if val == "" {
		val = os.Getenv(envKey)
	}
	if val == "" {
		val = defaultValue
	}
	return val
}

func duration(name, envKey string, defaultValue time.Duration) time.Duration {
	raw := get(name, envKey, "")
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	log.Printf("config: bad duration for %s: %q", name, raw)
	return defaultValue
}

func domainOf(baseURL string) string {
	d := strings.TrimPrefix(baseURL, "https://")
	d = strings.TrimPrefix(d, "http://")
	if i := strings.IndexByte(d, '/'); i >= 0 {
		d = d[:i]
	}
	return d
}
