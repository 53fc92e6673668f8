package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Config holds every knob for a scrape run. The zero value is not usable;
// start from Default and override what the run needs. The pipeline receives
// the struct explicitly rather than reading process-wide state, so tests can
// point it at fixture servers.
type Config struct {
	// BaseURL is the site root used to resolve relative links.
	BaseURL string

	// ListingPages are the index pages to walk, in order.
	ListingPages []string

	// FeedURL is an optional RSS/Atom feed merged into the candidate set.
	// Empty disables feed discovery.
	FeedURL string

	// Delay is the pause between consecutive HTTP requests.
	Delay time.Duration

	// RequestTimeout bounds a single HTTP request, including retries of the
	// underlying transport but not the backoff between attempts.
	RequestTimeout time.Duration

	// RetryMax is the number of retries after the first failed attempt.
	RetryMax int

	// RetryWaitMin and RetryWaitMax bound the exponential backoff between
	// attempts.
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	UserAgent      string
	AcceptLanguage string

	// DenySections are path segments under the blog section that are index
	// or category pages rather than posts.
	DenySections []string

	// PostSection is the first path segment every post URL must carry.
	PostSection string

	// DefaultCategory is assigned when a post page has no category link.
	DefaultCategory string

	// MaxPerListing caps how many candidates a single listing page yields.
	MaxPerListing int

	// OutputDir receives the timestamped export files.
	OutputDir string

	// LedgerPath is the SQLite file recording per-URL outcomes. Empty
	// disables the ledger.
	LedgerPath string
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// Default returns the configuration matching the Roach Ag migration run:
// listing pages 1 through 8, a polite 700ms delay, and the known non-post
// sections excluded.
func Default() *Config {
	cfg := &Config{
		BaseURL:         "https://roachag.com",
		Delay:           700 * time.Millisecond,
		RequestTimeout:  20 * time.Second,
		RetryMax:        4,
		RetryWaitMin:    700 * time.Millisecond,
		RetryWaitMax:    15 * time.Second,
		UserAgent:       defaultUserAgent,
		AcceptLanguage:  "en-US,en;q=0.9",
		PostSection:     "Resources",
		DefaultCategory: "USDA Supply/Demand",
		MaxPerListing:   10,
		OutputDir:       ".",
		DenySections: []string{
			"Presentations", "Calendar", "Author", "World-Crop-Weather",
			"Brazil", "Argentina", "China", "Russia", "Europe", "Australia",
			"Brazil-Crop-Updates", "Yield-Reports", "Sell-Signal-Charts",
			"Futures-Prices", "Recent-Webinars", "WASDE",
		},
	}
	for page := 1; page <= 8; page++ {
		cfg.ListingPages = append(cfg.ListingPages,
			fmt.Sprintf("%s/Resources/BlogPage/%d", cfg.BaseURL, page))
	}
	return cfg
}

// DeniedSections returns the denylist as a set for path filtering.
func (c *Config) DeniedSections() map[string]struct{} {
	set := make(map[string]struct{}, len(c.DenySections))
	for _, s := range c.DenySections {
		set[s] = struct{}{}
	}
	return set
}

// Validate checks that the configuration describes a runnable scrape.
func (c *Config) Validate() error {
	if len(c.ListingPages) == 0 {
		return errors.New("no listing pages configured")
	}
	if _, err := url.ParseRequestURI(c.BaseURL); err != nil {
		return fmt.Errorf("invalid base URL %q: %w", c.BaseURL, err)
	}
	for _, page := range c.ListingPages {
		if _, err := url.ParseRequestURI(page); err != nil {
			return fmt.Errorf("invalid listing page URL %q: %w", page, err)
		}
	}
	if c.FeedURL != "" {
		if _, err := url.ParseRequestURI(c.FeedURL); err != nil {
			return fmt.Errorf("invalid feed URL %q: %w", c.FeedURL, err)
		}
	}
	if c.Delay < 0 {
		return errors.New("delay must not be negative")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request timeout must be positive")
	}
	if c.RetryMax < 0 {
		return errors.New("retry count must not be negative")
	}
	if c.PostSection == "" {
		return errors.New("post section must be set")
	}
	return nil
}
