package discovery

import (
	"context"
	"fmt"

	"github.com/mmcdole/gofeed"
)

// FeedCandidates pulls candidate post URLs from an RSS or Atom feed. The
// gofeed parser detects the format automatically. Entries whose link does
// not have the post URL shape are dropped, so a feed mixing posts with
// webinar or calendar entries contributes only posts.
func FeedCandidates(ctx context.Context, feedURL string, opts ListingOptions) ([]Candidate, error) {
	fp := gofeed.NewParser()
	feed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	seen := make(map[string]struct{})
	var out []Candidate
	for _, item := range feed.Items {
		if item.Link == "" {
			continue
		}
		full := ResolveURL(opts.BaseURL, item.Link)
		if full == "" || !IsPostPath(full, opts.Section, opts.Denied) {
			continue
		}
		if _, dup := seen[full]; dup {
			continue
		}
		seen[full] = struct{}{}
		out = append(out, Candidate{URL: full, Title: item.Title})
	}

	return out, nil
}
