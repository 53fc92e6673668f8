// Package discovery finds candidate post URLs. The main channel is the
// paginated listing pages; an RSS/Atom feed can be merged in as a second
// channel to catch posts the listings miss. Candidates are deduplicated
// across all channels before extraction so a post appearing on two listing
// pages is fetched once.
package discovery

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Candidate is a post URL discovered on a listing page, paired with the
// anchor text. The title is a hint for the extractor, not authoritative.
type Candidate struct {
	URL   string
	Title string
}

// minTitleLen filters out navigation anchors ("More", "Read") that share the
// post URL shape.
const minTitleLen = 10

var yearRe = regexp.MustCompile(`\b20\d{2}\b`)

// sidebar widget class fragments; anchors under these are recirculation
// modules, not listing entries.
var sidebarClassFragments = []string{"recentposts", "mwidgetposts", "widget", "sidebar"}

// ResolveURL makes href absolute against base. Already-absolute URLs pass
// through; unparseable hrefs resolve to "".
func ResolveURL(base, href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http") {
		return href
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return baseURL.ResolveReference(ref).String()
}

// IsPostPath reports whether href has the shape of a post URL: the first
// path segment must equal section, the second must be present, non-empty,
// and not a denied section slug.
func IsPostPath(href, section string, denied map[string]struct{}) bool {
	u, err := url.Parse(href)
	if err != nil {
		return false
	}

	var parts []string
	for _, p := range strings.Split(u.Path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}

	if len(parts) < 2 || parts[0] != section {
		return false
	}
	if _, bad := denied[parts[1]]; bad {
		return false
	}
	return true
}

// PathSlug returns the post's identifying path segment (the one after the
// section), or "" when the URL doesn't carry one.
func PathSlug(href, section string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	var parts []string
	for _, p := range strings.Split(u.Path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) < 2 || parts[0] != section {
		return ""
	}
	return parts[1]
}

// ListingOptions configure candidate extraction from a single listing page.
type ListingOptions struct {
	BaseURL string
	Section string
	Denied  map[string]struct{}
	// MaxCandidates caps the result; 0 means no cap.
	MaxCandidates int
}

// ParseListing extracts candidate post links from a listing document. The
// primary path targets the site's article.post > h2.lb-title > a markup;
// when a page carries none of that structure the general-anchor fallback
// takes over, skipping sidebar widgets. Links whose text mentions a year are
// preferred, since listing entries are titled "... Week of March 3, 2023"
// while navigation links are not. Order is otherwise preserved.
func ParseListing(doc *goquery.Document, opts ListingOptions) []Candidate {
	candidates := parsePrimary(doc, opts)
	if len(candidates) == 0 {
		candidates = parseFallback(doc, opts)
	}

	// Stable sort: year-bearing titles first, discovery order otherwise.
	sort.SliceStable(candidates, func(i, j int) bool {
		iYear := yearRe.MatchString(candidates[i].Title)
		jYear := yearRe.MatchString(candidates[j].Title)
		return iYear && !jYear
	})

	if opts.MaxCandidates > 0 && len(candidates) > opts.MaxCandidates {
		candidates = candidates[:opts.MaxCandidates]
	}
	return candidates
}

func parsePrimary(doc *goquery.Document, opts ListingOptions) []Candidate {
	seen := make(map[string]struct{})
	var out []Candidate

	doc.Find("article.post").Each(func(_ int, article *goquery.Selection) {
		a := article.Find("h2.lb-title a[href]").First()
		href, ok := a.Attr("href")
		if !ok || !IsPostPath(href, opts.Section, opts.Denied) {
			return
		}
		title := strings.TrimSpace(a.Text())
		if len(title) < minTitleLen {
			return
		}
		full := ResolveURL(opts.BaseURL, href)
		if full == "" {
			return
		}
		if _, dup := seen[full]; dup {
			return
		}
		seen[full] = struct{}{}
		out = append(out, Candidate{URL: full, Title: title})
	})

	return out
}

func parseFallback(doc *goquery.Document, opts ListingOptions) []Candidate {
	seen := make(map[string]struct{})
	var out []Candidate

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if !IsPostPath(href, opts.Section, opts.Denied) {
			return
		}
		title := strings.TrimSpace(a.Text())
		if len(title) < minTitleLen {
			return
		}
		if inSidebar(a) {
			return
		}
		full := ResolveURL(opts.BaseURL, href)
		if full == "" {
			return
		}
		if _, dup := seen[full]; dup {
			return
		}
		seen[full] = struct{}{}
		out = append(out, Candidate{URL: full, Title: title})
	})

	return out
}

// inSidebar checks up to three ancestor levels for widget/sidebar class
// markers.
func inSidebar(a *goquery.Selection) bool {
	node := a.Parent()
	for i := 0; i < 3 && node.Length() > 0; i++ {
		class := strings.ToLower(node.AttrOr("class", ""))
		for _, fragment := range sidebarClassFragments {
			if strings.Contains(class, fragment) {
				return true
			}
		}
		node = node.Parent()
	}
	return false
}

// Merge combines candidate lists from multiple pages, keeping the first
// occurrence of each URL.
func Merge(pages ...[]Candidate) []Candidate {
	seen := make(map[string]struct{})
	var out []Candidate
	for _, page := range pages {
		for _, c := range page {
			if _, dup := seen[c.URL]; dup {
				continue
			}
			seen[c.URL] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}
