// Package extract turns a fetched post page into a normalized Post. Every
// field uses a fallback chain (primary selector, alternates, empty default)
// because the site's markup is inconsistent across years of posts; only the
// minimum-content rule can reject a page outright.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gosimple/slug"
)

// Post is the normalized extraction result for one post page.
type Post struct {
	URL      string
	Title    string
	Slug     string
	DateText string // raw date text as found on the page
	Date     string // ISO date, "" when DateText didn't parse
	Category string
	Tags     []string
	// ContentHTML is the sanitized body fragment with absolute links.
	ContentHTML   string
	FeaturedImage string
}

// Publishable reports whether the page passed the minimum-content rule: a
// post needs a non-empty body or a parsed date. Pages with neither are index
// or section pages that slipped through discovery.
func (p *Post) Publishable() bool {
	return strings.TrimSpace(p.ContentHTML) != "" || p.Date != ""
}

// Options configure extraction for one page.
type Options struct {
	// BaseURL resolves relative links inside the body.
	BaseURL string
	// ExpectedTitle is the anchor text from the listing page. When set it
	// both overrides the on-page title and anchors the title-heading search.
	ExpectedTitle string
	// DefaultCategory is used when the page carries no category link.
	DefaultCategory string
	// DateProbeLimit is how many elements after the title heading the date
	// search scans; zero uses the default of 8.
	DateProbeLimit int
}

// ExtractPost maps a post document to a Post. It never fails on missing
// markup; absent fields become empty strings. An error means the extracted
// body could not be re-serialized.
func ExtractPost(doc *goquery.Document, pageURL string, opts Options) (*Post, error) {
	title := opts.ExpectedTitle
	heading := findTitleHeading(doc, title)
	if title == "" {
		title = NormalizeSpaces(heading.Text())
	}
	if title == "" {
		title = titleFromURL(pageURL)
	}

	body, err := extractContentHTML(heading)
	if err != nil {
		return nil, err
	}
	body, err = SanitizeFragment(body, opts.BaseURL)
	if err != nil {
		return nil, err
	}

	dateText := extractDateText(doc, heading, opts.DateProbeLimit)
	isoDate, _ := ToISODate(dateText)

	category := extractCategory(doc)
	if category == "" {
		category = opts.DefaultCategory
	}

	return &Post{
		URL:           pageURL,
		Title:         title,
		Slug:          slug.Make(title),
		DateText:      dateText,
		Date:          isoDate,
		Category:      category,
		Tags:          extractTags(doc),
		ContentHTML:   body,
		FeaturedImage: firstImageURL(body, doc, opts.BaseURL),
	}, nil
}

// findTitleHeading locates the h1/h2 carrying the post title. With an
// expected title it prefers the heading containing that text; otherwise the
// first h1/h2 on the page wins.
func findTitleHeading(doc *goquery.Document, expectedTitle string) *goquery.Selection {
	headings := doc.Find("h1, h2")

	if expectedTitle != "" {
		want := strings.ToLower(expectedTitle)
		var match *goquery.Selection
		headings.EachWithBreak(func(_ int, h *goquery.Selection) bool {
			if strings.Contains(strings.ToLower(NormalizeSpaces(h.Text())), want) {
				match = h
				return false
			}
			return true
		})
		if match != nil {
			return match
		}
	}

	return headings.First()
}

// titleFromURL derives a readable title from the last URL path segment.
func titleFromURL(pageURL string) string {
	trimmed := strings.TrimRight(pageURL, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	return strings.ReplaceAll(trimmed, "-", " ")
}

// extractDateText finds the publish date text. Chain: a <time> element, then
// a scan of the elements following the title heading (the site prints the
// date right under it), then the whole page.
func extractDateText(doc *goquery.Document, heading *goquery.Selection, probeLimit int) string {
	if probeLimit <= 0 {
		probeLimit = 8
	}

	if t := NormalizeSpaces(doc.Find("time").First().Text()); t != "" {
		return t
	}

	if found := scanAfter(doc, heading, probeLimit); found != "" {
		return found
	}

	return FindDateText(doc.Text())
}

// scanAfter walks the document in order from the heading and returns the
// first date text within the next limit elements.
func scanAfter(doc *goquery.Document, heading *goquery.Selection, limit int) string {
	if heading == nil || heading.Length() == 0 {
		return ""
	}
	start := heading.Get(0)

	var match string
	passed := false
	count := 0
	doc.Find("*").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !passed {
			passed = s.Get(0) == start
			return true
		}
		count++
		if found := FindDateText(s.Text()); found != "" {
			match = found
			return false
		}
		return count < limit
	})
	return match
}

// extractCategory reads the category from the post's category link; those
// anchors carry a Category= query parameter.
func extractCategory(doc *goquery.Document) string {
	return NormalizeSpaces(doc.Find(`a[href*="Category="]`).First().Text())
}

// extractTags finds the "Tags" heading and collects the anchors in the
// container that follows it, deduplicated in order.
func extractTags(doc *goquery.Document) []string {
	var container *goquery.Selection
	doc.Find("h3, h4, h5").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		if strings.EqualFold(NormalizeSpaces(h.Text()), "tags") {
			container = h.Next()
			return false
		}
		return true
	})
	if container == nil || container.Length() == 0 {
		return nil
	}

	seen := make(map[string]struct{})
	var tags []string
	container.Find("a").Each(func(_ int, a *goquery.Selection) {
		tag := NormalizeSpaces(a.Text())
		if tag == "" {
			return
		}
		if _, dup := seen[tag]; dup {
			return
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	})
	return tags
}
