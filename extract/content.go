package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/roachag/blog-export/discovery"
)

// allowedContentSelector matches the element types that belong in the post
// body. Site chrome (nav bars, share buttons) sits in other element shapes
// and is dropped by the sibling walk.
const allowedContentSelector = "p, ul, ol, li, h3, h4, h5, blockquote, " +
	"figure, img, table, thead, tbody, tr, th, td, em, strong, a, span"

// strippedSelector matches tracking and script elements removed from the
// serialized body.
const strippedSelector = "script, style, iframe, noscript"

// stopSections end the post body; everything from the first of these
// headings onward is recirculation chrome.
var stopSections = []string{
	"related posts", "recent posts", "categories", "tags", "contact us",
}

// extractContentHTML serializes the post body: the element siblings that
// follow the title heading, up to the first stop section. The site renders
// the body as loose siblings of the heading rather than inside a dedicated
// container, so there is no single content selector to use.
func extractContentHTML(titleHeading *goquery.Selection) (string, error) {
	if titleHeading == nil || titleHeading.Length() == 0 {
		return "", nil
	}

	var parts []string
	var walkErr error

	titleHeading.NextAll().EachWithBreak(func(_ int, sib *goquery.Selection) bool {
		heading := strings.ToLower(NormalizeSpaces(sib.Text()))
		if r := []rune(heading); len(r) > 40 {
			heading = string(r[:40])
		}
		for _, stop := range stopSections {
			if strings.Contains(heading, stop) {
				return false
			}
		}

		if sib.Is(allowedContentSelector) || sib.Find(allowedContentSelector).Length() > 0 {
			html, err := goquery.OuterHtml(sib)
			if err != nil {
				walkErr = fmt.Errorf("failed to serialize content element: %w", err)
				return false
			}
			parts = append(parts, html)
		}
		return true
	})

	if walkErr != nil {
		return "", walkErr
	}
	return strings.TrimSpace(strings.Join(parts, "")), nil
}

// SanitizeFragment re-parses a serialized body fragment, strips script and
// tracking elements, rewrites relative link and image URLs to absolute ones,
// and returns the cleaned fragment.
func SanitizeFragment(fragment, baseURL string) (string, error) {
	if fragment == "" {
		return "", nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", fmt.Errorf("failed to parse content fragment: %w", err)
	}

	doc.Find(strippedSelector).Remove()

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		if href, ok := a.Attr("href"); ok {
			if abs := discovery.ResolveURL(baseURL, href); abs != "" {
				a.SetAttr("href", abs)
			}
		}
	})
	doc.Find("img[src]").Each(func(_ int, img *goquery.Selection) {
		if src, ok := img.Attr("src"); ok {
			if abs := discovery.ResolveURL(baseURL, src); abs != "" {
				img.SetAttr("src", abs)
			}
		}
	})

	// goquery wraps fragments in html/body during parsing; serialize just
	// the body children.
	html, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("failed to serialize content fragment: %w", err)
	}
	return strings.TrimSpace(html), nil
}

// firstImageURL returns the first image in the body fragment, falling back
// to the first image anywhere on the page (typically the header image).
func firstImageURL(fragment string, page *goquery.Document, baseURL string) string {
	if fragment != "" {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
		if err == nil {
			if src, ok := doc.Find("img").First().Attr("src"); ok && src != "" {
				return discovery.ResolveURL(baseURL, src)
			}
		}
	}

	if src, ok := page.Find("img").First().Attr("src"); ok && src != "" {
		return discovery.ResolveURL(baseURL, src)
	}
	return ""
}
