package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const postFixture = `
<html>
<head><title>Roach Ag</title></head>
<body>
  <div class="header"><img src="/images/banner.png"></div>
  <h1>Weekly Market Update for March 3, 2023</h1>
  <p>March 3, 2023</p>
  <p>Corn futures closed higher after the export report.</p>
  <ul><li>Beans steady</li><li>Wheat lower</li></ul>
  <div><p>More analysis with a <a href="/Resources/Sell-Signals">link</a>
    and an <img src="/images/chart.png"> inline chart.</p></div>
  <script>trackPageView();</script>
  <p>Category: <a href="/Resources?Category=Market-Updates">Market Updates</a></p>
  <h4>Tags</h4>
  <div><a href="/t/corn">corn</a> <a href="/t/wheat">wheat</a> <a href="/t/corn">corn</a></div>
  <h3>Related Posts</h3>
  <p>This recirculation content must not leak into the body.</p>
</body>
</html>`

func parseFixture(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

// TestExtractPost_FullPage verifies the complete field mapping on a
// well-formed post page.
func TestExtractPost_FullPage(t *testing.T) {
	doc := parseFixture(t, postFixture)

	post, err := ExtractPost(doc, "https://roachag.com/Resources/Weekly-Market-Update", Options{
		BaseURL:         "https://roachag.com",
		ExpectedTitle:   "Weekly Market Update for March 3, 2023",
		DefaultCategory: "USDA Supply/Demand",
	})
	require.NoError(t, err)

	assert.Equal(t, "Weekly Market Update for March 3, 2023", post.Title)
	assert.Equal(t, "weekly-market-update-for-march-3-2023", post.Slug)
	assert.Equal(t, "2023-03-03", post.Date)
	assert.Equal(t, "Market Updates", post.Category)
	assert.Equal(t, []string{"corn", "wheat"}, post.Tags, "tags deduplicated in order")
	assert.True(t, post.Publishable())

	assert.Contains(t, post.ContentHTML, "Corn futures closed higher")
	assert.Contains(t, post.ContentHTML, "<li>Beans steady</li>")
	assert.NotContains(t, post.ContentHTML, "recirculation content",
		"body must stop at the Related Posts heading")
	assert.NotContains(t, post.ContentHTML, "trackPageView",
		"script elements must be stripped")
	assert.Contains(t, post.ContentHTML, `href="https://roachag.com/Resources/Sell-Signals"`,
		"links must be absolute")
	assert.Contains(t, post.ContentHTML, `src="https://roachag.com/images/chart.png"`,
		"image sources must be absolute")

	assert.Equal(t, "https://roachag.com/images/chart.png", post.FeaturedImage,
		"featured image comes from the body, not the page header")
}

// TestExtractPost_NoExpectedTitle verifies the on-page heading fallback.
func TestExtractPost_NoExpectedTitle(t *testing.T) {
	doc := parseFixture(t, postFixture)

	post, err := ExtractPost(doc, "https://roachag.com/Resources/Weekly-Market-Update", Options{
		BaseURL: "https://roachag.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "Weekly Market Update for March 3, 2023", post.Title)
}

// TestExtractPost_TitleFromURL verifies the URL-slug fallback when the page
// has no headings at all.
func TestExtractPost_TitleFromURL(t *testing.T) {
	doc := parseFixture(t, `<html><body><p>March 3, 2023</p></body></html>`)

	post, err := ExtractPost(doc, "https://roachag.com/Resources/Grain-Outlook-2023", Options{
		BaseURL: "https://roachag.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "Grain Outlook 2023", post.Title)
}

// TestExtractPost_TimeElement verifies the <time> element wins the date
// chain.
func TestExtractPost_TimeElement(t *testing.T) {
	doc := parseFixture(t, `
<html><body>
  <h1>Harvest Progress Report</h1>
  <time>12 September 2025</time>
  <p>Harvest is 40% complete.</p>
</body></html>`)

	post, err := ExtractPost(doc, "https://roachag.com/Resources/Harvest-Progress", Options{
		BaseURL: "https://roachag.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "12 September 2025", post.DateText)
	assert.Equal(t, "2025-09-12", post.Date)
}

// TestExtractPost_DefaultCategory verifies the category fallback.
func TestExtractPost_DefaultCategory(t *testing.T) {
	doc := parseFixture(t, `
<html><body>
  <h1>Weekly Market Commentary</h1>
  <p>March 3, 2023</p>
  <p>Some commentary.</p>
</body></html>`)

	post, err := ExtractPost(doc, "https://roachag.com/Resources/Commentary", Options{
		BaseURL:         "https://roachag.com",
		DefaultCategory: "USDA Supply/Demand",
	})
	require.NoError(t, err)

	assert.Equal(t, "USDA Supply/Demand", post.Category)
	assert.Empty(t, post.Tags)
}

// TestExtractPost_MinimumContentRule verifies the strict AND rejection: a
// page missing both body and date is not publishable, a page with either
// one is.
func TestExtractPost_MinimumContentRule(t *testing.T) {
	tests := []struct {
		name        string
		html        string
		publishable bool
	}{
		{
			name:        "no body and no date",
			html:        `<html><body><h1>Section Landing Page Title</h1></body></html>`,
			publishable: false,
		},
		{
			name: "body but no date",
			html: `<html><body><h1>Undated Post Title Here</h1>
				<p>Body text survives without a date.</p></body></html>`,
			publishable: true,
		},
		{
			name: "date but no body",
			html: `<html><body><h1>Empty Post Title Here</h1>
				<time>March 3, 2023</time></body></html>`,
			publishable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parseFixture(t, tt.html)

			post, err := ExtractPost(doc, "https://roachag.com/Resources/X", Options{
				BaseURL: "https://roachag.com",
			})
			require.NoError(t, err)

			assert.Equal(t, tt.publishable, post.Publishable())
		})
	}
}

// TestExtractPost_UnparseableDate verifies that unrecognized date text
// leaves the ISO date empty.
func TestExtractPost_UnparseableDate(t *testing.T) {
	doc := parseFixture(t, `
<html><body>
  <h1>Outlook Conference Recap</h1>
  <time>sometime last spring</time>
  <p>Recap body text.</p>
</body></html>`)

	post, err := ExtractPost(doc, "https://roachag.com/Resources/Recap", Options{
		BaseURL: "https://roachag.com",
	})
	require.NoError(t, err)

	assert.Empty(t, post.Date)
	assert.True(t, post.Publishable(), "non-empty body carries the record")
}

// TestExtractPost_StopHeadingWithSmartQuotes verifies stop-section
// detection on a heading carrying multi-byte punctuation long enough to be
// truncated before the stop-word check.
func TestExtractPost_StopHeadingWithSmartQuotes(t *testing.T) {
	doc := parseFixture(t, `
<html><body>
  <h1>Weekly Market Update for March 3, 2023</h1>
  <p>March 3, 2023</p>
  <p>Corn futures closed higher.</p>
  <h3>“Recent Posts” – selections from the blog archive</h3>
  <p>Recirculation selections must not leak into the body.</p>
</body></html>`)

	post, err := ExtractPost(doc, "https://roachag.com/Resources/Weekly-Market-Update", Options{
		BaseURL: "https://roachag.com",
	})
	require.NoError(t, err)

	assert.Contains(t, post.ContentHTML, "Corn futures closed higher")
	assert.NotContains(t, post.ContentHTML, "Recirculation selections")
}

// TestSanitizeFragment verifies stripping and absolutization on a raw
// fragment.
func TestSanitizeFragment(t *testing.T) {
	fragment := `<p>text <a href="/a">a</a></p><script>x()</script><iframe src="/f"></iframe><img src="/i.png">`

	out, err := SanitizeFragment(fragment, "https://roachag.com")
	require.NoError(t, err)

	assert.NotContains(t, out, "script")
	assert.NotContains(t, out, "iframe")
	assert.Contains(t, out, `href="https://roachag.com/a"`)
	assert.Contains(t, out, `src="https://roachag.com/i.png"`)
}

// TestSanitizeFragment_Empty verifies empty input stays empty.
func TestSanitizeFragment_Empty(t *testing.T) {
	out, err := SanitizeFragment("", "https://roachag.com")

	require.NoError(t, err)
	assert.Empty(t, out)
}

// TestExtractPost_HeaderImageFallback verifies the featured image falls
// back to the page header when the body has no image.
func TestExtractPost_HeaderImageFallback(t *testing.T) {
	doc := parseFixture(t, `
<html><body>
  <div class="hero"><img src="/images/hero.jpg"></div>
  <h1>Plain Text Market Note</h1>
  <p>March 3, 2023</p>
  <p>No images in this body.</p>
</body></html>`)

	post, err := ExtractPost(doc, "https://roachag.com/Resources/Note", Options{
		BaseURL: "https://roachag.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://roachag.com/images/hero.jpg", post.FeaturedImage)
}
