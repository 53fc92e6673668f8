// Package export writes the accepted records to the two migration
// artifacts: an .xlsx spreadsheet and a .csv rendering. Column names and
// order are the interchange contract with the WordPress import plugin and
// must not change.
package export

import (
	"strings"

	"github.com/roachag/blog-export/extract"
)

// Constant column values for the migration import.
const (
	StatusDraft = "draft"
	AuthorAdmin = "admin"
	MetaSource  = "Roach Ag Resources"
)

// Columns is the export header, in contract order.
var Columns = []string{
	"source_url",
	"post_title",
	"post_slug",
	"post_status",
	"post_author",
	"post_date",
	"categories",
	"tags",
	"content_html",
	"featured_image_url",
	"meta__source",
}

// PostRecord is one export row. Records are immutable once built.
type PostRecord struct {
	SourceURL        string
	Title            string
	Slug             string
	Status           string
	Author           string
	Date             string
	Categories       string
	Tags             string
	ContentHTML      string
	FeaturedImageURL string
	MetaSource       string
}

// FromPost builds the export row for an accepted post.
func FromPost(p *extract.Post) PostRecord {
	return PostRecord{
		SourceURL:        p.URL,
		Title:            p.Title,
		Slug:             p.Slug,
		Status:           StatusDraft,
		Author:           AuthorAdmin,
		Date:             p.Date,
		Categories:       p.Category,
		Tags:             strings.Join(p.Tags, ","),
		ContentHTML:      p.ContentHTML,
		FeaturedImageURL: p.FeaturedImage,
		MetaSource:       MetaSource,
	}
}

// Row returns the record's cells in Columns order.
func (r PostRecord) Row() []string {
	return []string{
		r.SourceURL,
		r.Title,
		r.Slug,
		r.Status,
		r.Author,
		r.Date,
		r.Categories,
		r.Tags,
		r.ContentHTML,
		r.FeaturedImageURL,
		r.MetaSource,
	}
}
