// Package pipeline drives one scrape run end to end: listing discovery,
// per-post extraction, deduplication, and record collection. Execution is
// fully sequential with one request in flight at a time and a fixed delay
// between consecutive requests.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/roachag/blog-export/config"
	"github.com/roachag/blog-export/discovery"
	"github.com/roachag/blog-export/export"
	"github.com/roachag/blog-export/extract"
	"github.com/roachag/blog-export/fetch"
	"github.com/roachag/blog-export/ledger"
)

// Pipeline holds the collaborators for a run. Ledger may be nil; Sleep may
// be overridden in tests to skip the inter-request delay.
type Pipeline struct {
	Config  *config.Config
	Session *fetch.Session
	Ledger  *ledger.Store
	Log     *logrus.Logger
	Sleep   func(time.Duration)

	firstDone bool
}

// Stats counts the terminal outcome of every URL the run touched.
type Stats struct {
	ListingPages    int
	ListingFailures int
	Candidates      int
	Accepted        int
	Duplicates      int
	Rejected        int
	FetchFailures   int
}

// Result is the outcome of one run: the ordered accepted records and the
// counters, tagged with the run ID used for ledger rows.
type Result struct {
	RunID   uuid.UUID
	Records []export.PostRecord
	Stats   Stats
}

// New builds a pipeline with the given configuration and session.
func New(cfg *config.Config, session *fetch.Session, log *logrus.Logger) *Pipeline {
	return &Pipeline{
		Config:  cfg,
		Session: session,
		Log:     log,
		Sleep:   time.Sleep,
	}
}

// Run executes the scrape. Listing-page and post fetch failures are logged
// and skipped; only a cancelled context aborts the run.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	result := &Result{RunID: uuid.New()}

	candidates, err := p.discover(ctx, &result.Stats)
	if err != nil {
		return nil, err
	}
	result.Stats.Candidates = len(candidates)
	p.Log.WithFields(logrus.Fields{
		"run_id":     result.RunID,
		"candidates": len(candidates),
	}).Info("discovery complete")

	dedup := NewDeduplicator()
	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p.processCandidate(ctx, candidate, dedup, result)
	}

	p.Log.WithFields(logrus.Fields{
		"run_id":     result.RunID,
		"accepted":   result.Stats.Accepted,
		"duplicates": result.Stats.Duplicates,
		"rejected":   result.Stats.Rejected,
		"failed":     result.Stats.FetchFailures,
	}).Info("run complete")

	return result, nil
}

// discover walks the listing pages (and the feed, when configured) and
// returns the merged, deduplicated candidate set in discovery order.
func (p *Pipeline) discover(ctx context.Context, stats *Stats) ([]discovery.Candidate, error) {
	opts := discovery.ListingOptions{
		BaseURL:       p.Config.BaseURL,
		Section:       p.Config.PostSection,
		Denied:        p.Config.DeniedSections(),
		MaxCandidates: p.Config.MaxPerListing,
	}

	var pages [][]discovery.Candidate
	for _, listingURL := range p.Config.ListingPages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p.pause()

		log := p.Log.WithField("url", listingURL)
		doc, err := p.Session.GetDocument(ctx, listingURL)
		if err != nil {
			log.WithError(err).Warn("listing fetch failed, skipping page")
			stats.ListingFailures++
			continue
		}
		stats.ListingPages++

		found := discovery.ParseListing(doc, opts)
		if len(found) < p.Config.MaxPerListing {
			log.WithField("found", len(found)).Warn("fewer post links than expected")
		} else {
			log.WithField("found", len(found)).Info("parsed listing page")
		}
		pages = append(pages, found)
	}

	if p.Config.FeedURL != "" {
		p.pause()
		feedCandidates, err := discovery.FeedCandidates(ctx, p.Config.FeedURL, opts)
		if err != nil {
			p.Log.WithField("url", p.Config.FeedURL).WithError(err).
				Warn("feed discovery failed, continuing with listing candidates")
		} else {
			p.Log.WithField("found", len(feedCandidates)).Info("parsed feed")
			pages = append(pages, feedCandidates)
		}
	}

	return discovery.Merge(pages...), nil
}

// processCandidate fetches and extracts one candidate and settles its
// terminal outcome.
func (p *Pipeline) processCandidate(
	ctx context.Context,
	candidate discovery.Candidate,
	dedup *Deduplicator,
	result *Result,
) {
	log := p.Log.WithFields(logrus.Fields{
		"url":   candidate.URL,
		"title": candidate.Title,
	})

	if dedup.SeenURL(candidate.URL) {
		result.Stats.Duplicates++
		p.record(result.RunID, candidate.URL, ledger.OutcomeDuplicate, "source URL already accepted")
		return
	}
	pathSlug := discovery.PathSlug(candidate.URL, p.Config.PostSection)
	if dedup.SeenPath(pathSlug) {
		log.WithField("path", pathSlug).Info("skipped: post path already accepted")
		result.Stats.Duplicates++
		p.record(result.RunID, candidate.URL, ledger.OutcomeDuplicate, "post path already accepted")
		return
	}

	p.pause()
	doc, err := p.Session.GetDocument(ctx, candidate.URL)
	if err != nil {
		log.WithError(err).Warn("post fetch failed, skipping")
		result.Stats.FetchFailures++
		p.record(result.RunID, candidate.URL, ledger.OutcomeFetchFailed, err.Error())
		return
	}

	post, err := extract.ExtractPost(doc, candidate.URL, extract.Options{
		BaseURL:         p.Config.BaseURL,
		ExpectedTitle:   candidate.Title,
		DefaultCategory: p.Config.DefaultCategory,
	})
	if err != nil {
		log.WithError(err).Warn("extraction failed, skipping")
		result.Stats.Rejected++
		p.record(result.RunID, candidate.URL, ledger.OutcomeRejected, err.Error())
		return
	}

	if !post.Publishable() {
		log.Info("skipped: no body or date detected")
		result.Stats.Rejected++
		p.record(result.RunID, candidate.URL, ledger.OutcomeRejected, "no body or date detected")
		return
	}

	if dedup.SeenSlug(post.Slug) {
		log.WithField("slug", post.Slug).Info("skipped: slug already accepted")
		result.Stats.Duplicates++
		p.record(result.RunID, candidate.URL, ledger.OutcomeDuplicate, "slug already accepted")
		return
	}

	dedup.Add(candidate.URL, pathSlug, post.Slug)
	result.Records = append(result.Records, export.FromPost(post))
	result.Stats.Accepted++
	p.record(result.RunID, candidate.URL, ledger.OutcomeAccepted, "")
	log.WithField("date", post.Date).Info("accepted post")
}

// record writes a ledger row when the ledger is enabled. Ledger failures
// never stop the run.
func (p *Pipeline) record(runID uuid.UUID, url string, outcome ledger.Outcome, detail string) {
	if p.Ledger == nil {
		return
	}
	if err := p.Ledger.Record(runID, url, outcome, detail); err != nil {
		p.Log.WithError(err).Warn("failed to write ledger row")
	}
}

// pause sleeps the configured inter-request delay. The first request of a
// run goes out immediately.
func (p *Pipeline) pause() {
	if p.firstDone {
		p.Sleep(p.Config.Delay)
	}
	p.firstDone = true
}
