package pipeline

// Deduplicator tracks identity keys of accepted records across the whole
// run. The source URL is the primary key; the URL path slug catches the
// same post reached through two URL spellings (query strings, feed
// permalinks); the title slug is a last guard for mirrored posts under
// different paths. Duplicates are dropped silently, not errors.
type Deduplicator struct {
	urls  map[string]struct{}
	paths map[string]struct{}
	slugs map[string]struct{}
}

// NewDeduplicator returns an empty deduplicator.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{
		urls:  make(map[string]struct{}),
		paths: make(map[string]struct{}),
		slugs: make(map[string]struct{}),
	}
}

// SeenURL reports whether a record with this source URL was already
// accepted.
func (d *Deduplicator) SeenURL(url string) bool {
	_, ok := d.urls[url]
	return ok
}

// SeenPath reports whether a record with this URL path slug was already
// accepted. The empty path slug is not an identity.
func (d *Deduplicator) SeenPath(pathSlug string) bool {
	if pathSlug == "" {
		return false
	}
	_, ok := d.paths[pathSlug]
	return ok
}

// SeenSlug reports whether a record with this title slug was already
// accepted. The empty slug is not an identity.
func (d *Deduplicator) SeenSlug(slug string) bool {
	if slug == "" {
		return false
	}
	_, ok := d.slugs[slug]
	return ok
}

// Add marks a record's identity keys as seen.
func (d *Deduplicator) Add(url, pathSlug, slug string) {
	d.urls[url] = struct{}{}
	if pathSlug != "" {
		d.paths[pathSlug] = struct{}{}
	}
	if slug != "" {
		d.slugs[slug] = struct{}{}
	}
}
