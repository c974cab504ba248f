package enrich

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Enricher chains a Normalizer and an ImageSearcher.
type Enricher struct {
	normalizer Normalizer
	images     ImageSearcher
}

// New builds an Enricher. A nil normalizer passes descriptions through
// unchanged; a nil searcher disables image lookup.
func New(normalizer Normalizer, images ImageSearcher) *Enricher {
	if normalizer == nil {
		normalizer = Passthrough{}
	}
	return &Enricher{normalizer: normalizer, images: images}
}

// ExtractItem returns the search term for a description.
func (e *Enricher) ExtractItem(ctx context.Context, description string) string {
	return e.normalizer.Normalize(ctx, description)
}

// ImageFor returns an image URL for description, or nil when there is none
// or the lookup failed.
func (e *Enricher) ImageFor(ctx context.Context, description string) *string {
	if e == nil || e.images == nil {
		return nil
	}

	term := e.normalizer.Normalize(ctx, description)
	if term == "" {
		return nil
	}

	imageURL, err := e.images.Search(ctx, term)
	if err != nil {
		logrus.WithError(err).WithField("term", term).Warn("image lookup failed")
		return nil
	}
	if imageURL == "" {
		return nil
	}
	return &imageURL
}
