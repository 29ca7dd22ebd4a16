// Package marketplace talks to the external marketplace service that owns the
// actual listings. It exposes the narrow surface the rest of lotsweep needs:
// category discovery, per-category listing fetch, and single-listing deletion.
package marketplace

import (
	"context"

	"lotsweep/internal/model"
)

// Client is the contract for the category/listing source and the delete
// operation consumed by the deletion executor.
type Client interface {
	// GetCategories returns the user's listing categories in the order the
	// marketplace presents them.
	GetCategories(ctx context.Context) ([]model.Category, error)

	// GetListings returns the current listings for one category, in
	// marketplace order.
	GetListings(ctx context.Context, categoryID int64) ([]model.Listing, error)

	// DeleteListing removes a single listing. It either succeeds or returns a
	// descriptive failure; it is never retried (at-least-attempt semantics).
	DeleteListing(ctx context.Context, listingID int64) error
}
