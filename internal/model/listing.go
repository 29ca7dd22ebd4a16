package model

// Listing is a single marketplace lot belonging to a category.
type Listing struct {
	Title    string
	ID       int64
	Disabled bool
}

// Active reports whether the listing is currently visible on the marketplace.
func (l Listing) Active() bool {
	return !l.Disabled
}
