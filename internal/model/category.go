// Package model defines the core types shared across lotsweep.
package model

// Category is a group of listings on the marketplace.
//
// Category order matters: wherever a slice of categories appears it is in the
// order the marketplace returned them, and that order is what gets rendered.
type Category struct {
	Name string
	ID   int64
}
