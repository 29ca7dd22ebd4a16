// Package selection applies toggle and select-all semantics on top of the
// session store and projects records into view models for rendering.
package selection

import (
	"lotsweep/internal/common"
	"lotsweep/internal/model"
	"lotsweep/internal/session"
)

// ViewModel is the stable projection of a selection record handed to the
// rendering layer. Categories preserve the insertion order captured when the
// record was created, so repeated builds render identically.
type ViewModel struct {
	Chosen     map[int64]bool
	Categories []model.Category
	RecordID   int64
	ShowBack   bool
}

// ChosenCount returns how many categories are currently chosen.
func (vm ViewModel) ChosenCount() int {
	return len(vm.Chosen)
}

// Controller is the pure logic layer for mutating a selection.
type Controller struct {
	store *session.Store
}

// NewController creates a controller over the given store.
func NewController(store *session.Store) *Controller {
	return &Controller{store: store}
}

// Toggle flips the chosen state of categoryID on the record. The membership
// check and mutation are one atomic operation in the store, so concurrent
// toggles on the same record cannot lose updates.
func (c *Controller) Toggle(id, categoryID int64) error {
	_, err := c.store.Toggle(id, categoryID)
	return err
}

// SelectAll chooses every category in the record. Idempotent: the resulting
// chosen set equals the full category set regardless of prior state.
func (c *Controller) SelectAll(id int64) error {
	rec, ok := c.store.Get(id)
	if !ok {
		return common.ErrRecordNotFound
	}
	for _, cat := range rec.Categories {
		if err := c.store.AddChosen(id, cat.ID); err != nil {
			return err
		}
	}
	return nil
}

// BuildViewModel projects the record into a ViewModel for rendering.
// Unknown or expired IDs signal ErrRecordNotFound so the boundary can recover
// the same way it does for mutations.
func (c *Controller) BuildViewModel(id int64) (ViewModel, error) {
	rec, ok := c.store.Get(id)
	if !ok {
		return ViewModel{}, common.ErrRecordNotFound
	}

	chosen := make(map[int64]bool, len(rec.Chosen))
	for _, categoryID := range rec.Chosen {
		chosen[categoryID] = true
	}

	return ViewModel{
		RecordID:   rec.ID,
		Categories: rec.Categories,
		Chosen:     chosen,
		ShowBack:   rec.ShowBack,
	}, nil
}
