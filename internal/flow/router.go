// Package flow glues navigation tokens to the selection session lifecycle.
// It is transport-agnostic: a front end decodes a token from whatever channel
// it owns, hands it to the Router, and renders the Response it gets back.
package flow

import (
	"context"
	"errors"
	"fmt"

	"lotsweep/internal/common"
	"lotsweep/internal/marketplace"
	"lotsweep/internal/model"
	"lotsweep/internal/selection"
	"lotsweep/internal/session"
	"lotsweep/internal/sweep"
	"lotsweep/internal/token"
)

// Kind discriminates what a Response carries.
type Kind int

const (
	// KindSelection carries a category selection view.
	KindSelection Kind = iota
	// KindConfirm carries the delete confirmation view.
	KindConfirm
	// KindReport carries the final deletion report.
	KindReport
	// KindNotice carries a recoverable, user-visible notice.
	KindNotice
)

// ConfirmView is the confirmation step's view model.
type ConfirmView struct {
	RecordID int64
}

// Response is the tagged view model a front end renders after one round trip.
type Response struct {
	Selection *selection.ViewModel
	Confirm   *ConfirmView
	Report    *model.DeletionReport
	Notice    string
	Kind      Kind
}

// Router resolves tokens against the session store and produces view models.
type Router struct {
	store      *session.Store
	controller *selection.Controller
	executor   *sweep.Executor
	client     marketplace.Client
}

// NewRouter wires the router's collaborators together.
func NewRouter(store *session.Store, controller *selection.Controller, executor *sweep.Executor, client marketplace.Client) *Router {
	return &Router{
		store:      store,
		controller: controller,
		executor:   executor,
		client:     client,
	}
}

// StartSelection fetches the current categories and opens a fresh selection
// record with an empty chosen set. A fetch failure aborts without creating a
// record; an account with no categories yields a notice instead of a record.
func (r *Router) StartSelection(ctx context.Context, showBack bool) (Response, error) {
	categories, err := r.client.GetCategories(ctx)
	if err != nil {
		return Response{}, common.NewUserError("failed to load your marketplace categories", err)
	}
	if len(categories) == 0 {
		return Response{
			Kind:   KindNotice,
			Notice: "You have no listings that can be deleted.",
		}, nil
	}

	id := r.store.Create(categories, nil, showBack)
	return r.selectionView(id)
}

// Handle dispatches one decoded token and converts the recoverable error
// classes into user-visible notices. A stale record ID never crashes the
// interaction pipeline: the user is told to reopen the menu instead.
func (r *Router) Handle(ctx context.Context, tok token.Token) (Response, error) {
	resp, err := r.dispatch(ctx, tok)
	switch {
	case err == nil:
		return resp, nil
	case errors.Is(err, common.ErrRecordNotFound):
		return Response{
			Kind:   KindNotice,
			Notice: "Selection expired. Reopen the deletion menu to refresh.",
		}, nil
	case errors.Is(err, common.ErrEmptySelection):
		return Response{
			Kind:   KindNotice,
			Notice: "You haven't chosen any categories yet.",
		}, nil
	default:
		return Response{}, err
	}
}

func (r *Router) dispatch(ctx context.Context, tok token.Token) (Response, error) {
	switch tok.Action {
	case token.ActionBrowse:
		// Re-entry into the selection flow builds a fresh record so the
		// category list reflects the marketplace's current state.
		return r.StartSelection(ctx, true)

	case token.ActionAddCategory:
		if err := r.store.AddChosen(tok.RecordID, tok.CategoryID); err != nil {
			return Response{}, err
		}
		return r.selectionView(tok.RecordID)

	case token.ActionRemoveCategory:
		if err := r.store.RemoveChosen(tok.RecordID, tok.CategoryID); err != nil {
			return Response{}, err
		}
		return r.selectionView(tok.RecordID)

	case token.ActionSelectAll:
		if err := r.controller.SelectAll(tok.RecordID); err != nil {
			return Response{}, err
		}
		return r.selectionView(tok.RecordID)

	case token.ActionRequestDelete:
		rec, ok := r.store.Get(tok.RecordID)
		if !ok {
			return Response{}, common.ErrRecordNotFound
		}
		if len(rec.Chosen) == 0 {
			return Response{}, common.ErrEmptySelection
		}
		return Response{
			Kind:    KindConfirm,
			Confirm: &ConfirmView{RecordID: tok.RecordID},
		}, nil

	case token.ActionConfirmDelete:
		report, err := r.executor.Execute(ctx, tok.RecordID)
		if err != nil {
			return Response{}, err
		}
		return Response{Kind: KindReport, Report: report}, nil

	default:
		return Response{}, fmt.Errorf("%w: unhandled action %q", common.ErrDecode, tok.Action)
	}
}

func (r *Router) selectionView(id int64) (Response, error) {
	vm, err := r.controller.BuildViewModel(id)
	if err != nil {
		return Response{}, err
	}
	return Response{Kind: KindSelection, Selection: &vm}, nil
}
