package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lotsweep/internal/flow"
	"lotsweep/internal/model"
	"lotsweep/internal/selection"
	"lotsweep/internal/session"
	"lotsweep/internal/sweep"
)

type fakeClient struct {
	categories []model.Category
	listings   map[int64][]model.Listing
	deleted    []int64
}

func (f *fakeClient) GetCategories(context.Context) ([]model.Category, error) {
	return f.categories, nil
}

func (f *fakeClient) GetListings(_ context.Context, categoryID int64) ([]model.Listing, error) {
	return f.listings[categoryID], nil
}

func (f *fakeClient) DeleteListing(_ context.Context, listingID int64) error {
	f.deleted = append(f.deleted, listingID)
	return nil
}

func setupModel(t *testing.T) (Model, *fakeClient) {
	t.Helper()
	client := &fakeClient{
		categories: []model.Category{
			{ID: 1, Name: "Games"},
			{ID: 2, Name: "Software"},
		},
		listings: map[int64][]model.Listing{
			1: {{ID: 10, Title: "old key", Disabled: true}},
			2: {{ID: 20, Title: "license", Disabled: true}},
		},
	}
	store := session.NewStore(time.Minute, time.Minute)
	controller := selection.NewController(store)
	executor := sweep.New(store, client, sweep.Config{IncludeInactive: true})
	router := flow.NewRouter(store, controller, executor, client)
	return NewModel(router), client
}

// step runs a command synchronously and feeds its message back into Update.
func step(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	updated, _ := m.Update(cmd())
	next, ok := updated.(Model)
	require.True(t, ok)
	return next
}

func keyPress(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func loadModel(t *testing.T) (Model, *fakeClient) {
	t.Helper()
	m, client := setupModel(t)
	m = step(t, m, m.Init())
	require.Equal(t, phaseSelect, m.phase)
	return m, client
}

func TestModelInit(t *testing.T) {
	m, _ := loadModel(t)

	require.NotNil(t, m.vm)
	assert.Len(t, m.vm.Categories, 2)
	assert.Zero(t, m.vm.ChosenCount())
	assert.Contains(t, m.View(), "Games")
	assert.Contains(t, m.View(), "Software")
}

func TestModelToggle(t *testing.T) {
	m, _ := loadModel(t)

	updated, cmd := m.Update(keyPress(' '))
	m = step(t, updated.(Model), cmd)

	assert.True(t, m.vm.Chosen[1])
	assert.Contains(t, m.View(), "[x] Games")

	// Toggling again goes back through a remove token.
	updated, cmd = m.Update(keyPress(' '))
	m = step(t, updated.(Model), cmd)
	assert.False(t, m.vm.Chosen[1])
}

func TestModelCursorMovement(t *testing.T) {
	m, _ := loadModel(t)

	updated, _ := m.Update(keyPress('j'))
	m = updated.(Model)
	assert.Equal(t, 1, m.cursor)

	// Cursor stops at the last category.
	updated, _ = m.Update(keyPress('j'))
	m = updated.(Model)
	assert.Equal(t, 1, m.cursor)

	updated, _ = m.Update(keyPress('k'))
	m = updated.(Model)
	assert.Equal(t, 0, m.cursor)
}

func TestModelSelectAllAndConfirmFlow(t *testing.T) {
	m, client := loadModel(t)

	updated, cmd := m.Update(keyPress('a'))
	m = step(t, updated.(Model), cmd)
	assert.Equal(t, 2, m.vm.ChosenCount())

	updated, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = step(t, updated.(Model), cmd)
	require.Equal(t, phaseConfirm, m.phase)
	require.NotNil(t, m.confirm)

	updated, cmd = m.Update(keyPress('y'))
	m = updated.(Model)
	assert.Equal(t, phaseSweeping, m.phase)

	// The batched command carries the dispatch; run messages through until the
	// report lands.
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			m = drain(t, m, c)
		}
	} else {
		updated, _ = m.Update(msg)
		m = updated.(Model)
	}

	require.Equal(t, phaseReport, m.phase)
	require.NotNil(t, m.report)
	assert.Equal(t, 2, m.report.SuccessCount)
	assert.ElementsMatch(t, []int64{10, 20}, client.deleted)
	assert.Contains(t, m.View(), "2")
}

func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	updated, _ := m.Update(cmd())
	next, ok := updated.(Model)
	require.True(t, ok)
	return next
}

func TestModelConfirmBack(t *testing.T) {
	m, _ := loadModel(t)

	updated, cmd := m.Update(keyPress(' '))
	m = step(t, updated.(Model), cmd)

	updated, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = step(t, updated.(Model), cmd)
	require.Equal(t, phaseConfirm, m.phase)

	updated, _ = m.Update(keyPress('n'))
	m = updated.(Model)
	assert.Equal(t, phaseSelect, m.phase)
}

func TestModelEmptySelectionNotice(t *testing.T) {
	m, _ := loadModel(t)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = step(t, updated.(Model), cmd)

	assert.Equal(t, phaseNotice, m.phase)
	assert.Contains(t, m.View(), "chosen")
}

func TestModelQuitKey(t *testing.T) {
	m, _ := loadModel(t)

	_, cmd := m.Update(keyPress('q'))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
