// Package token implements the navigation token codec. A token is the compact,
// self-describing payload a stateless round trip carries back to lotsweep: it
// names the action the user took, the record it applies to, a history stack for
// back navigation, and an opaque data bag passed through untouched.
package token

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"lotsweep/internal/common"
)

// Action discriminates the token variants.
type Action string

const (
	// ActionBrowse opens (or re-enters) the category selection menu.
	ActionBrowse Action = "browse"
	// ActionAddCategory marks one category as chosen.
	ActionAddCategory Action = "add_category"
	// ActionRemoveCategory unmarks one chosen category.
	ActionRemoveCategory Action = "remove_category"
	// ActionSelectAll chooses every category in the record.
	ActionSelectAll Action = "select_all"
	// ActionRequestDelete asks for the confirmation step.
	ActionRequestDelete Action = "request_delete"
	// ActionConfirmDelete runs the deletion pass.
	ActionConfirmDelete Action = "confirm_delete"
)

// Valid reports whether a is a recognized action.
func (a Action) Valid() bool {
	switch a {
	case ActionBrowse, ActionAddCategory, ActionRemoveCategory,
		ActionSelectAll, ActionRequestDelete, ActionConfirmDelete:
		return true
	default:
		return false
	}
}

func (a Action) needsRecord() bool {
	return a != ActionBrowse
}

func (a Action) needsCategory() bool {
	return a == ActionAddCategory || a == ActionRemoveCategory
}

// Token is one navigation payload. The JSON keys are deliberately terse: the
// encoded form has to fit inside a button payload.
type Token struct {
	Data       map[string]string `json:"d,omitempty"`
	Action     Action            `json:"a"`
	History    []Token           `json:"h,omitempty"`
	RecordID   int64             `json:"r,omitempty"`
	CategoryID int64             `json:"c,omitempty"`
}

// Encode packs the token into a compact string safe to embed in a button
// payload.
func (t Token) Encode() (string, error) {
	raw, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("failed to encode token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Decode unpacks a token previously produced by Encode. Malformed payloads and
// tokens missing required type-specific fields fail with ErrDecode; no partial
// interpretation is attempted.
func Decode(payload string) (Token, error) {
	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return Token{}, fmt.Errorf("%w: %v", common.ErrDecode, err)
	}

	var t Token
	if err := json.Unmarshal(raw, &t); err != nil {
		return Token{}, fmt.Errorf("%w: %v", common.ErrDecode, err)
	}
	if err := t.validate(); err != nil {
		return Token{}, err
	}
	return t, nil
}

func (t Token) validate() error {
	if !t.Action.Valid() {
		return fmt.Errorf("%w: unknown action %q", common.ErrDecode, t.Action)
	}
	if t.Action.needsRecord() && t.RecordID == 0 {
		return fmt.Errorf("%w: action %q requires a record id", common.ErrDecode, t.Action)
	}
	if t.Action.needsCategory() && t.CategoryID == 0 {
		return fmt.Errorf("%w: action %q requires a category id", common.ErrDecode, t.Action)
	}
	for _, prev := range t.History {
		if err := prev.validate(); err != nil {
			return err
		}
	}
	return nil
}

// WithHistory returns a copy of t whose history stack is prev's history with
// prev itself pushed on top. prev is stored without its own history to keep
// the payload from growing quadratically.
func (t Token) WithHistory(prev Token) Token {
	flat := prev
	flat.History = nil

	t.History = make([]Token, 0, len(prev.History)+1)
	t.History = append(t.History, prev.History...)
	t.History = append(t.History, flat)
	return t
}

// Back pops the most recent history entry and returns it as the navigation
// target, carrying the rest of the stack. Returns false when there is nowhere
// to go back to.
func (t Token) Back() (Token, bool) {
	if len(t.History) == 0 {
		return Token{}, false
	}
	prev := t.History[len(t.History)-1]
	prev.History = append([]Token(nil), t.History[:len(t.History)-1]...)
	if len(prev.History) == 0 {
		prev.History = nil
	}
	return prev, true
}
