// Package session keeps the per-chat dialog state of the bot: the step the
// chat is in and the comparison sheet being edited.
package session

import (
	"context"

	"pricecompare-bot/internal/compare"
)

const (
	StepIdle      = "idle"
	StepRowPrice  = "row_price"
	StepRowAmount = "row_amount"
)

type Session struct {
	Step    string        `json:"step"`
	Sheet   compare.Sheet `json:"sheet"`
	EditRow int           `json:"edit_row"`
}

// New returns an idle session with an empty sheet of rows rows.
func New(rows int) Session {
	return Session{
		Step:  StepIdle,
		Sheet: compare.NewSheet(rows),
	}
}

// Store loads and saves sessions by chat id. Get returns a fresh session
// when the chat has none.
type Store interface {
	Get(ctx context.Context, chatID int64) (Session, error)
	Save(ctx context.Context, chatID int64, s Session) error
	Clear(ctx context.Context, chatID int64) error
}
