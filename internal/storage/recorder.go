package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"pricecompare-bot/internal/compare"
)

const (
	SourceClear  = "clear"
	SourceExport = "export"
)

// ComparisonEvent is an anonymous record of a finished comparison. It carries
// counts only, never the typed prices or amounts.
type ComparisonEvent struct {
	ID           uuid.UUID `db:"id"`
	ChatID       int64     `db:"chat_id"`
	UnitKind     string    `db:"unit_kind"`
	ScaleMode    string    `db:"scale_mode"`
	RowCount     int       `db:"row_count"`
	ValidRows    int       `db:"valid_rows"`
	CheapestRows int       `db:"cheapest_rows"`
	Source       string    `db:"source"`
	CreatedAt    time.Time `db:"created_at"`
}

func NewComparisonEvent(chatID int64, res compare.Result, source string) ComparisonEvent {
	return ComparisonEvent{
		ID:           uuid.New(),
		ChatID:       chatID,
		UnitKind:     res.Sheet.Unit.String(),
		ScaleMode:    res.Sheet.Scale.String(),
		RowCount:     len(res.Rows),
		ValidRows:    res.ValidRows,
		CheapestRows: res.CheapestRows,
		Source:       source,
		CreatedAt:    time.Now().UTC(),
	}
}

type Statistics struct {
	Total        int            `json:"total" db:"total"`
	Today        int            `json:"today" db:"today"`
	Week         int            `json:"week" db:"week"`
	Ties         int            `json:"ties" db:"ties"`
	AvgRows      float64        `json:"avg_rows" db:"avg_rows"`
	AvgValidRows float64        `json:"avg_valid_rows" db:"avg_valid_rows"`
	ByUnit       map[string]int `json:"by_unit" db:"-"`
}

// Recorder stores comparison events and summarizes them.
type Recorder interface {
	RecordComparison(ctx context.Context, event ComparisonEvent) error
	Statistics(ctx context.Context) (*Statistics, error)
}

// NopRecorder is used when no statistics database is configured.
type NopRecorder struct{}

func (NopRecorder) RecordComparison(context.Context, ComparisonEvent) error {
	return nil
}

func (NopRecorder) Statistics(context.Context) (*Statistics, error) {
	return nil, ErrStatisticsDisabled
}
