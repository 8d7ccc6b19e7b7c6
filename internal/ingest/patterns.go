package ingest

import (
	"fmt"
	"io"
	"log/slog"

	"parkingpass/internal/patterns"
)

// Enforcement CSV columns.
const (
	colEnforceDate  = "단속일자"
	colEnforceTime  = "단속시간"
	colEnforceDong  = "단속동"
	colEnforcePlace = "단속장소"
)

// ReadPatterns aggregates an enforcement CSV into a pattern summary.
func ReadPatterns(r io.Reader, logger *slog.Logger) (*patterns.Summary, error) {
	if logger == nil {
		logger = slog.Default()
	}

	data, enc, err := Decode(r)
	if err != nil {
		return nil, err
	}
	t, err := readTable(data)
	if err != nil {
		return nil, err
	}
	for _, col := range []string{colEnforceDate, colEnforceTime} {
		if !t.has(col) {
			return nil, fmt.Errorf("enforcement csv: missing column %q", col)
		}
	}

	b := patterns.NewBuilder()
	for _, row := range t.rows {
		b.Add(patterns.Record{
			Date:     t.get(row, colEnforceDate),
			Time:     t.get(row, colEnforceTime),
			Dong:     t.get(row, colEnforceDong),
			Location: t.get(row, colEnforcePlace),
		})
	}

	logger.Info("enforcement records read", "encoding", enc, "records", b.Total())
	return b.Build()
}
