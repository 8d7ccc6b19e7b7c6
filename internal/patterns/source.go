package patterns

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"parkingpass/internal/refdata"
	"parkingpass/internal/types"
)

// Source loads the pattern summary from a backing store. A nil summary with
// a nil error means no pattern data exists.
type Source interface {
	LoadSummary(ctx context.Context) (*Summary, error)
}

// Load reads a Store from src.
func Load(ctx context.Context, src Source) (*Store, error) {
	s, err := src.LoadSummary(ctx)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalReferenceData, "failed to load violation patterns", err)
	}
	return NewStore(s), nil
}

// FileSource reads the summary from a JSON or .json.zst file. A missing file
// is not an error; the store then serves defaults.
type FileSource struct {
	Path string
}

// LoadSummary implements Source.
func (s FileSource) LoadSummary(_ context.Context) (*Summary, error) {
	var sum Summary
	if err := refdata.ReadJSON(s.Path, &sum); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("violation patterns: %w", err)
	}
	return &sum, nil
}
