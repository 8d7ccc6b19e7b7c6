package patterns

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkingpass/internal/refdata"
	"parkingpass/internal/types"
)

func TestFileSource_Compressed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "violationPatterns.json.zst")
	require.NoError(t, refdata.WriteJSON(path, fixtureSummary()))

	store, err := Load(context.Background(), FileSource{Path: path})
	require.NoError(t, err)

	assert.True(t, store.Loaded())
	assert.Equal(t, 61234, store.TotalCount())
	assert.Equal(t, 0.8, store.HourlyWeight(18))
}

func TestFileSource_MissingFileMeansNoData(t *testing.T) {
	store, err := Load(context.Background(), FileSource{Path: filepath.Join(t.TempDir(), "absent.json")})
	require.NoError(t, err)

	assert.False(t, store.Loaded())
	assert.Equal(t, NoDataConfidence, store.Confidence("성정동"))
}

func TestFileSource_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "violationPatterns.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(context.Background(), FileSource{Path: path})

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeInternalReferenceData, appErr.Code)
}
