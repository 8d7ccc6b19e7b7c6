package refdata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Ratio float64 `json:"ratio"`
}

func TestWriteReadJSON_Plain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lots.json")
	in := []sample{{ID: "P1", Name: "성정공영주차장", Ratio: 0.5}}

	require.NoError(t, WriteJSON(path, in))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "성정공영주차장", "output must not escape non-ASCII text")

	var out []sample
	require.NoError(t, ReadJSON(path, &out))
	assert.Equal(t, in, out)
}

func TestWriteReadJSON_Compressed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.json.zst")
	in := map[string]sample{"a": {ID: "a", Ratio: 1}, "b": {ID: "b", Ratio: 0.25}}

	require.NoError(t, WriteJSON(path, in))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	// zstd frame magic number.
	require.GreaterOrEqual(t, len(raw), 4)
	assert.Equal(t, []byte{0x28, 0xB5, 0x2F, 0xFD}, raw[:4])

	var out map[string]sample
	require.NoError(t, ReadJSON(path, &out))
	assert.Equal(t, in, out)
}

func TestReadJSON_Missing(t *testing.T) {
	var out []sample
	err := ReadJSON(filepath.Join(t.TempDir(), "nope.json"), &out)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadJSON_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json.zst")
	require.NoError(t, os.WriteFile(path, []byte("not zstd"), 0o644))

	var out []sample
	assert.Error(t, ReadJSON(path, &out))
}

func TestIsCompressed(t *testing.T) {
	assert.True(t, IsCompressed("a/b/lots.json.zst"))
	assert.False(t, IsCompressed("a/b/lots.json"))
}
