package metadata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaenox/sticker-bot/internal/models"
)

func TestStore_WriteRead(t *testing.T) {
	dir := t.TempDir()
	s := NewStore()
	emoji := "🐱"
	want := models.StoredItem{
		FileID:     "CAACAgIAAxkBAAE",
		UniqueID:   "AgADbQ",
		IsAnimated: true,
		SetName:    "cats",
		Emoji:      &emoji,
	}

	path := RecordPath(dir, 1)
	require.NoError(t, s.Write(path, want))

	got, err := s.Read(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file must not be left behind")
}

func TestStore_WriteNullEmoji(t *testing.T) {
	dir := t.TempDir()
	path := RecordPath(dir, 2)
	require.NoError(t, NewStore().Write(path, models.StoredItem{FileID: "x", SetName: "dogs"}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"emoji": null`)
}

func TestStore_ReadErrors(t *testing.T) {
	dir := t.TempDir()
	s := NewStore()

	_, err := s.Read(filepath.Join(dir, "missing.json"))
	require.ErrorIs(t, err, os.ErrNotExist)

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte("{not json"), 0o644))
	_, err = s.Read(broken)
	require.Error(t, err)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{"set_name":"cats"}`), 0o644))
	_, err = s.Read(empty)
	require.ErrorIs(t, err, ErrIncompleteRecord)
}

func TestPaths(t *testing.T) {
	dir := filepath.Join("stickers_42", "cats")

	assert.Equal(t, filepath.Join(dir, "item_3.json"), RecordPath(dir, 3))
	assert.Equal(t, filepath.Join(dir, "item_3.webp"), PayloadPath(dir, 3, false))
	assert.Equal(t, filepath.Join(dir, "item_3.tgs"), PayloadPath(dir, 3, true))
	assert.True(t, IsRecord(RecordPath(dir, 3)))
	assert.False(t, IsRecord(PayloadPath(dir, 3, true)))

	assert.Equal(t, []string{
		filepath.Join(dir, "item_3.webp"),
		filepath.Join(dir, "item_3.tgs"),
	}, Candidates(RecordPath(dir, 3)))
}
