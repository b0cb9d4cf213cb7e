package downloader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaenox/sticker-bot/internal/metadata"
	"github.com/xaenox/sticker-bot/internal/models"
	"github.com/xaenox/sticker-bot/internal/storage"
	"go.uber.org/zap/zaptest"
)

type fakeResolver map[string][]models.ItemDescriptor

func (r fakeResolver) ResolveCollection(_ context.Context, name string) ([]models.ItemDescriptor, error) {
	items, ok := r[name]
	if !ok {
		return nil, errors.New("STICKERSET_INVALID")
	}
	return items, nil
}

type fakeFetcher struct {
	fail  map[string]bool
	calls []string
}

func (f *fakeFetcher) Download(_ context.Context, fileID, dst string) error {
	f.calls = append(f.calls, fileID)
	if f.fail[fileID] {
		return errors.New("unexpected status 502")
	}
	return os.WriteFile(dst, []byte("payload-"+fileID), 0o644)
}

func listFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestDownloadCollection_SingleStaticSticker(t *testing.T) {
	root := filepath.Join(t.TempDir(), "stickers_42")
	resolver := fakeResolver{"cats": {
		{FileID: "f1", UniqueID: "u1", SetName: "cats", Emoji: "😺"},
	}}
	catalog := storage.NewMemoryCatalog()
	d := New(resolver, &fakeFetcher{}, metadata.NewStore(), catalog, zaptest.NewLogger(t))

	result := d.DownloadCollection(context.Background(), 42, "cats", root)
	assert.Equal(t, Result{Enumerated: 1, Saved: 1}, result)

	setDir := filepath.Join(root, "cats")
	assert.Equal(t, []string{"item_1.json", "item_1.webp"}, listFiles(t, setDir))

	record, err := metadata.NewStore().Read(filepath.Join(setDir, "item_1.json"))
	require.NoError(t, err)
	assert.Equal(t, "f1", record.FileID)
	assert.Equal(t, "cats", record.SetName)
	require.NotNil(t, record.Emoji)
	assert.Equal(t, "😺", *record.Emoji)

	sets, err := catalog.ListSets(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.Equal(t, "cats", sets[0].SetName)
	assert.Equal(t, 1, sets[0].Saved)
}

func TestDownloadCollection_AnimatedExtension(t *testing.T) {
	root := t.TempDir()
	resolver := fakeResolver{"moving": {
		{FileID: "a1", SetName: "moving", IsAnimated: true},
		{FileID: "s2", SetName: "moving"},
	}}
	d := New(resolver, &fakeFetcher{}, metadata.NewStore(), nil, zaptest.NewLogger(t))

	result := d.DownloadCollection(context.Background(), 1, "moving", root)
	assert.Equal(t, Result{Enumerated: 2, Saved: 2}, result)
	assert.Equal(t,
		[]string{"item_1.json", "item_1.tgs", "item_2.json", "item_2.webp"},
		listFiles(t, filepath.Join(root, "moving")))
}

func TestDownloadCollection_ItemFailureIsTolerated(t *testing.T) {
	root := t.TempDir()
	resolver := fakeResolver{"cats": {
		{FileID: "f1", SetName: "cats"},
		{FileID: "f2", SetName: "cats"},
		{FileID: "f3", SetName: "cats"},
	}}
	fetcher := &fakeFetcher{fail: map[string]bool{"f2": true}}
	d := New(resolver, fetcher, metadata.NewStore(), nil, zaptest.NewLogger(t))

	result := d.DownloadCollection(context.Background(), 1, "cats", root)
	assert.Equal(t, 3, result.Enumerated)
	assert.Equal(t, 2, result.Saved)
	assert.Equal(t, []string{"f1", "f2", "f3"}, fetcher.calls, "items are fetched in order")

	assert.Equal(t,
		[]string{"item_1.json", "item_1.webp", "item_2.json", "item_3.json", "item_3.webp"},
		listFiles(t, filepath.Join(root, "cats")))
}

func TestDownloadCollection_RecordsHaveCompanionPaths(t *testing.T) {
	root := t.TempDir()
	items := make([]models.ItemDescriptor, 0, 5)
	for i, id := range []string{"a", "b", "c", "d", "e"} {
		items = append(items, models.ItemDescriptor{FileID: id, SetName: "mixed", IsAnimated: i%2 == 0})
	}
	d := New(fakeResolver{"mixed": items}, &fakeFetcher{}, metadata.NewStore(), nil, zaptest.NewLogger(t))

	result := d.DownloadCollection(context.Background(), 1, "mixed", root)
	require.Equal(t, 5, result.Enumerated)

	setDir := filepath.Join(root, "mixed")
	records := 0
	for _, name := range listFiles(t, setDir) {
		path := filepath.Join(setDir, name)
		if !metadata.IsRecord(path) {
			continue
		}
		records++
		found := 0
		for _, candidate := range metadata.Candidates(path) {
			if _, err := os.Stat(candidate); err == nil {
				found++
			}
		}
		assert.Equal(t, 1, found, "record %s should have exactly one payload", name)
	}
	assert.Equal(t, 5, records)
}

func TestDownloadCollection_UnknownSet(t *testing.T) {
	root := t.TempDir()
	catalog := storage.NewMemoryCatalog()
	d := New(fakeResolver{}, &fakeFetcher{}, metadata.NewStore(), catalog, zaptest.NewLogger(t))

	result := d.DownloadCollection(context.Background(), 1, "nope", root)
	assert.Equal(t, Result{}, result)

	_, err := os.Stat(filepath.Join(root, "nope"))
	assert.True(t, os.IsNotExist(err))

	sets, err := catalog.ListSets(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, sets)
}

type failingRecords struct {
	store *metadata.Store
	fail  string
}

func (r failingRecords) Write(path string, record models.StoredItem) error {
	if record.FileID == r.fail {
		return errors.New("disk full")
	}
	return r.store.Write(path, record)
}

func TestDownloadCollection_MetadataFailureSkipsPayload(t *testing.T) {
	root := t.TempDir()
	resolver := fakeResolver{"cats": {
		{FileID: "f1", SetName: "cats"},
		{FileID: "f2", SetName: "cats"},
		{FileID: "f3", SetName: "cats"},
	}}
	fetcher := &fakeFetcher{}
	d := New(resolver, fetcher, failingRecords{store: metadata.NewStore(), fail: "f2"}, nil, zaptest.NewLogger(t))

	result := d.DownloadCollection(context.Background(), 1, "cats", root)
	assert.Equal(t, Result{Enumerated: 3, Saved: 2}, result)
	assert.Equal(t, []string{"f1", "f3"}, fetcher.calls, "no payload without a record")
	assert.Equal(t,
		[]string{"item_1.json", "item_1.webp", "item_3.json", "item_3.webp"},
		listFiles(t, filepath.Join(root, "cats")))
}
