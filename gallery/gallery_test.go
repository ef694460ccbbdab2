package gallery

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptdeck/promptdeck/image"
	"github.com/promptdeck/promptdeck/store"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return NewManager(s)
}

func newTestImage(id string, timestamp int64) *image.GeneratedImage {
	return &image.GeneratedImage{
		ID:  id,
		URL: "https://example.com/" + id + ".png",
		Config: &image.Config{
			Prompt: "a lighthouse at dusk",
			Engine: image.ModelProteus,
			Steps:  9,
		},
		CreationTimestamp: timestamp,
	}
}

func TestSaveImageIdempotent(t *testing.T) {
	manager := newTestManager(t)

	img := newTestImage("img-1", 100)
	require.NoError(t, manager.SaveImage(img))
	require.NoError(t, manager.SaveImage(img))

	images, err := manager.ListImages(FilterAll)
	require.NoError(t, err)
	assert.Len(t, images, 1)
}

func TestGetImage(t *testing.T) {
	manager := newTestManager(t)

	img := newTestImage("img-1", 100)
	require.NoError(t, manager.SaveImage(img))

	got, err := manager.GetImage("img-1")
	require.NoError(t, err)
	assert.Equal(t, img, got)

	_, err = manager.GetImage("missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListImagesOrder(t *testing.T) {
	manager := newTestManager(t)

	require.NoError(t, manager.SaveImage(newTestImage("img-old", 100)))
	require.NoError(t, manager.SaveImage(newTestImage("img-new", 300)))
	// Same timestamp; ties break on id so the order is stable.
	require.NoError(t, manager.SaveImage(newTestImage("img-b", 200)))
	require.NoError(t, manager.SaveImage(newTestImage("img-a", 200)))

	images, err := manager.ListImages(FilterAll)
	require.NoError(t, err)
	require.Len(t, images, 4)
	assert.Equal(t, "img-new", images[0].ID)
	assert.Equal(t, "img-a", images[1].ID)
	assert.Equal(t, "img-b", images[2].ID)
	assert.Equal(t, "img-old", images[3].ID)
}

func TestListImagesFavouritesFilter(t *testing.T) {
	manager := newTestManager(t)

	plain := newTestImage("img-plain", 100)
	loved := newTestImage("img-loved", 200)
	loved.Favourite = true
	require.NoError(t, manager.SaveImage(plain))
	require.NoError(t, manager.SaveImage(loved))

	images, err := manager.ListImages(FilterFavourites)
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, "img-loved", images[0].ID)
}

func TestToggleFavourite(t *testing.T) {
	manager := newTestManager(t)

	img := newTestImage("img-1", 100)
	require.NoError(t, manager.SaveImage(img))

	updated, err := manager.ToggleFavourite(img)
	require.NoError(t, err)
	assert.True(t, updated.Favourite)
	// The argument is left untouched.
	assert.False(t, img.Favourite)

	stored, err := manager.GetImage("img-1")
	require.NoError(t, err)
	assert.True(t, stored.Favourite)

	// Toggling twice restores the original flag.
	reverted, err := manager.ToggleFavourite(updated)
	require.NoError(t, err)
	assert.False(t, reverted.Favourite)
}

func TestParseFilter(t *testing.T) {
	filter, err := ParseFilter("all")
	require.NoError(t, err)
	assert.Equal(t, FilterAll, filter)

	filter, err = ParseFilter("favourites")
	require.NoError(t, err)
	assert.Equal(t, FilterFavourites, filter)

	_, err = ParseFilter("starred")
	assert.Error(t, err)
}
