// Package gallery manages the persisted collection of generated images and
// their favourite flags.
package gallery

import (
	"encoding/json"
	"sort"

	"github.com/pkg/errors"

	"github.com/promptdeck/promptdeck/image"
	"github.com/promptdeck/promptdeck/store"
)

// Filter selects which images a listing returns.
type Filter string

const (
	FilterAll        Filter = "all"
	FilterFavourites Filter = "favourites"
)

// ParseFilter resolves a filter name.
func ParseFilter(name string) (Filter, error) {
	switch Filter(name) {
	case FilterAll, FilterFavourites:
		return Filter(name), nil
	}
	return "", errors.Errorf("unknown filter (%s)", name)
}

// Manager loads, filters and mutates the image collection.
type Manager struct {
	store *store.Store
}

// NewManager instantiates and returns a new manager.
func NewManager(s *store.Store) *Manager {
	return &Manager{store: s}
}

// SaveImage upserts an image by id. Saving the same image twice keeps a
// single record.
func (m *Manager) SaveImage(img *image.GeneratedImage) error {
	return m.store.Put(image.Key(img.ID), img)
}

// GetImage reads an image from the store.
func (m *Manager) GetImage(imageID string) (*image.GeneratedImage, error) {
	img := &image.GeneratedImage{}
	if err := m.store.Get(image.Key(imageID), img); err != nil {
		return nil, err
	}
	return img, nil
}

// ListImages returns stored images matching the filter, most recently
// generated first. The order is stable across calls.
func (m *Manager) ListImages(filter Filter) ([]*image.GeneratedImage, error) {
	records, err := m.store.GetAll(image.Key(""))
	if err != nil {
		return nil, err
	}

	images := make([]*image.GeneratedImage, 0, len(records))
	for _, record := range records {
		img := &image.GeneratedImage{}
		if err := json.Unmarshal(record, img); err != nil {
			return nil, errors.Wrap(err, "unmarshaling image")
		}
		if filter == FilterFavourites && !img.Favourite {
			continue
		}
		images = append(images, img)
	}
	sort.Slice(images, func(i, j int) bool {
		if images[i].CreationTimestamp != images[j].CreationTimestamp {
			return images[i].CreationTimestamp > images[j].CreationTimestamp
		}
		return images[i].ID < images[j].ID
	})
	return images, nil
}

// ToggleFavourite flips the favourite flag, persists the image and returns
// the updated record for the caller to merge into its own list.
func (m *Manager) ToggleFavourite(img *image.GeneratedImage) (*image.GeneratedImage, error) {
	updated := *img
	updated.Favourite = !img.Favourite
	if err := m.store.Put(image.Key(updated.ID), &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}
