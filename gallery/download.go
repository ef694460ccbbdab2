package gallery

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/promptdeck/promptdeck/image"
)

var downloadClient = &http.Client{Timeout: 60 * time.Second}

// Download fetches an image's content and writes it to path.
func Download(ctx context.Context, img *image.GeneratedImage, path string) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, img.URL, nil)
	if err != nil {
		return errors.Wrap(err, "creating request")
	}
	response, err := downloadClient.Do(request)
	if err != nil {
		return errors.Wrap(err, "fetching image")
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return errors.Errorf("fetching image: status %d", response.StatusCode)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating file")
	}
	defer f.Close()
	if _, err := io.Copy(f, response.Body); err != nil {
		return errors.Wrap(err, "writing file")
	}
	return nil
}
