package image

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/promptdeck/promptdeck/internal/llm/engine"
)

// ErrEmptyPrompt is returned when a generation prompt contains no text.
var ErrEmptyPrompt = errors.New("prompt is empty")

// Model identifies an image generation engine model.
type Model string

const (
	ModelDreamshaper Model = "dreamshaper"
	ModelProteus     Model = "proteus"
	ModelPlayground  Model = "playground"
)

var models = []Model{ModelDreamshaper, ModelProteus, ModelPlayground}

// Models returns the supported engine models.
func Models() []Model {
	return models
}

// ParseModel resolves a model name.
func ParseModel(name string) (Model, error) {
	for _, model := range models {
		if string(model) == name {
			return model, nil
		}
	}
	return "", errors.Errorf("unknown image model (%s)", name)
}

// Key returns the storage key of a generated image.
func Key(imageID string) string {
	return "image/" + imageID
}

// Config holds the parameters an image was generated with.
type Config struct {
	Prompt string `json:"prompt"`
	Engine Model  `json:"engine"`
	// Steps on the engine's own scale.
	Steps int `json:"steps"`
}

// GeneratedImage is one image returned by the engine. Only Favourite is
// mutated after creation.
type GeneratedImage struct {
	ID                string  `json:"id"`
	URL               string  `json:"url"`
	Config            *Config `json:"config"`
	Favourite         bool    `json:"favourite"`
	CreationTimestamp int64   `json:"creation_timestamp"`
}

// Generator requests images from the engine.
type Generator struct {
	client *engine.Client
}

// NewGenerator instantiates and returns a new generator.
func NewGenerator(client *engine.Client) *Generator {
	return &Generator{client: client}
}

// Generate requests count images for the prompt. Steps is taken on the
// client scale and mapped onto the model's engine range.
func (g *Generator) Generate(ctx context.Context, prompt string, model Model, count, clientSteps int) ([]*GeneratedImage, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	engineSteps := ToEngineRange(clientSteps, model)
	engineImages, err := g.client.GenerateImages(ctx, &engine.GenerateImagesRequest{
		Prompt: prompt,
		Model:  string(model),
		Count:  count,
		Steps:  engineSteps,
	})
	if err != nil {
		return nil, errors.Wrap(err, "generating images")
	}

	now := time.Now().UnixMicro()
	images := make([]*GeneratedImage, 0, len(engineImages))
	for _, engineImage := range engineImages {
		id := engineImage.ID
		if id == "" {
			id = uuid.New().String()
		}
		images = append(images, &GeneratedImage{
			ID:  id,
			URL: engineImage.URL,
			Config: &Config{
				Prompt: prompt,
				Engine: model,
				Steps:  engineSteps,
			},
			CreationTimestamp: now,
		})
	}
	return images, nil
}
