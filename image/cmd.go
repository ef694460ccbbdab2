package image

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/promptdeck/promptdeck/internal/cli"
	"github.com/promptdeck/promptdeck/internal/configuration"
	"github.com/promptdeck/promptdeck/internal/llm/engine"
)

// Saver persists generated images.
type Saver interface {
	SaveImage(*GeneratedImage) error
}

// NewCmd instantiates and returns the image command.
func NewCmd(config *configuration.Config, saver Saver) *cobra.Command {
	var opts struct {
		Model string
		Count int
		Steps int
	}
	cmd := &cobra.Command{
		Use:   "image <prompt>",
		Short: "Generate images from a prompt",
		Long:  "Generate images from a prompt",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			prompt := strings.Join(args, " ")
			m, err := ParseModel(opts.Model)
			cobra.CheckErr(err)

			generator := NewGenerator(engine.NewClient(config.EngineAPIKey, config.EngineAPIHost))

			cli.Title("PROMPTDECK IMAGE [%s]", m)
			cli.Info("Generating %d image(s)...\n", opts.Count)

			ctx, cancel := context.WithTimeout(context.Background(), time.Duration(config.RequestTimeout)*time.Second)
			defer cancel()
			images, err := generator.Generate(ctx, prompt, m, opts.Count, opts.Steps)
			cobra.CheckErr(err)

			for _, img := range images {
				cobra.CheckErr(saver.SaveImage(img))
				cli.AIOutput("image (%s) %s\n", img.ID, img.URL)
			}
		},
	}

	cmd.Flags().StringVarP(&opts.Model, "model", "m", config.Image.DefaultModel, "specify an engine model")
	cmd.Flags().IntVarP(&opts.Count, "count", "n", config.Image.NumberOfImages, "number of images to generate")
	cmd.Flags().IntVar(&opts.Steps, "steps", config.Image.DefaultSteps, "detail steps on the client scale")
	return cmd
}
