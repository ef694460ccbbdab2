package gallery

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/promptdeck/promptdeck/internal/cli"
	"github.com/promptdeck/promptdeck/store"
)

// NewCmd instantiates and returns the gallery command.
func NewCmd(s *store.Store) *cobra.Command {
	var opts struct {
		Filter string
	}
	cmd := &cobra.Command{
		Use:   "gallery",
		Short: "Browse saved images",
		Long:  "Browse saved images",
		Args:  cobra.ExactArgs(0),
		Run: func(cmd *cobra.Command, args []string) {
			manager := NewManager(s)
			filter, err := ParseFilter(opts.Filter)
			cobra.CheckErr(err)

			cli.Title("PROMPTDECK GALLERY [%s]", filter)

			images, err := manager.ListImages(filter)
			cobra.CheckErr(err)
			for _, img := range images {
				heart := " "
				if img.Favourite {
					heart = "♥"
				}
				cli.AIOutput("%s image (%s) [%s] %s\n", heart, img.ID, img.Config.Engine, img.Config.Prompt)
			}
		},
	}

	cmd.Flags().StringVarP(&opts.Filter, "filter", "f", string(FilterAll), "filter images (all|favourites)")
	cmd.AddCommand(newFavouriteCmd(s))
	cmd.AddCommand(newDownloadCmd(s))
	return cmd
}

// newFavouriteCmd instantiates and returns the favourite toggle command.
func newFavouriteCmd(s *store.Store) *cobra.Command {
	return &cobra.Command{
		Use:   "favourite <image-id>",
		Short: "Toggle an image's favourite flag",
		Long:  "Toggle an image's favourite flag",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			manager := NewManager(s)
			img, err := manager.GetImage(args[0])
			cobra.CheckErr(err)
			updated, err := manager.ToggleFavourite(img)
			cobra.CheckErr(err)
			if updated.Favourite {
				cli.UserCommand("#Added to favourites\n")
				return
			}
			cli.UserCommand("#Removed from favourites\n")
		},
	}
}

// newDownloadCmd instantiates and returns the download command.
func newDownloadCmd(s *store.Store) *cobra.Command {
	return &cobra.Command{
		Use:   "download <image-id> <path>",
		Short: "Download an image to a local file",
		Long:  "Download an image to a local file",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			manager := NewManager(s)
			img, err := manager.GetImage(args[0])
			cobra.CheckErr(err)

			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()
			cobra.CheckErr(Download(ctx, img, args[1]))
			cli.UserCommand("#Saved to %s\n", args[1])
		},
	}
}
