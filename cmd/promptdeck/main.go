package main

import (
	"github.com/spf13/cobra"

	"github.com/promptdeck/promptdeck/chat"
	"github.com/promptdeck/promptdeck/gallery"
	"github.com/promptdeck/promptdeck/image"
	"github.com/promptdeck/promptdeck/internal/configuration"
	"github.com/promptdeck/promptdeck/session"
	"github.com/promptdeck/promptdeck/store"
)

const configFilepath = "~/.config/promptdeck/config.json"

var rootCmd = &cobra.Command{
	Use:     "promptdeck",
	Short:   "A CLI for chat and image generation",
	Version: "1.0",
}

func main() {
	config, err := configuration.Parse(configFilepath)
	if err != nil {
		panic(err)
	}

	// Create store
	store, err := store.New(config.Database)
	if err != nil {
		panic(err)
	}
	// Ensure store is closed when the program exits normally
	defer store.Close()

	rootCmd.AddCommand(session.NewCmd(config, store))
	rootCmd.AddCommand(chat.NewListChatsCmd(config, store))
	rootCmd.AddCommand(image.NewCmd(config, gallery.NewManager(store)))
	rootCmd.AddCommand(gallery.NewCmd(store))
	rootCmd.Execute()
}
