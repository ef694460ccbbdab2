package model

import (
	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"

	"github.com/promptdeck/promptdeck/internal/configuration"
)

// Opts for model.
type Opts struct {
	Model string
}

// GetOpts on the given command.
func GetOpts(cmd *cobra.Command, defaultModel string) *Opts {
	opts := &Opts{}
	cmd.Flags().StringVarP(&opts.Model, "model", "m", defaultModel, "specify a model")
	return opts
}

// Model represents a supported chat model.
type Model struct {
	ID   string
	Name string
}

var models = []*Model{
	{ID: openai.GPT4o, Name: "GPT-4o"},
	{ID: openai.GPT4oMini, Name: "GPT-4o mini"},
	{ID: openai.GPT4Turbo, Name: "GPT-4 Turbo"},
	{ID: openai.GPT4, Name: "GPT-4"},
	{ID: openai.GPT3Dot5Turbo, Name: "GPT-3.5 Turbo"},
}

// Parse the model.
func Parse(opts *Opts, config *configuration.Config) (*Model, error) {
	modelID := opts.Model
	if alias, ok := config.Chat.ModelAliases[modelID]; ok {
		modelID = alias
	}
	for _, model := range models {
		if model.ID == modelID {
			return model, nil
		}
	}
	return nil, errors.Errorf("unknown model (%s)", opts.Model)
}

// Name returns the display name of a model id, or the id itself.
func Name(modelID string) string {
	for _, model := range models {
		if model.ID == modelID {
			return model.Name
		}
	}
	return modelID
}
