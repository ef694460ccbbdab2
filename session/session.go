// Package session implements the interactive chat command.
package session

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.design/x/clipboard"

	"github.com/promptdeck/promptdeck/chat"
	"github.com/promptdeck/promptdeck/internal/cli"
	"github.com/promptdeck/promptdeck/internal/configuration"
	"github.com/promptdeck/promptdeck/internal/debug"
	"github.com/promptdeck/promptdeck/internal/llm/openai"
	"github.com/promptdeck/promptdeck/model"
	"github.com/promptdeck/promptdeck/store"
	"github.com/promptdeck/promptdeck/stream"
)

// NewCmd instantiates and returns the chat command.
func NewCmd(config *configuration.Config, s *store.Store) *cobra.Command {
	var opts struct {
		Model  *model.Opts
		ChatID string
	}
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Back and forth chat",
		Long:  "Back and forth chat",
		Args:  cobra.ExactArgs(0),
		Run: func(cmd *cobra.Command, args []string) {
			reconciler := chat.NewReconciler(s)
			client := openai.NewClient(config.OpenaiAPIKey, config.OpenaiAPIHost)

			// Set the model.
			m, err := model.Parse(opts.Model, config)
			cobra.CheckErr(err)

			// Resume an existing chat if requested.
			var currentChat *chat.Chat
			if opts.ChatID != "" {
				currentChat, err = reconciler.GetChat(opts.ChatID)
				cobra.CheckErr(err)
			}

			// Headers.
			chatID := "new chat"
			if currentChat != nil {
				chatID = currentChat.ID
			}
			cli.Title("PROMPTDECK CHAT [%s](%s)", m.ID, chatID)

			// Print history, oldest first.
			if currentChat != nil {
				for i := len(currentChat.Exchanges) - 1; i >= 0; i-- {
					exchange := currentChat.Exchanges[i]
					cli.UserInput("> %s\n", exchange.Question.Content)
					if exchange.Answer != nil {
						cli.AIOutput(exchange.Answer.Content + "\n")
					}
				}
			}

			ctx := context.Background()
			for {
				// Query user for prompt.
				text, err := cli.PromptUser()
				cobra.CheckErr(err)
				if handled := runCommand(text, currentChat); handled {
					continue
				}
				if strings.TrimSpace(text) == "" {
					continue
				}

				// First question creates the chat; later ones append an exchange.
				var exchange *chat.Exchange
				if currentChat == nil {
					currentChat, err = chat.NewChat(text, m.ID)
					cobra.CheckErr(err)
					err = reconciler.UpsertChat(currentChat)
					cobra.CheckErr(err)
					exchange = currentChat.Exchanges[0]
				} else {
					exchange, err = chat.NewExchange(text, m.ID)
					cobra.CheckErr(err)
					currentChat.Exchanges = append([]*chat.Exchange{exchange}, currentChat.Exchanges...)
				}

				// Quick feedback so user knows the query has been submitted.
				cli.AIOutput("AI: ")

				// Set cancelable context with timeout.
				streamCtx, cancel := context.WithTimeout(ctx, time.Duration(config.RequestTimeout)*time.Second)
				handle := stream.Answer(streamCtx, client, &stream.Request{
					Exchanges: currentChat.Exchanges,
					Model:     currentChat.ModelFor(exchange),
					OnToken: func(token, _ string) {
						cli.AIOutput(token)
					},
				})

				// An interrupt cancels the stream; the exchange stays pending.
				interruptSignalChannel := make(chan os.Signal, 1)
				signal.Notify(interruptSignalChannel, os.Interrupt)
				select {
				case <-interruptSignalChannel:
					cli.UserCommand("#Interrupted\n")
					handle.Cancel()
					<-handle.Done()
				case <-handle.Done():
				}
				signal.Stop(interruptSignalChannel)
				cancel()
				cli.AIOutput("\n")

				switch handle.State() {
				case stream.StateCompleted:
					exchange.Answer = &chat.Answer{
						Content:         handle.Text(),
						UpdateTimestamp: time.Now().UnixMicro(),
					}
					_, err = reconciler.PersistExchange(exchange, currentChat.ID)
					cobra.CheckErr(err)
				case stream.StateFailed:
					// Surface the error; partial text is discarded.
					cli.ErrorInfo("Error: %s\n", handle.Err().Error())
					debug.GetLogger().Error("stream failed", "chat", currentChat.ID, "error", handle.Err())
				case stream.StateCancelled:
				}
			}
		},
	}

	opts.Model = model.GetOpts(cmd, config.Chat.DefaultModel)
	cmd.Flags().StringVar(&opts.ChatID, "id", "", "specify a chat id to resume")
	return cmd
}

// runCommand handles slash commands. Returns true if text was a command.
func runCommand(text string, currentChat *chat.Chat) bool {
	switch strings.TrimSpace(text) {
	case "/copy":
		answer := lastAnswer(currentChat)
		if answer == "" {
			cli.Info("No answer to copy yet.\n")
			return true
		}
		if err := clipboard.Init(); err != nil {
			cli.ErrorInfo("Error: clipboard unavailable: %s\n", err.Error())
			return true
		}
		clipboard.Write(clipboard.FmtText, []byte(answer))
		cli.UserCommand("#Copied last answer\n")
		return true
	}
	return false
}

// lastAnswer returns the most recent completed answer of the chat.
func lastAnswer(currentChat *chat.Chat) string {
	if currentChat == nil {
		return ""
	}
	for _, exchange := range currentChat.Exchanges {
		if exchange.Answer != nil {
			return exchange.Answer.Content
		}
	}
	return ""
}
