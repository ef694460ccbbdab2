package chat

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/promptdeck/promptdeck/internal/cli"
	"github.com/promptdeck/promptdeck/internal/configuration"
	"github.com/promptdeck/promptdeck/model"
	"github.com/promptdeck/promptdeck/store"
)

// NewListChatsCmd instantiates and returns the chats command.
func NewListChatsCmd(config *configuration.Config, s *store.Store) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chats",
		Short: "List all chats",
		Long:  "List all chats",
		Args:  cobra.ExactArgs(0),
		Run: func(cmd *cobra.Command, args []string) {
			reconciler := NewReconciler(s)

			// Headers.
			cli.Title("PROMPTDECK CHATS")

			chats, err := reconciler.ListChats()
			cobra.CheckErr(err)
			for _, chat := range chats {
				updated := time.UnixMicro(chat.UpdateTimestamp)
				cli.AIOutput("chat (%s) [%s] - %s\n", chat.ID, modelTags(chat), updated.Format("2006-01-02 15:04"))
				cli.UserInput("> %s\n", chat.Title)
			}
		},
	}

	cmd.AddCommand(newDeleteChatCmd(s))
	cmd.AddCommand(newDeleteExchangeCmd(s))
	return cmd
}

// newDeleteChatCmd instantiates and returns the chat delete command.
func newDeleteChatCmd(s *store.Store) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <chat-id>",
		Short: "Delete a chat",
		Long:  "Delete a chat",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			reconciler := NewReconciler(s)
			chat, err := reconciler.GetChat(args[0])
			cobra.CheckErr(err)
			if !cli.QueryUser("Delete chat \"" + chat.Title + "\"?") {
				return
			}
			cobra.CheckErr(reconciler.DeleteChat(chat.ID))
			cli.UserCommand("#Deleted chat %s\n", chat.ID)
		},
	}
}

// newDeleteExchangeCmd instantiates and returns the exchange delete command.
func newDeleteExchangeCmd(s *store.Store) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-exchange <chat-id> <exchange-id>",
		Short: "Delete a single exchange of a chat",
		Long:  "Delete a single exchange of a chat",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			reconciler := NewReconciler(s)
			chat, err := reconciler.DeleteExchange(args[1], args[0])
			cobra.CheckErr(err)
			cli.UserCommand("#Deleted exchange, %d remaining\n", len(chat.Exchanges))
		},
	}
}

// modelTags returns the display names of the models used by a chat's
// exchanges, most recent first.
func modelTags(chat *Chat) string {
	seen := map[string]bool{}
	tags := ""
	for _, exchange := range chat.Exchanges {
		name := model.Name(chat.ModelFor(exchange))
		if seen[name] {
			continue
		}
		seen[name] = true
		if tags != "" {
			tags += ", "
		}
		tags += name
	}
	if tags == "" {
		tags = model.Name(chat.Model)
	}
	return tags
}
