package main

import (
	"context"
	"fmt"
	"strings"

	"flytz/cmd/flytz/chat"
	"flytz/cmd/flytz/ui"
	"flytz/internal/advisor"
	"flytz/internal/types"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var (
	chatClear   bool
	chatHistory bool
)

var chatCmd = &cobra.Command{
	Use:   "chat [saved-id] [message]",
	Short: "Talk to the trip assistant about a saved strategy",
	Long: `Sends one message to the trip assistant and prints the reply. Without a
message, opens the interactive chat. The conversation is kept per saved
strategy.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatClear, "clear", false, "Reset the conversation")
	chatCmd.Flags().BoolVar(&chatHistory, "history", false, "Print the conversation and exit")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	saved, err := a.store.GetStrategy(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if chatClear {
		if err := a.store.ClearChat(saved.ID); err != nil {
			return err
		}
	}
	history, err := a.store.ChatHistory(saved.ID)
	if err != nil {
		return err
	}

	cc := advisor.ChatContext{
		Strategy: saved.Strategy,
		Deals:    saved.Deals,
		Profile:  saved.Profile,
		Trip:     &saved.Trip,
	}
	send := func(ctx context.Context, h []types.ChatMessage, msg string) string {
		return a.advisor.Chat(ctx, h, msg, cc)
	}
	persist := func(msgs ...types.ChatMessage) error {
		return a.store.AppendChat(saved.ID, msgs...)
	}

	if chatHistory {
		if jsonOutput {
			return printJSON(out, history)
		}
		for _, m := range history {
			printChatMessage(cmd, a.styles, m)
		}
		return nil
	}

	if len(args) == 2 {
		message := strings.TrimSpace(args[1])
		if message == "" {
			return fmt.Errorf("message is empty")
		}
		reply := send(ctx, history, message)
		userMsg := types.ChatMessage{Role: types.RoleUser, Text: message}
		modelMsg := types.ChatMessage{Role: types.RoleModel, Text: reply}
		if err := persist(userMsg, modelMsg); err != nil {
			return fmt.Errorf("failed to save chat: %w", err)
		}
		if jsonOutput {
			return printJSON(out, modelMsg)
		}
		printChatMessage(cmd, a.styles, modelMsg)
		return nil
	}

	m := chat.New(ctx, "Trip Assistant: "+saved.Name, history, send, persist)
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("chat failed: %w", err)
	}
	if fm, ok := final.(chat.Model); ok && fm.Err() != nil {
		return fmt.Errorf("failed to save chat: %w", fm.Err())
	}
	return nil
}

func printChatMessage(cmd *cobra.Command, styles ui.Styles, m types.ChatMessage) {
	out := cmd.OutOrStdout()
	if m.Role == types.RoleUser {
		fmt.Fprintln(out, styles.Prompt.Render("you> ")+m.Text)
		return
	}
	fmt.Fprint(out, ui.RenderMarkdown(m.Text, 80))
}
