// Package chat - команды чатов и сообщений.
package chat

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"marketplace/cmd/client/cmd/types"
)

var (
	messagesPage int
	openProduct  string
)

var ChatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Чаты с продавцами и покупателями",
}

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "Список чатов",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		chats, err := app.FetchChats(cmd.Context())
		if err != nil {
			return fmt.Errorf("ошибка загрузки чатов: %w", err)
		}

		if len(chats) == 0 {
			fmt.Println("Чатов нет")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tОБЪЯВЛЕНИЕ\tУЧАСТНИКИ\tНЕПРОЧИТАНО\tПОСЛЕДНЕЕ")
		for _, c := range chats {
			last := ""
			if c.LastMessage != nil {
				last = truncate(c.LastMessage.Text, 40)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
				c.ID, c.ProductID, strings.Join(c.Participants, ","), c.UnreadCount, last)
		}
		return w.Flush()
	},
}

var OpenCmd = &cobra.Command{
	Use:   "open <user-id>",
	Short: "Открыть чат с пользователем по объявлению",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		chat, err := app.OpenChat(cmd.Context(), args[0], openProduct)
		if err != nil {
			return err
		}

		fmt.Printf("Чат %s\n", chat.ID)
		return nil
	},
}

var MessagesCmd = &cobra.Command{
	Use:   "messages <chat-id>",
	Short: "Сообщения чата",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		messages, err := app.FetchMessages(cmd.Context(), args[0], messagesPage)
		if err != nil {
			return fmt.Errorf("ошибка загрузки сообщений: %w", err)
		}

		me := app.Session().UserID()
		for _, m := range messages {
			author := color.New(color.FgCyan).Sprint(m.SenderID)
			if m.SenderID == me {
				author = color.New(color.FgGreen).Sprint("вы")
			}
			fmt.Printf("[%s] %s: %s\n", m.CreatedAt.Format("02.01 15:04"), author, m.Text)
		}

		if p := app.Messages(args[0]).Pagination; p != nil && p.HasNext() {
			fmt.Printf("\nСтраница %d из %d. Следующая: --page %d\n", p.Page, p.Pages, p.Page+1)
		}
		return nil
	},
}

var SendCmd = &cobra.Command{
	Use:   "send <chat-id> <text>",
	Short: "Отправить сообщение",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		_, err = app.SendMessage(cmd.Context(), args[0], strings.Join(args[1:], " "))
		return err
	},
}

var PreloadCmd = &cobra.Command{
	Use:   "preload",
	Short: "Загрузить все чаты и их сообщения",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		report, err := app.Preload(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("Чатов: %d, загружено: %d\n", report.Chats, len(report.Loaded))
		for _, id := range app.CachedChats() {
			if ferr, failed := report.Failed[id]; failed {
				color.New(color.FgYellow).Printf("⚠️  %s: %v\n", id, ferr)
				continue
			}
			fmt.Printf("  %s: %d сообщ.\n", id, len(app.Messages(id).Data))
		}
		return nil
	},
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

func init() {
	OpenCmd.Flags().StringVarP(&openProduct, "product", "p", "", "id объявления")
	_ = OpenCmd.MarkFlagRequired("product")
	MessagesCmd.Flags().IntVar(&messagesPage, "page", 1, "номер страницы")

	ChatCmd.AddCommand(ListCmd, OpenCmd, MessagesCmd, SendCmd, PreloadCmd)
}
