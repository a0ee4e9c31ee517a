// cmd/client/cmd/init.go
package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"marketplace/cmd/client/cmd/account"
	"marketplace/cmd/client/cmd/auth"
	"marketplace/cmd/client/cmd/chat"
	"marketplace/cmd/client/cmd/favorite"
	"marketplace/cmd/client/cmd/listing"
	"marketplace/cmd/client/cmd/types"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Проверить соединение и сессию",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		fmt.Printf("Сервер: %s\n", cfg.BaseURL())
		if err := app.CheckConnection(cmd.Context()); err != nil {
			fmt.Printf("⚠️  %v\n", err)
		} else {
			fmt.Println("✓ Соединение с сервером установлено")
		}

		snap := app.Session()
		fmt.Printf("Сессия: %s", snap.State)
		if snap.User != nil {
			fmt.Printf(" (%s)", snap.User.Name)
		}
		fmt.Println()
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Счетчики клиента за время выполнения команды",
	Long: `Выполняет проверку соединения и выводит ненулевые счетчики клиента:
запросы, загрузки, мутации, действия и уведомления.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		_ = app.CheckConnection(cmd.Context())

		families, err := app.Metrics().Registry.Gather()
		if err != nil {
			return fmt.Errorf("ошибка сбора метрик: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "МЕТРИКА\tМЕТКИ\tЗНАЧЕНИЕ")
		for _, mf := range families {
			for _, m := range mf.GetMetric() {
				if m.GetCounter().GetValue() == 0 {
					continue
				}
				labels := make([]string, 0, len(m.GetLabel()))
				for _, l := range m.GetLabel() {
					labels = append(labels, l.GetName()+"="+l.GetValue())
				}
				sort.Strings(labels)
				fmt.Fprintf(w, "%s\t%s\t%.0f\n", mf.GetName(), strings.Join(labels, ","), m.GetCounter().GetValue())
			}
		}
		return w.Flush()
	},
}

func init() {
	// Команды сессии
	rootCmd.AddCommand(auth.AuthCmd)
	auth.AuthCmd.AddCommand(auth.RegisterCmd)
	auth.AuthCmd.AddCommand(auth.LoginCmd)
	auth.AuthCmd.AddCommand(auth.LogoutCmd)
	auth.AuthCmd.AddCommand(auth.GuestCmd)
	auth.AuthCmd.AddCommand(auth.WhoamiCmd)

	// Ресурсы
	rootCmd.AddCommand(favorite.FavoriteCmd)
	rootCmd.AddCommand(account.BalanceCmd)
	rootCmd.AddCommand(account.VerifyCmd)
	rootCmd.AddCommand(account.BlockedCmd)
	rootCmd.AddCommand(chat.ChatCmd)
	rootCmd.AddCommand(listing.ListingCmd)

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(statsCmd)
}
