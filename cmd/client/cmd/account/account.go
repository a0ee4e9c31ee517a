// Package account - команды баланса, верификации и блокировок.
package account

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"marketplace/cmd/client/cmd/types"
	"marketplace/internal/domain/market"
)

var (
	refundAmount float64
	refundReason string

	verifyName      string
	verifyDocument  string
	verifyDocuments []string
)

var BalanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Показать баланс",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		b, err := app.FetchBalance(cmd.Context())
		if err != nil {
			return fmt.Errorf("ошибка загрузки баланса: %w", err)
		}

		fmt.Printf("Баланс: %.2f %s\n", b.Balance, b.Currency)
		return nil
	},
}

var RefundCmd = &cobra.Command{
	Use:   "refund",
	Short: "Запросить возврат средств",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		res, err := app.RequestRefund(cmd.Context(), refundAmount, refundReason)
		if err != nil {
			return err
		}

		fmt.Printf("Заявка %s: %s\n", res.ID, res.Status)
		if b := app.Balance(); b.Error == "" {
			fmt.Printf("Баланс: %.2f %s\n", b.Data.Balance, b.Data.Currency)
		}
		return nil
	},
}

var VerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Отправить заявку на верификацию продавца",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		res, err := app.SubmitVerification(cmd.Context(), market.VerificationRequest{
			FullName:       verifyName,
			DocumentNumber: verifyDocument,
			Documents:      verifyDocuments,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Заявка %s: %s\n", res.ID, res.Status)
		return nil
	},
}

var BlockedCmd = &cobra.Command{
	Use:   "blocked",
	Short: "Заблокированные пользователи",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		items, err := app.FetchBlockedUsers(cmd.Context())
		if err != nil {
			return fmt.Errorf("ошибка загрузки списка: %w", err)
		}

		if len(items) == 0 {
			fmt.Println("Заблокированных пользователей нет")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ПОЛЬЗОВАТЕЛЬ\tИМЯ\tДАТА")
		for _, b := range items {
			fmt.Fprintf(w, "%s\t%s\t%s\n", b.UserID, b.Name, b.BlockedAt.Format("02.01.2006"))
		}
		return w.Flush()
	},
}

var BlockCmd = &cobra.Command{
	Use:   "block <user-id>",
	Short: "Заблокировать пользователя",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		_, err = app.BlockUser(cmd.Context(), args[0])
		return err
	},
}

var UnblockCmd = &cobra.Command{
	Use:   "unblock <user-id>",
	Short: "Разблокировать пользователя",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		if _, err := app.FetchBlockedUsers(cmd.Context()); err != nil {
			return err
		}
		return app.UnblockUser(cmd.Context(), strings.TrimSpace(args[0]))
	},
}

func init() {
	RefundCmd.Flags().Float64VarP(&refundAmount, "amount", "a", 0, "сумма возврата")
	RefundCmd.Flags().StringVarP(&refundReason, "reason", "r", "", "причина")
	_ = RefundCmd.MarkFlagRequired("amount")

	VerifyCmd.Flags().StringVar(&verifyName, "name", "", "ФИО")
	VerifyCmd.Flags().StringVar(&verifyDocument, "document", "", "номер документа")
	VerifyCmd.Flags().StringSliceVar(&verifyDocuments, "file", nil, "ссылки на сканы документов")

	BalanceCmd.AddCommand(RefundCmd)
	BlockedCmd.AddCommand(BlockCmd, UnblockCmd)
}
