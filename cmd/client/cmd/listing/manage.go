package listing

import (
	"fmt"

	"github.com/spf13/cobra"

	"marketplace/cmd/client/cmd/types"
	"marketplace/internal/domain/market"
)

var (
	updateTitle       string
	updateDescription string
	updatePrice       float64
	updateCity        string
	rejectReason      string
)

var DeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Удалить свое объявление",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		return app.DeleteListing(cmd.Context(), args[0])
	},
}

var OutdatedCmd = &cobra.Command{
	Use:   "outdated <id>",
	Short: "Снять объявление с публикации",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		_, err = app.MarkListingOutdated(cmd.Context(), args[0])
		return err
	},
}

var RestoreCmd = &cobra.Command{
	Use:   "restore <id>",
	Short: "Вернуть объявление в публикацию",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		_, err = app.RestoreListing(cmd.Context(), args[0])
		return err
	},
}

var UpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Изменить объявление",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		req := market.UpdateProductRequest{
			Title:       updateTitle,
			Description: updateDescription,
			City:        updateCity,
		}
		if cmd.Flags().Changed("price") {
			req.Price = &updatePrice
		}

		p, err := app.UpdateListing(cmd.Context(), args[0], req)
		if err != nil {
			return err
		}

		fmt.Printf("%s: %s, %.2f %s\n", p.ID, p.Title, p.Price, p.Currency)
		return nil
	},
}

var ApproveCmd = &cobra.Command{
	Use:   "approve <id>",
	Short: "Одобрить объявление (модератор)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		_, err = app.ApproveListing(cmd.Context(), args[0])
		return err
	},
}

var RejectCmd = &cobra.Command{
	Use:   "reject <id>",
	Short: "Отклонить объявление (модератор)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		_, err = app.RejectListing(cmd.Context(), args[0], rejectReason)
		return err
	},
}

func init() {
	UpdateCmd.Flags().StringVar(&updateTitle, "title", "", "название")
	UpdateCmd.Flags().StringVar(&updateDescription, "description", "", "описание")
	UpdateCmd.Flags().Float64Var(&updatePrice, "price", 0, "цена")
	UpdateCmd.Flags().StringVar(&updateCity, "city", "", "город")

	RejectCmd.Flags().StringVarP(&rejectReason, "reason", "r", "", "причина отклонения")

	ListingCmd.AddCommand(DeleteCmd, OutdatedCmd, RestoreCmd, UpdateCmd, ApproveCmd, RejectCmd)
}
