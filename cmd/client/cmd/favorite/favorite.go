// Package favorite - команды избранного.
package favorite

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"marketplace/cmd/client/cmd/types"
)

var FavoriteCmd = &cobra.Command{
	Use:   "favorite",
	Short: "Избранные объявления",
}

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "Список избранного",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		items, err := app.FetchFavorites(cmd.Context())
		if err != nil {
			return fmt.Errorf("ошибка загрузки избранного: %w", err)
		}

		if len(items) == 0 {
			fmt.Println("Избранное пусто")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tОБЪЯВЛЕНИЕ\tНАЗВАНИЕ\tЦЕНА")
		for _, f := range items {
			title, price := "-", "-"
			if f.Product != nil {
				title = f.Product.Title
				price = fmt.Sprintf("%.2f %s", f.Product.Price, f.Product.Currency)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", f.ID, f.ProductID, title, price)
		}
		return w.Flush()
	},
}

var AddCmd = &cobra.Command{
	Use:   "add <product-id>",
	Short: "Добавить объявление в избранное",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		if _, err := app.FetchFavorites(cmd.Context()); err != nil {
			return err
		}
		_, err = app.AddFavorite(cmd.Context(), args[0])
		return err
	},
}

var RemoveCmd = &cobra.Command{
	Use:   "remove <product-id>",
	Short: "Удалить объявление из избранного",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		if _, err := app.FetchFavorites(cmd.Context()); err != nil {
			return err
		}
		return app.RemoveFavorite(cmd.Context(), args[0])
	},
}

func init() {
	FavoriteCmd.AddCommand(ListCmd, AddCmd, RemoveCmd)
}
