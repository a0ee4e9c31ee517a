// Package listing - команды объявлений и модерации.
package listing

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"marketplace/cmd/client/cmd/types"
	"marketplace/internal/domain/market"
)

var listPage int

var ListingCmd = &cobra.Command{
	Use:   "listing",
	Short: "Объявления",
	Long:  `Поиск объявлений, управление своими объявлениями и модерация.`,
}

var SearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Поиск объявлений (без входа)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		query := ""
		if len(args) > 0 {
			query = args[0]
		}

		items, err := app.SearchListings(cmd.Context(), query, listPage)
		if err != nil {
			return fmt.Errorf("ошибка поиска: %w", err)
		}
		return printProducts(items, app.SearchResults().Pagination)
	},
}

var MineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Мои объявления",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		items, err := app.FetchMyListings(cmd.Context(), listPage)
		if err != nil {
			return fmt.Errorf("ошибка загрузки объявлений: %w", err)
		}
		return printProducts(items, app.MyListings().Pagination)
	},
}

var PendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "Очередь модерации",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		items, err := app.FetchPendingListings(cmd.Context(), listPage)
		if err != nil {
			return fmt.Errorf("ошибка загрузки очереди модерации: %w", err)
		}
		return printProducts(items, app.PendingListings().Pagination)
	},
}

func printProducts(items []market.Product, p *market.Pagination) error {
	if len(items) == 0 {
		fmt.Println("Объявления не найдены")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tНАЗВАНИЕ\tЦЕНА\tГОРОД\tСТАТУС")
	for _, it := range items {
		fmt.Fprintf(w, "%s\t%s\t%.2f %s\t%s\t%s\n", it.ID, it.Title, it.Price, it.Currency, it.City, it.Status)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if p != nil {
		fmt.Printf("\nСтраница %d из %d, всего %d\n", p.Page, p.Pages, p.Total)
	}
	return nil
}

func init() {
	for _, c := range []*cobra.Command{SearchCmd, MineCmd, PendingCmd} {
		c.Flags().IntVar(&listPage, "page", 1, "номер страницы")
	}

	ListingCmd.AddCommand(SearchCmd, MineCmd, PendingCmd)
}
