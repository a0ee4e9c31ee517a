package auth

import (
	"fmt"

	"github.com/spf13/cobra"

	"marketplace/cmd/client/cmd/types"
)

var LogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Выйти из аккаунта",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		app.Logout(cmd.Context())
		fmt.Println("Сессия завершена")
		return nil
	},
}

var GuestCmd = &cobra.Command{
	Use:   "guest",
	Short: "Продолжить без входа",
	Long:  `Гостевой режим: доступен поиск объявлений, остальные команды потребуют входа.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		app.SkipAuth(cmd.Context())
		fmt.Println("Включен гостевой режим")
		return nil
	},
}

var WhoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Показать текущую сессию",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		snap := app.Session()
		switch {
		case snap.IsAuthSkipped():
			fmt.Println("Гостевой режим")
			return nil
		case !snap.IsAuthenticated():
			fmt.Println("Вход не выполнен. Выполните: marketplace auth login")
			return nil
		}

		user, err := app.Me(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("ID:       %s\n", user.ID)
		fmt.Printf("Имя:      %s\n", user.Name)
		fmt.Printf("Email:    %s\n", user.Email)
		if user.Role != "" {
			fmt.Printf("Роль:     %s\n", user.Role)
		}
		fmt.Printf("Проверен: %t\n", user.Verified)
		return nil
	},
}
