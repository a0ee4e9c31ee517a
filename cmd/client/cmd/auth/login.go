// cmd/client/cmd/auth/login.go
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"marketplace/cmd/client/cmd/types"
)

var loginEmail string

var LoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Войти в аккаунт",
	Long: `Аутентификация на сервере маркетплейса.

После входа токен сохраняется локально для последующих команд.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		fmt.Println("=== Вход ===")
		fmt.Println()

		email := loginEmail
		if email == "" {
			email = readLine("Email: ")
		}
		password, err := readPassword("Пароль: ")
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		user, err := app.Login(ctx, email, password)
		if err != nil {
			return fmt.Errorf("ошибка аутентификации: %w", err)
		}

		fmt.Println()
		fmt.Printf("Вы вошли как %s (%s)\n", user.Name, user.Email)

		// Прогреваем чаты, чтобы сразу показать непрочитанные
		report, err := app.Preload(ctx)
		if err != nil {
			fmt.Printf("⚠️  Не удалось загрузить чаты: %v\n", err)
			return nil
		}
		if len(report.Failed) > 0 {
			fmt.Printf("Чатов: %d (сообщения %d чатов не загружены)\n", report.Chats, len(report.Failed))
		} else {
			fmt.Printf("Чатов: %d\n", report.Chats)
		}

		return nil
	},
}

func init() {
	LoginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "email пользователя")
}
