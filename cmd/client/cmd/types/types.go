// Package types - общие для команд CLI ключи контекста.
package types

import (
	"fmt"

	"github.com/spf13/cobra"

	"marketplace/internal/app/client"
)

type ctxKey string

// ClientAppKey - ключ *client.App в контексте команды.
const ClientAppKey ctxKey = "app"

// App достает приложение из контекста команды.
func App(cmd *cobra.Command) (*client.App, error) {
	app, ok := cmd.Context().Value(ClientAppKey).(*client.App)
	if !ok || app == nil {
		return nil, fmt.Errorf("приложение не инициализировано")
	}
	return app, nil
}
