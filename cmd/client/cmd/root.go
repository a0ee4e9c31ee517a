// cmd/client/cmd/root.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/exp/slog"

	"marketplace/cmd/client/cmd/types"
	"marketplace/internal/app/client"
	"marketplace/internal/app/client/config"
	"marketplace/internal/app/client/notify"
	"marketplace/internal/utils/logger"
)

var (
	cfgFile   string
	cfg       *config.Config
	log       *slog.Logger
	app       *client.App
	debug     bool
	serverURL string
)

var rootCmd = &cobra.Command{
	Use:   "marketplace",
	Short: "Marketplace - консольный клиент маркетплейса",
	Long: `Marketplace - консольный клиент маркетплейса объявлений.

Сессия сохраняется локально, поэтому после входа команды работают
без повторной авторизации. Без входа доступен поиск объявлений.`,
	PersistentPreRunE: setupApp,
	PersistentPostRun: shutdownApp,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}

func setupApp(cmd *cobra.Command, _ []string) error {
	// Загружаем конфигурацию
	var err error
	cfg, err = loadConfig()
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	// Переопределяем настройки из флагов командной строки
	if serverURL != "" {
		cfg.ServerAddress = serverURL
	}
	if debug {
		cfg.Env = config.EnvLocal
	}

	// Настраиваем логгер
	if debug {
		log = logger.New(cfg.Env)
	} else {
		log = logger.Discard()
	}

	// Создаем приложение
	app, err = client.New(cfg, log, client.WithoutPreload())
	if err != nil {
		return fmt.Errorf("ошибка инициализации приложения: %w", err)
	}

	app.Notifications().Subscribe(printNotification)
	app.Restore(cmd.Context())

	cmd.SetContext(context.WithValue(cmd.Context(), types.ClientAppKey, app))
	return nil
}

func shutdownApp(_ *cobra.Command, _ []string) {
	if app != nil {
		app.Shutdown()
	}
}

// printNotification выводит уведомление в момент показа.
func printNotification(e notify.Event) {
	if !e.Visible {
		return
	}

	switch e.Notification.Kind {
	case notify.KindSuccess:
		color.New(color.FgGreen).Fprintln(os.Stderr, "✓ "+e.Notification.Message)
	case notify.KindError:
		color.New(color.FgRed).Fprintln(os.Stderr, "✗ "+e.Notification.Message)
	default:
		color.New(color.FgCyan).Fprintln(os.Stderr, "• "+e.Notification.Message)
	}
}

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Ищем конфиг в стандартных местах
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}

		viper.AddConfigPath(filepath.Join(home, ".marketplace"))
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		// Конфиг не найден, используем значения по умолчанию
	}

	return config.Load(viper.GetViper())
}

func init() {
	// Глобальные флаги
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "конфигурационный файл")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "включить отладочный режим")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "адрес сервера маркетплейса")

	// Команды добавляются в init.go
}
