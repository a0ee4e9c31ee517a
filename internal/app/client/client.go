package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/exp/slog"

	"marketplace/internal/app/client/action"
	"marketplace/internal/app/client/api"
	"marketplace/internal/app/client/config"
	"marketplace/internal/app/client/metrics"
	"marketplace/internal/app/client/notify"
	"marketplace/internal/app/client/preload"
	"marketplace/internal/app/client/session"
	"marketplace/internal/app/client/storage"
	"marketplace/internal/app/client/store"
	"marketplace/internal/domain/market"
)

// Storage - постоянное хранилище сессии.
type Storage interface {
	session.KV
	Close() error
}

type App struct {
	config        *config.Config
	log           *slog.Logger
	metrics       *metrics.Metrics
	storage       Storage
	api           *api.Client
	notifications *notify.Channel
	session       *session.Store

	favorites *store.Collection[market.Favorite]
	balance   *store.Resource[market.Balance]
	blocked   *store.Collection[market.BlockedUser]
	chats     *store.Collection[market.Chat]
	messages  *store.Group[market.Message]
	myList    *store.Collection[market.Product]
	pending   *store.Collection[market.Product]
	search    *store.Collection[market.Product]

	listings *action.Listings
	account  *action.Account

	preload        *preload.Orchestrator
	autoPreload    bool
	httpClient     *http.Client
	unsubscribeAll func()
}

type Option func(*App)

// WithStorage подменяет хранилище сессии.
func WithStorage(s Storage) Option {
	return func(a *App) { a.storage = s }
}

func WithHTTPClient(c *http.Client) Option {
	return func(a *App) { a.httpClient = c }
}

// WithoutPreload отключает фоновую предзагрузку чатов после входа.
// Используется в CLI, где каждая команда - отдельный запуск.
func WithoutPreload() Option {
	return func(a *App) { a.autoPreload = false }
}

func New(cfg *config.Config, log *slog.Logger, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("не передана конфигурация")
	}

	a := &App{
		config:      cfg,
		log:         log,
		metrics:     metrics.New(),
		autoPreload: true,
	}
	for _, opt := range opts {
		opt(a)
	}

	// Локальное хранилище сессии: SQLite, при ошибке - память
	if a.storage == nil {
		sqliteStorage, err := storage.NewSQLiteStorage(cfg.StatePath)
		if err != nil {
			log.Warn("Не удалось инициализировать SQLite, используем память", "error", err)
			a.storage = storage.NewMemoryStorage()
		} else {
			a.storage = sqliteStorage
		}
	}

	apiOpts := []api.Option{api.WithMetrics(a.metrics)}
	if a.httpClient != nil {
		apiOpts = append(apiOpts, api.WithHTTPClient(a.httpClient))
	}
	a.api = api.New(cfg.BaseURL(), cfg.RequestTimeout, log, apiOpts...)
	a.notifications = notify.New(cfg.NotificationTTL, log, a.metrics)
	a.session = session.NewStore(a.storage, log)

	a.initStores()
	a.initActions()

	a.preload = preload.New(
		func(ctx context.Context) ([]market.Chat, error) { return a.chats.Fetch(ctx, 1) },
		func(ctx context.Context, chatID string) error {
			_, err := a.messages.Get(chatID).Fetch(ctx, 1)
			return err
		},
		log,
	)

	a.unsubscribeAll = a.session.Subscribe(a.onSessionChange)

	return a, nil
}

func (a *App) storeOptions(name string, public bool) store.Options {
	return store.Options{
		Name:     name,
		Public:   public,
		Notifier: a.notifications,
		Log:      a.log,
		Metrics:  a.metrics,
	}
}

func (a *App) initStores() {
	a.favorites = store.NewCollection(a.session,
		func(f market.Favorite) string { return f.ID },
		func(ctx context.Context, token string, _ market.PageQuery) (market.Page[market.Favorite], error) {
			items, err := a.api.Favorites(ctx, token)
			return market.Page[market.Favorite]{Items: items}, err
		}, 0, a.storeOptions("favorites", false))

	a.balance = store.NewResource(a.session, a.api.Balance, a.storeOptions("balance", false))

	a.blocked = store.NewCollection(a.session,
		func(b market.BlockedUser) string { return b.UserID },
		func(ctx context.Context, token string, _ market.PageQuery) (market.Page[market.BlockedUser], error) {
			items, err := a.api.BlockedUsers(ctx, token)
			return market.Page[market.BlockedUser]{Items: items}, err
		}, 0, a.storeOptions("blocked_users", false))

	a.chats = store.NewCollection(a.session,
		func(c market.Chat) string { return c.ID },
		func(ctx context.Context, token string, _ market.PageQuery) (market.Page[market.Chat], error) {
			items, err := a.api.Chats(ctx, token)
			return market.Page[market.Chat]{Items: items}, err
		}, 0, a.storeOptions("chats", false))

	a.messages = store.NewGroup(a.session,
		func(m market.Message) string { return m.ID },
		a.api.Messages, a.config.MessagesPageSize, a.storeOptions("messages", false))

	a.myList = store.NewCollection(a.session,
		productKey, a.api.MyProducts, a.config.ListingsPageSize, a.storeOptions("my_listings", false))

	a.pending = store.NewCollection(a.session,
		productKey, a.api.PendingProducts, a.config.ListingsPageSize, a.storeOptions("pending_listings", false))

	a.search = store.NewCollection(a.session,
		productKey,
		func(ctx context.Context, _ string, q market.PageQuery) (market.Page[market.Product], error) {
			return a.api.SearchProducts(ctx, q)
		}, a.config.ListingsPageSize, a.storeOptions("search", true))
}

func productKey(p market.Product) string { return p.ID }

func (a *App) initActions() {
	deps := action.Deps{Notifier: a.notifications, Log: a.log, Metrics: a.metrics}

	refreshOwn := func(ctx context.Context) error {
		_, err := a.myList.Fetch(ctx, 1)
		return err
	}
	refreshPending := func(ctx context.Context) error {
		_, err := a.pending.Fetch(ctx, 1)
		return err
	}
	refreshBalance := func(ctx context.Context) error {
		_, err := a.balance.Fetch(ctx)
		return err
	}

	a.listings = action.NewListings(a.session, deps, a.api, refreshOwn, refreshPending)
	a.account = action.NewAccount(a.session, deps, a.api, refreshBalance)
}

// onSessionChange очищает кэш при смене личности и запускает предзагрузку
// для нового пользователя.
func (a *App) onSessionChange(snap session.Snapshot) {
	a.resetStores()
	a.log.Debug("Сессия изменена, кэш очищен", "state", snap.State.String())

	if a.autoPreload {
		a.preload.Trigger(snap)
	}
}

func (a *App) resetStores() {
	a.favorites.Reset()
	a.balance.Reset()
	a.blocked.Reset()
	a.chats.Reset()
	a.messages.Reset()
	a.myList.Reset()
	a.pending.Reset()
	a.search.Reset()
}

// Restore восстанавливает сессию из локального хранилища. До его завершения
// полагаться на Session нельзя.
func (a *App) Restore(ctx context.Context) session.Snapshot {
	return a.session.LoadAuthData(ctx)
}

// Session возвращает текущую сессию.
func (a *App) Session() session.Snapshot {
	return a.session.Snapshot()
}

func (a *App) Notifications() *notify.Channel {
	return a.notifications
}

func (a *App) Metrics() *metrics.Metrics {
	return a.metrics
}

// CheckConnection проверяет соединение с сервером
func (a *App) CheckConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := a.api.HealthCheck(ctx); err != nil {
		return fmt.Errorf("сервер %s недоступен: %w", a.config.ServerAddress, err)
	}
	return nil
}

// Preload загружает чаты и сообщения синхронно.
func (a *App) Preload(ctx context.Context) (preload.Report, error) {
	return a.preload.Run(ctx)
}

// WaitPreload ждет фоновой предзагрузки.
func (a *App) WaitPreload() {
	a.preload.Wait()
}

func (a *App) Shutdown() {
	a.log.Info("Завершение работы клиента...")

	a.unsubscribeAll()
	a.preload.Shutdown()
	a.notifications.Close()

	if err := a.storage.Close(); err != nil {
		a.log.Warn("Ошибка закрытия хранилища", "error", err)
	}

	a.log.Info("Клиент завершил работу")
}
