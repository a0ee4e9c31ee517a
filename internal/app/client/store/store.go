// Package store - кэш серверных ресурсов на клиенте.
//
// Resource хранит синглтон (баланс), Collection - коллекцию с ключом записи
// (избранное, чаты, сообщения). Оба:
//   - не делают запрос без токена, если ресурс не публичный;
//   - держат в полете не больше одного запроса на экземпляр: одинаковые
//     запросы склеиваются, разные ждут своей очереди;
//   - отбрасывают ответы, пришедшие после Reset или смены сессии;
//   - применяют мутации оптимистично и откатывают только свою запись.
package store

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/exp/slog"
	"golang.org/x/sync/singleflight"

	"marketplace/internal/app/client/metrics"
	"marketplace/internal/app/client/notify"
	"marketplace/internal/domain/market"
	"marketplace/internal/errs"
)

// ErrStale возвращается запросу, результат которого отброшен: хранилище
// сбросили или сменилась сессия, пока запрос был в полете.
var ErrStale = errors.New("результат запроса устарел")

// TokenSource - источник токена. Реализуется session.Store.
type TokenSource interface {
	Token() string
	Generation() uint64
}

// State - снимок ресурса для отображения.
type State[T any] struct {
	Data       T
	Loading    bool
	Error      string
	Pagination *market.Pagination
}

type Options struct {
	// Name используется в логах и метриках.
	Name string
	// Public разрешает загрузку без токена.
	Public   bool
	Notifier notify.Notifier
	Log      *slog.Logger
	Metrics  *metrics.Metrics
}

// Messages - тексты уведомлений мутации. Пустой Success - без уведомления
// об успехе. Failure используется, если сервер не прислал сообщение.
type Messages struct {
	Success string
	Failure string
}

const (
	outcomeOK              = "ok"
	outcomeError           = "error"
	outcomeShared          = "shared"
	outcomeDiscarded       = "discarded"
	outcomeUnauthenticated = "unauthenticated"
	outcomeCommitted       = "committed"
	outcomeRolledBack      = "rolled_back"
)

// base - общая часть Resource и Collection.
type base struct {
	opts    Options
	session TokenSource

	// fetchMu держит не больше одного запроса загрузки в полете.
	fetchMu sync.Mutex
	sf      singleflight.Group

	mu      sync.Mutex
	gen     uint64
	loading bool
	errMsg  string
}

func (b *base) init(session TokenSource, opts Options) {
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	opts.Log = opts.Log.With("resource", opts.Name)
	b.opts = opts
	b.session = session
}

// load выполняет загрузку с ключом key. commit вызывается под b.mu, только
// если результат не устарел.
func (b *base) load(ctx context.Context, key string, call func(ctx context.Context, token string) (any, error), commit func(v any)) (any, error) {
	if !b.opts.Public && b.session.Token() == "" {
		b.opts.Metrics.ObserveFetch(b.opts.Name, outcomeUnauthenticated)
		return nil, errs.ErrUnauthenticated
	}

	v, err, shared := b.sf.Do(key, func() (any, error) {
		b.fetchMu.Lock()
		defer b.fetchMu.Unlock()

		token := b.session.Token()
		if !b.opts.Public && token == "" {
			return nil, errs.ErrUnauthenticated
		}
		sessionGen := b.session.Generation()

		b.mu.Lock()
		gen := b.gen
		b.loading = true
		b.mu.Unlock()

		res, err := call(ctx, token)

		b.mu.Lock()
		defer b.mu.Unlock()

		if gen == b.gen {
			b.loading = false
		}
		if gen != b.gen || sessionGen != b.session.Generation() {
			b.opts.Log.Debug("Ответ отброшен как устаревший", "key", key)
			b.opts.Metrics.ObserveFetch(b.opts.Name, outcomeDiscarded)
			return nil, ErrStale
		}

		if err != nil {
			b.errMsg = errs.UserMessage(err, "Не удалось загрузить данные")
			b.opts.Log.Warn("Ошибка загрузки", "key", key, "error", err)
			b.opts.Metrics.ObserveFetch(b.opts.Name, outcomeError)
			return nil, err
		}

		b.errMsg = ""
		commit(res)
		b.opts.Metrics.ObserveFetch(b.opts.Name, outcomeOK)
		return res, nil
	})

	if shared {
		b.opts.Metrics.ObserveFetch(b.opts.Name, outcomeShared)
	}

	return v, err
}

// resetLocked сбрасывает служебное состояние. Вызывается под b.mu.
func (b *base) resetLocked() {
	b.gen++
	b.loading = false
	b.errMsg = ""
}

// authorize возвращает токен для мутации или уведомляет об отсутствии сессии.
func (b *base) authorize() (string, uint64, error) {
	token := b.session.Token()
	if token == "" {
		b.opts.Metrics.ObserveMutation(b.opts.Name, outcomeUnauthenticated)
		b.notify(errs.UserMessage(errs.ErrUnauthenticated, ""), notify.KindError)
		return "", 0, errs.ErrUnauthenticated
	}

	b.mu.Lock()
	gen := b.gen
	b.mu.Unlock()

	return token, gen, nil
}

func (b *base) settle(err error, msg Messages) {
	if err != nil {
		b.opts.Log.Warn("Мутация отклонена, локальное изменение откатано", "error", err)
		b.opts.Metrics.ObserveMutation(b.opts.Name, outcomeRolledBack)
		b.notify(errs.UserMessage(err, msg.Failure), notify.KindError)
		return
	}

	b.opts.Metrics.ObserveMutation(b.opts.Name, outcomeCommitted)
	if msg.Success != "" {
		b.notify(msg.Success, notify.KindSuccess)
	}
}

func (b *base) notify(message string, kind notify.Kind) {
	if b.opts.Notifier != nil {
		b.opts.Notifier.Show(message, kind)
	}
}
