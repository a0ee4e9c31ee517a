// Package action - одноразовые действия над сервером: удаление объявления,
// модерация, возврат средств и т.п.
//
// Каждый вызов Run - независимая транзакция: проверка сессии и данных до
// запроса, ровно одно уведомление по итогу, затем обновление зависимых
// хранилищ. Повторов нет.
package action

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/exp/slog"

	"marketplace/internal/app/client/metrics"
	"marketplace/internal/app/client/notify"
	"marketplace/internal/app/client/session"
	"marketplace/internal/errs"
)

// Session - источник токена и id пользователя.
type Session interface {
	Snapshot() session.Snapshot
}

// Request - данные одного вызова.
type Request[P any] struct {
	Token string
	// CreatorID - id текущего пользователя, заполняется для действий над
	// своими объявлениями.
	CreatorID string
	ID        string
	Payload   P
}

// Refresher обновляет зависимое хранилище после успешного действия.
type Refresher func(ctx context.Context) error

type Definition[P, R any] struct {
	Name string
	// RequireCreator требует id пользователя в сессии.
	RequireCreator bool
	// Validate проверяет данные до запроса.
	Validate func(id string, payload P) error
	Call     func(ctx context.Context, req Request[P]) (R, error)
	// Success - текст уведомления об успехе, Failure - текст ошибки, если
	// сервер не прислал сообщение.
	Success string
	Failure string
	Refresh []Refresher
}

type Deps struct {
	Notifier notify.Notifier
	Log      *slog.Logger
	Metrics  *metrics.Metrics
}

type Action[P, R any] struct {
	def     Definition[P, R]
	session Session
	deps    Deps
	log     *slog.Logger

	mu      sync.Mutex
	running int
	err     error
}

func New[P, R any](s Session, deps Deps, def Definition[P, R]) *Action[P, R] {
	log := deps.Log
	if log == nil {
		log = slog.Default()
	}
	return &Action[P, R]{
		def:     def,
		session: s,
		deps:    deps,
		log:     log.With("action", def.Name),
	}
}

// Run выполняет действие над записью id.
func (a *Action[P, R]) Run(ctx context.Context, id string, payload P) (R, error) {
	var zero R

	snap := a.session.Snapshot()
	if snap.Token == "" || (a.def.RequireCreator && snap.UserID() == "") {
		a.fail(errs.ErrUnauthenticated, "unauthenticated")
		return zero, errs.ErrUnauthenticated
	}

	if a.def.Validate != nil {
		if err := a.def.Validate(id, payload); err != nil {
			a.fail(err, "invalid")
			return zero, err
		}
	}

	req := Request[P]{Token: snap.Token, ID: id, Payload: payload}
	if a.def.RequireCreator {
		req.CreatorID = snap.UserID()
	}

	res, err := a.call(ctx, req)
	if err != nil {
		a.log.Warn("Действие не выполнено", "id", id, "error", err)
		a.fail(err, "error")
		return zero, err
	}

	a.deps.Metrics.ObserveAction(a.def.Name, "ok")
	a.log.Info("Действие выполнено", "id", id)
	if a.def.Success != "" {
		a.show(a.def.Success, notify.KindSuccess)
	}

	for _, refresh := range a.def.Refresh {
		if rerr := refresh(ctx); rerr != nil && !errors.Is(rerr, context.Canceled) {
			a.log.Warn("Не удалось обновить зависимые данные", "error", rerr)
		}
	}

	return res, nil
}

// call держит признак загрузки на время запроса. Признак снимается ровно
// один раз, даже при панике в Call.
func (a *Action[P, R]) call(ctx context.Context, req Request[P]) (res R, err error) {
	a.mu.Lock()
	a.running++
	a.err = nil
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.running--
		a.err = err
		a.mu.Unlock()
	}()

	return a.def.Call(ctx, req)
}

func (a *Action[P, R]) fail(err error, outcome string) {
	a.mu.Lock()
	a.err = err
	a.mu.Unlock()

	a.deps.Metrics.ObserveAction(a.def.Name, outcome)
	a.show(errs.UserMessage(err, a.def.Failure), notify.KindError)
}

func (a *Action[P, R]) show(message string, kind notify.Kind) {
	if a.deps.Notifier != nil {
		a.deps.Notifier.Show(message, kind)
	}
}

// IsLoading сообщает, выполняется ли сейчас запрос.
func (a *Action[P, R]) IsLoading() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running > 0
}

// Err возвращает ошибку последнего вызова.
func (a *Action[P, R]) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}
