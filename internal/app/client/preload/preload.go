// Package preload прогревает чаты и сообщения после входа пользователя.
package preload

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/exp/slog"
	"golang.org/x/sync/errgroup"

	"marketplace/internal/app/client/session"
	"marketplace/internal/domain/market"
)

// ChatsFunc загружает список чатов в хранилище.
type ChatsFunc func(ctx context.Context) ([]market.Chat, error)

// MessagesFunc загружает первую страницу сообщений чата в хранилище.
type MessagesFunc func(ctx context.Context, chatID string) error

// Report - итог предзагрузки.
type Report struct {
	UserID string
	Chats  int
	Loaded []string
	// Failed - чаты, сообщения которых загрузить не удалось.
	Failed map[string]error
}

type Orchestrator struct {
	chats    ChatsFunc
	messages MessagesFunc
	log      *slog.Logger

	// OnComplete вызывается после каждого фонового запуска.
	OnComplete func(Report, error)

	mu       sync.Mutex
	lastUser string
	closed   bool
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
}

func New(chats ChatsFunc, messages MessagesFunc, log *slog.Logger) *Orchestrator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		chats:    chats,
		messages: messages,
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Run загружает список чатов, затем сообщения всех чатов одновременно.
// Ошибка списка чатов прерывает предзагрузку. Ошибка сообщений одного чата
// не отменяет остальные и не считается ошибкой предзагрузки.
func (o *Orchestrator) Run(ctx context.Context) (Report, error) {
	var report Report

	chats, err := o.chats(ctx)
	if err != nil {
		o.log.Warn("Предзагрузка прервана: не удалось загрузить чаты", "error", err)
		return report, fmt.Errorf("загрузка чатов: %w", err)
	}
	report.Chats = len(chats)

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	report.Failed = make(map[string]error)

	for _, chat := range chats {
		id := chat.ID
		g.Go(func() error {
			err := o.messages(ctx, id)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				o.log.Warn("Не удалось загрузить сообщения чата", "chat_id", id, "error", err)
				report.Failed[id] = err
				return nil
			}
			report.Loaded = append(report.Loaded, id)
			return nil
		})
	}
	_ = g.Wait()

	o.log.Info("Предзагрузка завершена",
		"chats", report.Chats, "loaded", len(report.Loaded), "failed", len(report.Failed))

	return report, nil
}

// Trigger запускает фоновую предзагрузку, если сессия перешла к новому
// вошедшему пользователю. Повтор для того же пользователя игнорируется,
// выход сбрасывает запомненного пользователя.
func (o *Orchestrator) Trigger(snap session.Snapshot) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !snap.IsAuthenticated() || snap.UserID() == "" {
		o.lastUser = ""
		return false
	}
	if o.closed || snap.UserID() == o.lastUser {
		return false
	}
	o.lastUser = snap.UserID()

	userID := snap.UserID()
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()

		report, err := o.Run(o.ctx)
		report.UserID = userID
		if o.OnComplete != nil {
			o.OnComplete(report, err)
		}
	}()

	return true
}

// Wait ждет завершения фоновых запусков.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// Shutdown отменяет фоновые запуски и ждет их завершения.
func (o *Orchestrator) Shutdown() {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()

	o.cancel()
	o.wg.Wait()
}
