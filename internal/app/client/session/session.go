// Package session хранит единственную авторитетную сессию клиента:
// токен, пользователя и признак гостевого режима.
//
// Память и постоянное хранилище меняются парой: запись в KV выполняется одной
// транзакцией, снимок в памяти подменяется под блокировкой. Читатели видят
// либо старое, либо новое состояние целиком.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/exp/slog"

	"marketplace/internal/domain/market"
	"marketplace/internal/errs"
)

// Ключи постоянного хранилища. Пишутся и удаляются только вместе.
const (
	KeyToken   = "auth_token"
	KeyUser    = "auth_user"
	KeySkipped = "auth_skipped"
)

// KV - плоское хранилище ключ-значение. Write должен применять set и remove
// атомарно.
type KV interface {
	Get(ctx context.Context, keys ...string) (map[string]string, error)
	Write(ctx context.Context, set map[string]string, remove ...string) error
}

type State int

const (
	// StateAnonymous - сессия не определена, нужно показать вход.
	StateAnonymous State = iota
	StateAuthenticated
	StateGuest
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateGuest:
		return "guest"
	default:
		return "anonymous"
	}
}

// Snapshot - неизменяемая копия сессии.
type Snapshot struct {
	Token      string
	User       *market.User
	State      State
	Generation uint64
}

func (s Snapshot) IsAuthenticated() bool { return s.State == StateAuthenticated }
func (s Snapshot) IsAuthSkipped() bool   { return s.State == StateGuest }

// UserID возвращает id пользователя или пустую строку.
func (s Snapshot) UserID() string {
	if s.User == nil {
		return ""
	}
	return s.User.ID
}

type Store struct {
	// writeMu упорядочивает изменения вместе с рассылкой подписчикам.
	writeMu sync.Mutex
	// mu держится на запись на время обращения к KV, поэтому Token()
	// не вернет значение, пока загрузка или запись не завершены.
	mu   sync.RWMutex
	snap Snapshot

	kv  KV
	log *slog.Logger

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

func NewStore(kv KV, log *slog.Logger) *Store {
	return &Store{
		kv:   kv,
		log:  log,
		subs: make(map[int]func(Snapshot)),
	}
}

// Snapshot возвращает текущее состояние сессии.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snap
	if snap.User != nil {
		u := *snap.User
		snap.User = &u
	}
	return snap
}

// Token возвращает текущий токен или пустую строку.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Token
}

// Generation растет при каждой смене личности: вход, выход, гостевой режим.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Generation
}

// SetAuthData сохраняет токен и пользователя после успешного входа или
// регистрации и снимает гостевой признак.
func (s *Store) SetAuthData(ctx context.Context, token string, user market.User) error {
	if token == "" {
		return errs.Validation("пустой токен")
	}
	if user.ID == "" {
		return errs.Validation("пустой id пользователя")
	}

	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("ошибка сериализации пользователя: %w", err)
	}

	s.apply(ctx, Snapshot{Token: token, User: &user, State: StateAuthenticated}, func() error {
		return s.kv.Write(ctx, map[string]string{
			KeyToken: token,
			KeyUser:  string(userJSON),
		}, KeySkipped)
	})

	return nil
}

// ClearAuthData удаляет сессию. Повторный вызов безопасен.
func (s *Store) ClearAuthData(ctx context.Context) {
	s.apply(ctx, Snapshot{State: StateAnonymous}, func() error {
		return s.kv.Write(ctx, nil, KeyToken, KeyUser, KeySkipped)
	})
}

// SkipAuth переводит клиент в гостевой режим.
func (s *Store) SkipAuth(ctx context.Context) {
	s.apply(ctx, Snapshot{State: StateGuest}, func() error {
		return s.kv.Write(ctx, map[string]string{KeySkipped: "true"}, KeyToken, KeyUser)
	})
}

// LoadAuthData восстанавливает сессию из хранилища. Гостевой признак
// важнее оставшегося токена. Ошибки хранилища приводят к анонимной сессии.
func (s *Store) LoadAuthData(ctx context.Context) Snapshot {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	next := s.restore(ctx)
	changed := !sameIdentity(s.snap, next)
	next.Generation = s.snap.Generation
	if changed {
		next.Generation++
	}
	s.snap = next
	s.mu.Unlock()

	s.log.Info("Сессия восстановлена", "state", next.State.String(), "user_id", next.UserID())

	if changed {
		s.publish(next)
	}
	return next
}

func (s *Store) restore(ctx context.Context) Snapshot {
	values, err := s.kv.Get(ctx, KeyToken, KeyUser, KeySkipped)
	if err != nil {
		s.log.Warn("Не удалось прочитать сессию, продолжаем анонимно",
			"error", errors.Join(errs.ErrPersistence, err))
		return Snapshot{State: StateAnonymous}
	}

	if values[KeySkipped] == "true" {
		return Snapshot{State: StateGuest}
	}

	token, userJSON := values[KeyToken], values[KeyUser]
	if token == "" || userJSON == "" {
		return Snapshot{State: StateAnonymous}
	}

	var user market.User
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil || user.ID == "" {
		s.log.Warn("Сохраненный пользователь поврежден, требуется вход", "error", err)
		return Snapshot{State: StateAnonymous}
	}

	return Snapshot{Token: token, User: &user, State: StateAuthenticated}
}

// apply записывает KV и подменяет снимок. Если запись не удалась, сессия
// становится анонимной: сохраненные ключи очищаются, в памяти остается
// то же, что прочитает следующий запуск.
func (s *Store) apply(ctx context.Context, next Snapshot, write func() error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if err := write(); err != nil {
		s.log.Warn("Не удалось сохранить сессию, продолжаем анонимно",
			"state", next.State.String(), "error", errors.Join(errs.ErrPersistence, err))
		if cerr := s.kv.Write(ctx, nil, KeyToken, KeyUser, KeySkipped); cerr != nil {
			s.log.Warn("Не удалось очистить сохраненную сессию", "error", cerr)
		}
		next = Snapshot{State: StateAnonymous}
	}
	changed := !sameIdentity(s.snap, next)
	next.Generation = s.snap.Generation
	if changed {
		next.Generation++
	}
	s.snap = next
	s.mu.Unlock()

	if changed {
		s.publish(next)
	}
}

func sameIdentity(a, b Snapshot) bool {
	return a.State == b.State && a.Token == b.Token && a.UserID() == b.UserID()
}

// Subscribe регистрирует обработчик смены сессии. Обработчики вызываются
// по порядку изменений. Возвращает функцию отписки.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) publish(snap Snapshot) {
	s.subMu.Lock()
	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}
