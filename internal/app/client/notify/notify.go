// Package notify реализует однослотовый канал всплывающих уведомлений.
//
// Видно не больше одного уведомления. Новое уведомление вытесняет текущее,
// таймер вытесненного останавливается. Каждое уведомление скрывается само
// через фиксированное время. Очереди нет: вытесненные уведомления теряются.
package notify

import (
	"sync"
	"time"

	"golang.org/x/exp/slog"

	"marketplace/internal/app/client/metrics"
)

// DefaultTTL - время показа уведомления.
const DefaultTTL = 3000 * time.Millisecond

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

type Notification struct {
	ID        uint64
	Message   string
	Kind      Kind
	CreatedAt time.Time
}

// Event - смена состояния канала. Visible == false означает переход в Idle.
type Event struct {
	Notification Notification
	Visible      bool
}

// Notifier - то, что нужно остальным компонентам от канала.
type Notifier interface {
	Show(message string, kind Kind) Notification
}

type Channel struct {
	// pubMu берется до mu и держится до конца рассылки, поэтому подписчики
	// получают события в порядке id. Подписчик не должен вызывать Show или
	// Dismiss из обработчика.
	pubMu sync.Mutex

	mu      sync.Mutex
	ttl     time.Duration
	lastID  uint64
	current *Notification
	timer   *time.Timer
	closed  bool

	subMu   sync.Mutex
	subs    map[int]func(Event)
	nextSub int

	log     *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func New(ttl time.Duration, log *slog.Logger, m *metrics.Metrics) *Channel {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Channel{
		ttl:     ttl,
		subs:    make(map[int]func(Event)),
		log:     log,
		metrics: m,
		now:     time.Now,
	}
}

// Show показывает уведомление, вытесняя текущее.
func (c *Channel) Show(message string, kind Kind) Notification {
	c.pubMu.Lock()
	defer c.pubMu.Unlock()

	c.mu.Lock()
	c.lastID++
	n := Notification{
		ID:        c.lastID,
		Message:   message,
		Kind:      kind,
		CreatedAt: c.now(),
	}

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.current = &n
	if !c.closed {
		id := n.ID
		c.timer = time.AfterFunc(c.ttl, func() { c.expire(id) })
	}
	c.mu.Unlock()

	c.metrics.ObserveNotification(string(kind))
	c.log.Debug("Уведомление", "id", n.ID, "kind", kind, "message", message)
	c.publish(Event{Notification: n, Visible: true})

	return n
}

func (c *Channel) Success(message string) Notification { return c.Show(message, KindSuccess) }
func (c *Channel) Error(message string) Notification   { return c.Show(message, KindError) }
func (c *Channel) Info(message string) Notification    { return c.Show(message, KindInfo) }

// Current возвращает видимое уведомление.
func (c *Channel) Current() (Notification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return Notification{}, false
	}
	return *c.current, true
}

// Dismiss скрывает уведомление с указанным id. Если видно уже другое
// уведомление, ничего не происходит.
func (c *Channel) Dismiss(id uint64) bool {
	c.pubMu.Lock()
	defer c.pubMu.Unlock()

	c.mu.Lock()
	if c.current == nil || c.current.ID != id {
		c.mu.Unlock()
		return false
	}
	n := *c.current
	c.current = nil
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()

	c.publish(Event{Notification: n, Visible: false})
	return true
}

func (c *Channel) expire(id uint64) {
	// Таймер мог сработать уже после вытеснения: Dismiss сверит id.
	c.Dismiss(id)
}

// Subscribe регистрирует обработчик событий канала. Возвращает функцию отписки.
func (c *Channel) Subscribe(fn func(Event)) func() {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn

	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

func (c *Channel) publish(e Event) {
	c.subMu.Lock()
	subs := make([]func(Event), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.subMu.Unlock()

	for _, fn := range subs {
		fn(e)
	}
}

// Close останавливает активный таймер. Уведомления после Close показываются,
// но больше не скрываются сами.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
