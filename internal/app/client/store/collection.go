package store

import (
	"context"
	"fmt"

	"marketplace/internal/app/client/optimistic"
	"marketplace/internal/domain/market"
)

// PageFetcher загружает одну страницу коллекции. Непагинированные эндпоинты
// возвращают Page с пустой Pagination.
type PageFetcher[T any] func(ctx context.Context, token string, q market.PageQuery) (market.Page[T], error)

// Collection - коллекция записей с ключом.
type Collection[T any] struct {
	base
	key      func(T) string
	fetch    PageFetcher[T]
	pageSize int

	items      []T
	pagination *market.Pagination
	search     string
}

func NewCollection[T any](session TokenSource, key func(T) string, fetch PageFetcher[T], pageSize int, opts Options) *Collection[T] {
	c := &Collection[T]{
		key:      key,
		fetch:    fetch,
		pageSize: pageSize,
	}
	c.init(session, opts)
	return c
}

// Fetch загружает страницу page. Первая страница заменяет данные, следующие
// дописываются в порядке сервера. Записи, которые уже есть в коллекции,
// повторно не добавляются.
func (c *Collection[T]) Fetch(ctx context.Context, page int) ([]T, error) {
	if page < 1 {
		page = 1
	}

	c.mu.Lock()
	q := market.PageQuery{Page: page, Limit: c.pageSize, Search: c.search}
	c.mu.Unlock()

	_, err := c.load(ctx, fmt.Sprintf("page:%d:%s", page, q.Search), func(ctx context.Context, token string) (any, error) {
		return c.fetch(ctx, token, q)
	}, func(v any) {
		p := v.(market.Page[T])
		if page == 1 {
			c.items = append([]T(nil), p.Items...)
		} else {
			c.appendNew(p.Items)
		}
		c.pagination = p.Pagination
	})
	if err != nil {
		return nil, err
	}

	return c.Items(), nil
}

// FetchNext загружает следующую страницу, если она есть.
func (c *Collection[T]) FetchNext(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	p := c.pagination
	c.mu.Unlock()

	if p == nil {
		return c.Fetch(ctx, 1)
	}
	if !p.HasNext() {
		return c.Items(), nil
	}
	return c.Fetch(ctx, p.Page+1)
}

// SetSearch меняет строку поиска. Смена строки сбрасывает загруженные
// страницы.
func (c *Collection[T]) SetSearch(search string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.search == search {
		return
	}
	c.resetLocked()
	c.items = nil
	c.pagination = nil
	c.search = search
}

func (c *Collection[T]) appendNew(items []T) {
	seen := make(map[string]struct{}, len(c.items))
	for _, it := range c.items {
		seen[c.key(it)] = struct{}{}
	}
	for _, it := range items {
		k := c.key(it)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		c.items = append(c.items, it)
	}
}

// Items возвращает копию записей.
func (c *Collection[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]T(nil), c.items...)
}

func (c *Collection[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Get возвращает запись по ключу.
func (c *Collection[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexLocked(key); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// Find возвращает первую запись, для которой match вернул true.
func (c *Collection[T]) Find(match func(T) bool) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, it := range c.items {
		if match(it) {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// Put вставляет или заменяет подтвержденную сервером запись.
func (c *Collection[T]) Put(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexLocked(c.key(item)); i >= 0 {
		c.items[i] = item
		return
	}
	c.items = append(c.items, item)
}

func (c *Collection[T]) Snapshot() State[[]T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	var p *market.Pagination
	if c.pagination != nil {
		cp := *c.pagination
		p = &cp
	}

	return State[[]T]{
		Data:       append([]T(nil), c.items...),
		Loading:    c.loading,
		Error:      c.errMsg,
		Pagination: p,
	}
}

// Reset очищает коллекцию. Запросы и мутации в полете не применятся.
func (c *Collection[T]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.resetLocked()
	c.items = nil
	c.pagination = nil
	c.search = ""
}

func (c *Collection[T]) indexLocked(key string) int {
	for i, it := range c.items {
		if c.key(it) == key {
			return i
		}
	}
	return -1
}

func (c *Collection[T]) removeLocked(key string) (T, int, bool) {
	i := c.indexLocked(key)
	if i < 0 {
		var zero T
		return zero, -1, false
	}
	it := c.items[i]
	c.items = append(c.items[:i:i], c.items[i+1:]...)
	return it, i, true
}

// Add добавляет placeholder сразу и заменяет его ответом сервера. При ошибке
// удаляется только placeholder.
func (c *Collection[T]) Add(ctx context.Context, placeholder T, remote func(ctx context.Context, token string) (T, error), msg Messages) (T, error) {
	token, gen, err := c.authorize()
	if err != nil {
		var zero T
		return zero, err
	}

	tmp := c.key(placeholder)

	res, err := optimistic.Run(ctx, optimistic.Mutation[struct{}, T]{
		Apply: func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.items = append(c.items, placeholder)
		},
		Remote: func(ctx context.Context) (T, error) {
			return remote(ctx, token)
		},
		Rollback: func(struct{}) {
			c.mu.Lock()
			defer c.mu.Unlock()
			if c.gen != gen {
				return
			}
			c.removeLocked(tmp)
		},
		Reconcile: func(v T) {
			c.mu.Lock()
			defer c.mu.Unlock()
			if c.gen != gen {
				return
			}
			// Загрузка могла успеть принести запись с серверным ключом
			if j := c.indexLocked(c.key(v)); j >= 0 {
				c.items[j] = v
				if c.key(v) != tmp {
					c.removeLocked(tmp)
				}
				return
			}
			if i := c.indexLocked(tmp); i >= 0 {
				c.items[i] = v
				return
			}
			// Загрузка первой страницы стерла placeholder до ответа сервера
			c.items = append(c.items, v)
		},
	})

	c.settle(err, msg)
	return res, err
}

// Remove удаляет запись сразу. При ошибке запись возвращается на прежнее
// место.
func (c *Collection[T]) Remove(ctx context.Context, key string, remote func(ctx context.Context, token string) error, msg Messages) error {
	token, gen, err := c.authorize()
	if err != nil {
		return err
	}

	// Снимок и удаление делаются под одной блокировкой в Apply.
	var (
		removed T
		index   int
		found   bool
	)

	_, err = optimistic.Run(ctx, optimistic.Mutation[struct{}, struct{}]{
		Apply: func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			removed, index, found = c.removeLocked(key)
		},
		Remote: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, remote(ctx, token)
		},
		Rollback: func(struct{}) {
			c.mu.Lock()
			defer c.mu.Unlock()
			if c.gen != gen || !found || c.indexLocked(key) >= 0 {
				return
			}
			i := min(index, len(c.items))
			c.items = append(c.items[:i], append([]T{removed}, c.items[i:]...)...)
		},
	})

	c.settle(err, msg)
	return err
}

// Update заменяет запись с ключом updated сразу. Ответ сервера заменяет
// оптимистичное значение, ошибка возвращает предыдущее.
func (c *Collection[T]) Update(ctx context.Context, updated T, remote func(ctx context.Context, token string) (T, error), msg Messages) (T, error) {
	token, gen, err := c.authorize()
	if err != nil {
		var zero T
		return zero, err
	}

	key := c.key(updated)

	type snapshot struct {
		prev  T
		found bool
	}

	res, err := optimistic.Run(ctx, optimistic.Mutation[snapshot, T]{
		Snapshot: func() snapshot {
			c.mu.Lock()
			defer c.mu.Unlock()
			if i := c.indexLocked(key); i >= 0 {
				return snapshot{prev: c.items[i], found: true}
			}
			return snapshot{}
		},
		Apply: func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if i := c.indexLocked(key); i >= 0 {
				c.items[i] = updated
			}
		},
		Remote: func(ctx context.Context) (T, error) {
			return remote(ctx, token)
		},
		Rollback: func(s snapshot) {
			c.mu.Lock()
			defer c.mu.Unlock()
			if c.gen != gen || !s.found {
				return
			}
			if i := c.indexLocked(key); i >= 0 {
				c.items[i] = s.prev
			}
		},
		Reconcile: func(v T) {
			c.mu.Lock()
			defer c.mu.Unlock()
			if c.gen != gen {
				return
			}
			if i := c.indexLocked(key); i >= 0 {
				c.items[i] = v
			}
		},
	})

	c.settle(err, msg)
	return res, err
}
