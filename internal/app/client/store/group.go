package store

import (
	"context"
	"sort"
	"sync"

	"marketplace/internal/domain/market"
)

// OwnedFetcher загружает страницу коллекции владельца owner.
type OwnedFetcher[T any] func(ctx context.Context, token, owner string, q market.PageQuery) (market.Page[T], error)

// Group - коллекции одного типа по id владельца, например сообщения по чатам.
// Коллекция создается при первом обращении.
type Group[T any] struct {
	session  TokenSource
	key      func(T) string
	fetch    OwnedFetcher[T]
	pageSize int
	opts     Options

	mu    sync.Mutex
	items map[string]*Collection[T]
}

func NewGroup[T any](session TokenSource, key func(T) string, fetch OwnedFetcher[T], pageSize int, opts Options) *Group[T] {
	return &Group[T]{
		session:  session,
		key:      key,
		fetch:    fetch,
		pageSize: pageSize,
		opts:     opts,
		items:    make(map[string]*Collection[T]),
	}
}

// Get возвращает коллекцию владельца, создавая ее при необходимости.
func (g *Group[T]) Get(owner string) *Collection[T] {
	g.mu.Lock()
	defer g.mu.Unlock()

	if c, ok := g.items[owner]; ok {
		return c
	}

	opts := g.opts
	if opts.Log != nil {
		opts.Log = opts.Log.With("owner", owner)
	}
	c := NewCollection(g.session, g.key, func(ctx context.Context, token string, q market.PageQuery) (market.Page[T], error) {
		return g.fetch(ctx, token, owner, q)
	}, g.pageSize, opts)
	g.items[owner] = c
	return c
}

// Lookup возвращает коллекцию владельца без создания.
func (g *Group[T]) Lookup(owner string) (*Collection[T], bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	c, ok := g.items[owner]
	return c, ok
}

// Keys возвращает отсортированные id владельцев.
func (g *Group[T]) Keys() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	keys := make([]string, 0, len(g.items))
	for k := range g.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Reset сбрасывает и забывает все коллекции.
func (g *Group[T]) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, c := range g.items {
		c.Reset()
	}
	g.items = make(map[string]*Collection[T])
}
