package store

import (
	"context"

	"marketplace/internal/app/client/optimistic"
)

// pendingOp - локальное изменение, которое сервер еще не подтвердил.
type pendingOp[T any] struct {
	id    uint64
	apply func(T) T
}

// Resource - синглтон, например баланс.
//
// data всегда равно confirmed с примененными по порядку неподтвержденными
// изменениями. Ответ или ошибка одной мутации убирает из очереди только ее
// изменение, поэтому чужие подтвержденные значения не затираются.
type Resource[T any] struct {
	base
	fetch func(ctx context.Context, token string) (T, error)

	data      T
	confirmed T
	pending   []pendingOp[T]
	nextOp    uint64
}

func NewResource[T any](session TokenSource, fetch func(ctx context.Context, token string) (T, error), opts Options) *Resource[T] {
	r := &Resource[T]{fetch: fetch}
	r.init(session, opts)
	return r
}

// Fetch загружает значение целиком.
func (r *Resource[T]) Fetch(ctx context.Context) (T, error) {
	v, err := r.load(ctx, "resource", func(ctx context.Context, token string) (any, error) {
		return r.fetch(ctx, token)
	}, func(v any) {
		r.confirmed = v.(T)
		r.rebuildLocked()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

func (r *Resource[T]) Get() T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.data
}

func (r *Resource[T]) Snapshot() State[T] {
	r.mu.Lock()
	defer r.mu.Unlock()

	return State[T]{
		Data:    r.data,
		Loading: r.loading,
		Error:   r.errMsg,
	}
}

// Reset очищает значение. Запросы и мутации в полете будут отброшены.
func (r *Resource[T]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.resetLocked()
	var zero T
	r.data = zero
	r.confirmed = zero
	r.pending = nil
}

// rebuildLocked пересчитывает data из confirmed и очереди изменений.
func (r *Resource[T]) rebuildLocked() {
	v := r.confirmed
	for _, op := range r.pending {
		v = op.apply(v)
	}
	r.data = v
}

func (r *Resource[T]) dropLocked(id uint64) bool {
	for i, op := range r.pending {
		if op.id == id {
			r.pending = append(r.pending[:i:i], r.pending[i+1:]...)
			return true
		}
	}
	return false
}

// Mutate применяет apply локально, затем выполняет remote. Ответ сервера
// становится подтвержденным значением, ошибка снимает только это изменение.
func (r *Resource[T]) Mutate(ctx context.Context, apply func(T) T, remote func(ctx context.Context, token string) (T, error), msg Messages) (T, error) {
	token, gen, err := r.authorize()
	if err != nil {
		var zero T
		return zero, err
	}

	var id uint64

	res, err := optimistic.Run(ctx, optimistic.Mutation[struct{}, T]{
		Apply: func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.nextOp++
			id = r.nextOp
			r.pending = append(r.pending, pendingOp[T]{id: id, apply: apply})
			r.data = apply(r.data)
		},
		Remote: func(ctx context.Context) (T, error) {
			return remote(ctx, token)
		},
		Rollback: func(struct{}) {
			r.mu.Lock()
			defer r.mu.Unlock()
			if r.gen != gen || !r.dropLocked(id) {
				return
			}
			r.rebuildLocked()
		},
		Reconcile: func(v T) {
			r.mu.Lock()
			defer r.mu.Unlock()
			if r.gen != gen {
				return
			}
			r.dropLocked(id)
			r.confirmed = v
			r.rebuildLocked()
		},
	})

	r.settle(err, msg)
	return res, err
}
