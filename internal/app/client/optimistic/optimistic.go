// Package optimistic применяет локальное изменение до подтверждения сервером
// и откатывает его при ошибке.
//
// Snapshot снимает только то, чем владеет мутация (одну запись коллекции,
// значение синглтона), поэтому откат и согласование одной мутации не задевают
// чужие записи, даже если подтверждения приходят не по порядку.
package optimistic

import "context"

type Mutation[S, R any] struct {
	// Snapshot запоминает состояние записи до изменения.
	Snapshot func() S
	// Apply применяет изменение локально.
	Apply func()
	// Remote выполняет запрос к серверу.
	Remote func(ctx context.Context) (R, error)
	// Rollback возвращает запись к снимку.
	Rollback func(S)
	// Reconcile заменяет оптимистичную запись ответом сервера.
	Reconcile func(R)
}

// Run выполняет мутацию. Snapshot и Apply вызываются синхронно до запроса,
// затем ровно один из Rollback или Reconcile.
func Run[S, R any](ctx context.Context, m Mutation[S, R]) (R, error) {
	var snap S
	if m.Snapshot != nil {
		snap = m.Snapshot()
	}
	if m.Apply != nil {
		m.Apply()
	}

	res, err := m.Remote(ctx)
	if err != nil {
		if m.Rollback != nil {
			m.Rollback(snap)
		}
		var zero R
		return zero, err
	}

	if m.Reconcile != nil {
		m.Reconcile(res)
	}
	return res, nil
}
