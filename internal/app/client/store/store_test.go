package store

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"marketplace/internal/app/client/metrics"
	"marketplace/internal/app/client/notify"
	"marketplace/internal/domain/market"
	"marketplace/internal/errs"
)

type fakeSession struct {
	mu    sync.Mutex
	token string
	gen   uint64
}

func (s *fakeSession) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *fakeSession) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

func (s *fakeSession) set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.gen++
}

type recorder struct {
	mu  sync.Mutex
	got []notify.Notification
}

func (r *recorder) Show(message string, kind notify.Kind) notify.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := notify.Notification{ID: uint64(len(r.got) + 1), Message: message, Kind: kind}
	r.got = append(r.got, n)
	return n
}

func (r *recorder) all() []notify.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Notification(nil), r.got...)
}

func favKey(f market.Favorite) string { return f.ID }

func fav(id, product string) market.Favorite {
	return market.Favorite{ID: id, ProductID: product}
}

func newFavorites(t *testing.T, token string, fetch PageFetcher[market.Favorite]) (*Collection[market.Favorite], *fakeSession, *recorder) {
	t.Helper()

	s := &fakeSession{token: token}
	rec := &recorder{}
	c := NewCollection(s, favKey, fetch, 0, Options{
		Name:     "favorites",
		Notifier: rec,
		Log:      slog.Default(),
	})
	return c, s, rec
}

func staticPage(items ...market.Favorite) PageFetcher[market.Favorite] {
	return func(context.Context, string, market.PageQuery) (market.Page[market.Favorite], error) {
		return market.Page[market.Favorite]{Items: items}, nil
	}
}

func TestResource_FetchWithoutToken(t *testing.T) {
	var calls atomic.Int32
	m := metrics.New()
	r := NewResource(&fakeSession{}, func(context.Context, string) (market.Balance, error) {
		calls.Add(1)
		return market.Balance{}, nil
	}, Options{Name: "balance", Metrics: m})

	_, err := r.Fetch(context.Background())

	assert.ErrorIs(t, err, errs.ErrUnauthenticated)
	assert.Zero(t, calls.Load())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Fetches.WithLabelValues("balance", "unauthenticated")))
}

func TestResource_PublicFetchWithoutToken(t *testing.T) {
	r := NewResource(&fakeSession{}, func(_ context.Context, token string) (string, error) {
		assert.Empty(t, token)
		return "ok", nil
	}, Options{Name: "health", Public: true})

	v, err := r.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestResource_Fetch(t *testing.T) {
	r := NewResource(&fakeSession{token: "tok1"}, func(_ context.Context, token string) (market.Balance, error) {
		assert.Equal(t, "tok1", token)
		return market.Balance{Balance: 500, Currency: "KZT"}, nil
	}, Options{Name: "balance"})

	b, err := r.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 500.0, b.Balance)

	snap := r.Snapshot()
	assert.Equal(t, 500.0, snap.Data.Balance)
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Error)
}

func TestResource_FetchErrorKeepsData(t *testing.T) {
	fail := false
	rec := &recorder{}
	r := NewResource(&fakeSession{token: "tok"}, func(context.Context, string) (market.Balance, error) {
		if fail {
			return market.Balance{}, &errs.ServerError{Status: http.StatusInternalServerError, Message: "Сервис недоступен"}
		}
		return market.Balance{Balance: 10}, nil
	}, Options{Name: "balance", Notifier: rec})

	_, err := r.Fetch(context.Background())
	require.NoError(t, err)

	fail = true
	_, err = r.Fetch(context.Background())
	require.ErrorIs(t, err, errs.ErrServerRejected)

	snap := r.Snapshot()
	assert.Equal(t, 10.0, snap.Data.Balance)
	assert.Equal(t, "Сервис недоступен", snap.Error)
	assert.Empty(t, rec.all(), "ошибка загрузки не показывается уведомлением")
}

func TestResource_Mutate(t *testing.T) {
	tests := []struct {
		name      string
		remoteErr error
		want      float64
		wantKind  notify.Kind
	}{
		{name: "confirmed", want: 400, wantKind: notify.KindSuccess},
		{name: "rejected", remoteErr: &errs.ServerError{Status: 400, Message: "Недостаточно средств"}, want: 500, wantKind: notify.KindError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			r := NewResource(&fakeSession{token: "tok"}, func(context.Context, string) (market.Balance, error) {
				return market.Balance{Balance: 500, Currency: "KZT"}, nil
			}, Options{Name: "balance", Notifier: rec})
			_, err := r.Fetch(context.Background())
			require.NoError(t, err)

			_, err = r.Mutate(context.Background(), func(b market.Balance) market.Balance {
				b.Balance -= 100
				return b
			}, func(context.Context, string) (market.Balance, error) {
				assert.Equal(t, 400.0, r.Get().Balance)
				if tt.remoteErr != nil {
					return market.Balance{}, tt.remoteErr
				}
				return market.Balance{Balance: 400, Currency: "KZT"}, nil
			}, Messages{Success: "Готово", Failure: "Ошибка"})

			assert.Equal(t, tt.remoteErr, err)
			assert.Equal(t, tt.want, r.Get().Balance)
			got := rec.all()
			require.Len(t, got, 1)
			assert.Equal(t, tt.wantKind, got[0].Kind)
		})
	}
}

// Мутация A ждет сервер, пока мутация B проходит целиком. Ответ A не должен
// затирать то, что сервер подтвердил для B.
func TestResource_InterleavedMutations(t *testing.T) {
	rejected := &errs.ServerError{Status: http.StatusBadRequest, Message: "Отклонено"}
	withdraw := func(amount float64) func(market.Balance) market.Balance {
		return func(b market.Balance) market.Balance {
			b.Balance -= amount
			return b
		}
	}

	tests := []struct {
		name string
		// Ответы сервера: err != nil означает отказ
		bValue, aValue float64
		bErr, aErr     error
		want           float64
	}{
		{name: "B confirmed, A rejected", bValue: 300, aErr: rejected, want: 300},
		{name: "both rejected", bErr: rejected, aErr: rejected, want: 500},
		{name: "B rejected, A confirmed", bErr: rejected, aValue: 400, want: 400},
		{name: "both confirmed", bValue: 300, aValue: 200, want: 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			r := NewResource(&fakeSession{token: "tok"}, func(context.Context, string) (market.Balance, error) {
				return market.Balance{Balance: 500, Currency: "KZT"}, nil
			}, Options{Name: "balance", Notifier: &recorder{}})
			_, err := r.Fetch(ctx)
			require.NoError(t, err)

			releaseA := make(chan struct{})
			doneA := make(chan struct{})
			go func() {
				defer close(doneA)
				_, _ = r.Mutate(ctx, withdraw(100), func(context.Context, string) (market.Balance, error) {
					<-releaseA
					return market.Balance{Balance: tt.aValue, Currency: "KZT"}, tt.aErr
				}, Messages{})
			}()

			require.Eventually(t, func() bool {
				return r.Get().Balance == 400
			}, time.Second, 5*time.Millisecond)

			_, _ = r.Mutate(ctx, withdraw(200), func(context.Context, string) (market.Balance, error) {
				assert.Equal(t, 200.0, r.Get().Balance)
				return market.Balance{Balance: tt.bValue, Currency: "KZT"}, tt.bErr
			}, Messages{})

			close(releaseA)
			<-doneA

			assert.Equal(t, tt.want, r.Get().Balance)
		})
	}
}

func TestResource_ResetDropsPendingMutation(t *testing.T) {
	ctx := context.Background()
	r := NewResource(&fakeSession{token: "tok"}, func(context.Context, string) (market.Balance, error) {
		return market.Balance{Balance: 500}, nil
	}, Options{Name: "balance", Notifier: &recorder{}})
	_, err := r.Fetch(ctx)
	require.NoError(t, err)

	_, err = r.Mutate(ctx, func(b market.Balance) market.Balance {
		b.Balance -= 100
		return b
	}, func(context.Context, string) (market.Balance, error) {
		r.Reset()
		return market.Balance{Balance: 400}, nil
	}, Messages{})
	require.NoError(t, err)

	assert.Zero(t, r.Get().Balance)

	_, err = r.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 500.0, r.Get().Balance)
}

func TestCollection_FetchWithoutToken(t *testing.T) {
	var calls atomic.Int32
	c, _, _ := newFavorites(t, "", func(context.Context, string, market.PageQuery) (market.Page[market.Favorite], error) {
		calls.Add(1)
		return market.Page[market.Favorite]{}, nil
	})

	_, err := c.Fetch(context.Background(), 1)
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)
	assert.Zero(t, calls.Load())
}

// Одновременные загрузки одного хранилища не перекрываются, а итоговые
// данные совпадают с последним завершенным ответом.
func TestCollection_FetchOneInFlight(t *testing.T) {
	var (
		inFlight atomic.Int32
		maxSeen  atomic.Int32
		calls    atomic.Int32
	)

	c, _, _ := newFavorites(t, "tok", func(_ context.Context, _ string, q market.PageQuery) (market.Page[market.Favorite], error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			m := maxSeen.Load()
			if n <= m || maxSeen.CompareAndSwap(m, n) {
				break
			}
		}
		call := calls.Add(1)
		time.Sleep(20 * time.Millisecond)

		id := "resp-" + string(rune('0'+call))
		return market.Page[market.Favorite]{Items: []market.Favorite{fav(id, "p")}}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Fetch(context.Background(), 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxSeen.Load())
	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "resp-"+string(rune('0'+calls.Load())), items[0].ID)
}

func TestCollection_FetchCoalescesIdentical(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	started := make(chan struct{})

	c, _, _ := newFavorites(t, "tok", func(context.Context, string, market.PageQuery) (market.Page[market.Favorite], error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		return market.Page[market.Favorite]{Items: []market.Favorite{fav("f1", "p1")}}, nil
	})

	results := make(chan []market.Favorite, 2)
	go func() {
		items, _ := c.Fetch(context.Background(), 1)
		results <- items
	}()
	<-started

	assert.True(t, c.Snapshot().Loading)

	go func() {
		items, _ := c.Fetch(context.Background(), 1)
		results <- items
	}()
	// Второй вызов должен успеть присоединиться к первому
	time.Sleep(20 * time.Millisecond)
	close(release)

	assert.Len(t, <-results, 1)
	assert.Len(t, <-results, 1)
	assert.Equal(t, int32(1), calls.Load())
	assert.False(t, c.Snapshot().Loading)
}

func TestCollection_Pagination(t *testing.T) {
	pages := map[int]market.Page[market.Favorite]{
		1: {
			Items:      []market.Favorite{fav("a", "p"), fav("b", "p")},
			Pagination: &market.Pagination{Total: 5, Page: 1, Limit: 2, Pages: 3},
		},
		2: {
			// "b" сдвинулась на вторую страницу из-за новой записи
			Items:      []market.Favorite{fav("b", "p"), fav("c", "p")},
			Pagination: &market.Pagination{Total: 5, Page: 2, Limit: 2, Pages: 3},
		},
		3: {
			Items:      []market.Favorite{fav("d", "p")},
			Pagination: &market.Pagination{Total: 5, Page: 3, Limit: 2, Pages: 3},
		},
	}

	var requested []int
	c, _, _ := newFavorites(t, "tok", func(_ context.Context, _ string, q market.PageQuery) (market.Page[market.Favorite], error) {
		assert.Equal(t, 2, q.Limit)
		requested = append(requested, q.Page)
		return pages[q.Page], nil
	})
	c.pageSize = 2

	ctx := context.Background()
	_, err := c.FetchNext(ctx)
	require.NoError(t, err)
	_, err = c.FetchNext(ctx)
	require.NoError(t, err)
	_, err = c.FetchNext(ctx)
	require.NoError(t, err)
	items, err := c.FetchNext(ctx)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, requested)
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids)
	assert.Equal(t, 3, c.Snapshot().Pagination.Page)

	// Первая страница заменяет данные
	items, err = c.Fetch(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

// Страница, пришедшая после Reset, отбрасывается.
func TestCollection_StaleAfterReset(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})

	c, _, _ := newFavorites(t, "tok", func(context.Context, string, market.PageQuery) (market.Page[market.Favorite], error) {
		close(started)
		<-release
		return market.Page[market.Favorite]{Items: []market.Favorite{fav("late", "p")}}, nil
	})

	errCh := make(chan error, 1)
	go func() {
		_, err := c.Fetch(context.Background(), 2)
		errCh <- err
	}()
	<-started

	c.Reset()
	close(release)

	assert.ErrorIs(t, <-errCh, ErrStale)
	assert.Empty(t, c.Items())
	assert.False(t, c.Snapshot().Loading)
}

func TestCollection_StaleAfterSessionChange(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})

	c, s, _ := newFavorites(t, "tok", func(context.Context, string, market.PageQuery) (market.Page[market.Favorite], error) {
		close(started)
		<-release
		return market.Page[market.Favorite]{Items: []market.Favorite{fav("old-user", "p")}}, nil
	})

	errCh := make(chan error, 1)
	go func() {
		_, err := c.Fetch(context.Background(), 1)
		errCh <- err
	}()
	<-started

	s.set("tok2")
	close(release)

	assert.ErrorIs(t, <-errCh, ErrStale)
	assert.Empty(t, c.Items())
}

func TestCollection_AddFailureRestoresCollection(t *testing.T) {
	c, _, rec := newFavorites(t, "tok", staticPage(fav("f1", "p1"), fav("f2", "p2")))
	_, err := c.Fetch(context.Background(), 1)
	require.NoError(t, err)
	before := c.Items()

	_, err = c.Add(context.Background(), fav("tmp-1", "p3"), func(context.Context, string) (market.Favorite, error) {
		_, ok := c.Get("tmp-1")
		assert.True(t, ok, "placeholder виден до ответа сервера")
		return market.Favorite{}, &errs.ServerError{Status: http.StatusBadRequest, Message: "Товар не найден"}
	}, Messages{Success: "Добавлено в избранное", Failure: "Не удалось добавить"})

	require.ErrorIs(t, err, errs.ErrServerRejected)
	assert.Equal(t, before, c.Items())

	got := rec.all()
	require.Len(t, got, 1)
	assert.Equal(t, notify.KindError, got[0].Kind)
	assert.Equal(t, "Товар не найден", got[0].Message)
}

func TestCollection_AddSuccessReplacesPlaceholder(t *testing.T) {
	c, _, rec := newFavorites(t, "tok", staticPage(fav("f1", "p1")))
	_, err := c.Fetch(context.Background(), 1)
	require.NoError(t, err)

	res, err := c.Add(context.Background(), fav("tmp-1", "p2"), func(context.Context, string) (market.Favorite, error) {
		return fav("f2", "p2"), nil
	}, Messages{Success: "Добавлено в избранное"})
	require.NoError(t, err)
	assert.Equal(t, "f2", res.ID)

	assert.Equal(t, []market.Favorite{fav("f1", "p1"), fav("f2", "p2")}, c.Items())
	_, ok := c.Get("tmp-1")
	assert.False(t, ok)

	got := rec.all()
	require.Len(t, got, 1)
	assert.Equal(t, notify.KindSuccess, got[0].Kind)
}

// Загрузка первой страницы, завершившаяся во время Add, стирает placeholder.
// Подтвержденная сервером запись все равно должна появиться, и ровно один раз.
func TestCollection_AddAfterConcurrentRefresh(t *testing.T) {
	tests := []struct {
		name   string
		server []market.Favorite
		want   []market.Favorite
	}{
		{
			name:   "refresh without new entry",
			server: []market.Favorite{fav("f1", "p1")},
			want:   []market.Favorite{fav("f1", "p1"), fav("f2", "p2")},
		},
		{
			name:   "refresh already has new entry",
			server: []market.Favorite{fav("f2", "p2"), fav("f1", "p1")},
			want:   []market.Favorite{fav("f2", "p2"), fav("f1", "p1")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			c, _, _ := newFavorites(t, "tok", staticPage(tt.server...))

			release := make(chan struct{})
			errCh := make(chan error, 1)
			go func() {
				_, err := c.Add(ctx, fav("tmp-1", "p2"), func(context.Context, string) (market.Favorite, error) {
					<-release
					return fav("f2", "p2"), nil
				}, Messages{})
				errCh <- err
			}()

			require.Eventually(t, func() bool {
				_, ok := c.Get("tmp-1")
				return ok
			}, time.Second, 5*time.Millisecond)

			_, err := c.Fetch(ctx, 1)
			require.NoError(t, err)
			_, ok := c.Get("tmp-1")
			require.False(t, ok)

			close(release)
			require.NoError(t, <-errCh)

			assert.Equal(t, tt.want, c.Items())
		})
	}
}

func TestCollection_AddWithoutToken(t *testing.T) {
	c, _, rec := newFavorites(t, "", staticPage())
	called := false

	_, err := c.Add(context.Background(), fav("tmp", "p"), func(context.Context, string) (market.Favorite, error) {
		called = true
		return market.Favorite{}, nil
	}, Messages{})

	assert.ErrorIs(t, err, errs.ErrUnauthenticated)
	assert.False(t, called)
	assert.Empty(t, c.Items())
	require.Len(t, rec.all(), 1)
	assert.Equal(t, notify.KindError, rec.all()[0].Kind)
}

// Подтверждения приходят не по порядку: откат первой мутации не задевает
// запись второй.
func TestCollection_InterleavedMutations(t *testing.T) {
	c, _, rec := newFavorites(t, "tok", staticPage(fav("f1", "p1")))
	ctx := context.Background()
	_, err := c.Fetch(ctx, 1)
	require.NoError(t, err)

	releaseA := make(chan struct{})
	errA := make(chan error, 1)
	go func() {
		_, err := c.Add(ctx, fav("tmp-a", "pa"), func(context.Context, string) (market.Favorite, error) {
			<-releaseA
			return market.Favorite{}, errs.Network(errors.New("connection reset"))
		}, Messages{Failure: "Не удалось добавить"})
		errA <- err
	}()

	require.Eventually(t, func() bool {
		_, ok := c.Get("tmp-a")
		return ok
	}, time.Second, 5*time.Millisecond)

	_, err = c.Add(ctx, fav("tmp-b", "pb"), func(context.Context, string) (market.Favorite, error) {
		return fav("fb", "pb"), nil
	}, Messages{})
	require.NoError(t, err)

	close(releaseA)
	require.ErrorIs(t, <-errA, errs.ErrNetwork)

	assert.Equal(t, []market.Favorite{fav("f1", "p1"), fav("fb", "pb")}, c.Items())
	require.Len(t, rec.all(), 1)
	assert.Equal(t, "Нет соединения с сервером", rec.all()[0].Message)
}

func TestCollection_RemoveFailureRestoresPosition(t *testing.T) {
	c, _, rec := newFavorites(t, "tok", staticPage(fav("f1", "p1"), fav("f2", "p2"), fav("f3", "p3")))
	_, err := c.Fetch(context.Background(), 1)
	require.NoError(t, err)
	before := c.Items()

	err = c.Remove(context.Background(), "f2", func(context.Context, string) error {
		assert.Equal(t, 2, c.Len())
		return &errs.ServerError{Status: http.StatusInternalServerError}
	}, Messages{Failure: "Не удалось удалить из избранного"})

	require.Error(t, err)
	assert.Equal(t, before, c.Items())
	require.Len(t, rec.all(), 1)
	assert.Equal(t, "Не удалось удалить из избранного", rec.all()[0].Message)
}

func TestCollection_RemoveSuccess(t *testing.T) {
	c, _, _ := newFavorites(t, "tok", staticPage(fav("f1", "p1"), fav("f2", "p2")))
	_, err := c.Fetch(context.Background(), 1)
	require.NoError(t, err)

	require.NoError(t, c.Remove(context.Background(), "f1", func(context.Context, string) error { return nil }, Messages{}))
	assert.Equal(t, []market.Favorite{fav("f2", "p2")}, c.Items())
}

func TestCollection_UpdateRollback(t *testing.T) {
	c, _, _ := newFavorites(t, "tok", staticPage(fav("f1", "p1"), fav("f2", "p2")))
	_, err := c.Fetch(context.Background(), 1)
	require.NoError(t, err)

	_, err = c.Update(context.Background(), fav("f1", "changed"), func(context.Context, string) (market.Favorite, error) {
		got, _ := c.Get("f1")
		assert.Equal(t, "changed", got.ProductID)
		return market.Favorite{}, errs.Network(errors.New("timeout"))
	}, Messages{})
	require.Error(t, err)

	got, _ := c.Get("f1")
	assert.Equal(t, "p1", got.ProductID)

	_, err = c.Update(context.Background(), fav("f1", "changed"), func(context.Context, string) (market.Favorite, error) {
		return fav("f1", "server"), nil
	}, Messages{})
	require.NoError(t, err)

	got, _ = c.Get("f1")
	assert.Equal(t, "server", got.ProductID)
}

// Мутация, начатая до сброса, не возвращает записи в очищенную коллекцию.
func TestCollection_MutationAfterReset(t *testing.T) {
	c, _, _ := newFavorites(t, "tok", staticPage(fav("f1", "p1")))
	_, err := c.Fetch(context.Background(), 1)
	require.NoError(t, err)

	err = c.Remove(context.Background(), "f1", func(context.Context, string) error {
		c.Reset()
		return errors.New("boom")
	}, Messages{})
	require.Error(t, err)
	assert.Empty(t, c.Items())
}

func TestCollection_SetSearch(t *testing.T) {
	var queries []string
	c := NewCollection(&fakeSession{}, func(p market.Product) string { return p.ID },
		func(_ context.Context, _ string, q market.PageQuery) (market.Page[market.Product], error) {
			queries = append(queries, q.Search)
			return market.Page[market.Product]{Items: []market.Product{{ID: "p-" + q.Search}}}, nil
		}, 20, Options{Name: "search", Public: true})

	ctx := context.Background()
	c.SetSearch("bike")
	_, err := c.Fetch(ctx, 1)
	require.NoError(t, err)

	c.SetSearch("bike")
	assert.Len(t, c.Items(), 1, "та же строка не сбрасывает данные")

	c.SetSearch("car")
	assert.Empty(t, c.Items())
	items, err := c.Fetch(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, []string{"bike", "car"}, queries)
	assert.Equal(t, "p-car", items[0].ID)
}

func TestGroup(t *testing.T) {
	s := &fakeSession{token: "tok"}
	g := NewGroup(s, func(m market.Message) string { return m.ID },
		func(_ context.Context, _ string, owner string, _ market.PageQuery) (market.Page[market.Message], error) {
			return market.Page[market.Message]{Items: []market.Message{{ID: owner + "-m1", ChatID: owner}}}, nil
		}, 50, Options{Name: "messages", Log: slog.Default()})

	ctx := context.Background()
	_, err := g.Get("c2").Fetch(ctx, 1)
	require.NoError(t, err)
	_, err = g.Get("c1").Fetch(ctx, 1)
	require.NoError(t, err)

	assert.Same(t, g.Get("c1"), g.Get("c1"))
	assert.Equal(t, []string{"c1", "c2"}, g.Keys())

	c1, ok := g.Lookup("c1")
	require.True(t, ok)
	assert.Equal(t, "c1-m1", c1.Items()[0].ID)

	g.Reset()
	assert.Empty(t, g.Keys())
	assert.Empty(t, c1.Items())
	_, ok = g.Lookup("c1")
	assert.False(t, ok)
}
