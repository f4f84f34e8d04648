package cache

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/abhisek/questa/internal/degrade"
	"github.com/abhisek/questa/internal/store"
)

// TestMain fails the package when a test leaves goroutines behind. The
// ignored ones are started by dependencies at init.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"),
		goleak.IgnoreAnyFunction("github.com/redis/go-redis/v9/internal/pool.startGlobalTimeCache.func1"),
	)
}

func openSQLStore(t *testing.T) *SQLStore {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace("cache_" + t.Name())
	s, err := store.Open("file:" + name + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return NewSQLStore(s.ArtifactRepo())
}

// testStores returns every backend that can run without external services.
func testStores(t *testing.T) map[string]Store {
	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": openSQLStore(t),
	}
	if addr := os.Getenv("QUESTA_TEST_REDIS_ADDR"); addr != "" {
		r, err := NewRedisStore(t.Context(), RedisConfig{Addr: addr, Prefix: "questa-test:" + t.Name() + ":"})
		require.NoError(t, err)
		t.Cleanup(func() { r.Close() })
		stores["redis"] = r
	}
	return stores
}

func TestStore_FirstWriterWins(t *testing.T) {
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := t.Context()

			_, ok, err := s.Get(ctx, "k")
			require.NoError(t, err)
			assert.False(t, ok)

			got, err := s.SetIfAbsent(ctx, "k", []byte("first"), time.Hour)
			require.NoError(t, err)
			assert.Equal(t, "first", string(got))

			got, err = s.SetIfAbsent(ctx, "k", []byte("second"), time.Hour)
			require.NoError(t, err)
			assert.Equal(t, "first", string(got))

			v, ok, err := s.Get(ctx, "k")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "first", string(v))
		})
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	m := NewMemoryStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ctx := t.Context()

	_, err := m.SetIfAbsent(ctx, "k", []byte("old"), time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Len())

	now = now.Add(2 * time.Minute)
	_, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, m.Len())

	got, err := m.SetIfAbsent(ctx, "k", []byte("new"), 0)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))

	now = now.Add(24 * 365 * time.Hour)
	v, ok, _ := m.Get(ctx, "k")
	assert.True(t, ok, "zero ttl never expires")
	assert.Equal(t, "new", string(v))
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	m := NewMemoryStore()
	ctx := t.Context()
	in := []byte("abc")
	_, _ = m.SetIfAbsent(ctx, "k", in, 0)
	in[0] = 'x'

	v, _, _ := m.Get(ctx, "k")
	v[1] = 'y'
	again, _, _ := m.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestMemo_OneGenerationPerKey(t *testing.T) {

	memo := NewMemo(NewMemoryStore(), time.Hour, nil)
	var calls atomic.Int32

	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := memo.Do(context.Background(), "question", func(context.Context) ([]byte, error) {
				calls.Add(1)
				time.Sleep(30 * time.Millisecond)
				return []byte("hints"), nil
			})
			if err == nil {
				results[i] = string(v)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Equal(t, "hints", r)
	}
}

func TestMemo_FirstCompletedWriterAcrossProcesses(t *testing.T) {

	shared := NewMemoryStore()
	a := NewMemo(shared, time.Hour, nil)
	b := NewMemo(shared, time.Hour, nil)

	started := make(chan struct{})
	release := make(chan struct{})
	var fromB []byte
	var errB error
	done := make(chan struct{})
	go func() {
		defer close(done)
		fromB, errB = b.Do(context.Background(), "k", func(context.Context) ([]byte, error) {
			close(started)
			<-release
			return []byte("from-b"), nil
		})
	}()

	<-started
	fromA, err := a.Do(t.Context(), "k", func(context.Context) ([]byte, error) {
		return []byte("from-a"), nil
	})
	require.NoError(t, err)
	close(release)
	<-done

	require.NoError(t, errB)
	assert.Equal(t, "from-a", string(fromA))
	assert.Equal(t, "from-a", string(fromB), "later writer sees the stored value")
}

func TestMemo_ErrorsAreNotCached(t *testing.T) {
	memo := NewMemo(NewMemoryStore(), time.Hour, nil)
	boom := errors.New("boom")

	_, err := memo.Do(t.Context(), "k", func(context.Context) ([]byte, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)

	v, err := memo.Do(t.Context(), "k", func(context.Context) ([]byte, error) { return []byte("ok"), nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", string(v))
}

func TestMemo_DegradedResultsAreNotCached(t *testing.T) {
	memo := NewMemo(NewMemoryStore(), time.Hour, nil)
	reporter := degrade.NewReporter(nil, nil)

	v, err := memo.Do(t.Context(), "k", func(ctx context.Context) ([]byte, error) {
		reporter.Degraded(ctx, "hints", errors.New("provider down"))
		return []byte("template"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "template", string(v))

	calls := 0
	gen := func(context.Context) ([]byte, error) {
		calls++
		return []byte("phrased"), nil
	}
	for range 2 {
		v, err = memo.Do(t.Context(), "k", gen)
		require.NoError(t, err)
		assert.Equal(t, "phrased", string(v))
	}
	assert.Equal(t, 1, calls)
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("read down")
}

func (failingStore) SetIfAbsent(context.Context, string, []byte, time.Duration) ([]byte, error) {
	return nil, errors.New("write down")
}

func (failingStore) Close() error { return nil }

func TestMemo_StoreFailureReturnsFreshValue(t *testing.T) {
	memo := NewMemo(failingStore{}, time.Hour, nil)

	v, err := memo.Do(t.Context(), "k", func(context.Context) ([]byte, error) { return []byte("fresh"), nil })
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(v))
}

func TestMemo_NilCallsThrough(t *testing.T) {
	var memo *Memo
	assert.Nil(t, NewMemo(nil, time.Hour, nil))

	calls := 0
	for range 2 {
		_, err := memo.Do(t.Context(), "k", func(context.Context) ([]byte, error) {
			calls++
			return []byte("v"), nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, calls)
}

func TestCached_Typed(t *testing.T) {
	type payload struct {
		Level   int    `json:"level"`
		Content string `json:"content"`
	}
	memo := NewMemo(openSQLStore(t), time.Hour, nil)

	calls := 0
	gen := func(context.Context) ([]payload, error) {
		calls++
		return []payload{{1, "a"}, {2, "b"}}, nil
	}
	first, err := Cached(t.Context(), memo, "hints:1", gen)
	require.NoError(t, err)
	second, err := Cached(t.Context(), memo, "hints:1", gen)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestOpen(t *testing.T) {
	ctx := t.Context()

	s, err := Open(ctx, Config{Backend: BackendNone}, nil)
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = Open(ctx, DefaultConfig(), nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	_, err = Open(ctx, Config{Backend: BackendSQLite}, nil)
	assert.Error(t, err)

	_, err = Open(ctx, Config{Backend: "disk"}, nil)
	assert.Error(t, err)

	_, err = Open(ctx, Config{Backend: BackendRedis}, nil)
	assert.Error(t, err, "redis needs an address")

	assert.Error(t, Config{Backend: BackendMemory, TTL: -time.Second}.Validate())
}
