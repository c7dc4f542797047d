package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	types "github.com/yungbote/greenscape-backend/internal/domain"
	"github.com/yungbote/greenscape-backend/internal/platform/logger"
)

type fakeRedis struct {
	data    map[string][]byte
	ttl     map[string]time.Duration
	failGet error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string][]byte{}, ttl: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *goredis.StringCmd {
	if f.failGet != nil {
		return goredis.NewStringResult("", f.failGet)
	}
	v, ok := f.data[key]
	if !ok {
		return goredis.NewStringResult("", goredis.Nil)
	}
	return goredis.NewStringResult(string(v), nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		f.data[key] = v
	case string:
		f.data[key] = []byte(v)
	}
	f.ttl[key] = expiration
	return goredis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *goredis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return goredis.NewIntResult(n, nil)
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func TestCatalogCacheRoundTrip(t *testing.T) {
	rdb := newFakeRedis()
	c := NewCatalogCache(rdb, testLogger(t), "test", time.Minute)
	ctx := context.Background()

	if _, ok, err := c.Get(ctx); err != nil || ok {
		t.Fatalf("Get on empty cache: ok=%v err=%v", ok, err)
	}

	plants := []*types.Plant{
		{ID: 1, Name: "Salvia nemorosa", SunRequirements: "Full Sun"},
		{ID: 2, Name: "Hosta plantaginea", SunRequirements: "Full Shade"},
	}
	if err := c.Set(ctx, plants); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if rdb.ttl["test:catalog:v1"] != time.Minute {
		t.Fatalf("Set: expected ttl to be applied, got %v", rdb.ttl)
	}

	got, ok, err := c.Get(ctx)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if len(got) != 2 || got[1].Name != "Hosta plantaginea" || got[0].ID != 1 {
		t.Fatalf("Get: unexpected plants: %+v", got)
	}

	if err := c.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, ok, _ := c.Get(ctx); ok {
		t.Fatalf("Get after Invalidate: expected miss")
	}
}

func TestCatalogCacheErrorsAndCorruptEntries(t *testing.T) {
	rdb := newFakeRedis()
	c := NewCatalogCache(rdb, testLogger(t), "", 0)
	ctx := context.Background()

	rdb.data["greenscape:catalog:v1"] = []byte("{not json")
	if _, ok, err := c.Get(ctx); ok || err != nil {
		t.Fatalf("corrupt entry: expected silent miss, ok=%v err=%v", ok, err)
	}

	boom := errors.New("connection reset")
	rdb.failGet = boom
	if _, _, err := c.Get(ctx); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped redis error, got %v", err)
	}
}
