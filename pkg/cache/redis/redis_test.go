package redis

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/sakshi-kadian/aurelius/pkg/common"

	goredis "github.com/redis/go-redis/v9"
)

type fakeRedis struct {
	data    map[string]string
	ttls    map[string]time.Duration
	failGet error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *goredis.StringCmd {
	if f.failGet != nil {
		return goredis.NewStringResult("", f.failGet)
	}
	v, ok := f.data[key]
	if !ok {
		return goredis.NewStringResult("", goredis.Nil)
	}
	return goredis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, exp time.Duration) *goredis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	f.ttls[key] = exp
	return goredis.NewStatusResult("OK", nil)
}

func TestTripletCacheRoundTrip(t *testing.T) {
	f := newFakeRedis()
	c := newTripletCache(f, 0)
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, "missing"); ok || err != nil {
		t.Fatalf("Get() missing got ok=%v err=%v", ok, err)
	}

	want := []common.Triplet{{Subject: "Elon Musk", Predicate: "FOUNDED", Object: "SpaceX"}}
	if err := c.Set(ctx, "k", want); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if f.ttls["k"] != DefaultTTL {
		t.Fatalf("Set() ttl got = %v, want %v", f.ttls["k"], DefaultTTL)
	}

	got, ok, err := c.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get() got ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Get() got = %+v, want %+v", got, want)
	}
}

func TestTripletCacheEmptyList(t *testing.T) {
	f := newFakeRedis()
	c := newTripletCache(f, time.Hour)
	if err := c.Set(context.Background(), "k", nil); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, ok, err := c.Get(context.Background(), "k")
	if err != nil || !ok || got == nil || len(got) != 0 {
		t.Fatalf("Get() got = %#v ok=%v err=%v, want cached empty list", got, ok, err)
	}
}

func TestTripletCacheErrors(t *testing.T) {
	f := newFakeRedis()
	f.failGet = errors.New("connection refused")
	c := newTripletCache(f, time.Hour)
	if _, _, err := c.Get(context.Background(), "k"); err == nil {
		t.Fatalf("Get() expected error")
	}

	f.failGet = nil
	f.data["bad"] = "{not json"
	if _, ok, err := c.Get(context.Background(), "bad"); err == nil || ok {
		t.Fatalf("Get() corrupt value got ok=%v err=%v", ok, err)
	}
}

func TestNewTripletCacheRequiresAddr(t *testing.T) {
	if _, err := NewTripletCache(context.Background(), NewTripletCacheParams{}); err == nil {
		t.Fatalf("NewTripletCache() expected error without address")
	}
}
