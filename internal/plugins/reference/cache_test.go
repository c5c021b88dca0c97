package reference

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/keyxmakerx/shootcal/internal/backend"
)

type stubSource struct {
	locationsFn   func(ctx context.Context) ([]backend.Location, error)
	areaFn        func(ctx context.Context, areaID string) (*backend.Area, error)
	departmentsFn func(ctx context.Context) ([]backend.Department, error)
}

func (s *stubSource) Locations(ctx context.Context) ([]backend.Location, error) {
	if s.locationsFn == nil {
		return nil, errors.New("unexpected Locations call")
	}
	return s.locationsFn(ctx)
}

func (s *stubSource) Area(ctx context.Context, areaID string) (*backend.Area, error) {
	if s.areaFn == nil {
		return nil, errors.New("unexpected Area call")
	}
	return s.areaFn(ctx, areaID)
}

func (s *stubSource) Departments(ctx context.Context) ([]backend.Department, error) {
	if s.departmentsFn == nil {
		return nil, errors.New("unexpected Departments call")
	}
	return s.departmentsFn(ctx)
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestLocations_MissThenHit(t *testing.T) {
	mr, client := newRedis(t)
	expected := []backend.Location{{ID: "l1", Name: "Studio A", AreaID: "a1"}}

	var calls int
	cache := NewCache(&stubSource{
		locationsFn: func(ctx context.Context) ([]backend.Location, error) {
			calls++
			return append([]backend.Location(nil), expected...), nil
		},
	}, client, time.Minute)

	for i := 0; i < 2; i++ {
		locs, err := cache.Locations(context.Background())
		if err != nil {
			t.Fatalf("locations: %v", err)
		}
		if !reflect.DeepEqual(locs, expected) {
			t.Fatalf("unexpected locations: %#v", locs)
		}
	}
	if calls != 1 {
		t.Fatalf("expected 1 call to source, got %d", calls)
	}
	if ttl := mr.TTL(locationsKey()); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("unexpected TTL: %v", ttl)
	}
}

func TestArea_CorruptEntryIsRefetched(t *testing.T) {
	mr, client := newRedis(t)
	if err := mr.Set(areaKey("a1"), "{not json"); err != nil {
		t.Fatal(err)
	}

	var calls int
	cache := NewCache(&stubSource{
		areaFn: func(ctx context.Context, areaID string) (*backend.Area, error) {
			calls++
			return &backend.Area{ID: areaID, Name: "North", Color: "#336699"}, nil
		},
	}, client, time.Minute)

	area, err := cache.Area(context.Background(), "a1")
	if err != nil {
		t.Fatalf("area: %v", err)
	}
	if area.Name != "North" || calls != 1 {
		t.Fatalf("expected refetch, got %+v after %d calls", area, calls)
	}
	if v, _ := mr.Get(areaKey("a1")); v == "{not json" {
		t.Error("expected corrupt entry replaced")
	}
}

func TestDepartments_ErrorNotCached(t *testing.T) {
	mr, client := newRedis(t)
	cache := NewCache(&stubSource{
		departmentsFn: func(ctx context.Context) ([]backend.Department, error) {
			return nil, errors.New("backend down")
		},
	}, client, time.Minute)

	if _, err := cache.Departments(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if mr.Exists(departmentsKey()) {
		t.Error("errors must not be cached")
	}
}

func TestNoRedisPassesThrough(t *testing.T) {
	var calls int
	cache := NewCache(&stubSource{
		departmentsFn: func(ctx context.Context) ([]backend.Department, error) {
			calls++
			return []backend.Department{{ID: "d1", Code: "CAM"}}, nil
		},
	}, nil, time.Minute)

	_, _ = cache.Departments(context.Background())
	_, _ = cache.Departments(context.Background())
	if calls != 2 {
		t.Errorf("expected every call to reach the source, got %d", calls)
	}
}

func TestAreas_CollectsFromLocations(t *testing.T) {
	_, client := newRedis(t)
	cache := NewCache(&stubSource{
		locationsFn: func(ctx context.Context) ([]backend.Location, error) {
			return []backend.Location{
				{Name: "Studio A", AreaID: "n"},
				{Name: "Studio B", AreaID: "n"},
				{Name: "Harbour", AreaID: "c"},
				{Name: "Backlot"},
				{Name: "Gone", AreaID: "x"},
			}, nil
		},
		areaFn: func(ctx context.Context, areaID string) (*backend.Area, error) {
			switch areaID {
			case "n":
				return &backend.Area{ID: "n", Name: "North"}, nil
			case "c":
				return &backend.Area{ID: "c", Name: "coast"}, nil
			}
			return nil, errors.New("not found")
		},
	}, client, time.Minute)

	areas, err := cache.Areas(context.Background())
	if err != nil {
		t.Fatalf("areas: %v", err)
	}
	var names []string
	for _, a := range areas {
		names = append(names, a.Name)
	}
	if !reflect.DeepEqual(names, []string{"coast", "North"}) {
		t.Errorf("unexpected areas %v", names)
	}
}

func TestAreaForLocation(t *testing.T) {
	_, client := newRedis(t)
	cache := NewCache(&stubSource{
		locationsFn: func(ctx context.Context) ([]backend.Location, error) {
			return []backend.Location{{Name: "Old Mill", AreaID: "r"}, {Name: "Backlot"}}, nil
		},
		areaFn: func(ctx context.Context, areaID string) (*backend.Area, error) {
			return &backend.Area{ID: areaID, Name: "Rural"}, nil
		},
	}, client, time.Minute)

	area, err := cache.AreaForLocation(context.Background(), " old mill ")
	if err != nil || area == nil || area.Name != "Rural" {
		t.Fatalf("expected Rural, got %+v, %v", area, err)
	}
	for _, name := range []string{"Backlot", "Nowhere", ""} {
		area, err := cache.AreaForLocation(context.Background(), name)
		if err != nil || area != nil {
			t.Errorf("%q: expected nil area, got %+v, %v", name, area, err)
		}
	}
}

func TestEvict(t *testing.T) {
	mr, client := newRedis(t)
	_ = mr.Set(locationsKey(), "[]")
	_ = mr.Set(areaKey("a"), "{}")
	_ = mr.Set("prefs:c1", "{}")

	NewCache(&stubSource{}, client, time.Minute).Evict(context.Background())

	if mr.Exists(locationsKey()) || mr.Exists(areaKey("a")) {
		t.Error("expected reference keys evicted")
	}
	if !mr.Exists("prefs:c1") {
		t.Error("expected unrelated keys kept")
	}
}
