package memory

import (
	"context"
	"testing"
)

func TestMemoryStoreGetSet(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, found, err := s.Get(ctx, "k"); err != nil || found {
		t.Fatalf("expected missing key, found=%v err=%v", found, err)
	}

	in := []byte(`[1,2]`)
	if err := s.Set(ctx, "k", in); err != nil {
		t.Fatalf("set: %v", err)
	}
	in[0] = 'x'

	got, found, err := s.Get(ctx, "k")
	if err != nil || !found || string(got) != `[1,2]` {
		t.Fatalf("unexpected get: %q found=%v err=%v", got, found, err)
	}
	got[0] = 'y'
	again, _, _ := s.Get(ctx, "k")
	if string(again) != `[1,2]` {
		t.Fatalf("stored value was mutated through returned slice: %q", again)
	}
	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}
}

func TestNewWithSeeds(t *testing.T) {
	s := NewWith(map[string][]byte{"a": []byte("1")})
	v, found, _ := s.Get(context.Background(), "a")
	if !found || string(v) != "1" {
		t.Fatalf("seeded value missing: %q", v)
	}
}

func TestDiscard(t *testing.T) {
	ctx := context.Background()
	var d Discard
	if err := d.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, found, err := d.Get(ctx, "k"); found || err != nil {
		t.Fatalf("Discard should never find keys, found=%v err=%v", found, err)
	}
}
