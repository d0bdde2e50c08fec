package session

import (
	"fmt"
	"testing"
	"time"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixture(n int) []Session {
	list := make([]Session, 0, n)
	for i := 0; i < n; i++ {
		list = append(list, New(
			fmt.Sprintf("jti-%d", i),
			t0.Add(time.Duration(i)*time.Minute),
			7*24*time.Hour,
			DeviceInfo{Browser: "firefox"},
		))
	}
	return list
}

func TestFind(t *testing.T) {
	list := fixture(3)

	s, ok := Find(list, "jti-1")
	if !ok || s.ID != "jti-1" {
		t.Fatalf("Find(jti-1) = (%v, %v)", s.ID, ok)
	}
	if _, ok := Find(list, "jti-9"); ok {
		t.Fatal("Find reported a session that does not exist")
	}
	if _, ok := Find(nil, "jti-0"); ok {
		t.Fatal("Find on empty list reported a hit")
	}
}

func TestRemoveDoesNotMutateInput(t *testing.T) {
	list := fixture(3)

	out, removed := Remove(list, "jti-1")
	if !removed || len(out) != 2 {
		t.Fatalf("Remove = (%d sessions, %v), want (2, true)", len(out), removed)
	}
	if len(list) != 3 {
		t.Fatalf("input list mutated: %d entries", len(list))
	}
	if _, ok := Find(out, "jti-1"); ok {
		t.Fatal("removed session still findable")
	}

	again, removed := Remove(out, "jti-1")
	if removed || len(again) != 2 {
		t.Fatalf("second Remove = (%d, %v), want idempotent no-op", len(again), removed)
	}
}

func TestAppendReplacesDuplicateJTI(t *testing.T) {
	list := fixture(2)

	dup := New("jti-0", t0.Add(time.Hour), 7*24*time.Hour, DeviceInfo{})
	out := Append(list, dup, t0.Add(time.Hour), 0)

	if len(out) != 2 {
		t.Fatalf("len = %d, want 2 (duplicate jti replaced)", len(out))
	}
	s, _ := Find(out, "jti-0")
	if !s.CreatedAt.Equal(t0.Add(time.Hour)) {
		t.Error("duplicate jti kept the stale record")
	}
}

func TestAppendPrunesExpired(t *testing.T) {
	stale := New("jti-old", t0.Add(-8*24*time.Hour), 7*24*time.Hour, DeviceInfo{})
	fresh := New("jti-new", t0, 7*24*time.Hour, DeviceInfo{})

	out := Append([]Session{stale}, fresh, t0, 0)
	if len(out) != 1 || out[0].ID != "jti-new" {
		t.Fatalf("expired session survived append: %+v", out)
	}
}

func TestAppendEvictsOldestAtCap(t *testing.T) {
	list := fixture(3)

	next := New("jti-9", t0.Add(time.Hour), 7*24*time.Hour, DeviceInfo{})
	out := Append(list, next, t0.Add(time.Hour), 3)

	if len(out) != 3 {
		t.Fatalf("len = %d, want cap 3", len(out))
	}
	if _, ok := Find(out, "jti-0"); ok {
		t.Error("oldest session survived eviction")
	}
	if _, ok := Find(out, "jti-9"); !ok {
		t.Error("newly appended session missing")
	}
}

func TestAppendUnlimitedWhenCapZero(t *testing.T) {
	list := fixture(10)
	out := Append(list, New("jti-10", t0.Add(time.Hour), time.Hour, DeviceInfo{}), t0.Add(time.Hour), 0)
	if len(out) != 11 {
		t.Fatalf("len = %d, want 11", len(out))
	}
}

func TestActiveNewestFirst(t *testing.T) {
	list := fixture(3)
	list = append(list, New("jti-dead", t0.Add(-30*24*time.Hour), time.Hour, DeviceInfo{}))

	out := ActiveNewestFirst(list, t0.Add(5*time.Minute))
	if len(out) != 3 {
		t.Fatalf("len = %d, want 3 active", len(out))
	}
	for i := 1; i < len(out); i++ {
		if out[i-1].CreatedAt.Before(out[i].CreatedAt) {
			t.Fatalf("not newest-first at index %d", i)
		}
	}
}

func TestExpiredBoundary(t *testing.T) {
	s := New("jti", t0, time.Hour, DeviceInfo{})
	if s.Expired(t0.Add(59 * time.Minute)) {
		t.Error("session expired before its TTL")
	}
	if !s.Expired(t0.Add(time.Hour)) {
		t.Error("session still active exactly at expiry")
	}
}
