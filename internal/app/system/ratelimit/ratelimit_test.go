package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiter_Burst(t *testing.T) {
	l := New(0.001, 2)

	if !l.Allow("u1") || !l.Allow("u1") {
		t.Fatal("expected first two events to be allowed")
	}
	if l.Allow("u1") {
		t.Error("expected third event to be limited")
	}
	if !l.Allow("u2") {
		t.Error("expected a different key to have its own bucket")
	}
}

func TestLimiter_Reset(t *testing.T) {
	l := New(0.001, 1)
	l.Allow("u1")
	if l.Allow("u1") {
		t.Fatal("expected second event to be limited")
	}
	l.Reset("u1")
	if !l.Allow("u1") {
		t.Error("expected event to be allowed after Reset")
	}
}

func TestLimiter_Sweep(t *testing.T) {
	l := New(1, 1)
	now := time.Now()
	l.now = func() time.Time { return now }
	l.Allow("old")

	l.now = func() time.Time { return now.Add(time.Hour) }
	l.Allow("fresh")

	if n := l.Sweep(); n != 1 {
		t.Errorf("Sweep removed %d buckets, want 1", n)
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	if got := ClientIP(r); got != "10.0.0.1" {
		t.Errorf("ClientIP: got %q", got)
	}

	r.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	if got := ClientIP(r); got != "203.0.113.5" {
		t.Errorf("ClientIP with XFF: got %q", got)
	}
}
