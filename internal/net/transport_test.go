package net

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	h := NewHub(nil)
	srv := httptest.NewServer(h)
	t.Cleanup(func() {
		h.Close()
		srv.Close()
	})
	return h, strings.TrimPrefix(srv.URL, "http://")
}

func dial(t *testing.T, addr string) *Peer {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p, err := Dial(ctx, addr)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("timed out")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func recv(t *testing.T, p *Peer) chan string {
	t.Helper()
	ch := make(chan string, 8)
	go p.Read(func(b []byte) { ch <- string(b) })
	return ch
}

func expect(t *testing.T, ch chan string, want string) {
	t.Helper()
	select {
	case got := <-ch:
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no frame, want %q", want)
	}
}

func TestHubRelay(t *testing.T) {
	h, addr := startHub(t)
	h.OnMessage = func(from *Peer, data []byte) {
		h.Broadcast(data, from)
	}

	a := dial(t, addr)
	b := dial(t, addr)
	waitFor(t, func() bool { return h.Count() == 2 })

	aIn, bIn := recv(t, a), recv(t, b)
	if err := a.Send([]byte("from a")); err != nil {
		t.Fatal(err)
	}
	expect(t, bIn, "from a")

	h.Broadcast([]byte("from host"), nil)
	expect(t, aIn, "from host")
	expect(t, bIn, "from host")

	select {
	case got := <-aIn:
		t.Errorf("sender got its own frame back: %q", got)
	default:
	}
}

func TestHubJoinAndLeave(t *testing.T) {
	h, addr := startHub(t)
	h.OnJoin = func(p *Peer) { p.Send([]byte("welcome")) }

	a := dial(t, addr)
	expect(t, recv(t, a), "welcome")
	waitFor(t, func() bool { return h.Count() == 1 })

	a.Close()
	waitFor(t, func() bool { return h.Count() == 0 })
}

func TestDialBadAddress(t *testing.T) {
	if _, err := Dial(context.Background(), ""); err != ErrBadAddress {
		t.Errorf("err = %v", err)
	}
}
