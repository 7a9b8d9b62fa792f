package main

import (
	"testing"

	"MandalaBoard/internal/mandala"
	boardnet "MandalaBoard/internal/net"
	"MandalaBoard/internal/state"

	"go.uber.org/zap"
)

type fakeView struct {
	replayed []state.Stroke
	resets   int
}

func (v *fakeView) Replay(st state.Stroke) { v.replayed = append(v.replayed, st) }
func (v *fakeView) Reset()                 { v.resets++ }

func newTestRouter() (*router, *fakeView, *[][]byte) {
	v := &fakeView{}
	var sent [][]byte
	rt := &router{
		log:     zap.NewNop(),
		strokes: state.NewStrokeLog(nil),
		send:    func(b []byte) { sent = append(sent, b) },
		view:    v,
		onMain:  func(fn func()) { fn() },
	}
	return rt, v, &sent
}

func encode(t *testing.T, m boardnet.Message) []byte {
	t.Helper()
	data, err := m.Encode()
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestRouterRemoteStroke(t *testing.T) {
	rt, v, _ := newTestRouter()
	s := state.Stroke{ID: "a", OwnerID: "peer", Points: []mandala.Point{{X: 1, Y: 1}}, Palette: 1, Lamport: 3}
	data := encode(t, boardnet.StrokeMessage(s))

	if !rt.receive(data) {
		t.Fatal("new stroke not accepted")
	}
	if rt.receive(data) {
		t.Error("duplicate accepted")
	}
	if len(v.replayed) != 1 || v.replayed[0].ID != "a" {
		t.Errorf("replayed %+v", v.replayed)
	}

	old := s
	old.ID, old.Lamport = "b", 1
	if rt.receive(encode(t, boardnet.StrokeMessage(old))) {
		t.Error("stale stroke accepted")
	}
	if rt.receive([]byte("garbage")) {
		t.Error("garbage accepted")
	}
}

func TestRouterLocalThenReset(t *testing.T) {
	rt, v, sent := newTestRouter()
	rt.localStroke([]mandala.Point{{X: 5, Y: 5}, {X: 6, Y: 6}}, 2)
	if len(*sent) != 1 {
		t.Fatalf("sent %d frames", len(*sent))
	}
	m, err := boardnet.Decode((*sent)[0])
	if err != nil {
		t.Fatal(err)
	}
	if m.Type != boardnet.TypeStroke || m.Stroke.Palette != 2 || len(m.Stroke.Points) != 2 {
		t.Errorf("sent %+v", m)
	}
	if _, ok := rt.current(); !ok {
		t.Error("no current stroke after a local one")
	}

	// a reset stamped before the local stroke loses
	if rt.receive(encode(t, boardnet.ResetMessage("peer", m.Lamport-1))) {
		t.Error("older reset applied")
	}
	if !rt.receive(encode(t, boardnet.ResetMessage("peer", m.Lamport+1))) {
		t.Error("newer reset ignored")
	}
	if v.resets != 1 {
		t.Errorf("resets = %d", v.resets)
	}
	if _, ok := rt.current(); ok {
		t.Error("stroke survived reset")
	}

	rt.localReset()
	m, err = boardnet.Decode((*sent)[1])
	if err != nil {
		t.Fatal(err)
	}
	if m.Type != boardnet.TypeReset || m.Lamport <= 1 {
		t.Errorf("sent %+v", m)
	}
}
