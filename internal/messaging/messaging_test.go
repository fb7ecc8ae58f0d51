package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
	"github.com/pixil98/hamlet/internal/game"
	"github.com/pixil98/hamlet/internal/protocol"
)

type testGroup []string

func (g testGroup) ForEachPlayer(fn func(string, *game.Player)) {
	for _, id := range g {
		fn(id, &game.Player{ID: id})
	}
}

func collect(t *testing.T, bus Bus, sessionID string) *[]Frame {
	t.Helper()
	var frames []Frame
	unsub, err := bus.Subscribe(SessionSubject(sessionID), func(data []byte) {
		f, err := DecodeFrame(data)
		if err != nil {
			t.Errorf("decoding frame: %v", err)
			return
		}
		frames = append(frames, f)
	})
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	t.Cleanup(unsub)
	return &frames
}

func TestPublisher_Publish(t *testing.T) {
	bus := NewLocalBus()
	pub := NewPublisher(bus)
	a := collect(t, bus, "a")
	b := collect(t, bus, "b")

	everyone := testGroup{"a", "b"}
	err := pub.Publish(everyone, nil, protocol.ResourceDepleted{ID: "rock_1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = pub.Publish(everyone, []string{"a"}, protocol.PlayerDisconnected{PlayerID: "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = pub.Publish(testGroup{"b"}, nil, protocol.ResourceHit{ID: "rock_1", Health: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "frames to a", len(*a), 1)
	testutil.AssertEqual(t, "frames to b", len(*b), 3)
	for i, f := range *b {
		testutil.AssertEqual(t, "b seq", f.Seq, uint64(i+1))
	}
	testutil.AssertEqual(t, "a seq", (*a)[0].Seq, uint64(1))
	testutil.AssertEqual(t, "type", (*b)[1].Type, protocol.EventPlayerDisconnected)
	testutil.AssertEqual(t, "body", string((*b)[1].Body), `{"type":"playerDisconnected","payload":"c"}`)
}

func TestPublisher_Forget(t *testing.T) {
	bus := NewLocalBus()
	pub := NewPublisher(bus)
	a := collect(t, bus, "a")

	ev := protocol.ResourceDepleted{ID: "rock_1"}
	_ = pub.Publish(testGroup{"a"}, nil, ev)
	_ = pub.Publish(testGroup{"a"}, nil, ev)
	pub.Forget("a")
	_ = pub.Publish(testGroup{"a"}, nil, ev)

	testutil.AssertEqual(t, "frames", len(*a), 3)
	testutil.AssertEqual(t, "restarted seq", (*a)[2].Seq, uint64(1))
}

func TestSequencer_Accept(t *testing.T) {
	tests := map[string]struct {
		seqs   []uint64
		expErr string
	}{
		"in order":      {seqs: []uint64{1, 2, 3}},
		"starts late":   {seqs: []uint64{2}, expErr: "expected 1, got 2"},
		"skips a frame": {seqs: []uint64{1, 2, 4}, expErr: "expected 3, got 4"},
		"repeats":       {seqs: []uint64{1, 1}, expErr: "expected 2, got 1"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var s Sequencer
			var err error
			for _, seq := range tt.seqs {
				err = s.Accept(Frame{Seq: seq})
				if err != nil {
					break
				}
			}
			if tt.expErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			testutil.AssertErrorContains(t, err, tt.expErr)
			if !errors.Is(err, ErrSequenceGap) {
				t.Errorf("expected ErrSequenceGap, got %v", err)
			}
		})
	}
}

func TestFrame_Encoding(t *testing.T) {
	data, err := EncodeFrame(Frame{Seq: 42, Type: "mapData", Body: []byte(`{"type":"mapData"}`)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := DecodeFrame(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "seq", f.Seq, uint64(42))
	testutil.AssertEqual(t, "type", f.Type, "mapData")
	testutil.AssertEqual(t, "body", string(f.Body), `{"type":"mapData"}`)

	_, err = DecodeFrame([]byte{0xc1})
	testutil.AssertErrorContains(t, err, "decoding frame")
}

func TestLocalBus_Unsubscribe(t *testing.T) {
	bus := NewLocalBus()
	got := 0
	unsub, err := bus.Subscribe("session.x", func([]byte) { got++ })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_ = bus.Publish("session.x", nil)
	_ = bus.Publish("session.y", nil)
	testutil.AssertEqual(t, "subscribers", bus.Subscribers("session.x"), 1)

	unsub()
	_ = bus.Publish("session.x", nil)
	testutil.AssertEqual(t, "delivered", got, 1)
	testutil.AssertEqual(t, "subscribers", bus.Subscribers("session.x"), 0)
}

func TestNatsServer(t *testing.T) {
	s, err := NewNatsServer(WithStartTimeout(5 * time.Second))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = s.Subscribe("session.a", func([]byte) {})
	if !errors.Is(err, ErrNotStarted) {
		t.Fatalf("expected ErrNotStarted, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Start(ctx)
	}()
	defer func() {
		cancel()
		<-done
	}()

	waitCtx, waitCancel := context.WithTimeout(ctx, 5*time.Second)
	defer waitCancel()
	if err := s.WaitReady(waitCtx); err != nil {
		t.Fatalf("server not ready: %v", err)
	}

	received := make(chan Frame, 3)
	unsub, err := s.Subscribe(SessionSubject("a"), func(data []byte) {
		f, err := DecodeFrame(data)
		if err == nil {
			received <- f
		}
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer unsub()

	pub := NewPublisher(s)
	for i := 0; i < 3; i++ {
		err := pub.Publish(testGroup{"a"}, nil, protocol.ResourceHit{ID: "rock_1", Health: 2 - i})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	var seq Sequencer
	for i := 0; i < 3; i++ {
		select {
		case f := <-received:
			if err := seq.Accept(f); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("frame %d not delivered", i+1)
		}
	}
}
