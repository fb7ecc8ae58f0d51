package messaging

import (
	"fmt"
	"sync"

	"github.com/pixil98/hamlet/internal/game"
	"github.com/pixil98/hamlet/internal/protocol"
)

// Publisher delivers world events to each recipient's session subject.
type Publisher struct {
	bus Bus

	mu  sync.Mutex
	seq map[string]uint64
}

func NewPublisher(bus Bus) *Publisher {
	return &Publisher{bus: bus, seq: map[string]uint64{}}
}

// Publish encodes ev once and sends one numbered frame per recipient.
func (p *Publisher) Publish(targets game.PlayerGroup, exclude []string, ev protocol.ServerEvent) error {
	body, err := protocol.Encode(ev)
	if err != nil {
		return err
	}

	excludeSet := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		excludeSet[id] = true
	}

	var firstErr error
	targets.ForEachPlayer(func(id string, _ *game.Player) {
		if excludeSet[id] {
			return
		}
		err := p.send(id, ev.EventName(), body)
		if err != nil && firstErr == nil {
			firstErr = err
		}
	})
	return firstErr
}

func (p *Publisher) send(sessionID, name string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	seq := p.seq[sessionID] + 1
	data, err := EncodeFrame(Frame{Seq: seq, Type: name, Body: body})
	if err != nil {
		return err
	}
	err = p.bus.Publish(SessionSubject(sessionID), data)
	if err != nil {
		return fmt.Errorf("publishing to %s: %w", sessionID, err)
	}
	p.seq[sessionID] = seq
	return nil
}

// Forget drops the sequence counter of a closed session.
func (p *Publisher) Forget(sessionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.seq, sessionID)
}
