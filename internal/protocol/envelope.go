package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

var (
	ErrUnknownEvent = errors.New("unknown event type")
	ErrMalformed    = errors.New("malformed event")
)

// Envelope is the frame exchanged with browser clients.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ServerEvent is one of the closed set of events the server sends.
type ServerEvent interface {
	EventName() string
	payload() any
}

// ClientEvent is one of the closed set of events a client sends.
type ClientEvent interface {
	EventName() string
	clientEvent()
}

// Encode wraps ev in an envelope and marshals it.
func Encode(ev ServerEvent) ([]byte, error) {
	p, err := EncodePayload(ev)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: ev.EventName(), Payload: p})
}

// EncodePayload marshals only the payload portion of ev.
func EncodePayload(ev ServerEvent) ([]byte, error) {
	b, err := json.Marshal(ev.payload())
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", ev.EventName(), err)
	}
	return b, nil
}

// Frame builds an envelope from an event name and an already encoded payload.
func Frame(name string, payload []byte) ([]byte, error) {
	return json.Marshal(Envelope{Type: name, Payload: payload})
}

type clientDecoder func(json.RawMessage) (ClientEvent, error)

var clientDecoders = map[string]clientDecoder{
	EventPlayerJoin:     decodeObject[PlayerJoin],
	EventPlayerMovement: decodeObject[PlayerMovement],
	EventChatMessage:    decodeObject[ChatSend],
	EventUpdateColor: func(raw json.RawMessage) (ClientEvent, error) {
		s, err := decodeString(raw)
		return UpdateColor{Color: s}, err
	},
	EventPlayerInteract: func(json.RawMessage) (ClientEvent, error) {
		return PlayerInteract{}, nil
	},
	EventMineResource: func(raw json.RawMessage) (ClientEvent, error) {
		s, err := decodeString(raw)
		return MineResource{NodeID: s}, err
	},
	EventMineTile:   decodeObject[MineTile],
	EventPlaceBlock: decodeObject[PlaceBlock],
	EventPlayerEmote: func(raw json.RawMessage) (ClientEvent, error) {
		s, err := decodeString(raw)
		return PlayerEmote{EmoteID: s}, err
	},
}

// DecodeClient parses a client frame into its typed event.
func DecodeClient(data []byte) (ClientEvent, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	dec, ok := clientDecoders[env.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Type)
	}

	ev, err := dec(env.Payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, env.Type, err)
	}
	return ev, nil
}

// ClientEventNames lists every client event name in ascending order.
func ClientEventNames() []string {
	names := make([]string, 0, len(clientDecoders))
	for n := range clientDecoders {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

func decodeObject[T ClientEvent](raw json.RawMessage) (ClientEvent, error) {
	var v T
	if isNull(raw) {
		return nil, errors.New("payload is required")
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// decodeString accepts a bare JSON string. A missing payload reads as "".
func decodeString(raw json.RawMessage) (string, error) {
	if isNull(raw) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", err
	}
	return s, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
