package protocol

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/pixil98/go-testutil"
	"github.com/pixil98/hamlet/internal/tilemap"
)

func TestDecodeClient(t *testing.T) {
	tests := map[string]struct {
		frame  string
		exp    ClientEvent
		expErr error
	}{
		"join": {
			frame: `{"type":"playerJoin","payload":{"name":"Ann","characterType":"female"}}`,
			exp:   PlayerJoin{Name: "Ann", CharacterType: "female"},
		},
		"movement": {
			frame: `{"type":"playerMovement","payload":{"x":481.5,"y":470,"direction":"up","isMoving":true}}`,
			exp:   PlayerMovement{X: 481.5, Y: 470, Direction: "up", IsMoving: true},
		},
		"chat": {
			frame: `{"type":"chatMessage","payload":{"text":"hi"}}`,
			exp:   ChatSend{Text: "hi"},
		},
		"color is a bare string": {
			frame: `{"type":"updateColor","payload":"#ff0000"}`,
			exp:   UpdateColor{Color: "#ff0000"},
		},
		"interact without payload": {
			frame: `{"type":"playerInteract"}`,
			exp:   PlayerInteract{},
		},
		"mine resource": {
			frame: `{"type":"mineResource","payload":"rock_1"}`,
			exp:   MineResource{NodeID: "rock_1"},
		},
		"mine resource without id": {
			frame: `{"type":"mineResource","payload":null}`,
			exp:   MineResource{},
		},
		"mine tile": {
			frame: `{"type":"mineTile","payload":{"x":3,"y":4}}`,
			exp:   MineTile{X: 3, Y: 4},
		},
		"place block": {
			frame: `{"type":"placeBlock","payload":{"x":3,"y":4,"itemId":"wood_fence"}}`,
			exp:   PlaceBlock{X: 3, Y: 4, ItemID: "wood_fence"},
		},
		"emote": {
			frame: `{"type":"playerEmote","payload":"wave"}`,
			exp:   PlayerEmote{EmoteID: "wave"},
		},
		"unknown type": {
			frame:  `{"type":"teleport","payload":{}}`,
			expErr: ErrUnknownEvent,
		},
		"not json": {
			frame:  `{nope`,
			expErr: ErrMalformed,
		},
		"fractional tile coordinate": {
			frame:  `{"type":"mineTile","payload":{"x":1.5,"y":4}}`,
			expErr: ErrMalformed,
		},
		"object payload missing": {
			frame:  `{"type":"placeBlock"}`,
			expErr: ErrMalformed,
		},
		"color is not a string": {
			frame:  `{"type":"updateColor","payload":{"c":1}}`,
			expErr: ErrMalformed,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			ev, err := DecodeClient([]byte(tt.frame))
			if tt.expErr != nil {
				if !errors.Is(err, tt.expErr) {
					t.Fatalf("expected %v, got %v", tt.expErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ev != tt.exp {
				t.Errorf("got %#v, expected %#v", ev, tt.exp)
			}
		})
	}
}

func TestClientEventNames(t *testing.T) {
	names := ClientEventNames()
	testutil.AssertEqual(t, "count", len(names), 9)

	for _, n := range names {
		_, err := DecodeClient([]byte(`{"type":"` + n + `","payload":{}}`))
		if errors.Is(err, ErrUnknownEvent) {
			t.Errorf("listed event %q is not decodable", n)
		}
	}
}

func TestServerEventNames(t *testing.T) {
	events := []ServerEvent{
		CurrentPlayers{}, MapData{}, Interactables{}, ResourceNodes{},
		NewPlayer{}, PlayerDisconnected{}, PlayerMoved{}, PlayerUpdated{},
		MiningResult{}, BlockPlaceResult{}, InteractionResult{},
		ResourceDepleted{}, ResourceHit{}, ResourceRespawned{},
		TileChanged{}, BlockPlaced{}, Emote{}, Chat{},
	}

	names := ServerEventNames()
	testutil.AssertEqual(t, "count", len(names), len(events))

	listed := map[string]bool{}
	for _, n := range names {
		listed[n] = true
	}
	for _, ev := range events {
		if !listed[ev.EventName()] {
			t.Errorf("event %q missing from ServerEventNames", ev.EventName())
		}
		if _, err := Encode(ev); err != nil {
			t.Errorf("encoding %q: %v", ev.EventName(), err)
		}
	}
}

func TestEncode(t *testing.T) {
	tests := map[string]struct {
		ev  ServerEvent
		exp string
	}{
		"disconnect payload is the bare id": {
			ev:  PlayerDisconnected{PlayerID: "abc"},
			exp: `{"type":"playerDisconnected","payload":"abc"}`,
		},
		"tile change": {
			ev:  TileChanged{X: 1, Y: 2, TileType: tilemap.Dirt},
			exp: `{"type":"tileChanged","payload":{"x":1,"y":2,"tileType":3}}`,
		},
		"map rows": {
			ev:  MapData{Rows: [][]tilemap.Code{{tilemap.Grass, tilemap.Water}}},
			exp: `{"type":"mapData","payload":[[0,1]]}`,
		},
		"empty roster is an object": {
			ev:  CurrentPlayers{},
			exp: `{"type":"currentPlayers","payload":{}}`,
		},
		"failed mining result": {
			ev:  MiningResult{Reason: "too_far", Message: "Too far away!"},
			exp: `{"type":"miningResult","payload":{"success":false,"reason":"too_far","message":"Too far away!"}}`,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			b, err := Encode(tt.ev)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "frame", string(b), tt.exp)
		})
	}
}

func TestEncode_InteractionResultCarriesNullQuestUpdate(t *testing.T) {
	b, err := Encode(InteractionResult{ID: "sign_welcome", Type: "sign", Text: "hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var env struct {
		Payload map[string]json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(b, &env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "questUpdate", string(env.Payload["questUpdate"]), "null")
	if strings.Contains(string(b), `"name"`) {
		t.Errorf("empty name should be omitted: %s", b)
	}
}
