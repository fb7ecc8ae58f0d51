package protocol

import (
	"slices"

	"github.com/pixil98/hamlet/internal/tilemap"
)

const (
	EventCurrentPlayers     = "currentPlayers"
	EventMapData            = "mapData"
	EventInteractables      = "interactables"
	EventResourceNodes      = "resourceNodes"
	EventNewPlayer          = "newPlayer"
	EventPlayerDisconnected = "playerDisconnected"
	EventPlayerMoved        = "playerMoved"
	EventPlayerUpdated      = "playerUpdated"
	EventMiningResult       = "miningResult"
	EventBlockPlaceResult   = "blockPlaceResult"
	EventInteractionResult  = "interactionResult"
	EventResourceDepleted   = "resourceDepleted"
	EventResourceHit        = "resourceHit"
	EventResourceRespawned  = "resourceRespawned"
	EventTileChanged        = "tileChanged"
	EventBlockPlaced        = "blockPlaced"
	EventEmote              = "playerEmote"
	EventChat               = "chatMessage"
)

// ServerEventNames lists every server event name in ascending order.
func ServerEventNames() []string {
	names := []string{
		EventCurrentPlayers, EventMapData, EventInteractables, EventResourceNodes,
		EventNewPlayer, EventPlayerDisconnected, EventPlayerMoved, EventPlayerUpdated,
		EventMiningResult, EventBlockPlaceResult, EventInteractionResult,
		EventResourceDepleted, EventResourceHit, EventResourceRespawned,
		EventTileChanged, EventBlockPlaced, EventEmote, EventChat,
	}
	slices.Sort(names)
	return names
}

// CurrentPlayers is the roster snapshot sent to a new connection.
type CurrentPlayers struct {
	Players map[string]PlayerView
}

type MapData struct {
	Rows [][]tilemap.Code
}

type Interactables struct {
	Items []InteractableView
}

type ResourceNodes struct {
	Nodes []NodeView
}

type NewPlayer struct {
	Player PlayerView
}

type PlayerDisconnected struct {
	PlayerID string
}

type PlayerMoved struct {
	Player PlayerView
}

type PlayerUpdated struct {
	Player PlayerView
}

type MiningResult struct {
	Success         bool             `json:"success"`
	Depleted        bool             `json:"depleted,omitempty"`
	Item            string           `json:"item,omitempty"`
	Amount          int              `json:"amount,omitempty"`
	HealthRemaining *int             `json:"healthRemaining,omitempty"`
	Inventory       []InventoryEntry `json:"inventory,omitempty"`
	Reason          string           `json:"reason,omitempty"`
	Message         string           `json:"message,omitempty"`
}

type BlockPlaceResult struct {
	Success   bool             `json:"success"`
	ItemName  string           `json:"itemName,omitempty"`
	Inventory []InventoryEntry `json:"inventory,omitempty"`
	Reason    string           `json:"reason,omitempty"`
	Message   string           `json:"message,omitempty"`
}

type InteractionResult struct {
	ID          string       `json:"id"`
	Type        string       `json:"type"`
	Name        string       `json:"name,omitempty"`
	Text        string       `json:"text"`
	QuestUpdate *QuestUpdate `json:"questUpdate"`
}

type ResourceDepleted struct {
	ID string `json:"id"`
}

type ResourceHit struct {
	ID     string `json:"id"`
	Health int    `json:"health"`
}

type ResourceRespawned struct {
	ID     string `json:"id"`
	Health int    `json:"health"`
}

type TileChanged struct {
	X        int          `json:"x"`
	Y        int          `json:"y"`
	TileType tilemap.Code `json:"tileType"`
}

type BlockPlaced struct {
	X        int          `json:"x"`
	Y        int          `json:"y"`
	TileType tilemap.Code `json:"tileType"`
}

type Emote struct {
	PlayerID     string `json:"playerId"`
	EmoteID      string `json:"emoteId"`
	EmoteEndTime int64  `json:"emoteEndTime"`
}

type Chat struct {
	ID        string `json:"id"`
	PlayerID  string `json:"playerId"`
	Name      string `json:"name"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

func (CurrentPlayers) EventName() string     { return EventCurrentPlayers }
func (MapData) EventName() string            { return EventMapData }
func (Interactables) EventName() string      { return EventInteractables }
func (ResourceNodes) EventName() string      { return EventResourceNodes }
func (NewPlayer) EventName() string          { return EventNewPlayer }
func (PlayerDisconnected) EventName() string { return EventPlayerDisconnected }
func (PlayerMoved) EventName() string        { return EventPlayerMoved }
func (PlayerUpdated) EventName() string      { return EventPlayerUpdated }
func (MiningResult) EventName() string       { return EventMiningResult }
func (BlockPlaceResult) EventName() string   { return EventBlockPlaceResult }
func (InteractionResult) EventName() string  { return EventInteractionResult }
func (ResourceDepleted) EventName() string   { return EventResourceDepleted }
func (ResourceHit) EventName() string        { return EventResourceHit }
func (ResourceRespawned) EventName() string  { return EventResourceRespawned }
func (TileChanged) EventName() string        { return EventTileChanged }
func (BlockPlaced) EventName() string        { return EventBlockPlaced }
func (Emote) EventName() string              { return EventEmote }
func (Chat) EventName() string               { return EventChat }

func (e CurrentPlayers) payload() any {
	if e.Players == nil {
		return map[string]PlayerView{}
	}
	return e.Players
}
func (e MapData) payload() any            { return e.Rows }
func (e Interactables) payload() any      { return nonNil(e.Items) }
func (e ResourceNodes) payload() any      { return nonNil(e.Nodes) }
func (e NewPlayer) payload() any          { return e.Player }
func (e PlayerDisconnected) payload() any { return e.PlayerID }
func (e PlayerMoved) payload() any        { return e.Player }
func (e PlayerUpdated) payload() any      { return e.Player }
func (e MiningResult) payload() any       { return e }
func (e BlockPlaceResult) payload() any   { return e }
func (e InteractionResult) payload() any  { return e }
func (e ResourceDepleted) payload() any   { return e }
func (e ResourceHit) payload() any        { return e }
func (e ResourceRespawned) payload() any  { return e }
func (e TileChanged) payload() any        { return e }
func (e BlockPlaced) payload() any        { return e }
func (e Emote) payload() any              { return e }
func (e Chat) payload() any               { return e }

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
