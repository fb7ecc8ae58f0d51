package protocol

const (
	EventPlayerJoin     = "playerJoin"
	EventPlayerMovement = "playerMovement"
	EventChatMessage    = "chatMessage"
	EventUpdateColor    = "updateColor"
	EventPlayerInteract = "playerInteract"
	EventMineResource   = "mineResource"
	EventMineTile       = "mineTile"
	EventPlaceBlock     = "placeBlock"
	EventPlayerEmote    = "playerEmote"
)

type PlayerJoin struct {
	Name          string `json:"name"`
	CharacterType string `json:"characterType"`
}

// PlayerMovement proposes an absolute position. Direction is advisory; the
// server derives heading from the displacement.
type PlayerMovement struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Direction string  `json:"direction"`
	IsMoving  bool    `json:"isMoving"`
}

type ChatSend struct {
	Text string `json:"text"`
}

type UpdateColor struct {
	Color string
}

type PlayerInteract struct{}

// MineResource targets a node by id. An empty id targets the nearest node.
type MineResource struct {
	NodeID string
}

type MineTile struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type PlaceBlock struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	ItemID string `json:"itemId"`
}

type PlayerEmote struct {
	EmoteID string
}

func (PlayerJoin) EventName() string     { return EventPlayerJoin }
func (PlayerMovement) EventName() string { return EventPlayerMovement }
func (ChatSend) EventName() string       { return EventChatMessage }
func (UpdateColor) EventName() string    { return EventUpdateColor }
func (PlayerInteract) EventName() string { return EventPlayerInteract }
func (MineResource) EventName() string   { return EventMineResource }
func (MineTile) EventName() string       { return EventMineTile }
func (PlaceBlock) EventName() string     { return EventPlaceBlock }
func (PlayerEmote) EventName() string    { return EventPlayerEmote }

func (PlayerJoin) clientEvent()     {}
func (PlayerMovement) clientEvent() {}
func (ChatSend) clientEvent()       {}
func (UpdateColor) clientEvent()    {}
func (PlayerInteract) clientEvent() {}
func (MineResource) clientEvent()   {}
func (MineTile) clientEvent()       {}
func (PlaceBlock) clientEvent()     {}
func (PlayerEmote) clientEvent()    {}
