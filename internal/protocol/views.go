package protocol

// PlayerView is the public state of one player session.
type PlayerView struct {
	PlayerID      string           `json:"playerId"`
	X             float64          `json:"x"`
	Y             float64          `json:"y"`
	Direction     string           `json:"direction"`
	IsMoving      bool             `json:"isMoving"`
	Name          string           `json:"name"`
	CharacterType string           `json:"characterType"`
	Color         string           `json:"color"`
	Coins         int              `json:"coins"`
	Inventory     []InventoryEntry `json:"inventory"`
	Quest         *QuestView       `json:"quest"`
	QuestProgress map[string]bool  `json:"questProgress"`
	ActiveEmote   string           `json:"activeEmote,omitempty"`
	EmoteEndTime  int64            `json:"emoteEndTime,omitempty"`
}

type InventoryEntry struct {
	Item   string `json:"item"`
	Amount int    `json:"amount"`
}

type NodeView struct {
	ID           string    `json:"id"`
	X            float64   `json:"x"`
	Y            float64   `json:"y"`
	Type         string    `json:"type"`
	ResourceType string    `json:"resourceType"`
	Name         string    `json:"name"`
	Text         string    `json:"text"`
	Health       int       `json:"health"`
	MaxHealth    int       `json:"maxHealth"`
	Yield        YieldView `json:"yield"`
	RespawnTime  int64     `json:"respawnTime"`
}

type YieldView struct {
	Item   string `json:"item"`
	Amount int    `json:"amount"`
}

type InteractableView struct {
	ID      string  `json:"id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Type    string  `json:"type"`
	Name    string  `json:"name,omitempty"`
	Text    string  `json:"text"`
	Details string  `json:"details,omitempty"`
}

type QuestView struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Giver       string          `json:"giver"`
	Objectives  []ObjectiveView `json:"objectives"`
	Reward      int             `json:"reward"`
}

type ObjectiveView struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Target      string `json:"target"`
	Count       int    `json:"count"`
}

// QuestUpdate reports a change to a player's quest log. Quest is nil once the
// log has been cleared.
type QuestUpdate struct {
	Quest     *QuestView      `json:"quest"`
	Progress  map[string]bool `json:"progress"`
	State     string          `json:"state"`
	Completed string          `json:"completed,omitempty"`
	Coins     *int            `json:"coins,omitempty"`
}
