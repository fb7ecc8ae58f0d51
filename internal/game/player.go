package game

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pixil98/hamlet/internal/protocol"
	"golang.org/x/text/unicode/norm"
)

const (
	DefaultName          = "Adventurer"
	DefaultCharacterType = "male"

	MinNameLength       = 2
	MaxNameLength       = 15
	MaxCharacterTypeLen = 32
)

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{1,6}$`)

// StarterInventory is granted to every new session.
func StarterInventory() Inventory {
	return Inventory{"wood": 100, "stone": 100, "iron": 20}
}

// Player is the state of one connected session.
type Player struct {
	ID            string
	Pos           Position
	Direction     Direction
	IsMoving      bool
	Name          string
	CharacterType string
	Color         string
	Coins         int
	Inventory     Inventory
	Quests        QuestLog

	ActiveEmote  string
	EmoteEndTime time.Time
}

func newPlayer(id string, spawn Position, rng *rand.Rand) *Player {
	return &Player{
		ID:            id,
		Pos:           spawn,
		Direction:     DirDown,
		Name:          DefaultName,
		CharacterType: DefaultCharacterType,
		Color:         randomColor(rng),
		Inventory:     StarterInventory(),
	}
}

func randomColor(rng *rand.Rand) string {
	return fmt.Sprintf("#%06x", rng.Intn(0x1000000))
}

// NormalizeName returns the cleaned display name, or ok=false when it does
// not fit the length limits.
func NormalizeName(name string) (string, bool) {
	n := norm.NFC.String(strings.TrimSpace(name))
	l := utf8.RuneCountInString(n)
	if l < MinNameLength || l > MaxNameLength {
		return "", false
	}
	return n, true
}

// ValidColor reports whether c is a # followed by one to six hex digits.
func ValidColor(c string) bool {
	return colorPattern.MatchString(c)
}

func (p *Player) View() protocol.PlayerView {
	v := protocol.PlayerView{
		PlayerID:      p.ID,
		X:             p.Pos.X,
		Y:             p.Pos.Y,
		Direction:     string(p.Direction),
		IsMoving:      p.IsMoving,
		Name:          p.Name,
		CharacterType: p.CharacterType,
		Color:         p.Color,
		Coins:         p.Coins,
		Inventory:     p.Inventory.Entries(),
		QuestProgress: p.Quests.Progress(),
		ActiveEmote:   p.ActiveEmote,
	}
	if q := p.Quests.Quest(); q != nil {
		v.Quest = q.View()
	}
	if !p.EmoteEndTime.IsZero() {
		v.EmoteEndTime = p.EmoteEndTime.UnixMilli()
	}
	return v
}
