package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/pixil98/hamlet/internal/protocol"
	"github.com/pixil98/hamlet/internal/tilemap"
)

const (
	// TileMiningRadius is measured from the player to the tile centre.
	TileMiningRadius = tilemap.TileSize * 2.5

	EmoteDuration  = 5 * time.Second
	MaxChatLength  = 200
	MaxEmoteLength = 32
)

// DefaultSpawn is where every new session appears.
var DefaultSpawn = Position{X: 480, Y: 480}

// World is the authoritative game state. Every method must be called from
// the loop goroutine.
type World struct {
	grid          *tilemap.Grid
	nodes         *NodeRegistry
	interactables *InteractableRegistry
	quests        *QuestCatalog
	players       *PlayerStore

	pub   Publisher
	sched Scheduler
	clock Clock
	rng   *rand.Rand
	newID func() string
	spawn Position
}

type WorldOpt func(*World)

func WithScheduler(s Scheduler) WorldOpt {
	return func(w *World) {
		w.sched = s
	}
}

func WithClock(c Clock) WorldOpt {
	return func(w *World) {
		w.clock = c
	}
}

// WithRand sets the source used for player colors.
func WithRand(r *rand.Rand) WorldOpt {
	return func(w *World) {
		w.rng = r
	}
}

// WithIDGenerator sets how chat message ids are generated.
func WithIDGenerator(fn func() string) WorldOpt {
	return func(w *World) {
		w.newID = fn
	}
}

func WithSpawn(p Position) WorldOpt {
	return func(w *World) {
		w.spawn = p
	}
}

func NewWorld(grid *tilemap.Grid, cat *Catalog, pub Publisher, opts ...WorldOpt) (*World, error) {
	w := &World{
		grid:    grid,
		players: NewPlayerStore(),
		pub:     pub,
		clock:   SystemClock{},
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		newID:   uuid.NewString,
		spawn:   DefaultSpawn,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.sched == nil {
		return nil, fmt.Errorf("a scheduler is required")
	}

	cx, cy, ok := grid.CellAt(w.spawn.X, w.spawn.Y)
	if !ok {
		return nil, fmt.Errorf("spawn %v is outside the map", w.spawn)
	}
	if c, _ := grid.Get(cx, cy); !tilemap.Walkable(c) {
		return nil, fmt.Errorf("spawn %v is on unwalkable tile %s", w.spawn, c)
	}

	var err error
	w.nodes, err = NewNodeRegistry(cat.Nodes, w.sched, WithRespawnHandler(w.nodeRespawned))
	if err != nil {
		return nil, fmt.Errorf("building node registry: %w", err)
	}
	w.interactables = NewInteractableRegistry(cat.Interactables)
	w.quests, err = NewQuestCatalog(cat.Quests, cat.Interactables)
	if err != nil {
		return nil, fmt.Errorf("building quest catalog: %w", err)
	}

	return w, nil
}

func (w *World) Grid() *tilemap.Grid                  { return w.grid }
func (w *World) Nodes() *NodeRegistry                 { return w.nodes }
func (w *World) Interactables() *InteractableRegistry { return w.interactables }
func (w *World) Quests() *QuestCatalog                { return w.quests }
func (w *World) Players() *PlayerStore                { return w.players }

// Connect creates a session at the spawn point, sends it the initial
// snapshot, then announces it to everyone else.
func (w *World) Connect(ctx context.Context, id string) error {
	p := newPlayer(id, w.spawn, w.rng)
	err := w.players.Add(p)
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "player connected", "player", id, "online", w.players.Len())

	self := SinglePlayer{Player: p}
	w.publish(ctx, self, nil, protocol.CurrentPlayers{Players: w.players.Views()})
	w.publish(ctx, self, nil, protocol.MapData{Rows: w.grid.Rows()})
	w.publish(ctx, self, nil, protocol.Interactables{Items: w.interactables.Views()})
	w.publish(ctx, self, nil, protocol.ResourceNodes{Nodes: w.nodes.Views()})
	w.publish(ctx, w.players, []string{id}, protocol.NewPlayer{Player: p.View()})
	return nil
}

// Disconnect removes a session and tells the remaining players.
func (w *World) Disconnect(ctx context.Context, id string) error {
	_, err := w.players.Remove(id)
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "player disconnected", "player", id, "online", w.players.Len())
	w.publish(ctx, w.players, nil, protocol.PlayerDisconnected{PlayerID: id})
	return nil
}

// Dispatch routes a decoded client event to its handler. Rejections are
// reported to the sender by the handler; nothing here is fatal.
func (w *World) Dispatch(ctx context.Context, id string, ev protocol.ClientEvent) {
	var err error
	switch e := ev.(type) {
	case protocol.PlayerJoin:
		err = w.Join(ctx, id, e.Name, e.CharacterType)
	case protocol.PlayerMovement:
		err = w.Move(ctx, id, e.X, e.Y, e.IsMoving)
	case protocol.ChatSend:
		err = w.Chat(ctx, id, e.Text)
	case protocol.UpdateColor:
		err = w.UpdateColor(ctx, id, e.Color)
	case protocol.PlayerInteract:
		err = w.Interact(ctx, id)
	case protocol.MineResource:
		err = w.MineResource(ctx, id, e.NodeID)
	case protocol.MineTile:
		err = w.MineTile(ctx, id, e.X, e.Y)
	case protocol.PlaceBlock:
		err = w.PlaceBlock(ctx, id, e.X, e.Y, e.ItemID)
	case protocol.PlayerEmote:
		err = w.Emote(ctx, id, e.EmoteID)
	default:
		err = fmt.Errorf("unhandled event %T", ev)
	}

	var verr *ValidationError
	switch {
	case err == nil:
	case errors.As(err, &verr):
		slog.DebugContext(ctx, "action rejected", "player", id, "event", ev.EventName(), "reason", verr.Reason)
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrPlayerNotFound):
		slog.DebugContext(ctx, "ignoring stale action", "player", id, "event", ev.EventName(), "error", err)
	default:
		slog.WarnContext(ctx, "handling event", "player", id, "event", ev.EventName(), "error", err)
	}
}

// Tick logs a periodic summary of the world.
func (w *World) Tick(ctx context.Context) error {
	s := w.Stats()
	slog.DebugContext(ctx, "world tick", "players", s.Players, "nodes_depleted", s.NodesDepleted)
	return nil
}

// Stats is a read-out of the world for operators.
type Stats struct {
	Players       int `json:"players"`
	Nodes         int `json:"nodes"`
	NodesDepleted int `json:"nodes_depleted"`
	Interactables int `json:"interactables"`
	Quests        int `json:"quests"`
	MapWidth      int `json:"map_width"`
	MapHeight     int `json:"map_height"`
}

func (w *World) Stats() Stats {
	return Stats{
		Players:       w.players.Len(),
		Nodes:         len(w.nodes.order),
		NodesDepleted: w.nodes.DepletedCount(),
		Interactables: w.interactables.Len(),
		Quests:        len(w.quests.order),
		MapWidth:      w.grid.Width(),
		MapHeight:     w.grid.Height(),
	}
}

// Announce broadcasts a chat line from the server itself.
func (w *World) Announce(ctx context.Context, text string) error {
	text, ok := cleanChat(text)
	if !ok {
		return fmt.Errorf("announcement is empty")
	}
	w.publish(ctx, w.players, nil, protocol.Chat{
		ID:        w.newID(),
		PlayerID:  "server",
		Name:      "Server",
		Text:      text,
		Timestamp: w.clock.Now().UnixMilli(),
	})
	return nil
}

func (w *World) nodeRespawned(ctx context.Context, n *Node) {
	slog.DebugContext(ctx, "resource node respawned", "node", n.ID)
	w.publish(ctx, w.players, nil, protocol.ResourceRespawned{ID: n.ID, Health: n.Health})
}

func (w *World) player(id string) (*Player, error) {
	p, ok := w.players.Get(id)
	if !ok {
		return nil, ErrPlayerNotFound
	}
	return p, nil
}

func (w *World) publish(ctx context.Context, targets PlayerGroup, exclude []string, ev protocol.ServerEvent) {
	err := w.pub.Publish(targets, exclude, ev)
	if err != nil {
		slog.WarnContext(ctx, "publishing event", "event", ev.EventName(), "error", err)
	}
}
