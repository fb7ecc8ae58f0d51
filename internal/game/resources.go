package game

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/hamlet/internal/protocol"
	"github.com/pixil98/hamlet/internal/storage"
)

// NodeMiningRadius is the furthest a player may stand from a resource node
// and still hit it.
const NodeMiningRadius = 50.0

// Position is a point in world units.
type Position struct {
	X float64
	Y float64
}

func (p Position) Dist(o Position) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

type Yield struct {
	Item   string `json:"item"`
	Amount int    `json:"amount"`
}

// NodeSpec is the static definition of a harvestable resource node.
type NodeSpec struct {
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	ResourceType string  `json:"resource_type"`
	Name         string  `json:"name"`
	Text         string  `json:"text"`
	MaxHealth    int     `json:"max_health"`
	Yield        Yield   `json:"yield"`
	RespawnTime  string  `json:"respawn_time"`
}

func (s *NodeSpec) Validate() error {
	el := errors.NewErrorList()

	if s.ResourceType == "" {
		el.Add(fmt.Errorf("resource_type must be set"))
	}
	if s.Name == "" {
		el.Add(fmt.Errorf("name must be set"))
	}
	if s.MaxHealth < 1 {
		el.Add(fmt.Errorf("max_health must be at least 1"))
	}
	if s.Yield.Item == "" {
		el.Add(fmt.Errorf("yield item must be set"))
	}
	if s.Yield.Amount < 1 {
		el.Add(fmt.Errorf("yield amount must be at least 1"))
	}
	if _, err := s.respawn(); err != nil {
		el.Add(err)
	}

	return el.Err()
}

func (s *NodeSpec) respawn() (time.Duration, error) {
	d, err := time.ParseDuration(s.RespawnTime)
	if err != nil {
		return 0, fmt.Errorf("parsing respawn_time: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("respawn_time must be positive")
	}
	return d, nil
}

// Node is the live state of a resource node. Health counts down with each
// hit; zero means depleted.
type Node struct {
	ID          string
	Pos         Position
	spec        *NodeSpec
	Health      int
	RespawnTime time.Duration
}

func (n *Node) Depleted() bool { return n.Health <= 0 }

func (n *Node) MaxHealth() int { return n.spec.MaxHealth }

func (n *Node) Yield() Yield { return n.spec.Yield }

func (n *Node) Name() string { return n.spec.Name }

func (n *Node) ResourceType() string { return n.spec.ResourceType }

func (n *Node) View() protocol.NodeView {
	return protocol.NodeView{
		ID:           n.ID,
		X:            n.Pos.X,
		Y:            n.Pos.Y,
		Type:         "resource",
		ResourceType: n.spec.ResourceType,
		Name:         n.spec.Name,
		Text:         n.spec.Text,
		Health:       n.Health,
		MaxHealth:    n.spec.MaxHealth,
		Yield:        protocol.YieldView{Item: n.spec.Yield.Item, Amount: n.spec.Yield.Amount},
		RespawnTime:  n.RespawnTime.Milliseconds(),
	}
}

// MineOutcome is the result of a successful hit.
type MineOutcome struct {
	Depleted        bool
	Item            string
	Amount          int
	HealthRemaining int
}

// NodeRegistry owns the mutable health of every resource node.
type NodeRegistry struct {
	order     []*Node
	byID      map[string]*Node
	sched     Scheduler
	onRespawn func(context.Context, *Node)
}

type NodeRegistryOpt func(*NodeRegistry)

// WithRespawnHandler sets a callback run after a node regains full health.
func WithRespawnHandler(fn func(context.Context, *Node)) NodeRegistryOpt {
	return func(r *NodeRegistry) {
		r.onRespawn = fn
	}
}

// NewNodeRegistry builds live nodes from specs in ascending id order. The
// specs themselves are never modified.
func NewNodeRegistry(specs storage.Storer[*NodeSpec], sched Scheduler, opts ...NodeRegistryOpt) (*NodeRegistry, error) {
	r := &NodeRegistry{
		byID:  map[string]*Node{},
		sched: sched,
	}
	for _, opt := range opts {
		opt(r)
	}

	for _, id := range specs.Keys() {
		spec := specs.Get(id)
		d, err := spec.respawn()
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", id, err)
		}
		n := &Node{
			ID:          id,
			Pos:         Position{X: spec.X, Y: spec.Y},
			spec:        spec,
			Health:      spec.MaxHealth,
			RespawnTime: d,
		}
		r.order = append(r.order, n)
		r.byID[id] = n
	}

	return r, nil
}

func (r *NodeRegistry) Get(id string) (*Node, bool) {
	n, ok := r.byID[id]
	return n, ok
}

func (r *NodeRegistry) All() []*Node {
	out := make([]*Node, len(r.order))
	copy(out, r.order)
	return out
}

func (r *NodeRegistry) Views() []protocol.NodeView {
	views := make([]protocol.NodeView, 0, len(r.order))
	for _, n := range r.order {
		views = append(views, n.View())
	}
	return views
}

// DepletedCount returns how many nodes are waiting to respawn.
func (r *NodeRegistry) DepletedCount() int {
	count := 0
	for _, n := range r.order {
		if n.Depleted() {
			count++
		}
	}
	return count
}

// FindNearest returns the closest node strictly within maxRadius of pos.
// Ties go to the node that comes first in registry order.
func (r *NodeRegistry) FindNearest(pos Position, maxRadius float64) (*Node, bool) {
	var best *Node
	minDist := maxRadius
	for _, n := range r.order {
		d := pos.Dist(n.Pos)
		if d < minDist {
			best = n
			minDist = d
		}
	}
	return best, best != nil
}

// Hit applies one mining hit from a player standing at by.
func (r *NodeRegistry) Hit(id string, by Position) (MineOutcome, error) {
	n, ok := r.byID[id]
	if !ok {
		return MineOutcome{}, ErrNotFound
	}
	if by.Dist(n.Pos) > NodeMiningRadius {
		return MineOutcome{}, reject(ReasonOutOfRange)
	}
	if n.Depleted() {
		return MineOutcome{}, reject(ReasonAlreadyDepleted)
	}

	n.Health--
	if !n.Depleted() {
		return MineOutcome{HealthRemaining: n.Health}, nil
	}

	r.sched.Schedule(respawnTaskID(n.ID), n.RespawnTime, func(ctx context.Context) {
		r.respawn(ctx, n)
	})

	y := n.spec.Yield
	return MineOutcome{Depleted: true, Item: y.Item, Amount: y.Amount}, nil
}

func (r *NodeRegistry) respawn(ctx context.Context, n *Node) {
	n.Health = n.spec.MaxHealth
	if r.onRespawn != nil {
		r.onRespawn(ctx, n)
	}
}

func respawnTaskID(nodeID string) string {
	return "respawn/" + nodeID
}
