package game

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/hamlet/internal/protocol"
	"github.com/pixil98/hamlet/internal/storage"
)

// InteractRadius is the exclusive reach of playerInteract.
const InteractRadius = 60.0

type InteractableType string

const (
	InteractableSign InteractableType = "sign"
	InteractableNPC  InteractableType = "npc"
)

// InteractableSpec is a sign or NPC placed in the world.
type InteractableSpec struct {
	X       float64          `json:"x"`
	Y       float64          `json:"y"`
	Type    InteractableType `json:"type"`
	Name    string           `json:"name,omitempty"`
	Text    string           `json:"text"`
	Details string           `json:"details,omitempty"`
}

func (s *InteractableSpec) Validate() error {
	el := errors.NewErrorList()

	switch s.Type {
	case InteractableSign:
		if s.Details == "" {
			el.Add(fmt.Errorf("sign details must be set"))
		}
	case InteractableNPC:
		if s.Name == "" {
			el.Add(fmt.Errorf("npc name must be set"))
		}
	default:
		el.Add(fmt.Errorf("type must be %q or %q", InteractableSign, InteractableNPC))
	}

	if s.Text == "" {
		el.Add(fmt.Errorf("text must be set"))
	}

	return el.Err()
}

type Interactable struct {
	ID   string
	Pos  Position
	spec *InteractableSpec
}

func (i *Interactable) Type() InteractableType { return i.spec.Type }

func (i *Interactable) Name() string { return i.spec.Name }

// Response is what the interactable says when used: a sign's body or an
// NPC's greeting.
func (i *Interactable) Response() string {
	if i.spec.Type == InteractableSign {
		return i.spec.Details
	}
	return i.spec.Text
}

func (i *Interactable) View() protocol.InteractableView {
	return protocol.InteractableView{
		ID:      i.ID,
		X:       i.Pos.X,
		Y:       i.Pos.Y,
		Type:    string(i.spec.Type),
		Name:    i.spec.Name,
		Text:    i.spec.Text,
		Details: i.spec.Details,
	}
}

// InteractableRegistry is the immutable set of signs and NPCs.
type InteractableRegistry struct {
	order []*Interactable
	byID  map[string]*Interactable
}

func NewInteractableRegistry(specs storage.Storer[*InteractableSpec]) *InteractableRegistry {
	r := &InteractableRegistry{byID: map[string]*Interactable{}}
	for _, id := range specs.Keys() {
		spec := specs.Get(id)
		i := &Interactable{ID: id, Pos: Position{X: spec.X, Y: spec.Y}, spec: spec}
		r.order = append(r.order, i)
		r.byID[id] = i
	}
	return r
}

func (r *InteractableRegistry) Get(id string) (*Interactable, bool) {
	i, ok := r.byID[id]
	return i, ok
}

func (r *InteractableRegistry) Len() int { return len(r.order) }

// FindNearest returns the closest interactable strictly within maxRadius.
// Ties go to the one that comes first in registry order.
func (r *InteractableRegistry) FindNearest(pos Position, maxRadius float64) (*Interactable, bool) {
	var best *Interactable
	minDist := maxRadius
	for _, i := range r.order {
		d := pos.Dist(i.Pos)
		if d < minDist {
			best = i
			minDist = d
		}
	}
	return best, best != nil
}

func (r *InteractableRegistry) Views() []protocol.InteractableView {
	views := make([]protocol.InteractableView, 0, len(r.order))
	for _, i := range r.order {
		views = append(views, i.View())
	}
	return views
}
