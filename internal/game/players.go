package game

import "github.com/pixil98/hamlet/internal/protocol"

// PlayerGroup is a set of players that can be used as a publish target.
type PlayerGroup interface {
	ForEachPlayer(fn func(id string, p *Player))
}

// SinglePlayer targets one player.
type SinglePlayer struct {
	Player *Player
}

func (s SinglePlayer) ForEachPlayer(fn func(string, *Player)) {
	if s.Player != nil {
		fn(s.Player.ID, s.Player)
	}
}

// PlayerStore holds every connected session in join order. It is owned by
// the loop goroutine and is not safe for concurrent use.
type PlayerStore struct {
	order []string
	byID  map[string]*Player
}

func NewPlayerStore() *PlayerStore {
	return &PlayerStore{byID: map[string]*Player{}}
}

func (s *PlayerStore) Add(p *Player) error {
	if _, ok := s.byID[p.ID]; ok {
		return ErrPlayerExists
	}
	s.byID[p.ID] = p
	s.order = append(s.order, p.ID)
	return nil
}

func (s *PlayerStore) Remove(id string) (*Player, error) {
	p, ok := s.byID[id]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	delete(s.byID, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return p, nil
}

func (s *PlayerStore) Get(id string) (*Player, bool) {
	p, ok := s.byID[id]
	return p, ok
}

func (s *PlayerStore) Len() int { return len(s.order) }

func (s *PlayerStore) ForEachPlayer(fn func(string, *Player)) {
	for _, id := range s.order {
		fn(id, s.byID[id])
	}
}

// Views returns the roster keyed by player id.
func (s *PlayerStore) Views() map[string]protocol.PlayerView {
	views := make(map[string]protocol.PlayerView, len(s.order))
	for _, id := range s.order {
		views[id] = s.byID[id].View()
	}
	return views
}
