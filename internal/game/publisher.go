package game

import "github.com/pixil98/hamlet/internal/protocol"

// Publisher delivers server events to every player in targets except the
// excluded ids. Events for one recipient arrive in publish order.
type Publisher interface {
	Publish(targets PlayerGroup, exclude []string, ev protocol.ServerEvent) error
}
