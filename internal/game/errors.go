package game

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrPlayerNotFound = errors.New("player not found")
	ErrPlayerExists   = errors.New("player already exists")
	ErrLoopStopped    = errors.New("event loop stopped")
)

// Reason classifies a rejected player action.
type Reason string

const (
	ReasonOutOfBounds           Reason = "out_of_bounds"
	ReasonTooFar                Reason = "too_far"
	ReasonOutOfRange            Reason = "out_of_range"
	ReasonNotWalkable           Reason = "not_walkable"
	ReasonNotMinable            Reason = "not_minable"
	ReasonNotBuildable          Reason = "not_buildable"
	ReasonInsufficientResources Reason = "insufficient_resources"
	ReasonInvalidItem           Reason = "invalid_item"
	ReasonAlreadyDepleted       Reason = "already_depleted"
)

var reasonMessages = map[Reason]string{
	ReasonOutOfBounds:           "Out of bounds!",
	ReasonTooFar:                "Too far away!",
	ReasonOutOfRange:            "Too far away!",
	ReasonNotWalkable:           "You can't go there!",
	ReasonNotMinable:            "Cannot mine this!",
	ReasonNotBuildable:          "Cannot build here!",
	ReasonInsufficientResources: "Not enough resources!",
	ReasonInvalidItem:           "Invalid item!",
	ReasonAlreadyDepleted:       "Already depleted!",
}

// ValidationError is a rejected action. It is reported to the acting
// session only and never changes world state.
type ValidationError struct {
	Reason Reason
}

func reject(r Reason) *ValidationError {
	return &ValidationError{Reason: r}
}

func (e *ValidationError) Error() string {
	return "action rejected: " + string(e.Reason)
}

// Message is the player facing text for the rejection.
func (e *ValidationError) Message() string {
	if m, ok := reasonMessages[e.Reason]; ok {
		return m
	}
	return string(e.Reason)
}
