package game

import (
	"fmt"
	"text/template"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/hamlet/internal/protocol"
	"github.com/pixil98/hamlet/internal/storage"
)

type ObjectiveSpec struct {
	ID          string                         `json:"id"`
	Description string                         `json:"description"`
	Target      storage.Ref[*InteractableSpec] `json:"target"`
	Count       int                            `json:"count"`
}

type Reward struct {
	Coins int `json:"coins"`
}

// Dialogue holds the giver's lines as text/template sources.
type Dialogue struct {
	Offer    string `json:"offer"`
	Reminder string `json:"reminder"`
	Complete string `json:"complete"`
}

type QuestSpec struct {
	Name        string                         `json:"name"`
	Description string                         `json:"description"`
	Giver       storage.Ref[*InteractableSpec] `json:"giver"`
	Starter     bool                           `json:"starter,omitempty"`
	Objectives  []ObjectiveSpec                `json:"objectives"`
	Reward      Reward                         `json:"reward"`
	Dialogue    Dialogue                       `json:"dialogue"`
}

func (s *QuestSpec) Validate() error {
	el := errors.NewErrorList()

	if s.Name == "" {
		el.Add(fmt.Errorf("name must be set"))
	}
	el.Add(s.Giver.Validate())

	if len(s.Objectives) == 0 {
		el.Add(fmt.Errorf("at least one objective is required"))
	}
	seen := map[string]bool{}
	for i, o := range s.Objectives {
		if o.ID == "" {
			el.Add(fmt.Errorf("objective %d: id must be set", i))
		}
		if seen[o.ID] {
			el.Add(fmt.Errorf("objective %d: duplicate id %q", i, o.ID))
		}
		seen[o.ID] = true
		if o.Count < 1 {
			el.Add(fmt.Errorf("objective %d: count must be at least 1", i))
		}
		el.Add(o.Target.Validate())
	}

	if s.Reward.Coins < 0 {
		el.Add(fmt.Errorf("reward coins must not be negative"))
	}

	for name, text := range map[string]string{
		"offer":    s.Dialogue.Offer,
		"reminder": s.Dialogue.Reminder,
		"complete": s.Dialogue.Complete,
	} {
		if text == "" {
			el.Add(fmt.Errorf("%s dialogue must be set", name))
			continue
		}
		if _, err := parseDialogue(name, text); err != nil {
			el.Add(err)
		}
	}

	return el.Err()
}

// Quest is a resolved catalog entry with compiled dialogue.
type Quest struct {
	ID   string
	spec *QuestSpec

	offer    *template.Template
	reminder *template.Template
	complete *template.Template
}

func (q *Quest) Name() string { return q.spec.Name }

func (q *Quest) Giver() string { return q.spec.Giver.ID() }

func (q *Quest) Reward() Reward { return q.spec.Reward }

func (q *Quest) Objectives() []ObjectiveSpec { return q.spec.Objectives }

func (q *Quest) View() *protocol.QuestView {
	v := &protocol.QuestView{
		ID:          q.ID,
		Name:        q.spec.Name,
		Description: q.spec.Description,
		Giver:       q.spec.Giver.ID(),
		Reward:      q.spec.Reward.Coins,
	}
	for _, o := range q.spec.Objectives {
		v.Objectives = append(v.Objectives, protocol.ObjectiveView{
			ID:          o.ID,
			Description: o.Description,
			Target:      o.Target.ID(),
			Count:       o.Count,
		})
	}
	return v
}

// QuestCatalog is the immutable set of quests with one starter quest.
type QuestCatalog struct {
	order   []*Quest
	byID    map[string]*Quest
	starter *Quest
}

// NewQuestCatalog resolves every quest's giver and objective targets
// against the interactable store.
func NewQuestCatalog(specs storage.Storer[*QuestSpec], interactables storage.Storer[*InteractableSpec]) (*QuestCatalog, error) {
	c := &QuestCatalog{byID: map[string]*Quest{}}
	el := errors.NewErrorList()

	for _, id := range specs.Keys() {
		spec := specs.Get(id)
		q, err := compileQuest(id, spec, interactables)
		if err != nil {
			el.Add(fmt.Errorf("quest %s: %w", id, err))
			continue
		}

		if spec.Starter {
			if c.starter != nil {
				el.Add(fmt.Errorf("quest %s: starter already set to %s", id, c.starter.ID))
			}
			c.starter = q
		}

		c.order = append(c.order, q)
		c.byID[id] = q
	}

	if len(c.order) > 0 && c.starter == nil {
		el.Add(fmt.Errorf("no starter quest defined"))
	}

	if err := el.Err(); err != nil {
		return nil, err
	}
	return c, nil
}

func compileQuest(id string, spec *QuestSpec, interactables storage.Storer[*InteractableSpec]) (*Quest, error) {
	if err := spec.Giver.Resolve(interactables); err != nil {
		return nil, err
	}
	for i := range spec.Objectives {
		if err := spec.Objectives[i].Target.Resolve(interactables); err != nil {
			return nil, err
		}
	}

	q := &Quest{ID: id, spec: spec}
	var err error
	if q.offer, err = parseDialogue("offer", spec.Dialogue.Offer); err != nil {
		return nil, err
	}
	if q.reminder, err = parseDialogue("reminder", spec.Dialogue.Reminder); err != nil {
		return nil, err
	}
	if q.complete, err = parseDialogue("complete", spec.Dialogue.Complete); err != nil {
		return nil, err
	}
	return q, nil
}

func (c *QuestCatalog) Get(id string) (*Quest, bool) {
	q, ok := c.byID[id]
	return q, ok
}

// Starter returns the quest offered to players with an empty log.
func (c *QuestCatalog) Starter() *Quest { return c.starter }

func (c *QuestCatalog) All() []*Quest {
	out := make([]*Quest, len(c.order))
	copy(out, c.order)
	return out
}

type QuestState int

const (
	QuestNone QuestState = iota
	QuestActive
	QuestReadyToComplete
)

func (s QuestState) String() string {
	switch s {
	case QuestActive:
		return "active"
	case QuestReadyToComplete:
		return "ready_to_complete"
	default:
		return "none"
	}
}

// QuestLog is one player's quest state machine.
type QuestLog struct {
	state    QuestState
	quest    *Quest
	progress map[string]int
}

func (l *QuestLog) State() QuestState { return l.state }

// Quest returns the current quest, or nil with an empty log.
func (l *QuestLog) Quest() *Quest { return l.quest }

// Accept starts q. Only an empty log can accept a quest.
func (l *QuestLog) Accept(q *Quest) error {
	if l.state != QuestNone {
		return fmt.Errorf("cannot accept %s while %s", q.ID, l.state)
	}
	l.state = QuestActive
	l.quest = q
	l.progress = map[string]int{}
	return nil
}

// MarkObjective records an interaction with target against every
// unfinished objective aimed at it. It reports whether progress changed.
func (l *QuestLog) MarkObjective(target string) bool {
	if l.state != QuestActive {
		return false
	}

	changed := false
	for _, o := range l.quest.spec.Objectives {
		if o.Target.ID() != target || l.progress[o.ID] >= o.Count {
			continue
		}
		l.progress[o.ID]++
		changed = true
	}

	if changed && l.allDone() {
		l.state = QuestReadyToComplete
	}
	return changed
}

func (l *QuestLog) allDone() bool {
	for _, o := range l.quest.spec.Objectives {
		if l.progress[o.ID] < o.Count {
			return false
		}
	}
	return true
}

// Complete turns in a finished quest and clears the log.
func (l *QuestLog) Complete() (*Quest, error) {
	if l.state != QuestReadyToComplete {
		return nil, fmt.Errorf("quest not ready to complete: %s", l.state)
	}
	q := l.quest
	l.state = QuestNone
	l.quest = nil
	l.progress = nil
	return q, nil
}

// Progress reports which objectives of the current quest are finished.
func (l *QuestLog) Progress() map[string]bool {
	out := map[string]bool{}
	if l.quest == nil {
		return out
	}
	for _, o := range l.quest.spec.Objectives {
		if l.progress[o.ID] >= o.Count {
			out[o.ID] = true
		}
	}
	return out
}

func (l *QuestLog) update() *protocol.QuestUpdate {
	u := &protocol.QuestUpdate{
		Progress: l.Progress(),
		State:    l.state.String(),
	}
	if l.quest != nil {
		u.Quest = l.quest.View()
	}
	return u
}

