package game

import (
	"testing"

	"github.com/pixil98/go-testutil"
	"github.com/pixil98/hamlet/internal/storage"
)

func testInteractables(t *testing.T) storage.Storer[*InteractableSpec] {
	t.Helper()
	st, err := storage.NewMemoryStore(DefaultInteractableSpecs())
	if err != nil {
		t.Fatalf("building interactables: %v", err)
	}
	return st
}

func questSpec(giver string, starter bool, targets ...string) *QuestSpec {
	spec := &QuestSpec{
		Name:    "Errand",
		Giver:   storage.NewRef[*InteractableSpec](giver),
		Starter: starter,
		Reward:  Reward{Coins: 3},
		Dialogue: Dialogue{
			Offer:    "Go on, {{ .Player }}.",
			Reminder: "Not yet.",
			Complete: "Thanks. {{ .Reward }} coins.",
		},
	}
	for i, target := range targets {
		spec.Objectives = append(spec.Objectives, ObjectiveSpec{
			ID:     string(rune('a' + i)),
			Target: storage.NewRef[*InteractableSpec](target),
			Count:  1,
		})
	}
	return spec
}

func TestQuestSpec_Validate(t *testing.T) {
	tests := map[string]struct {
		mutate func(*QuestSpec)
		expErr string
	}{
		"valid": {},
		"no name": {
			mutate: func(s *QuestSpec) { s.Name = "" },
			expErr: "name must be set",
		},
		"no giver": {
			mutate: func(s *QuestSpec) { s.Giver = storage.Ref[*InteractableSpec]{} },
			expErr: "InteractableSpec identifier is required",
		},
		"no objectives": {
			mutate: func(s *QuestSpec) { s.Objectives = nil },
			expErr: "at least one objective is required",
		},
		"duplicate objective": {
			mutate: func(s *QuestSpec) { s.Objectives = append(s.Objectives, s.Objectives[0]) },
			expErr: "duplicate id",
		},
		"zero count": {
			mutate: func(s *QuestSpec) { s.Objectives[0].Count = 0 },
			expErr: "count must be at least 1",
		},
		"broken template": {
			mutate: func(s *QuestSpec) { s.Dialogue.Complete = "{{ .Reward " },
			expErr: "parsing complete template",
		},
		"missing reminder": {
			mutate: func(s *QuestSpec) { s.Dialogue.Reminder = "" },
			expErr: "reminder dialogue must be set",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			spec := questSpec("npc_guide", true, "sign_welcome")
			if tt.mutate != nil {
				tt.mutate(spec)
			}
			err := spec.Validate()
			if tt.expErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			testutil.AssertErrorContains(t, err, tt.expErr)
		})
	}
}

func TestNewQuestCatalog(t *testing.T) {
	tests := map[string]struct {
		specs      map[string]*QuestSpec
		expStarter string
		expErr     string
	}{
		"defaults": {
			specs:      DefaultQuestSpecs(),
			expStarter: "talk_to_elder",
		},
		"unknown giver": {
			specs:  map[string]*QuestSpec{"q": questSpec("npc_nobody", true, "sign_welcome")},
			expErr: `"npc_nobody" not found`,
		},
		"unknown target": {
			specs:  map[string]*QuestSpec{"q": questSpec("npc_guide", true, "sign_gone")},
			expErr: `"sign_gone" not found`,
		},
		"no starter": {
			specs:  map[string]*QuestSpec{"q": questSpec("npc_guide", false, "sign_welcome")},
			expErr: "no starter quest defined",
		},
		"two starters": {
			specs: map[string]*QuestSpec{
				"q1": questSpec("npc_guide", true, "sign_welcome"),
				"q2": questSpec("npc_guide", true, "sign_welcome"),
			},
			expErr: "starter already set to q1",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			st, err := storage.NewMemoryStore(tt.specs)
			if err != nil {
				t.Fatalf("building store: %v", err)
			}

			c, err := NewQuestCatalog(st, testInteractables(t))
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "starter", c.Starter().ID, tt.expStarter)
			testutil.AssertEqual(t, "quests", len(c.All()), len(tt.specs))
		})
	}
}

func TestQuestLog(t *testing.T) {
	st, err := storage.NewMemoryStore(map[string]*QuestSpec{
		"errand": questSpec("npc_guide", true, "sign_welcome", "npc_guide"),
	})
	if err != nil {
		t.Fatalf("building store: %v", err)
	}
	c, err := NewQuestCatalog(st, testInteractables(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q, _ := c.Get("errand")

	var l QuestLog
	testutil.AssertEqual(t, "initial state", l.State(), QuestNone)
	testutil.AssertEqual(t, "no progress", len(l.Progress()), 0)
	testutil.AssertEqual(t, "mark while idle", l.MarkObjective("sign_welcome"), false)

	_, err = l.Complete()
	testutil.AssertErrorContains(t, err, "not ready to complete")

	if err := l.Accept(q); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "state", l.State().String(), "active")
	testutil.AssertErrorContains(t, l.Accept(q), "cannot accept errand while active")

	testutil.AssertEqual(t, "unrelated target", l.MarkObjective("tree_1"), false)
	testutil.AssertEqual(t, "first objective", l.MarkObjective("sign_welcome"), true)
	testutil.AssertEqual(t, "repeat objective", l.MarkObjective("sign_welcome"), false)
	testutil.AssertEqual(t, "still active", l.State(), QuestActive)
	testutil.AssertEqual(t, "progress a", l.Progress()["a"], true)
	testutil.AssertEqual(t, "progress b", l.Progress()["b"], false)

	testutil.AssertEqual(t, "second objective", l.MarkObjective("npc_guide"), true)
	testutil.AssertEqual(t, "ready", l.State(), QuestReadyToComplete)

	u := l.update()
	testutil.AssertEqual(t, "update state", u.State, "ready_to_complete")
	testutil.AssertEqual(t, "update quest", u.Quest.ID, "errand")

	done, err := l.Complete()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "completed", done.ID, "errand")
	testutil.AssertEqual(t, "cleared", l.State(), QuestNone)
	testutil.AssertEqual(t, "no quest", l.Quest() == nil, true)
}

func TestQuestDialogue(t *testing.T) {
	tw := newTestWorld(t)
	tw.connect(t, "a")
	a, _ := tw.players.Get("a")
	a.Name = "rowan"

	q, ok := tw.quests.Get("explore_area")
	if !ok {
		t.Fatal("explore_area missing from defaults")
	}

	got := tw.dialogue(t.Context(), q.complete, a, q, "fallback")
	testutil.AssertEqual(t, "complete", got, "Well walked, Rowan. Take 5 coins.")

	broken, err := parseDialogue("broken", "{{ .Missing }}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got = tw.dialogue(t.Context(), broken, a, q, "fallback")
	testutil.AssertEqual(t, "fallback", got, "fallback")
}
