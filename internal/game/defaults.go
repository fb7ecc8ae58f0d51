package game

import (
	"fmt"

	"github.com/pixil98/hamlet/internal/storage"
)

// Catalog is the static content a world is built from.
type Catalog struct {
	Nodes         storage.Storer[*NodeSpec]
	Interactables storage.Storer[*InteractableSpec]
	Quests        storage.Storer[*QuestSpec]
}

// DefaultCatalog returns the built-in village content.
func DefaultCatalog() (*Catalog, error) {
	nodes, err := storage.NewMemoryStore(DefaultNodeSpecs())
	if err != nil {
		return nil, fmt.Errorf("default nodes: %w", err)
	}
	interactables, err := storage.NewMemoryStore(DefaultInteractableSpecs())
	if err != nil {
		return nil, fmt.Errorf("default interactables: %w", err)
	}
	quests, err := storage.NewMemoryStore(DefaultQuestSpecs())
	if err != nil {
		return nil, fmt.Errorf("default quests: %w", err)
	}
	return &Catalog{Nodes: nodes, Interactables: interactables, Quests: quests}, nil
}

const (
	rockText = "A rocky outcrop. (Press E to mine)"
	ironText = "A vein of iron ore glints in the rock. (Press E to mine)"
	treeText = "A sturdy tree. (Press E to chop)"
)

func DefaultNodeSpecs() map[string]*NodeSpec {
	return map[string]*NodeSpec{
		"rock_1": {X: 600, Y: 400, ResourceType: "rock", Name: "Stone Deposit", Text: rockText, MaxHealth: 3, Yield: Yield{Item: "stone", Amount: 5}, RespawnTime: "30s"},
		"rock_2": {X: 350, Y: 550, ResourceType: "rock", Name: "Stone Deposit", Text: rockText, MaxHealth: 3, Yield: Yield{Item: "stone", Amount: 5}, RespawnTime: "30s"},
		"rock_3": {X: 700, Y: 600, ResourceType: "rock", Name: "Iron Vein", Text: ironText, MaxHealth: 5, Yield: Yield{Item: "iron", Amount: 3}, RespawnTime: "60s"},
		"tree_1": {X: 250, Y: 380, ResourceType: "tree", Name: "Oak Tree", Text: treeText, MaxHealth: 4, Yield: Yield{Item: "wood", Amount: 4}, RespawnTime: "45s"},
		"tree_2": {X: 650, Y: 300, ResourceType: "tree", Name: "Pine Tree", Text: treeText, MaxHealth: 3, Yield: Yield{Item: "wood", Amount: 3}, RespawnTime: "40s"},
		"tree_3": {X: 400, Y: 650, ResourceType: "tree", Name: "Oak Tree", Text: treeText, MaxHealth: 4, Yield: Yield{Item: "wood", Amount: 4}, RespawnTime: "45s"},
	}
}

func DefaultInteractableSpecs() map[string]*InteractableSpec {
	return map[string]*InteractableSpec{
		"sign_welcome": {
			X:       450,
			Y:       400,
			Type:    InteractableSign,
			Name:    "Village Sign",
			Text:    "Welcome to the Village!\n(Press E to Read)",
			Details: "This is the starting area. Explore safely.",
		},
		"npc_guide": {
			X:    520,
			Y:    450,
			Type: InteractableNPC,
			Name: "Elder",
			Text: "Ah, a new adventurer. Speak to me for guidance.",
		},
	}
}

func DefaultQuestSpecs() map[string]*QuestSpec {
	giver := func() storage.Ref[*InteractableSpec] {
		return storage.NewRef[*InteractableSpec]("npc_guide")
	}
	sign := func() storage.Ref[*InteractableSpec] {
		return storage.NewRef[*InteractableSpec]("sign_welcome")
	}

	return map[string]*QuestSpec{
		"talk_to_elder": {
			Name:        "Talk to the Elder",
			Description: "Speak with the Elder in the village.",
			Giver:       giver(),
			Starter:     true,
			Objectives: []ObjectiveSpec{
				{ID: "obj_explore", Description: "Read the village sign", Target: sign(), Count: 1},
			},
			Reward: Reward{Coins: 10},
			Dialogue: Dialogue{
				Offer:    "Welcome, adventurer! I have a task for you. Go read the village sign to learn about our home, then return to me.",
				Reminder: "Have you visited the village sign yet? Go read it and come back.",
				Complete: "Excellent! You have explored the village. Here are {{ .Reward }} coins as your reward. (Quest Complete!)",
			},
		},
		"explore_area": {
			Name:        "Explore the Village",
			Description: "Walk around and explore the village surroundings.",
			Giver:       giver(),
			Objectives: []ObjectiveSpec{
				{ID: "obj_visit_sign", Description: "Visit the sign", Target: sign(), Count: 1},
			},
			Reward: Reward{Coins: 5},
			Dialogue: Dialogue{
				Offer:    "The village has more to see, {{ .Player }}. Visit the sign by the road.",
				Reminder: "Still exploring? The sign is just up the road.",
				Complete: "Well walked, {{ .Player | title }}. Take {{ .Reward }} coins.",
			},
		},
	}
}

