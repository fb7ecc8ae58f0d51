package game

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/pixil98/hamlet/internal/protocol"
	"github.com/pixil98/hamlet/internal/tilemap"
)

// Join applies the name and character type chosen on the start screen.
func (w *World) Join(ctx context.Context, id, name, characterType string) error {
	p, err := w.player(id)
	if err != nil {
		return err
	}

	if name != "" {
		if n, ok := NormalizeName(name); ok {
			p.Name = n
		} else {
			p.Name = DefaultName
		}
	}
	if ct := strings.TrimSpace(characterType); ct != "" && utf8.RuneCountInString(ct) <= MaxCharacterTypeLen {
		p.CharacterType = ct
	}

	slog.InfoContext(ctx, "player joined", "player", id, "name", p.Name, "character", p.CharacterType)
	w.publish(ctx, w.players, nil, protocol.PlayerUpdated{Player: p.View()})
	return nil
}

// Move commits a proposed position when it lands on a walkable cell.
// Otherwise the mover alone is sent its unchanged server state.
func (w *World) Move(ctx context.Context, id string, x, y float64, moving bool) error {
	p, err := w.player(id)
	if err != nil {
		return err
	}

	reason := ReasonNotWalkable
	cx, cy, ok := w.grid.CellAt(x, y)
	if !ok {
		reason = ReasonOutOfBounds
	} else if c, _ := w.grid.Get(cx, cy); tilemap.Walkable(c) {
		p.Direction = Heading(x-p.Pos.X, y-p.Pos.Y, p.Direction)
		p.Pos = Position{X: x, Y: y}
		p.IsMoving = moving
		w.publish(ctx, w.players, []string{id}, protocol.PlayerMoved{Player: p.View()})
		return nil
	}

	w.publish(ctx, SinglePlayer{Player: p}, nil, protocol.PlayerMoved{Player: p.View()})
	return reject(reason)
}

func cleanChat(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	if utf8.RuneCountInString(text) > MaxChatLength {
		text = string([]rune(text)[:MaxChatLength])
	}
	return text, true
}

// Chat relays a message to everyone, the sender included.
func (w *World) Chat(ctx context.Context, id, text string) error {
	p, err := w.player(id)
	if err != nil {
		return err
	}

	text, ok := cleanChat(text)
	if !ok {
		return nil
	}

	w.publish(ctx, w.players, nil, protocol.Chat{
		ID:        w.newID(),
		PlayerID:  id,
		Name:      p.Name,
		Text:      text,
		Timestamp: w.clock.Now().UnixMilli(),
	})
	return nil
}

// UpdateColor changes a player's tint. Malformed colors are ignored.
func (w *World) UpdateColor(ctx context.Context, id, color string) error {
	p, err := w.player(id)
	if err != nil {
		return err
	}
	if !ValidColor(color) {
		slog.DebugContext(ctx, "ignoring invalid color", "player", id, "color", color)
		return nil
	}

	p.Color = color
	w.publish(ctx, w.players, nil, protocol.PlayerUpdated{Player: p.View()})
	return nil
}

// Emote shows an emote over the player for EmoteDuration.
func (w *World) Emote(ctx context.Context, id, emote string) error {
	p, err := w.player(id)
	if err != nil {
		return err
	}
	emote = strings.TrimSpace(emote)
	if emote == "" || utf8.RuneCountInString(emote) > MaxEmoteLength {
		return nil
	}

	p.ActiveEmote = emote
	p.EmoteEndTime = w.clock.Now().Add(EmoteDuration)
	w.publish(ctx, w.players, nil, protocol.Emote{
		PlayerID:     id,
		EmoteID:      emote,
		EmoteEndTime: p.EmoteEndTime.UnixMilli(),
	})
	return nil
}

// Interact uses the nearest sign or NPC and advances the quest log.
func (w *World) Interact(ctx context.Context, id string) error {
	p, err := w.player(id)
	if err != nil {
		return err
	}

	it, ok := w.interactables.FindNearest(p.Pos, InteractRadius)
	if !ok {
		return nil
	}

	text := it.Response()
	var update *protocol.QuestUpdate

	ql := &p.Quests
	switch ql.State() {
	case QuestNone:
		if q := w.quests.Starter(); q != nil && q.Giver() == it.ID {
			if err := ql.Accept(q); err != nil {
				return err
			}
			text = w.dialogue(ctx, q.offer, p, q, text)
			update = ql.update()
			slog.InfoContext(ctx, "quest accepted", "player", id, "quest", q.ID)
		}
	case QuestActive:
		if q := ql.Quest(); q.Giver() == it.ID {
			text = w.dialogue(ctx, q.reminder, p, q, text)
		}
	case QuestReadyToComplete:
		if q := ql.Quest(); q.Giver() == it.ID {
			if _, err := ql.Complete(); err != nil {
				return err
			}
			p.Coins += q.Reward().Coins
			text = w.dialogue(ctx, q.complete, p, q, text)
			coins := p.Coins
			update = ql.update()
			update.Completed = q.ID
			update.Coins = &coins
			slog.InfoContext(ctx, "quest completed", "player", id, "quest", q.ID, "coins", p.Coins)
		}
	}

	if ql.MarkObjective(it.ID) {
		update = ql.update()
	}

	w.publish(ctx, SinglePlayer{Player: p}, nil, protocol.InteractionResult{
		ID:          it.ID,
		Type:        string(it.Type()),
		Name:        it.Name(),
		Text:        text,
		QuestUpdate: update,
	})
	return nil
}

// MineResource hits a resource node. An empty node id targets the nearest
// node in reach.
func (w *World) MineResource(ctx context.Context, id, nodeID string) error {
	p, err := w.player(id)
	if err != nil {
		return err
	}
	self := SinglePlayer{Player: p}

	if nodeID == "" {
		n, ok := w.nodes.FindNearest(p.Pos, NodeMiningRadius)
		if !ok {
			verr := reject(ReasonOutOfRange)
			w.publish(ctx, self, nil, miningFailure(verr))
			return verr
		}
		nodeID = n.ID
	}

	out, err := w.nodes.Hit(nodeID, p.Pos)
	var verr *ValidationError
	if errors.As(err, &verr) {
		w.publish(ctx, self, nil, miningFailure(verr))
		return verr
	}
	if err != nil {
		return err
	}

	if !out.Depleted {
		remaining := out.HealthRemaining
		w.publish(ctx, self, nil, protocol.MiningResult{
			Success:         true,
			HealthRemaining: &remaining,
		})
		w.publish(ctx, w.players, nil, protocol.ResourceHit{ID: nodeID, Health: remaining})
		return nil
	}

	p.Inventory.Add(out.Item, out.Amount)
	slog.DebugContext(ctx, "resource node depleted", "node", nodeID, "player", id)

	w.publish(ctx, self, nil, protocol.MiningResult{
		Success:   true,
		Depleted:  true,
		Item:      out.Item,
		Amount:    out.Amount,
		Inventory: p.Inventory.Entries(),
	})
	w.publish(ctx, w.players, nil, protocol.ResourceDepleted{ID: nodeID})
	return nil
}

// MineTile harvests a map tile, turning it to dirt.
func (w *World) MineTile(ctx context.Context, id string, x, y int) error {
	p, err := w.player(id)
	if err != nil {
		return err
	}
	self := SinglePlayer{Player: p}

	tile, verr := w.checkMineTile(p, x, y)
	if verr != nil {
		w.publish(ctx, self, nil, miningFailure(verr))
		return verr
	}

	if _, err := w.grid.Set(x, y, tilemap.Dirt); err != nil {
		return err
	}
	drop, _ := tilemap.Yield(tile)
	p.Inventory.Add(drop.Item, drop.Amount)

	w.publish(ctx, self, nil, protocol.MiningResult{
		Success:   true,
		Depleted:  true,
		Item:      drop.Item,
		Amount:    drop.Amount,
		Inventory: p.Inventory.Entries(),
	})
	w.publish(ctx, w.players, nil, protocol.TileChanged{X: x, Y: y, TileType: tilemap.Dirt})
	return nil
}

func (w *World) checkMineTile(p *Player, x, y int) (tilemap.Code, *ValidationError) {
	tile, err := w.grid.Get(x, y)
	if err != nil {
		return 0, reject(ReasonOutOfBounds)
	}
	cx, cy := tilemap.CellCenter(x, y)
	if p.Pos.Dist(Position{X: cx, Y: cy}) > TileMiningRadius {
		return 0, reject(ReasonTooFar)
	}
	if !tilemap.Minable(tile) {
		return 0, reject(ReasonNotMinable)
	}
	return tile, nil
}

// PlaceBlock builds a structure on a cell, paying its full cost.
func (w *World) PlaceBlock(ctx context.Context, id string, x, y int, itemID string) error {
	p, err := w.player(id)
	if err != nil {
		return err
	}
	self := SinglePlayer{Player: p}

	item, verr := w.checkPlaceBlock(p, x, y, itemID)
	if verr != nil {
		w.publish(ctx, self, nil, protocol.BlockPlaceResult{
			Reason:  string(verr.Reason),
			Message: verr.Message(),
		})
		return verr
	}

	if !p.Inventory.Deduct(item.Cost) {
		return reject(ReasonInsufficientResources)
	}
	if _, err := w.grid.Set(x, y, item.Tile); err != nil {
		return err
	}

	slog.DebugContext(ctx, "block placed", "player", id, "item", itemID, "x", x, "y", y)
	w.publish(ctx, w.players, nil, protocol.BlockPlaced{X: x, Y: y, TileType: item.Tile})
	w.publish(ctx, self, nil, protocol.BlockPlaceResult{
		Success:   true,
		ItemName:  item.Name,
		Inventory: p.Inventory.Entries(),
	})
	return nil
}

func (w *World) checkPlaceBlock(p *Player, x, y int, itemID string) (BuildItem, *ValidationError) {
	item, ok := LookupBuildItem(itemID)
	if !ok {
		return BuildItem{}, reject(ReasonInvalidItem)
	}
	tile, err := w.grid.Get(x, y)
	if err != nil {
		return BuildItem{}, reject(ReasonOutOfBounds)
	}
	if !tilemap.Buildable(tile) {
		return BuildItem{}, reject(ReasonNotBuildable)
	}
	if !p.Inventory.Covers(item.Cost) {
		return BuildItem{}, reject(ReasonInsufficientResources)
	}
	return item, nil
}

func miningFailure(verr *ValidationError) protocol.MiningResult {
	return protocol.MiningResult{
		Reason:  string(verr.Reason),
		Message: verr.Message(),
	}
}
