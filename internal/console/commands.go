package console

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ahmetb/go-cursor"
	"github.com/mgutz/ansi"
	"github.com/pixil98/hamlet/internal/display"
	"github.com/pixil98/hamlet/internal/game"
	"github.com/pixil98/hamlet/internal/tilemap"
)

const (
	defaultMapWidth  = 40
	defaultMapHeight = 20
	maxMapSpan       = 80
)

var glyphs = map[tilemap.Code]byte{
	tilemap.Grass:     '.',
	tilemap.Water:     '~',
	tilemap.Tree:      'T',
	tilemap.Dirt:      ',',
	tilemap.Flower:    '*',
	tilemap.Bush:      '"',
	tilemap.Rock:      '^',
	tilemap.StoneWall: '#',
	tilemap.Fence:     '+',
	tilemap.WoodFloor: '=',
	tilemap.HouseWall: 'H',
	tilemap.Bonfire:   '&',
}

var (
	resetColor  = ansi.ColorCode("reset")
	playerColor = ansi.ColorCode("yellow+b")
	tileColors  = map[tilemap.Code]string{
		tilemap.Grass:     ansi.ColorCode("green"),
		tilemap.Water:     ansi.ColorCode("blue+b"),
		tilemap.Tree:      ansi.ColorCode("green+b"),
		tilemap.Dirt:      ansi.ColorCode("yellow"),
		tilemap.Flower:    ansi.ColorCode("magenta+h"),
		tilemap.Bush:      ansi.ColorCode("green+h"),
		tilemap.Rock:      ansi.ColorCode("white"),
		tilemap.StoneWall: ansi.ColorCode("white+b"),
		tilemap.Fence:     ansi.ColorCode("yellow+h"),
		tilemap.WoodFloor: ansi.ColorCode("yellow"),
		tilemap.HouseWall: ansi.ColorCode("red"),
		tilemap.Bonfire:   ansi.ColorCode("red+b"),
	}
)

func (c *Console) who(ctx context.Context, w io.Writer, _ []string) error {
	var lines []string
	err := c.read(ctx, func() {
		c.world.Players().ForEachPlayer(func(id string, p *game.Player) {
			lines = append(lines, fmt.Sprintf("%-13s %-15s (%4.0f,%4.0f) %3d coins  quest: %s",
				display.Truncate(id, 13), p.Name, p.Pos.X, p.Pos.Y, p.Coins, p.Quests.State()))
		})
	})
	if err != nil {
		return err
	}

	if len(lines) == 0 {
		_, err = fmt.Fprintln(w, "Nobody is online.")
		return err
	}
	lines = append(lines, fmt.Sprintf("%d online.", len(lines)))
	_, err = fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

func (c *Console) nodes(ctx context.Context, w io.Writer, _ []string) error {
	var sb strings.Builder
	err := c.read(ctx, func() {
		for _, n := range c.world.Nodes().All() {
			state := "ready"
			if n.Depleted() {
				state = "depleted"
			}
			fmt.Fprintf(&sb, "%-8s %-14s %d/%d %-8s yields %d %s\n",
				n.ID, n.Name(), n.Health, n.MaxHealth(), state, n.Yield().Amount, n.Yield().Item)
		}
	})
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, sb.String())
	return err
}

func (c *Console) quests(ctx context.Context, w io.Writer, _ []string) error {
	var sb strings.Builder
	err := c.read(ctx, func() {
		starter := c.world.Quests().Starter()
		for _, q := range c.world.Quests().All() {
			mark := ""
			if q == starter {
				mark = " (starter)"
			}
			fmt.Fprintf(&sb, "%s%s: %s, from %s, %d coins\n", q.ID, mark, q.Name(), q.Giver(), q.Reward().Coins)
			var objectives strings.Builder
			for _, o := range q.Objectives() {
				fmt.Fprintf(&objectives, "- %s: %s x%d\n", o.ID, o.Target.ID(), o.Count)
			}
			sb.WriteString(display.Indent(objectives.String(), 2))
		}
	})
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, sb.String())
	return err
}

func (c *Console) drawMap(ctx context.Context, w io.Writer, args []string) error {
	if len(args) < 2 || len(args) > 4 {
		return NewUserError("Usage: map <x> <y> [w] [h]")
	}
	nums := []int{0, 0, defaultMapWidth, defaultMapHeight}
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return NewUserError(fmt.Sprintf("%q is not a number.", a))
		}
		nums[i] = n
	}
	cx, cy, width, height := nums[0], nums[1], nums[2], nums[3]
	if width < 1 || height < 1 || width > maxMapSpan || height > maxMapSpan {
		return NewUserError(fmt.Sprintf("Width and height must be between 1 and %d.", maxMapSpan))
	}

	var out string
	err := c.read(ctx, func() {
		out = c.render(cx-width/2, cy-height/2, width, height)
	})
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// render draws the window with its top left corner at (x0, y0). Players
// are drawn as @ and cells off the map are blank.
func (c *Console) render(x0, y0, width, height int) string {
	grid := c.world.Grid()
	occupied := map[[2]int]bool{}
	c.world.Players().ForEachPlayer(func(_ string, p *game.Player) {
		if x, y, ok := grid.CellAt(p.Pos.X, p.Pos.Y); ok {
			occupied[[2]int{x, y}] = true
		}
	})

	var sb strings.Builder
	for y := y0; y < y0+height; y++ {
		for x := x0; x < x0+width; x++ {
			code, err := grid.Get(x, y)
			switch {
			case err != nil:
				sb.WriteByte(' ')
			case occupied[[2]int{x, y}]:
				c.glyph(&sb, '@', playerColor)
			default:
				c.glyph(&sb, glyphs[code], tileColors[code])
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (c *Console) glyph(sb *strings.Builder, g byte, color string) {
	if !c.color || color == "" {
		sb.WriteByte(g)
		return
	}
	sb.WriteString(color)
	sb.WriteByte(g)
	sb.WriteString(resetColor)
}

func (c *Console) clear(_ context.Context, w io.Writer, _ []string) error {
	_, err := io.WriteString(w, cursor.ClearEntireScreen()+cursor.MoveUpperLeft(1))
	return err
}

func (c *Console) say(ctx context.Context, w io.Writer, args []string) error {
	text := strings.Join(args, " ")
	if strings.TrimSpace(text) == "" {
		return NewUserError("Say what?")
	}

	var annErr error
	err := c.read(ctx, func() {
		annErr = c.world.Announce(ctx, text)
	})
	if err != nil {
		return err
	}
	if annErr != nil {
		return NewUserError(annErr.Error())
	}
	_, err = fmt.Fprintln(w, "Announced.")
	return err
}
