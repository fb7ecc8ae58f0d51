package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/pixil98/hamlet/internal/display"
	"github.com/pixil98/hamlet/internal/game"
)

const prompt = "> "

type commandFunc func(ctx context.Context, w io.Writer, args []string) error

type command struct {
	usage string
	help  string
	run   commandFunc
}

// Console is the operator shell served over telnet and ssh. Every read
// of world state runs on the loop goroutine.
type Console struct {
	loop     *game.Loop
	world    *game.World
	color    bool
	commands map[string]command
}

type ConsoleOpt func(*Console)

// WithColor renders the map with ANSI colors.
func WithColor(on bool) ConsoleOpt {
	return func(c *Console) {
		c.color = on
	}
}

func NewConsole(loop *game.Loop, world *game.World, opts ...ConsoleOpt) *Console {
	c := &Console{loop: loop, world: world}
	for _, opt := range opts {
		opt(c)
	}
	c.commands = map[string]command{
		"help":   {usage: "help", help: "List the available commands.", run: c.help},
		"who":    {usage: "who", help: "List connected players.", run: c.who},
		"nodes":  {usage: "nodes", help: "Show resource node health.", run: c.nodes},
		"quests": {usage: "quests", help: "List the quest catalog.", run: c.quests},
		"map":    {usage: "map <x> <y> [w] [h]", help: "Draw part of the tile map around a cell.", run: c.drawMap},
		"say":    {usage: "say <text>", help: "Send a chat message to every player as the server.", run: c.say},
		"clear":  {usage: "clear", help: "Clear the screen.", run: c.clear},
		"quit":   {usage: "quit", help: "Close this console session.", run: c.quit},
	}
	return c
}

// RunSession reads commands from conn until quit, EOF or ctx ends.
func (c *Console) RunSession(ctx context.Context, conn io.ReadWriter) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
		close(lines)
	}()

	_, err := fmt.Fprint(conn, display.Wrap("Village operator console. Type 'help' for commands.")+"\n"+prompt)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return <-readErr
			}

			err := c.Exec(ctx, conn, line)
			if errors.Is(err, errQuit) {
				_, err = fmt.Fprintln(conn, "Goodbye!")
				return err
			}
			var userErr *UserError
			if errors.As(err, &userErr) {
				_, err = fmt.Fprintln(conn, display.Wrap(userErr.Message))
			}
			if err != nil {
				return fmt.Errorf("console command: %w", err)
			}

			_, err = fmt.Fprint(conn, prompt)
			if err != nil {
				return err
			}
		}
	}
}

// Exec runs one command line.
func (c *Console) Exec(ctx context.Context, w io.Writer, line string) error {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}

	cmd, ok := c.commands[strings.ToLower(parts[0])]
	if !ok {
		return NewUserError(fmt.Sprintf("Unknown command: %s", parts[0]))
	}

	slog.DebugContext(ctx, "console command", "command", parts[0], "args", len(parts)-1)
	return cmd.run(ctx, w, parts[1:])
}

// read runs fn on the loop and waits for it.
func (c *Console) read(ctx context.Context, fn func()) error {
	err := c.loop.Do(ctx, func(context.Context) { fn() })
	if err != nil {
		return fmt.Errorf("reading world: %w", err)
	}
	return nil
}

func (c *Console) help(_ context.Context, w io.Writer, _ []string) error {
	names := make([]string, 0, len(c.commands))
	for name := range c.commands {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		cmd := c.commands[name]
		fmt.Fprintf(&sb, "%-22s %s\n", cmd.usage, cmd.help)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func (c *Console) quit(context.Context, io.Writer, []string) error {
	return errQuit
}
