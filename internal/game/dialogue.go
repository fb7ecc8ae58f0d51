package game

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

var templateFuncs = sprig.TxtFuncMap()

// DialogueData is what quest dialogue templates can reference.
type DialogueData struct {
	Player string
	Quest  string
	Reward int
	Coins  int
}

func parseDialogue(name, text string) (*template.Template, error) {
	tmpl, err := template.New(name).Funcs(templateFuncs).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing %s template: %w", name, err)
	}
	return tmpl, nil
}

func renderDialogue(tmpl *template.Template, data DialogueData) (string, error) {
	var buf bytes.Buffer
	err := tmpl.Execute(&buf, data)
	if err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), nil
}

// dialogue renders a quest line for p, falling back to the interactable's
// own text when the template fails.
func (w *World) dialogue(ctx context.Context, tmpl *template.Template, p *Player, q *Quest, fallback string) string {
	text, err := renderDialogue(tmpl, DialogueData{
		Player: p.Name,
		Quest:  q.Name(),
		Reward: q.Reward().Coins,
		Coins:  p.Coins,
	})
	if err != nil {
		slog.WarnContext(ctx, "rendering quest dialogue", "quest", q.ID, "error", err)
		return fallback
	}
	return text
}
