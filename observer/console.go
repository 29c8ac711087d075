package observer

import (
	"context"
	"fmt"
	"io"

	"github.com/touka-aoi/skirmish/domain"
	"github.com/touka-aoi/skirmish/internal/console"
)

// WriteMurder は決着を "Murder" の見出しと攻守2行で書く。
func WriteMurder(w io.Writer, outcome domain.CombatOutcome) error {
	_, err := fmt.Fprintf(w, "\nMurder --------\n%s\n%s\n", outcome.Attacker, outcome.Defender)
	return err
}

// ConsoleSink はコンソールロック下で決着を出力する。
type ConsoleSink struct {
	console *console.Console
}

func NewConsoleSink(c *console.Console) *ConsoleSink {
	return &ConsoleSink{console: c}
}

func (s *ConsoleSink) OnFight(ctx context.Context, outcome domain.CombatOutcome) error {
	_ = ctx
	return s.console.Do(func(w io.Writer) error {
		return WriteMurder(w, outcome)
	})
}

var _ Sink = (*ConsoleSink)(nil)
