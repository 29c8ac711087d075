package report

import (
	"context"
	"fmt"
	"io"

	"github.com/touka-aoi/skirmish/domain"
	"github.com/touka-aoi/skirmish/internal/console"
)

// TextRenderer はコンソールロック下で "Map snapshot:" ブロックを出力する。
type TextRenderer struct {
	console *console.Console
}

func NewTextRenderer(c *console.Console) *TextRenderer {
	return &TextRenderer{console: c}
}

func (r *TextRenderer) Render(ctx context.Context, snap domain.Snapshot) error {
	_ = ctx
	rows := RenderGrid(snap)
	return r.console.Do(func(w io.Writer) error {
		if _, err := io.WriteString(w, "Map snapshot:\n"); err != nil {
			return err
		}
		for _, row := range rows {
			if _, err := fmt.Fprintln(w, row); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "\n")
		return err
	})
}

var _ Renderer = (*TextRenderer)(nil)
