// Package report は World のスナップショットを人間向けに描画する。
package report

import (
	"context"
	"errors"

	"github.com/touka-aoi/skirmish/domain"
)

// Renderer は定期スナップショットの出力先。
type Renderer interface {
	Render(ctx context.Context, snap domain.Snapshot) error
}

// Multi は全ての Renderer に順に描画し、エラーをまとめて返す。
type Multi []Renderer

func (m Multi) Render(ctx context.Context, snap domain.Snapshot) error {
	var errs []error
	for _, r := range m {
		if err := r.Render(ctx, snap); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
