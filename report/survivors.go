package report

import (
	"fmt"
	"io"

	"github.com/touka-aoi/skirmish/domain"
)

// WriteSurvivors は終了時の生存者一覧を書く。
func WriteSurvivors(w io.Writer, survivors []domain.Agent) error {
	if _, err := fmt.Fprintf(w, "Simulation finished. Survivors: %d\n", len(survivors)); err != nil {
		return err
	}
	for _, a := range survivors {
		if _, err := fmt.Fprintf(w, "%s: %s (%d, %d)\n", a.Kind, a.Name, a.Position.X, a.Position.Y); err != nil {
			return err
		}
	}
	return nil
}
