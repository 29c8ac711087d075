package service

import (
	"fmt"
	"math/rand/v2"

	"github.com/touka-aoi/skirmish/domain"
)

// RandomRoster は種別と座標を一様に選んで n 体のエージェントを作る。
// 名前は "<Kind>_<添字>"。
func RandomRoster(rng *rand.Rand, width, height, n int) []domain.Agent {
	agents := make([]domain.Agent, n)
	for i := range agents {
		kind := domain.Kinds[rng.IntN(len(domain.Kinds))]
		agents[i] = domain.Agent{
			ID:       domain.AgentID(i),
			Kind:     kind,
			Name:     fmt.Sprintf("%s_%d", kind, i),
			Position: domain.Position{X: rng.IntN(width), Y: rng.IntN(height)},
		}
	}
	return agents
}
