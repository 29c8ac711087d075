package domain

import (
	"math/rand/v2"
	"sync"
)

// Dice は 1〜6 の一様な整数を返す。
type Dice interface {
	Roll() int
}

// D6 は複数の Resolver ワーカーから共有できる六面ダイス。
type D6 struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewD6(rng *rand.Rand) *D6 {
	return &D6{rng: rng}
}

func (d *D6) Roll() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rng.IntN(6) + 1
}

var _ Dice = (*D6)(nil)
