// Package console はシミュレーション出力(グリッド、決着、生存者)の書き込み先を直列化する。
package console

import (
	"fmt"
	"io"
	"sync"
)

// Console は1つの出力先と、その出力を行単位で混ざらないようにするロックを持つ。
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

func New(w io.Writer) *Console {
	return &Console{w: w}
}

// Do はロックを保持したまま fn に書き込み先を渡す。
func (c *Console) Do(fn func(w io.Writer) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fn(c.w)
}

func (c *Console) Printf(format string, args ...any) error {
	return c.Do(func(w io.Writer) error {
		_, err := fmt.Fprintf(w, format, args...)
		return err
	})
}
