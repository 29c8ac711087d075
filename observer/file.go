package observer

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/touka-aoi/skirmish/domain"
)

// FileSink はプロセスの生存期間中ファイルを開いたまま決着を追記する。
type FileSink struct {
	mu sync.Mutex
	f  *os.File
	w  *bufio.Writer
}

func OpenFileSink(path string) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("observer: open %s: %w", path, err)
	}
	return &FileSink{f: f, w: bufio.NewWriter(f)}, nil
}

func (s *FileSink) OnFight(ctx context.Context, outcome domain.CombatOutcome) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return os.ErrClosed
	}
	if err := WriteMurder(s.w, outcome); err != nil {
		return err
	}
	return s.w.Flush()
}

func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	_ = s.w.Flush()
	err := s.f.Close()
	s.f = nil
	return err
}

var _ Sink = (*FileSink)(nil)
