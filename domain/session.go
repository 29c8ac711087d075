package domain

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Session はストリームを購読する1視聴者の論理的な状態を表す構造体です。
type Session struct {
	ID string

	// activity
	lastWrite atomic.Int64
	dropped   atomic.Uint64

	// lifecycle
	closed atomic.Bool
}

func NewSession() *Session {
	s := &Session{
		ID: uuid.NewString(),
	}
	s.lastWrite.Store(time.Now().UnixNano())
	return s
}

func (s *Session) TouchWrite() {
	s.lastWrite.Store(time.Now().UnixNano())
}

// Drop は送信キューが満杯で捨てたフレーム数を数える。
func (s *Session) Drop() uint64 {
	return s.dropped.Add(1)
}

func (s *Session) Dropped() uint64 {
	return s.dropped.Load()
}

func (s *Session) Close() bool {
	return s.closed.CompareAndSwap(false, true)
}

func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

func (s *Session) IsWriteIdle(timeout time.Duration) bool {
	if timeout <= 0 {
		return false
	}
	return time.Since(time.Unix(0, s.lastWrite.Load())) > timeout
}
