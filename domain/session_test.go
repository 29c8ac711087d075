package domain

import (
	"testing"
	"time"
)

// TestNewSession_InitializesTimestamps は NewSession がタイムスタンプを初期化することを確認します。
func TestNewSession_InitializesTimestamps(t *testing.T) {
	s := NewSession()

	if s.ID == "" {
		t.Errorf("ID is empty")
	}
	if s.lastWrite.Load() == 0 {
		t.Errorf("lastWrite is not initialized")
	}
	if s.IsWriteIdle(time.Minute) {
		t.Errorf("fresh session should not be idle")
	}
}

func TestSession_CloseOnce(t *testing.T) {
	s := NewSession()

	if !s.Close() {
		t.Fatalf("first Close should report true")
	}
	if s.Close() {
		t.Fatalf("second Close should report false")
	}
	if !s.IsClosed() {
		t.Fatalf("session should be closed")
	}
}

func TestSession_Drop(t *testing.T) {
	s := NewSession()
	s.Drop()
	s.Drop()
	if got := s.Dropped(); got != 2 {
		t.Fatalf("Dropped = %d, want 2", got)
	}
}
