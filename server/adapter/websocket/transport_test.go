package adapterwebsocket

import (
	"testing"

	"github.com/coder/websocket"

	"github.com/touka-aoi/skirmish/domain"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		reason domain.CloseReason
		want   websocket.StatusCode
	}{
		{domain.CloseHangup, websocket.StatusNormalClosure},
		{domain.CloseShutdown, websocket.StatusGoingAway},
		{domain.CloseWriteFailed, websocket.StatusInternalError},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.reason); got != tt.want {
			t.Errorf("StatusFor(%s) = %v, want %v", tt.reason, got, tt.want)
		}
	}
}
