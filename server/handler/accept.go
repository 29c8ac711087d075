package handler

import (
	"log/slog"
	"net/http"

	"github.com/coder/websocket"

	"github.com/touka-aoi/skirmish/domain"
	adapterwebsocket "github.com/touka-aoi/skirmish/server/adapter/websocket"
	"github.com/touka-aoi/skirmish/server/stream"
)

type AcceptHandler struct {
	broadcaster *stream.Broadcaster
}

func NewAcceptHandler(b *stream.Broadcaster) *AcceptHandler {
	return &AcceptHandler{broadcaster: b}
}

func (h *AcceptHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // 開発用: Origin チェックをスキップ
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to accept", "err", err)
		return
	}

	session := domain.NewSession()
	viewer := stream.NewViewer(session, adapterwebsocket.NewTransportFrom(conn), 64)
	slog.DebugContext(ctx, "accepted new viewer", "session_id", session.ID)
	if err := h.broadcaster.Attach(ctx, viewer); err != nil {
		slog.WarnContext(ctx, "viewer stream ended with error", "session_id", session.ID, "err", err)
	}
}
