package server

import (
	"net/http"

	"github.com/touka-aoi/skirmish/server/handler"
	"github.com/touka-aoi/skirmish/server/stream"
)

func Route(b *stream.Broadcaster) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/ws", handler.NewAcceptHandler(b))
	mux.Handle("/healthz", handler.NewHealthHandler(b.Viewers))
	return mux
}
