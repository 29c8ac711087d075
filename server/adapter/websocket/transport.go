package adapterwebsocket

import (
	"context"
	"time"

	"github.com/coder/websocket"

	"github.com/touka-aoi/skirmish/domain"
)

// DefaultWriteTimeout は1フレームの送信にかけてよい時間。
const DefaultWriteTimeout = 5 * time.Second

// streamTransport はフレームを JSON テキストメッセージとして送る。
type streamTransport struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
}

func NewTransportFrom(conn *websocket.Conn) domain.Transport {
	return &streamTransport{conn: conn, writeTimeout: DefaultWriteTimeout}
}

func (t *streamTransport) Send(ctx context.Context, frame []byte) error {
	ctx, cancel := context.WithTimeout(ctx, t.writeTimeout)
	defer cancel()
	return t.conn.Write(ctx, websocket.MessageText, frame)
}

func (t *streamTransport) AwaitHangup(ctx context.Context) error {
	for {
		if _, _, err := t.conn.Read(ctx); err != nil {
			return err
		}
	}
}

func (t *streamTransport) Close(reason domain.CloseReason) error {
	return t.conn.Close(StatusFor(reason), reason.String())
}

// StatusFor は閉じる理由を WebSocket のクローズコードに対応させる。
func StatusFor(reason domain.CloseReason) websocket.StatusCode {
	switch reason {
	case domain.CloseHangup:
		return websocket.StatusNormalClosure
	case domain.CloseShutdown:
		return websocket.StatusGoingAway
	default:
		return websocket.StatusInternalError
	}
}
