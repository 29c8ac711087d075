package stream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/touka-aoi/skirmish/domain"
)

var (
	// ErrBackpressure は書き込みチャネルが満杯の場合に返されるエラーです。
	ErrBackpressure = errors.New("stream: write channel is full")
	// ErrViewerClosed は閉じた視聴者への送信で返されるエラーです。
	ErrViewerClosed = errors.New("stream: viewer closed")
)

// Viewer は1本の視聴者接続。書き込みは writeLoop だけが行う。
type Viewer struct {
	session   *domain.Session
	transport domain.Transport
	writeCh   chan []byte
}

func NewViewer(session *domain.Session, transport domain.Transport, buffer int) *Viewer {
	if buffer <= 0 {
		buffer = 64
	}
	return &Viewer{
		session:   session,
		transport: transport,
		writeCh:   make(chan []byte, buffer),
	}
}

func (v *Viewer) ID() string {
	return v.session.ID
}

// Send はブロックせずにフレームを積む。満杯なら捨てて数える。
func (v *Viewer) Send(data []byte) error {
	if v.session.IsClosed() {
		return ErrViewerClosed
	}
	select {
	case v.writeCh <- data:
		return nil
	default:
		v.session.Drop()
		return ErrBackpressure
	}
}

// errHangup は相手側の切断を表す。Run の呼び出し元には返さない。
var errHangup = errors.New("stream: viewer hung up")

// Run は相手が切断するか ctx が終わるまで書き込みを続ける。
func (v *Viewer) Run(ctx context.Context) error {
	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return v.readLoop(gctx)
	})
	eg.Go(func() error {
		return v.writeLoop(gctx)
	})
	err := eg.Wait()

	reason := domain.CloseHangup
	switch {
	case ctx.Err() != nil:
		reason = domain.CloseShutdown
	case errors.Is(err, errHangup):
	case err != nil:
		reason = domain.CloseWriteFailed
	}
	v.close(ctx, reason)

	if errors.Is(err, errHangup) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// readLoop は切断の検知だけを行う。
func (v *Viewer) readLoop(ctx context.Context) error {
	err := v.transport.AwaitHangup(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	slog.DebugContext(ctx, "stream: viewer disconnected", "viewer", v.ID(), "err", err)
	return errHangup
}

func (v *Viewer) writeLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case data := <-v.writeCh:
			if err := v.transport.Send(ctx, data); err != nil {
				return fmt.Errorf("stream: send to %s: %w", v.ID(), err)
			}
			v.session.TouchWrite()
		}
	}
}

func (v *Viewer) close(ctx context.Context, reason domain.CloseReason) {
	if !v.session.Close() {
		return
	}
	if err := v.transport.Close(reason); err != nil {
		slog.DebugContext(ctx, "stream: close failed", "viewer", v.ID(), "reason", reason, "err", err)
	}
	if n := v.session.Dropped(); n > 0 {
		slog.InfoContext(ctx, "stream: viewer dropped frames", "viewer", v.ID(), "dropped", n)
	}
}
