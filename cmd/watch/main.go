package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/coder/websocket"

	"github.com/touka-aoi/skirmish/server/stream"
	"github.com/touka-aoi/skirmish/utils"
)

func main() {
	addr := flag.String("addr", utils.GetEnvDefault("SKIRMISH_WATCH_ADDR", "ws://localhost:9090/ws"), "stream endpoint")
	grids := flag.Bool("grid", false, "print snapshot grids as well as outcomes")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := watch(ctx, *addr, *grids, os.Stdout); err != nil {
		slog.ErrorContext(ctx, "watch failed", "err", err)
		os.Exit(1)
	}
}

func watch(ctx context.Context, addr string, grids bool, w io.Writer) error {
	conn, _, err := websocket.Dial(ctx, addr, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.CloseNow()
	slog.InfoContext(ctx, "connected", "addr", addr)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return nil
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		frame, err := stream.DecodeFrame(data)
		if err != nil {
			slog.WarnContext(ctx, "bad frame", "err", err)
			continue
		}
		printFrame(w, frame, grids)
	}
}

func printFrame(w io.Writer, f stream.Frame, grids bool) {
	switch f.Type {
	case stream.FrameOutcome:
		if f.Attacker == nil || f.Defender == nil {
			return
		}
		fmt.Fprintf(w, "%s %s (%s) killed %s (%s) at (%d, %d)\n",
			f.At.Format("15:04:05.000"),
			f.Attacker.Name, f.Attacker.Kind,
			f.Defender.Name, f.Defender.Kind,
			f.Defender.X, f.Defender.Y)
	case stream.FrameSnapshot:
		fmt.Fprintf(w, "tick %d census %v\n", f.Tick, f.Census)
		if grids {
			for _, row := range f.Rows {
				fmt.Fprintln(w, row)
			}
		}
	}
}
