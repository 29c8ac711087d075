package report

import (
	"context"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/touka-aoi/skirmish/domain"
)

var kindStyles = map[domain.Kind]tcell.Style{
	domain.KindPredator: tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true),
	domain.KindTarget:   tcell.StyleDefault.Foreground(tcell.ColorYellow),
	domain.KindGuardian: tcell.StyleDefault.Foreground(tcell.ColorBlue),
}

var (
	fillerStyle = tcell.StyleDefault.Foreground(tcell.ColorGray)
	statusStyle = tcell.StyleDefault.Reverse(true)
)

// ScreenRenderer は tcell の画面にグリッドと直近の決着を描く。
// 決着も受け取るので observer.Sink としても登録できる。
type ScreenRenderer struct {
	mu         sync.Mutex
	screen     tcell.Screen
	lastMurder string
	kills      int
}

// NewScreenRenderer は初期化済みの screen を受け取る。Fini は呼び出し側の責任。
func NewScreenRenderer(screen tcell.Screen) *ScreenRenderer {
	return &ScreenRenderer{screen: screen}
}

func (r *ScreenRenderer) Render(ctx context.Context, snap domain.Snapshot) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	r.screen.Clear()
	for y, row := range RenderGrid(snap) {
		for x := 0; x < len(row); x++ {
			ch := row[x]
			style := fillerStyle
			if ch != Filler {
				style = kindStyles[kindForSymbol(ch)]
			}
			r.screen.SetContent(x, y, rune(ch), nil, style)
		}
	}

	census := snap.Census()
	status := fmt.Sprintf(" tick %d  P:%d T:%d G:%d  kills:%d ",
		snap.Tick,
		census[domain.KindPredator], census[domain.KindTarget], census[domain.KindGuardian],
		r.kills,
	)
	drawText(r.screen, 0, snap.Height, status, statusStyle)
	if r.lastMurder != "" {
		drawText(r.screen, 0, snap.Height+1, r.lastMurder, tcell.StyleDefault)
	}
	r.screen.Show()
	return nil
}

func (r *ScreenRenderer) OnFight(ctx context.Context, outcome domain.CombatOutcome) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kills++
	r.lastMurder = fmt.Sprintf("%s killed %s at (%d, %d)",
		outcome.Attacker.Name, outcome.Defender.Name,
		outcome.Defender.Position.X, outcome.Defender.Position.Y)
	return nil
}

// WatchQuit は q か Ctrl-C の入力で cancel を呼ぶ。screen の Fini で抜ける。
func (r *ScreenRenderer) WatchQuit(cancel context.CancelFunc) {
	for {
		ev := r.screen.PollEvent()
		if ev == nil {
			return
		}
		key, ok := ev.(*tcell.EventKey)
		if !ok {
			continue
		}
		if key.Key() == tcell.KeyCtrlC || key.Key() == tcell.KeyEscape ||
			(key.Key() == tcell.KeyRune && key.Rune() == 'q') {
			cancel()
			return
		}
	}
}

func kindForSymbol(ch byte) domain.Kind {
	for _, k := range domain.Kinds {
		if k.Symbol() == ch {
			return k
		}
	}
	return domain.KindUnknown
}

func drawText(screen tcell.Screen, x, y int, text string, style tcell.Style) {
	col := x
	for _, ch := range text {
		screen.SetContent(col, y, ch, nil, style)
		col++
	}
}

var _ Renderer = (*ScreenRenderer)(nil)
