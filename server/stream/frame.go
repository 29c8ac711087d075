package stream

import (
	"encoding/json"
	"time"

	"github.com/touka-aoi/skirmish/domain"
)

const (
	FrameOutcome  = "outcome"
	FrameSnapshot = "snapshot"
)

// Frame は視聴者に送る JSON テキストフレーム。
type Frame struct {
	Type string    `json:"type"`
	At   time.Time `json:"at"`

	// outcome
	Attacker *FrameAgent `json:"attacker,omitempty"`
	Defender *FrameAgent `json:"defender,omitempty"`

	// snapshot
	Tick   uint64         `json:"tick,omitempty"`
	Width  int            `json:"width,omitempty"`
	Height int            `json:"height,omitempty"`
	Rows   []string       `json:"rows,omitempty"`
	Census map[string]int `json:"census,omitempty"`
}

type FrameAgent struct {
	ID   uint32 `json:"id"`
	Kind string `json:"kind"`
	Name string `json:"name"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

func frameAgent(a domain.Agent) *FrameAgent {
	return &FrameAgent{ID: uint32(a.ID), Kind: a.Kind.String(), Name: a.Name, X: a.Position.X, Y: a.Position.Y}
}

func encodeOutcome(o domain.CombatOutcome) ([]byte, error) {
	return json.Marshal(Frame{
		Type:     FrameOutcome,
		At:       o.At.UTC(),
		Attacker: frameAgent(o.Attacker),
		Defender: frameAgent(o.Defender),
	})
}

func encodeSnapshot(snap domain.Snapshot, rows []string) ([]byte, error) {
	census := make(map[string]int, len(domain.Kinds))
	for k, n := range snap.Census() {
		census[k.String()] = n
	}
	return json.Marshal(Frame{
		Type:   FrameSnapshot,
		At:     snap.TakenAt.UTC(),
		Tick:   snap.Tick,
		Width:  snap.Width,
		Height: snap.Height,
		Rows:   rows,
		Census: census,
	})
}

// DecodeFrame は受信側のためのデコーダ。
func DecodeFrame(data []byte) (Frame, error) {
	var f Frame
	err := json.Unmarshal(data, &f)
	return f, err
}
