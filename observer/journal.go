package observer

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/touka-aoi/skirmish/domain"
)

// JournalEntry は決着ジャーナルの1行。
type JournalEntry struct {
	Run      string       `json:"run"`
	Seq      uint64       `json:"seq"`
	At       time.Time    `json:"at"`
	Attacker JournalAgent `json:"attacker"`
	Defender JournalAgent `json:"defender"`
}

type JournalAgent struct {
	ID   uint32 `json:"id"`
	Kind string `json:"kind"`
	Name string `json:"name"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

func journalAgent(a domain.Agent) JournalAgent {
	return JournalAgent{ID: uint32(a.ID), Kind: a.Kind.String(), Name: a.Name, X: a.Position.X, Y: a.Position.Y}
}

// JournalSink は決着を zstd 圧縮した JSONL に追記する。
// 1行ごとに Flush するのでプロセスが落ちても書けた分は残る。
type JournalSink struct {
	run  string
	path string

	mu  sync.Mutex
	seq uint64
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

// OpenJournalSink は dir/outcomes-<run>.jsonl.zst を作成する。
func OpenJournalSink(dir, run string) (*JournalSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("observer: journal dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("outcomes-%s.jsonl.zst", run))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("observer: open journal: %w", err)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &JournalSink{
		run:  run,
		path: path,
		f:    f,
		enc:  enc,
		w:    bufio.NewWriterSize(enc, 64*1024),
	}, nil
}

func (s *JournalSink) Path() string {
	return s.path
}

func (s *JournalSink) OnFight(ctx context.Context, outcome domain.CombatOutcome) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.w == nil {
		return os.ErrClosed
	}

	s.seq++
	b, err := json.Marshal(JournalEntry{
		Run:      s.run,
		Seq:      s.seq,
		At:       outcome.At.UTC(),
		Attacker: journalAgent(outcome.Attacker),
		Defender: journalAgent(outcome.Defender),
	})
	if err != nil {
		return err
	}
	if _, err := s.w.Write(b); err != nil {
		return err
	}
	if err := s.w.WriteByte('\n'); err != nil {
		return err
	}
	if err := s.w.Flush(); err != nil {
		return err
	}
	return s.enc.Flush()
}

func (s *JournalSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.w == nil {
		return nil
	}
	_ = s.w.Flush()
	err := s.enc.Close()
	if cerr := s.f.Close(); err == nil {
		err = cerr
	}
	s.w, s.enc, s.f = nil, nil, nil
	return err
}

// ReadJournal は圧縮ジャーナルを全て読み込む。
func ReadJournal(path string) ([]JournalEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var out []JournalEntry
	jd := json.NewDecoder(dec)
	for {
		var e JournalEntry
		if err := jd.Decode(&e); err != nil {
			if err == io.EOF {
				return out, nil
			}
			return out, fmt.Errorf("observer: journal %s: %w", path, err)
		}
		out = append(out, e)
	}
}

var _ Sink = (*JournalSink)(nil)
