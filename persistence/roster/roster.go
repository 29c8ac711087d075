// Package roster は名簿ファイルの読み書きを行う。
//
// 形式は先頭に件数、続いて1体ごとに種別タグ、名前、x、y を1行ずつ並べる。
package roster

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/touka-aoi/skirmish/domain"
)

// preallocLimit はファイルの件数を信用して確保する上限。
const preallocLimit = 1024

var (
	ErrMalformedRecord = errors.New("roster: malformed record")
	ErrCountMismatch   = errors.New("roster: record count mismatch")
	ErrInvalidName     = errors.New("roster: invalid name")
)

// Save は agents を並び順のまま書き出す。不正な記録があれば何も書かない。
func Save(w io.Writer, agents []domain.Agent) error {
	if err := Validate(agents); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, len(agents)); err != nil {
		return err
	}
	for _, a := range agents {
		if _, err := fmt.Fprintf(bw, "%d\n%s\n%d\n%d\n", a.Kind, a.Name, a.Position.X, a.Position.Y); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Validate は全記録の名前と種別を確認する。
func Validate(agents []domain.Agent) error {
	for i, a := range agents {
		if !validName(a.Name) {
			return fmt.Errorf("%w: record %d: %q", ErrInvalidName, i, a.Name)
		}
		if !a.Kind.Valid() {
			return fmt.Errorf("%w: record %d: kind %s", ErrMalformedRecord, i, a.Kind)
		}
	}
	return nil
}

// Load は名簿全体を読み込む。1件でも壊れていれば何も返さずに失敗する。
// ID は読み込んだ順の添字になる。
func Load(r io.Reader) ([]domain.Agent, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	next := func() (string, bool) {
		if !sc.Scan() {
			return "", false
		}
		return sc.Text(), true
	}

	tok, ok := next()
	if !ok {
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: missing count", ErrCountMismatch)
	}
	count, err := strconv.Atoi(tok)
	if err != nil || count < 0 {
		return nil, fmt.Errorf("%w: bad count %q", ErrCountMismatch, tok)
	}

	agents := make([]domain.Agent, 0, min(count, preallocLimit))
	for i := range count {
		a, err := readRecord(next)
		if err != nil {
			if serr := sc.Err(); serr != nil {
				return nil, serr
			}
			return nil, fmt.Errorf("%w: record %d: %v", ErrMalformedRecord, i, err)
		}
		a.ID = domain.AgentID(i)
		agents = append(agents, a)
	}
	if extra, ok := next(); ok {
		return nil, fmt.Errorf("%w: trailing data %q after %d records", ErrCountMismatch, extra, count)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return agents, nil
}

func readRecord(next func() (string, bool)) (domain.Agent, error) {
	var fields [4]string
	for i := range fields {
		tok, ok := next()
		if !ok {
			return domain.Agent{}, io.ErrUnexpectedEOF
		}
		fields[i] = tok
	}
	tag, err := strconv.Atoi(fields[0])
	if err != nil {
		return domain.Agent{}, fmt.Errorf("kind tag %q", fields[0])
	}
	kind, ok := domain.KindFromTag(tag)
	if !ok {
		return domain.Agent{}, fmt.Errorf("unknown kind tag %d", tag)
	}
	x, err := strconv.Atoi(fields[2])
	if err != nil {
		return domain.Agent{}, fmt.Errorf("x %q", fields[2])
	}
	y, err := strconv.Atoi(fields[3])
	if err != nil {
		return domain.Agent{}, fmt.Errorf("y %q", fields[3])
	}
	return domain.Agent{Kind: kind, Name: fields[1], Position: domain.Position{X: x, Y: y}}, nil
}

func validName(name string) bool {
	return name != "" && !strings.ContainsFunc(name, unicode.IsSpace)
}

// SaveFile は同じディレクトリの一時ファイルに書いてから rename で置き換える。
// 失敗したときは既存のファイルに触れない。
func SaveFile(path string, agents []domain.Agent) error {
	if err := Validate(agents); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if err := Save(f, agents); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func LoadFile(path string) ([]domain.Agent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	agents, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return agents, nil
}
