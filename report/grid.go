package report

import "github.com/touka-aoi/skirmish/domain"

const Filler = '.'

// RenderGrid は生存エージェントを種別記号で置いた height 行の文字列を返す。
// 同じマスに複数いる場合は World 順で後のものが残る。
func RenderGrid(snap domain.Snapshot) []string {
	if snap.Width <= 0 || snap.Height <= 0 {
		return nil
	}
	cells := make([][]byte, snap.Height)
	for y := range cells {
		row := make([]byte, snap.Width)
		for x := range row {
			row[x] = Filler
		}
		cells[y] = row
	}
	for _, rec := range snap.Records {
		if !rec.Alive || !rec.Position.Within(snap.Width, snap.Height) {
			continue
		}
		cells[rec.Position.Y][rec.Position.X] = rec.Kind.Symbol()
	}
	rows := make([]string, snap.Height)
	for y, row := range cells {
		rows[y] = string(row)
	}
	return rows
}
