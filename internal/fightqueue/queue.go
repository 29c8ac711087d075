// Package fightqueue は Mover から Resolver へ戦闘候補を渡す無制限 FIFO。
package fightqueue

import (
	"errors"
	"sync"

	"github.com/touka-aoi/skirmish/domain"
)

var ErrClosed = errors.New("fightqueue: closed")

// Queue は mutex と sync.Cond で守られたスライスのキュー。
// Shutdown 後も残りのタスクは Pop で取り出せる。
type Queue struct {
	mu       sync.Mutex
	cond     *sync.Cond
	items    []domain.FightTask
	head     int
	shutdown bool
}

func New() *Queue {
	q := &Queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push は batch を順序を保って末尾に追加する。
func (q *Queue) Push(batch []domain.FightTask) error {
	if len(batch) == 0 {
		return nil
	}
	q.mu.Lock()
	if q.shutdown {
		q.mu.Unlock()
		return ErrClosed
	}
	q.items = append(q.items, batch...)
	q.mu.Unlock()
	if len(batch) == 1 {
		q.cond.Signal()
	} else {
		q.cond.Broadcast()
	}
	return nil
}

// Pop はタスクが来るまでブロックする。
// false を返すのは Shutdown 済みかつ空になったときだけ。
func (q *Queue) Pop() (domain.FightTask, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.lenLocked() == 0 && !q.shutdown {
		q.cond.Wait()
	}
	return q.popLocked()
}

// TryPop はブロックせずに先頭を取り出す。
func (q *Queue) TryPop() (domain.FightTask, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.popLocked()
}

// Shutdown は以後の Push を拒否し、待機中の Pop を全て起こす。
func (q *Queue) Shutdown() {
	q.mu.Lock()
	q.shutdown = true
	q.mu.Unlock()
	q.cond.Broadcast()
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lenLocked()
}

func (q *Queue) lenLocked() int {
	return len(q.items) - q.head
}

func (q *Queue) popLocked() (domain.FightTask, bool) {
	if q.lenLocked() == 0 {
		return domain.FightTask{}, false
	}
	task := q.items[q.head]
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	} else if q.head > 1024 && q.head*2 > len(q.items) {
		n := copy(q.items, q.items[q.head:])
		q.items = q.items[:n]
		q.head = 0
	}
	return task, true
}
