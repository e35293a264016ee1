// Package todo keeps the owner's small, ordered study task list.
package todo

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"studyroom/internal/clock"
	"studyroom/internal/storage"
)

// Item is one task. IDs are unique and strictly increasing in insertion order.
type Item struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
	Done bool   `json:"done"`
}

var errInvalidItem = errors.New("invalid todo item")

// List 任务列表；每次成功变更都整体写回存储
// List is the task collection. Every successful mutation writes the whole list back.
type List struct {
	kv    storage.KV
	clock clock.Clock

	mu     sync.Mutex
	items  []Item
	lastID int64
}

// New loads the persisted list. Corrupted data starts an empty list and clears the key.
func New(kv storage.KV, clk clock.Clock) (*List, error) {
	if clk == nil {
		clk = clock.Real()
	}
	l := &List{kv: kv, clock: clk}

	var items []Item
	found, err := storage.LoadJSON(kv, storage.KeyTodoItems, &items)
	if err != nil {
		return nil, fmt.Errorf("load todo items: %w", err)
	}
	if !found {
		items = nil
	} else if err := validate(items); err != nil {
		storage.DiscardCorrupt(kv, storage.KeyTodoItems, err)
		items = nil
	}
	l.items = items
	for _, it := range items {
		if it.ID > l.lastID {
			l.lastID = it.ID
		}
	}
	return l, nil
}

func validate(items []Item) error {
	seen := make(map[int64]struct{}, len(items))
	for _, it := range items {
		if strings.TrimSpace(it.Text) == "" {
			return fmt.Errorf("%w: blank text for id %d", errInvalidItem, it.ID)
		}
		if _, dup := seen[it.ID]; dup {
			return fmt.Errorf("%w: duplicate id %d", errInvalidItem, it.ID)
		}
		seen[it.ID] = struct{}{}
	}
	return nil
}

// Add appends a new task. Blank text is rejected without error and ok is false.
func (l *List) Add(text string) (Item, bool, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Item{}, false, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.clock.Now().UnixMilli()
	if id <= l.lastID {
		id = l.lastID + 1
	}
	item := Item{ID: id, Text: text}
	next := append(cloneItems(l.items), item)
	if err := l.persist(next); err != nil {
		return Item{}, false, err
	}
	l.items = next
	l.lastID = id
	return item, true, nil
}

// Toggle flips Done for id. Unknown ids are a no-op.
func (l *List) Toggle(id int64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.indexOf(id)
	if idx < 0 {
		return false, nil
	}
	next := cloneItems(l.items)
	next[idx].Done = !next[idx].Done
	if err := l.persist(next); err != nil {
		return false, err
	}
	l.items = next
	return true, nil
}

// Remove deletes id. Unknown ids are a no-op.
func (l *List) Remove(id int64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.indexOf(id)
	if idx < 0 {
		return false, nil
	}
	next := make([]Item, 0, len(l.items)-1)
	next = append(next, l.items[:idx]...)
	next = append(next, l.items[idx+1:]...)
	if err := l.persist(next); err != nil {
		return false, err
	}
	l.items = next
	return true, nil
}

// Items returns a copy in insertion order.
func (l *List) Items() []Item {
	l.mu.Lock()
	defer l.mu.Unlock()
	return cloneItems(l.items)
}

// Progress returns the number of finished tasks and the total.
func (l *List) Progress() (done, total int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, it := range l.items {
		if it.Done {
			done++
		}
	}
	return done, len(l.items)
}

func (l *List) indexOf(id int64) int {
	for i, it := range l.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// persist 写入完整列表；失败时内存状态保持不变
// persist writes the full list; the in-memory list is only replaced after it succeeds.
func (l *List) persist(items []Item) error {
	if items == nil {
		items = []Item{}
	}
	if err := storage.SaveJSON(l.kv, storage.KeyTodoItems, items); err != nil {
		return fmt.Errorf("save todo items: %w", err)
	}
	return nil
}

func cloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	copy(out, items)
	return out
}
