package todo

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"pgregory.net/rapid"

	"studyroom/internal/clock"
	"studyroom/internal/storage"
)

func newTestList(t *testing.T, kv storage.KV) (*List, *clock.Manual) {
	t.Helper()
	clk := clock.NewManual(time.UnixMilli(1_700_000_000_000))
	l, err := New(kv, clk)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return l, clk
}

func TestList_AddToggleRemove(t *testing.T) {
	kv := storage.NewMemoryStore()
	l, _ := newTestList(t, kv)

	item, ok, err := l.Add("Read chapter 3")
	if err != nil || !ok {
		t.Fatalf("Add ok=%v err=%v", ok, err)
	}
	if item.Text != "Read chapter 3" || item.Done {
		t.Fatalf("item=%+v", item)
	}

	if changed, err := l.Toggle(item.ID); err != nil || !changed {
		t.Fatalf("Toggle changed=%v err=%v", changed, err)
	}
	if done, total := l.Progress(); done != 1 || total != 1 {
		t.Fatalf("Progress=%d/%d", done, total)
	}

	if removed, err := l.Remove(item.ID); err != nil || !removed {
		t.Fatalf("Remove removed=%v err=%v", removed, err)
	}
	if len(l.Items()) != 0 {
		t.Fatalf("Items=%v, want empty", l.Items())
	}
	raw, _, _ := kv.Get(storage.KeyTodoItems)
	if raw != "[]" {
		t.Fatalf("final persisted value=%q, want []", raw)
	}
}

func TestList_RejectsBlankAndUnknown(t *testing.T) {
	kv := storage.NewMemoryStore()
	l, _ := newTestList(t, kv)

	for _, text := range []string{"", "   ", "\n\t"} {
		if _, ok, err := l.Add(text); ok || err != nil {
			t.Fatalf("Add(%q) ok=%v err=%v", text, ok, err)
		}
	}
	if changed, _ := l.Toggle(42); changed {
		t.Fatal("Toggle(unknown) reported a change")
	}
	if removed, _ := l.Remove(42); removed {
		t.Fatal("Remove(unknown) reported a change")
	}
	if kv.Writes() != 0 {
		t.Fatalf("no-op mutations wrote %d times", kv.Writes())
	}
}

func TestList_IDsStrictlyIncreasing(t *testing.T) {
	kv := storage.NewMemoryStore()
	l, clk := newTestList(t, kv)

	a, _, _ := l.Add("a")
	b, _, _ := l.Add("b")
	if b.ID != a.ID+1 {
		t.Fatalf("same-millisecond ids a=%d b=%d", a.ID, b.ID)
	}
	clk.Advance(time.Second)
	c, _, _ := l.Add("c")
	if c.ID != clk.Now().UnixMilli() {
		t.Fatalf("id=%d, want clock millis %d", c.ID, clk.Now().UnixMilli())
	}

	// 时钟回拨后仍然递增 / ids keep increasing after a reload with an earlier clock
	reloaded, err := New(kv, clock.NewManual(time.UnixMilli(1)))
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	d, _, _ := reloaded.Add("d")
	if d.ID <= c.ID {
		t.Fatalf("id after reload=%d, want > %d", d.ID, c.ID)
	}
}

func TestList_CorruptedStorage(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "invalid json", raw: `[{"id":1,`},
		{name: "not an array", raw: `{"id":1}`},
		{name: "blank text", raw: `[{"id":1,"text":"  ","done":false}]`},
		{name: "duplicate id", raw: `[{"id":1,"text":"a"},{"id":1,"text":"b"}]`},
		{name: "wrong field type", raw: `[{"id":1,"text":"read","done":"yes"}]`},
		{name: "bad second item", raw: `[{"id":1,"text":"read"},{"id":"two","text":"write"}]`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			kv := storage.NewMemoryStore()
			_ = kv.Set(storage.KeyTodoItems, tc.raw)
			l, _ := newTestList(t, kv)
			if len(l.Items()) != 0 {
				t.Fatalf("Items=%v, want empty", l.Items())
			}
			if _, present, _ := kv.Get(storage.KeyTodoItems); present {
				t.Fatal("corrupted key not cleared")
			}

			// 下一次写入只能包含新任务 / the next write holds only the new task
			if _, ok, err := l.Add("fresh"); err != nil || !ok {
				t.Fatalf("Add: ok=%v err=%v", ok, err)
			}
			if got := l.Items(); len(got) != 1 || got[0].Text != "fresh" {
				t.Fatalf("Items after add=%v", got)
			}
		})
	}
}

type failingKV struct {
	*storage.MemoryStore
}

func (failingKV) Set(string, string) error { return errors.New("quota exceeded") }

func TestList_WriteFailureKeepsState(t *testing.T) {
	l, _ := newTestList(t, failingKV{storage.NewMemoryStore()})
	if _, ok, err := l.Add("x"); err == nil || ok {
		t.Fatalf("Add ok=%v err=%v, want failure", ok, err)
	}
	if len(l.Items()) != 0 {
		t.Fatal("failed Add must not change the list")
	}
}

func TestList_RoundTripProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		kv := storage.NewMemoryStore()
		clk := clock.NewManual(time.UnixMilli(rapid.Int64Range(0, 1<<40).Draw(rt, "start")))
		l, err := New(kv, clk)
		if err != nil {
			rt.Fatalf("New: %v", err)
		}

		steps := rapid.IntRange(1, 30).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			items := l.Items()
			switch op := rapid.IntRange(0, 2).Draw(rt, "op"); {
			case op == 0 || len(items) == 0:
				text := rapid.StringMatching(`[a-z ]{0,12}`).Draw(rt, "text")
				_, _, _ = l.Add(text)
			case op == 1:
				idx := rapid.IntRange(0, len(items)-1).Draw(rt, "toggle")
				_, _ = l.Toggle(items[idx].ID)
			default:
				idx := rapid.IntRange(0, len(items)-1).Draw(rt, "remove")
				_, _ = l.Remove(items[idx].ID)
			}
			if rapid.Bool().Draw(rt, "advance") {
				clk.Advance(time.Millisecond)
			}
		}

		reloaded, err := New(kv, clk)
		if err != nil {
			rt.Fatalf("reload: %v", err)
		}
		want, got := l.Items(), reloaded.Items()
		if len(want) == 0 && len(got) == 0 {
			return
		}
		if !reflect.DeepEqual(want, got) {
			rt.Fatalf("round trip mismatch:\nwant %+v\ngot  %+v", want, got)
		}
		for i := 1; i < len(got); i++ {
			if got[i].ID <= got[i-1].ID {
				rt.Fatalf("ids not increasing: %+v", got)
			}
		}
	})
}
