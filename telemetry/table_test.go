package telemetry

import (
	"sync"
	"testing"
)

func TestTableVersionMovesOnChangeOnly(t *testing.T) {
	tb := NewTable("coral")
	if tb.Version() != 0 {
		t.Fatalf("fresh version = %d", tb.Version())
	}

	tb.PutNumber("position", 0)
	if tb.Version() != 1 {
		t.Errorf("new key did not bump version: %d", tb.Version())
	}
	tb.PutNumber("position", 0)
	if tb.Version() != 1 {
		t.Errorf("same value bumped version: %d", tb.Version())
	}
	tb.PutNumber("position", 4)
	if tb.Version() != 2 {
		t.Errorf("changed value did not bump version: %d", tb.Version())
	}
}

func TestTableGetNumber(t *testing.T) {
	tb := NewTable("coral")
	if got := tb.GetNumber("row", -1); got != -1 {
		t.Errorf("absent key = %v, want default", got)
	}
	tb.PutNumber("row", 3)
	if got := tb.GetNumber("row", -1); got != 3 {
		t.Errorf("row = %v, want 3", got)
	}
}

func TestTableEntriesSorted(t *testing.T) {
	tb := NewTable("coral")
	tb.PutNumber("row", 1)
	tb.PutNumber("column", 2)
	tb.PutNumber("position", 10)

	got := tb.Entries()
	want := []Entry{{"column", 2}, {"position", 10}, {"row", 1}}
	if len(got) != len(want) {
		t.Fatalf("entries = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestTableConcurrentPut(t *testing.T) {
	tb := NewTable("coral")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tb.PutNumber("position", float64(n*100+j))
				tb.Entries()
			}
		}(i)
	}
	wg.Wait()

	if len(tb.Entries()) != 1 {
		t.Errorf("entries = %v, want one key", tb.Entries())
	}
}

func TestAtomicFloatSwap(t *testing.T) {
	var f AtomicFloat
	if f.Swap(0) {
		t.Error("swapping zero into zero reported a change")
	}
	if !f.Swap(1.5) {
		t.Error("swap to 1.5 reported no change")
	}
	if f.Get() != 1.5 {
		t.Errorf("Get = %v", f.Get())
	}
}
