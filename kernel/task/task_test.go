package task

import (
	"sort"
	"sync"
	"testing"
)

func TestIDsAreUniqueAndIncreasing(t *testing.T) {
	const numTasks = 1000

	var prev *Task
	for i := 0; i < numTasks; i++ {
		tk := NewFunc(func(*Context) Status { return Ready })
		if prev != nil && !prev.Less(tk) {
			t.Fatalf("expected %s to be created after %s", tk, prev)
		}
		prev = tk
	}
}

func TestIDsAreUniqueAcrossGoroutines(t *testing.T) {
	const (
		numWorkers = 8
		perWorker  = 500
	)

	var (
		wg  sync.WaitGroup
		ids = make([][]ID, numWorkers)
	)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				ids[w] = append(ids[w], New(FutureFunc(func(*Context) Status { return Ready })).ID())
			}
		}(w)
	}
	wg.Wait()

	var all []ID
	for w := range ids {
		for i := 1; i < len(ids[w]); i++ {
			if ids[w][i] <= ids[w][i-1] {
				t.Fatalf("[worker %d] expected strictly increasing IDs; got %d after %d", w, ids[w][i], ids[w][i-1])
			}
		}
		all = append(all, ids[w]...)
	}

	sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })
	for i := 1; i < len(all); i++ {
		if all[i] == all[i-1] {
			t.Fatalf("duplicate task ID %d", all[i])
		}
	}
}

func TestTaskIdentity(t *testing.T) {
	a := NewFunc(func(*Context) Status { return Ready })
	b := NewFunc(func(*Context) Status { return Ready })
	aCopy := &Task{id: a.id}

	specs := []struct {
		descr string
		got   bool
		exp   bool
	}{
		{"a == a", a.Equal(a), true},
		{"a == copy of a", a.Equal(aCopy), true},
		{"a == b", a.Equal(b), false},
		{"a < b", a.Less(b), true},
		{"b < a", b.Less(a), false},
		{"a < copy of a", a.Less(aCopy), false},
	}

	for specIndex, spec := range specs {
		if spec.got != spec.exp {
			t.Errorf("[spec %d] expected %q to be %t", specIndex, spec.descr, spec.exp)
		}
	}

	if exp, got := "Task{id: 42}", (&Task{id: 42}).String(); got != exp {
		t.Fatalf("expected String() to return %q; got %q", exp, got)
	}
}
