package reactive

import (
	"errors"
	"testing"
)

// TestDataReadWrite covers the basic read/write contract of a plain data
// node: Get returns the current value, Set stages a write that propagates
// immediately outside of any enclosing Batch.
func TestDataReadWrite(t *testing.T) {
	d := Data(1)
	v, err := d.Get()
	if err != nil || v != 1 {
		t.Fatalf("Get() = %d, %v; want 1, nil", v, err)
	}
	if err := d.Set(2); err != nil {
		t.Fatalf("Set(2) error: %v", err)
	}
	v, _ = d.Get()
	if v != 2 {
		t.Fatalf("Get() after Set = %d; want 2", v)
	}
}

// TestComputationTracksReads verifies that a computation automatically
// subscribes to exactly the data nodes it reads, with no explicit
// declaration.
func TestComputationTracksReads(t *testing.T) {
	a := Data(2)
	b := Data(3)
	runs := 0

	sum, err := Computation(func() (int, error) {
		runs++
		av, _ := a.Get()
		bv, _ := b.Get()
		return av + bv, nil
	})
	if err != nil {
		t.Fatalf("Computation error: %v", err)
	}
	v, _ := sum.Get()
	if v != 5 || runs != 1 {
		t.Fatalf("v=%d runs=%d; want 5, 1", v, runs)
	}

	if err := a.Set(10); err != nil {
		t.Fatal(err)
	}
	v, _ = sum.Get()
	if v != 13 || runs != 2 {
		t.Fatalf("after write v=%d runs=%d; want 13, 2", v, runs)
	}
}

// TestDynamicSubscriptionSet verifies that a computation's dependency set is
// rediscovered fresh on every run: a source no longer read is no longer
// subscribed to.
func TestDynamicSubscriptionSet(t *testing.T) {
	flag := Data(true)
	a := Data("a")
	b := Data("b")
	runs := 0

	picked, err := Computation(func() (string, error) {
		runs++
		f, _ := flag.Get()
		if f {
			v, _ := a.Get()
			return v, nil
		}
		v, _ := b.Get()
		return v, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	v, _ := picked.Get()
	if v != "a" || runs != 1 {
		t.Fatalf("v=%s runs=%d; want a, 1", v, runs)
	}

	if err := b.Set("b2"); err != nil {
		t.Fatal(err)
	}
	v, _ = picked.Get()
	if v != "a" || runs != 1 {
		t.Fatalf("writing unsubscribed b should not recompute: v=%s runs=%d", v, runs)
	}

	if err := flag.Set(false); err != nil {
		t.Fatal(err)
	}
	v, _ = picked.Get()
	if v != "b2" || runs != 2 {
		t.Fatalf("after flip v=%s runs=%d; want b2, 2", v, runs)
	}

	if err := a.Set("a2"); err != nil {
		t.Fatal(err)
	}
	v, _ = picked.Get()
	if v != "b2" || runs != 2 {
		t.Fatalf("writing now-unsubscribed a should not recompute: v=%s runs=%d", v, runs)
	}
}

// TestIdentityWriteIsNoOp verifies that writing the same value (by identity)
// a data node already holds does not trigger downstream recomputation.
func TestIdentityWriteIsNoOp(t *testing.T) {
	d := Data(7)
	runs := 0
	c, err := Computation(func() (int, error) {
		runs++
		v, _ := d.Get()
		return v, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if runs != 1 {
		t.Fatalf("runs=%d; want 1", runs)
	}
	if err := d.Set(7); err != nil {
		t.Fatal(err)
	}
	_, _ = c.Get()
	if runs != 1 {
		t.Fatalf("identity write should not recompute: runs=%d", runs)
	}
}

// TestBatchCoalescesWrites verifies that multiple writes inside Batch
// propagate as a single round, and that a later write to the same node
// within the batch wins.
func TestBatchCoalescesWrites(t *testing.T) {
	a := Data(0)
	b := Data(0)
	runs := 0

	sum, err := Computation(func() (int, error) {
		runs++
		av, _ := a.Get()
		bv, _ := b.Get()
		return av + bv, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if runs != 1 {
		t.Fatalf("runs=%d; want 1", runs)
	}

	_, err = Batch(func() any {
		_ = a.Set(1)
		_ = a.Set(10) // last-write-wins within the round
		_ = b.Set(20)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	v, _ := sum.Get()
	if v != 30 {
		t.Fatalf("sum=%d; want 30", v)
	}
	if runs != 2 {
		t.Fatalf("batched writes should cause exactly one recompute: runs=%d", runs)
	}
}

// TestAccumulatorComposesReducers verifies that an accumulator node composes
// every reducer staged within a round in write order.
func TestAccumulatorComposesReducers(t *testing.T) {
	log := Accumulator[[]string](nil)

	_, err := Batch(func() any {
		_ = log.Update(func(prev []string) []string { return append(prev, "a") })
		_ = log.Update(func(prev []string) []string { return append(prev, "b") })
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	v, _ := log.Get()
	if len(v) != 2 || v[0] != "a" || v[1] != "b" {
		t.Fatalf("log=%v; want [a b]", v)
	}
}

// TestSampleDoesNotSubscribe verifies that reading a node inside Sample does
// not add a subscription edge.
func TestSampleDoesNotSubscribe(t *testing.T) {
	tracked := Data(1)
	untracked := Data(100)
	runs := 0

	c, err := Computation(func() (int, error) {
		runs++
		tv, _ := tracked.Get()
		extra := Sample(func() int {
			v, _ := untracked.Get()
			return v
		})
		return tv + extra, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	v, _ := c.Get()
	if v != 101 || runs != 1 {
		t.Fatalf("v=%d runs=%d; want 101, 1", v, runs)
	}

	if err := untracked.Set(200); err != nil {
		t.Fatal(err)
	}
	v, _ = c.Get()
	if v != 101 || runs != 1 {
		t.Fatalf("sampled read should not subscribe: v=%d runs=%d", v, runs)
	}

	if err := tracked.Set(2); err != nil {
		t.Fatal(err)
	}
	v, _ = c.Get()
	if v != 202 || runs != 2 {
		t.Fatalf("after tracked write v=%d runs=%d; want 202, 2", v, runs)
	}
}

// TestCleanupRunsOnRerunAndDispose verifies that cleanup callbacks fire with
// final=false ahead of a re-run and final=true at disposal.
func TestCleanupRunsOnRerunAndDispose(t *testing.T) {
	trigger := Data(0)
	var events []bool

	c, err := Computation(func() (int, error) {
		v, _ := trigger.Get()
		OnCleanup(func(final bool) { events = append(events, final) })
		return v, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := trigger.Set(1); err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0] != false {
		t.Fatalf("events=%v; want [false]", events)
	}

	Dispose(c)
	if len(events) != 2 || events[1] != true {
		t.Fatalf("events=%v; want [false true]", events)
	}
}

// TestCascadingDisposal verifies that disposing a parent computation
// disposes its non-orphan children and runs their final cleanups, but
// leaves an orphan child untouched.
func TestCascadingDisposal(t *testing.T) {
	var childFinal, orphanFinal bool

	parent, err := Computation(func() (int, error) {
		_, err := Computation(func() (int, error) {
			OnCleanup(func(final bool) { childFinal = final })
			return 1, nil
		})
		if err != nil {
			return 0, err
		}
		_, err = Computation(func() (int, error) {
			OnCleanup(func(final bool) { orphanFinal = final })
			return 2, nil
		}, Orphan())
		return 0, err
	})
	if err != nil {
		t.Fatal(err)
	}

	Dispose(parent)
	if !childFinal {
		t.Fatal("non-orphan child should be disposed with final=true")
	}
	if orphanFinal {
		t.Fatal("orphan child should survive parent disposal")
	}
}

// TestOutOfOrderResolution verifies that when the mark queue would run a
// reader before a Stale source it depends on, reading that source forces
// it to resolve immediately and restarts the reader from the beginning.
// Constructing reader before branch means reader's edge onto base is older
// than branch's, so the mark phase enqueues reader first even though it
// depends on branch.
func TestOutOfOrderResolution(t *testing.T) {
	base := Data(1)
	var branch *CompHandle[int]

	readerRuns := 0
	reader, err := Computation(func() (int, error) {
		readerRuns++
		bv := 0
		if branch != nil {
			v, err := branch.Get()
			if err != nil {
				return 0, err
			}
			bv = v
		}
		basev, _ := base.Get()
		return bv + basev, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	branchRuns := 0
	branch, err = Computation(func() (int, error) {
		branchRuns++
		v, _ := base.Get()
		return v * 10, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := base.Set(2); err != nil {
		t.Fatal(err)
	}
	v, _ := reader.Get()
	if v != 22 {
		t.Fatalf("reader=%d; want 22 (branch=20 + base=2)", v)
	}
	if branchRuns != 2 {
		t.Fatalf("branch should have resolved out of order exactly once more: branchRuns=%d", branchRuns)
	}
	if readerRuns < 2 {
		t.Fatalf("reader should have restarted after the out-of-order resolve: readerRuns=%d", readerRuns)
	}
}

// TestChildDisposalOnRerun verifies that a parent which constructs a new
// child computation on every run leaves at most one live child after each
// re-run, and that the previous child received its final cleanup.
func TestChildDisposalOnRerun(t *testing.T) {
	trigger := Data(0)
	var finals []bool

	parent, err := Computation(func() (int, error) {
		n, _ := trigger.Get()
		_, childErr := Computation(func() (int, error) {
			OnCleanup(func(final bool) { finals = append(finals, final) })
			return n, nil
		})
		return n, childErr
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(parent.node.children) != 1 {
		t.Fatalf("children=%d; want 1 after initial run", len(parent.node.children))
	}

	for i := 1; i <= 3; i++ {
		if err := trigger.Set(i); err != nil {
			t.Fatal(err)
		}
		if len(parent.node.children) != 1 {
			t.Fatalf("iteration %d: children=%d; want 1", i, len(parent.node.children))
		}
	}

	// Three re-runs, each replacing the previous child: the three earlier
	// children (runs for n=0,1,2) were disposed with final=true, and the
	// surviving child (n=3) has not been disposed.
	if len(finals) != 3 {
		t.Fatalf("finals=%v; want 3 cleanup calls for the three replaced children", finals)
	}
	for i, final := range finals {
		if !final {
			t.Fatalf("finals[%d]=%v; want true (replaced children are disposed, not re-run)", i, final)
		}
	}
}

// TestCrossBranchOrdering verifies that a computation reading another
// computation which itself shares the same changed source always observes
// the source's already-updated value, never a stale mix.
func TestCrossBranchOrdering(t *testing.T) {
	a := Data(1)
	b, err := Computation(func() (int, error) {
		v, _ := a.Get()
		return v + 1, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	c, err := Computation(func() (int, error) {
		bv, _ := b.Get()
		av, _ := a.Get()
		return bv * av, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	bv, _ := b.Get()
	cv, _ := c.Get()
	if bv != 2 || cv != 2 {
		t.Fatalf("initial b=%d c=%d; want 2, 2", bv, cv)
	}

	if err := a.Set(2); err != nil {
		t.Fatal(err)
	}
	bv, _ = b.Get()
	cv, _ = c.Get()
	if bv != 3 || cv != 6 {
		t.Fatalf("after write b=%d c=%d; want 3, 6 (c must see b's updated value)", bv, cv)
	}
}

// TestCyclicDependencyReported verifies that two computations which come to
// read each other's value on the same propagation round report a cyclic
// dependency rather than recursing forever.
func TestCyclicDependencyReported(t *testing.T) {
	var aHandle, bHandle *CompHandle[int]
	trigger := Data(0)
	var err error

	aHandle, err = Computation(func() (int, error) {
		_, _ = trigger.Get()
		if bHandle == nil {
			return 0, nil
		}
		v, err := bHandle.Get()
		if err != nil {
			return 0, err
		}
		return v + 1, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	bHandle, err = Computation(func() (int, error) {
		_, _ = trigger.Get()
		v, err := aHandle.Get()
		if err != nil {
			return 0, err
		}
		return v + 1, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	// b is now subscribed to a (a has not read b yet: bHandle was nil when
	// it ran) and both read trigger; writing it marks both Stale on the same
	// round, and a's re-run now reads b, forcing the mutual-read cycle to
	// surface.
	err = trigger.Set(1)
	if err == nil {
		t.Fatal("expected a cyclic dependency error")
	}
	var cyclic *CyclicDependencyError
	if !errors.As(err, &cyclic) {
		t.Fatalf("err=%v; want *CyclicDependencyError", err)
	}
}

// TestThunkPanicLeavesNodeStale verifies that a panicking thunk is wrapped
// into a ThunkError and leaves the computation Stale rather than Current.
func TestThunkPanicLeavesNodeStale(t *testing.T) {
	trigger := Data(0)
	c, err := Computation(func() (int, error) {
		v, _ := trigger.Get()
		if v == 1 {
			panic("boom")
		}
		return v, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	err = trigger.Set(1)
	if err == nil {
		t.Fatal("expected propagation to report the panic")
	}
	var te *ThunkError
	if !errors.As(err, &te) {
		t.Fatalf("err=%v; want *ThunkError", err)
	}
	if c.node.state != stateStale {
		t.Fatalf("state=%v; want stale", c.node.state)
	}
}
