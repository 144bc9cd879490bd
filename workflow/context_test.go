package workflow

import (
	"sync"
	"testing"
)

func TestContext_PutGet(t *testing.T) {
	wc := NewContext()

	wc.Put("order", "A-42")
	wc.Put("amount", 1999)
	wc.Put("express", true)

	if v, ok := wc.GetString("order"); !ok || v != "A-42" {
		t.Errorf("expected order A-42, got %q (%v)", v, ok)
	}
	if v, ok := wc.GetInt("amount"); !ok || v != 1999 {
		t.Errorf("expected amount 1999, got %d (%v)", v, ok)
	}
	if v, ok := wc.GetBool("express"); !ok || !v {
		t.Errorf("expected express true, got %v (%v)", v, ok)
	}
	if _, ok := wc.Get("missing"); ok {
		t.Error("missing key must not be found")
	}
}

func TestContext_TypedGetterMismatch(t *testing.T) {
	wc := NewContext()
	wc.Put("amount", "not a number")

	if _, ok := wc.GetInt("amount"); ok {
		t.Error("type mismatch must report not-ok")
	}
}

func TestContext_DeleteAndKeys(t *testing.T) {
	wc := NewContext()
	wc.Put("a", 1)
	wc.Put("b", 2)

	wc.Delete("a")
	if wc.Has("a") {
		t.Error("deleted key must be gone")
	}
	if wc.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", wc.Len())
	}
	keys := wc.Keys()
	if len(keys) != 1 || keys[0] != "b" {
		t.Errorf("expected [b], got %v", keys)
	}
}

func TestContext_ScopedWritesAreNamespaced(t *testing.T) {
	wc := NewContext()
	scoped := wc.Scoped("branch1")

	scoped.Put("result", "ok")

	// 作用域写入落在父存储的命名空间键下
	if v, ok := wc.GetString("branch1.result"); !ok || v != "ok" {
		t.Errorf("expected namespaced key visible on parent, got %q (%v)", v, ok)
	}
	if _, ok := wc.GetString("result"); ok {
		t.Error("bare key must not exist on parent")
	}
}

func TestContext_ScopedReadFallsBackToTopLevel(t *testing.T) {
	wc := NewContext()
	wc.Put("shared", "global")

	scoped := wc.Scoped("branch1")
	if v, ok := scoped.GetString("shared"); !ok || v != "global" {
		t.Errorf("expected fallback to top-level key, got %q (%v)", v, ok)
	}

	// 命名空间内的值优先于同名顶层值
	scoped.Put("shared", "local")
	if v, _ := scoped.GetString("shared"); v != "local" {
		t.Errorf("expected namespaced value to win, got %q", v)
	}
	if v, _ := wc.GetString("shared"); v != "global" {
		t.Errorf("top-level value must be untouched, got %q", v)
	}
}

func TestContext_ScopesNest(t *testing.T) {
	wc := NewContext()
	inner := wc.Scoped("outer").Scoped("inner")

	inner.Put("k", 1)
	if _, ok := wc.Get("outer.inner.k"); !ok {
		t.Errorf("expected nested namespace key, got keys %v", wc.Keys())
	}
}

func TestContext_CopyIsIsolated(t *testing.T) {
	wc := NewContext()
	wc.Put("seed", 1)

	cp := wc.Copy()
	cp.Put("copied", 2)
	wc.Put("original", 3)

	if !cp.Has("seed") {
		t.Error("copy must see the snapshot")
	}
	if cp.Has("original") {
		t.Error("copy must not see writes after the snapshot")
	}
	if wc.Has("copied") {
		t.Error("original must not see the copy's writes")
	}
	if cp.RunID() != wc.RunID() {
		t.Error("copy must keep the run ID")
	}
}

func TestContext_ConcurrentAccess(t *testing.T) {
	wc := NewContext()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			scoped := wc.Scoped("g")
			scoped.Put("k", n)
			scoped.Get("k")
			wc.Keys()
		}(i)
	}
	wg.Wait()

	if !wc.Has("g.k") {
		t.Error("expected scoped key after concurrent writes")
	}
}

func TestContext_RunIDSharedByScopes(t *testing.T) {
	wc := NewContext()
	if wc.RunID() == "" {
		t.Fatal("expected non-empty run ID")
	}
	if wc.Scoped("s").RunID() != wc.RunID() {
		t.Error("scoped view must share the run ID")
	}

	other := NewContext()
	if other.RunID() == wc.RunID() {
		t.Error("distinct contexts must have distinct run IDs")
	}
}
