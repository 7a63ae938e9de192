package app

import (
	"sync"
	"testing"
)

func TestRegistryRegisterAndAll(t *testing.T) {
	reg := NewRegistry()
	a := newFakeConn()
	b := newFakeConn()

	if err := reg.Register(a, identity(1, "alice")); err != nil {
		t.Fatalf("register a: %v", err)
	}
	if err := reg.Register(b, identity(2, "bob")); err != nil {
		t.Fatalf("register b: %v", err)
	}

	if got := len(reg.All()); got != 2 {
		t.Fatalf("All() returned %d connections, want 2", got)
	}

	reg.Unregister(a)
	all := reg.All()
	if len(all) != 1 {
		t.Fatalf("All() after unregister returned %d connections, want 1", len(all))
	}
	if all[0] != b {
		t.Fatal("All() kept the unregistered connection")
	}
}

func TestRegistryRejectsClosedConn(t *testing.T) {
	reg := NewRegistry()
	conn := newFakeConn()
	conn.Close()

	if err := reg.Register(conn, identity(1, "alice")); err != ErrConnClosed {
		t.Fatalf("register closed conn: got %v, want ErrConnClosed", err)
	}
	if len(reg.All()) != 0 {
		t.Fatal("closed connection became visible")
	}
}

func TestRegistryUnregisterIdempotent(t *testing.T) {
	reg := NewRegistry()
	conn := newFakeConn()
	if err := reg.Register(conn, identity(1, "alice")); err != nil {
		t.Fatalf("register: %v", err)
	}

	reg.Unregister(conn)
	reg.Unregister(conn) // second call must be a no-op

	if len(reg.All()) != 0 {
		t.Fatal("connection still registered")
	}
}

func TestRegistryFindByUserMultiDevice(t *testing.T) {
	reg := NewRegistry()
	phone := newFakeConn()
	laptop := newFakeConn()
	other := newFakeConn()

	for _, c := range []*fakeConn{phone, laptop} {
		if err := reg.Register(c, identity(1, "alice")); err != nil {
			t.Fatalf("register: %v", err)
		}
	}
	if err := reg.Register(other, identity(2, "bob")); err != nil {
		t.Fatalf("register: %v", err)
	}

	conns := reg.FindByUser(1)
	if len(conns) != 2 {
		t.Fatalf("FindByUser(1) returned %d connections, want 2", len(conns))
	}
	for _, c := range conns {
		if c == other {
			t.Fatal("FindByUser returned another user's connection")
		}
	}
	if got := reg.FindByUser(99); len(got) != 0 {
		t.Fatalf("FindByUser(99) returned %d connections, want 0", len(got))
	}
}

func TestRegistryIdentity(t *testing.T) {
	reg := NewRegistry()
	conn := newFakeConn()
	want := identity(7, "carol")
	if err := reg.Register(conn, want); err != nil {
		t.Fatalf("register: %v", err)
	}

	got, ok := reg.identityOf(conn)
	if !ok || got != want {
		t.Fatalf("identityOf() = %+v, %v; want %+v, true", got, ok, want)
	}

	reg.Unregister(conn)
	if _, ok := reg.identityOf(conn); ok {
		t.Fatal("identityOf() found an unregistered connection")
	}
}

// Concurrent register/unregister/All must not race or produce a snapshot
// containing a fully-unregistered connection.
func TestRegistryConcurrentAccess(t *testing.T) {
	reg := NewRegistry()
	const workers = 16

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				conn := newFakeConn()
				if err := reg.Register(conn, identity(int64(n), "user")); err != nil {
					t.Errorf("register: %v", err)
					return
				}
				reg.All()
				reg.FindByUser(0)
				reg.Unregister(conn)
			}
		}(i)
	}
	wg.Wait()

	if got := len(reg.All()); got != 0 {
		t.Fatalf("registry not empty after all workers finished: %d left", got)
	}
}
