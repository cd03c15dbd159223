package sharing

import (
	"sync"
	"testing"
)

func TestInfoLifecycle(t *testing.T) {
	info := New()
	if !info.IsMutable() || info.IsShared() {
		t.Fatal("new token should be exclusively owned")
	}
	info.AddUser()
	if info.IsMutable() || !info.IsShared() || info.Users() != 2 {
		t.Fatalf("after AddUser: users=%d", info.Users())
	}
	info.RemoveUser()
	if !info.IsMutable() {
		t.Fatal("token should be mutable again after the second owner left")
	}
}

func TestInfoConcurrentUsers(t *testing.T) {
	info := New()
	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			info.AddUser()
			info.RemoveUser()
		}()
	}
	wg.Wait()
	if info.Users() != 1 {
		t.Errorf("Users() = %d, want 1", info.Users())
	}
}

func TestRemoveUserPanicsWhenReleased(t *testing.T) {
	info := New()
	info.RemoveUser()
	defer func() {
		if recover() == nil {
			t.Error("expected panic on over-release")
		}
	}()
	info.RemoveUser()
}
