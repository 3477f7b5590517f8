package battle

import (
	"math/rand"
	"testing"
)

func TestRoomStore_GetOrCreate(t *testing.T) {
	store := NewRoomStore(func() *rand.Rand { return rand.New(rand.NewSource(1)) })

	room1, created := store.GetOrCreate("room-a")
	if !created {
		t.Error("First GetOrCreate must create the room")
	}
	room2, created := store.GetOrCreate("room-a")
	if created {
		t.Error("Second GetOrCreate must not create a new room")
	}
	if room1 != room2 {
		t.Error("GetOrCreate must return the same room instance")
	}
	if store.Count() != 1 {
		t.Errorf("Count = %d, want 1", store.Count())
	}
}

func TestRoomStore_GetOrCreateWithCapacity(t *testing.T) {
	store := NewRoomStore(nil)

	room, created := store.GetOrCreateWithCapacity("room-4way", 4)
	if !created {
		t.Fatal("Expected room creation")
	}
	if room.capacity != 4 {
		t.Errorf("capacity = %d, want 4", room.capacity)
	}

	// 既存ルームの定員は変更されない
	room2, _ := store.GetOrCreateWithCapacity("room-4way", 2)
	if room2.capacity != 4 {
		t.Errorf("capacity = %d, want 4 (unchanged)", room2.capacity)
	}
}

func TestRoomStore_Remove(t *testing.T) {
	store := NewRoomStore(nil)
	store.GetOrCreate("room-a")

	store.Remove("room-a")
	if _, ok := store.Get("room-a"); ok {
		t.Error("Removed room must not be resolvable")
	}
	if store.Count() != 0 {
		t.Errorf("Count = %d, want 0", store.Count())
	}

	// 存在しないルームのRemoveは何もしない
	store.Remove("room-a")
}
