package battle

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RandFactory はルームごとの乱数源を供給します。テストでは固定シードの
// ファクトリを注入して決定的に動かせます。
type RandFactory func() *rand.Rand

// TimeSeededRand は時刻シードの乱数源を返すデフォルトのファクトリです。
func TimeSeededRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// RoomStore は全ルームのレジストリです。ルームIDからルームへの解決と
// ライフサイクル（作成・削除）のみを担当し、ゲーム進行には関与しません。
type RoomStore struct {
	mu       sync.RWMutex
	rooms    map[string]*Room
	randFunc RandFactory
}

// NewRoomStore は空のレジストリを作成します。
//
// Parameters:
//   randFunc : ルームごとの乱数源ファクトリ（nilならTimeSeededRand）
// Returns:
//   *RoomStore: 初期化されたレジストリ
func NewRoomStore(randFunc RandFactory) *RoomStore {
	if randFunc == nil {
		randFunc = TimeSeededRand
	}
	return &RoomStore{
		rooms:    make(map[string]*Room),
		randFunc: randFunc,
	}
}

// GetOrCreate はルームを取得し、存在しなければ作成します。
//
// Parameters:
//   roomID : ルームID
// Returns:
//   *Room: 既存または新規のルーム
//   bool : 新規作成した場合 true
func (s *RoomStore) GetOrCreate(roomID string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if room, ok := s.rooms[roomID]; ok {
		return room, false
	}
	room := NewRoom(roomID, DefaultRoomCapacity, s.randFunc())
	s.rooms[roomID] = room
	log.Printf("[RoomStore] Room created: %s (total: %d)", roomID, len(s.rooms))
	return room, true
}

// GetOrCreateWithCapacity は定員を指定してルームを取得・作成します。
// ロビー発のゲーム（4人乱戦など）用です。
//
// Parameters:
//   roomID   : ルームID
//   capacity : 新規作成時の定員
// Returns:
//   *Room: 既存または新規のルーム
//   bool : 新規作成した場合 true
func (s *RoomStore) GetOrCreateWithCapacity(roomID string, capacity int) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if room, ok := s.rooms[roomID]; ok {
		return room, false
	}
	room := NewRoom(roomID, capacity, s.randFunc())
	s.rooms[roomID] = room
	log.Printf("[RoomStore] Room created: %s (capacity: %d)", roomID, room.capacity)
	return room, true
}

// Get はルームを取得します。
func (s *RoomStore) Get(roomID string) (*Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[roomID]
	return room, ok
}

// CreateMatch はマッチメイキング用の新規ルームを `match-` 接頭辞付きIDで
// 作成します。
//
// Returns:
//   *Room: 作成されたルーム
func (s *RoomStore) CreateMatch() *Room {
	s.mu.Lock()
	defer s.mu.Unlock()

	roomID := "match-" + uuid.New().String()
	room := NewRoom(roomID, DefaultRoomCapacity, s.randFunc())
	s.rooms[roomID] = room
	log.Printf("[RoomStore] Match room created: %s", roomID)
	return room
}

// Remove はルームをレジストリから削除します。
func (s *RoomStore) Remove(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[roomID]; ok {
		delete(s.rooms, roomID)
		log.Printf("[RoomStore] Room removed: %s (total: %d)", roomID, len(s.rooms))
	}
}

// Count は現在のルーム数を返します。
func (s *RoomStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}
