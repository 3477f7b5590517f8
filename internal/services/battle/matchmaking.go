package battle

import (
	"log"
	"sync"
)

// MatchResult は成立したマッチです。
type MatchResult struct {
	Room      *Room
	PlayerIDs [2]string
}

// Matchmaker はランダムマッチの待機キューです。先着順（FIFO）で2人揃った
// 時点でマッチを成立させます。
type Matchmaker struct {
	mu    sync.Mutex
	queue []string
	store *RoomStore
}

// NewMatchmaker は空の待機キューを作成します。
func NewMatchmaker(store *RoomStore) *Matchmaker {
	return &Matchmaker{
		queue: []string{},
		store: store,
	}
}

// Enqueue はプレイヤーを待機キューに追加します。既にキューにいる場合は
// 追加せず、現在の待機位置を返します。
//
// Parameters:
//   playerID : 待機するプレイヤーのID
// Returns:
//   int : 1始まりの待機位置
func (m *Matchmaker) Enqueue(playerID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, id := range m.queue {
		if id == playerID {
			log.Printf("[Matchmaker] Player %s already in queue (position %d)", playerID, i+1)
			return i + 1
		}
	}
	m.queue = append(m.queue, playerID)
	log.Printf("[Matchmaker] Player %s enqueued (queue length: %d)", playerID, len(m.queue))
	return len(m.queue)
}

// Cancel はプレイヤーを待機キューから外します。
//
// Parameters:
//   playerID : キャンセルするプレイヤーのID
// Returns:
//   bool: キューにいて除去された場合 true
func (m *Matchmaker) Cancel(playerID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, id := range m.queue {
		if id == playerID {
			m.queue = append(m.queue[:i], m.queue[i+1:]...)
			log.Printf("[Matchmaker] Player %s cancelled matchmaking (queue length: %d)", playerID, len(m.queue))
			return true
		}
	}
	return false
}

// TryMatch はキューの先頭2人でマッチを成立させます。2人に満たない場合は
// 何もせずnilを返します。成立した場合は新しいmatchルームを作成して返します。
// ルームへのJoinは呼び出し側（セッションマネージャー）の責任です。
//
// Returns:
//   *MatchResult: 成立したマッチ。成立しなければnil
func (m *Matchmaker) TryMatch() *MatchResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.queue) < 2 {
		return nil
	}

	p1, p2 := m.queue[0], m.queue[1]
	m.queue = m.queue[2:]

	room := m.store.CreateMatch()
	log.Printf("[Matchmaker] Matched %s vs %s in room %s", p1, p2, room.ID)
	return &MatchResult{Room: room, PlayerIDs: [2]string{p1, p2}}
}

// QueueLength は現在の待機人数を返します。
func (m *Matchmaker) QueueLength() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}
