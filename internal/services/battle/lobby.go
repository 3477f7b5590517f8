package battle

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// LobbyMode はロビーの対戦形式です。
type LobbyMode string

const (
	Mode1v1  LobbyMode = "1v1"  // 2人対戦
	Mode4Way LobbyMode = "4way" // 4人乱戦
)

const (
	// LobbyChatLimit はロビーごとに保持するチャット履歴の上限です。
	LobbyChatLimit = 50
	// LobbyStartDelay は開始条件成立から実際のゲーム開始までの猶予です。
	LobbyStartDelay = 3 * time.Second
)

var (
	ErrLobbyFull      = errors.New("ロビーが満員です")
	ErrLobbyNotFound  = errors.New("ロビーが見つかりません")
	ErrNotLobbyMember = errors.New("ロビーに参加していません")
)

// LobbyMember はロビー参加者1人の状態です。
type LobbyMember struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Ready    bool   `json:"ready"`
}

// LobbyMessage はロビー内チャットの1件です。system=trueは入退室などの
// 自動メッセージを表します。
type LobbyMessage struct {
	ID        string `json:"id"`
	PlayerID  string `json:"playerId,omitempty"`
	Name      string `json:"name"`
	Text      string `json:"text"`
	System    bool   `json:"system"`
	Timestamp int64  `json:"timestamp"`
}

// LobbySnapshot はブロードキャスト用のロビー状態のコピーです。
type LobbySnapshot struct {
	ID       string         `json:"id"`
	Mode     LobbyMode      `json:"mode"`
	Capacity int            `json:"capacity"`
	Members  []LobbyMember  `json:"members"`
	Messages []LobbyMessage `json:"messages"`
}

// lobby は1つのロビーの内部状態です。LobbyStoreのロック下でのみ触ります。
type lobby struct {
	id       string
	mode     LobbyMode
	capacity int
	members  []LobbyMember
	messages []LobbyMessage
	starting bool // 開始カウントダウン中の二重開始防止フラグ
}

func capacityFor(mode LobbyMode) int {
	if mode == Mode4Way {
		return 4
	}
	return 2
}

// LobbyStore は全ロビーのレジストリです。参加・準備・チャットの状態遷移を
// 一括で管理し、スナップショットのみを外に返します。
type LobbyStore struct {
	mu      sync.Mutex
	lobbies map[string]*lobby
}

// NewLobbyStore は空のレジストリを作成します。
func NewLobbyStore() *LobbyStore {
	return &LobbyStore{lobbies: make(map[string]*lobby)}
}

// Join はプレイヤーをロビーに参加させます。ロビーが存在しなければ指定モードで
// 作成します。参加時にはシステムメッセージが履歴に追加されます。
//
// Parameters:
//   lobbyID  : ロビーID
//   mode     : ロビー新規作成時の対戦形式（既存ロビーでは無視）
//   playerID : 参加するプレイヤーのID
//   name     : 表示名
// Returns:
//   LobbySnapshot: 参加後のスナップショット
//   error        : 満員の場合
func (s *LobbyStore) Join(lobbyID string, mode LobbyMode, playerID, name string) (LobbySnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lb, ok := s.lobbies[lobbyID]
	if !ok {
		if mode != Mode4Way {
			mode = Mode1v1
		}
		lb = &lobby{
			id:       lobbyID,
			mode:     mode,
			capacity: capacityFor(mode),
			members:  []LobbyMember{},
			messages: []LobbyMessage{},
		}
		s.lobbies[lobbyID] = lb
		log.Printf("[LobbyStore] Lobby created: %s (mode: %s)", lobbyID, mode)
	}

	// 再参加は名前の更新のみ
	for i := range lb.members {
		if lb.members[i].PlayerID == playerID {
			if name != "" {
				lb.members[i].Name = name
			}
			return lb.snapshot(), nil
		}
	}

	if len(lb.members) >= lb.capacity {
		return LobbySnapshot{}, ErrLobbyFull
	}

	lb.members = append(lb.members, LobbyMember{PlayerID: playerID, Name: name})
	lb.appendMessage(LobbyMessage{
		ID:        uuid.New().String(),
		Name:      "システム",
		Text:      name + " が参加しました",
		System:    true,
		Timestamp: time.Now().UnixMilli(),
	})
	log.Printf("[LobbyStore] Player %s joined lobby %s (%d/%d)", playerID, lobbyID, len(lb.members), lb.capacity)

	return lb.snapshot(), nil
}

// ToggleReady はプレイヤーの準備状態を反転させます。全員が準備完了かつ
// 2人以上、または満員で全員準備完了の場合に開始条件成立を返します。
// 開始条件が一度成立したロビーは、BeginStartで開始カウントダウンに入るまで
// 繰り返し成立を返します。
//
// Parameters:
//   lobbyID  : ロビーID
//   playerID : 準備状態を切り替えるプレイヤーのID
// Returns:
//   LobbySnapshot: 切り替え後のスナップショット
//   bool         : 開始条件が成立している場合 true
//   error        : ロビーや参加者が見つからない場合
func (s *LobbyStore) ToggleReady(lobbyID, playerID string) (LobbySnapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lb, ok := s.lobbies[lobbyID]
	if !ok {
		return LobbySnapshot{}, false, ErrLobbyNotFound
	}

	found := false
	for i := range lb.members {
		if lb.members[i].PlayerID == playerID {
			lb.members[i].Ready = !lb.members[i].Ready
			found = true
			break
		}
	}
	if !found {
		return LobbySnapshot{}, false, ErrNotLobbyMember
	}

	return lb.snapshot(), lb.readyToStart(), nil
}

// readyToStart は開始条件判定です。LobbyStoreのロック下でのみ呼びます。
func (lb *lobby) readyToStart() bool {
	if lb.starting || len(lb.members) < 2 {
		return false
	}
	for _, m := range lb.members {
		if !m.Ready {
			return false
		}
	}
	return true
}

// BeginStart は開始カウントダウンへの遷移を試みます。二重開始を防ぐため、
// 最初の呼び出しのみが true を受け取ります。
//
// Parameters:
//   lobbyID : ロビーID
// Returns:
//   []string: 開始するメンバーのプレイヤーID（開始できない場合はnil）
//   bool    : この呼び出しがカウントダウンを獲得した場合 true
func (s *LobbyStore) BeginStart(lobbyID string) ([]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lb, ok := s.lobbies[lobbyID]
	if !ok || !lb.readyToStart() {
		return nil, false
	}
	lb.starting = true

	ids := make([]string, 0, len(lb.members))
	for _, m := range lb.members {
		ids = append(ids, m.PlayerID)
	}
	log.Printf("[LobbyStore] Lobby %s starting countdown with %d players", lobbyID, len(ids))
	return ids, true
}

// AddMessage はロビーチャットに発言を追加します。履歴はLobbyChatLimit件で
// 打ち切られ、古いものから捨てられます。
//
// Parameters:
//   lobbyID  : ロビーID
//   playerID : 発言者のプレイヤーID
//   text     : 本文
// Returns:
//   LobbyMessage: 追加されたメッセージ
//   error       : ロビーや発言者が見つからない場合
func (s *LobbyStore) AddMessage(lobbyID, playerID, text string) (LobbyMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lb, ok := s.lobbies[lobbyID]
	if !ok {
		return LobbyMessage{}, ErrLobbyNotFound
	}

	var name string
	found := false
	for _, m := range lb.members {
		if m.PlayerID == playerID {
			name = m.Name
			found = true
			break
		}
	}
	if !found {
		return LobbyMessage{}, ErrNotLobbyMember
	}

	msg := LobbyMessage{
		ID:        uuid.New().String(),
		PlayerID:  playerID,
		Name:      name,
		Text:      text,
		Timestamp: time.Now().UnixMilli(),
	}
	lb.appendMessage(msg)
	return msg, nil
}

// Leave はプレイヤーをロビーから退出させます。最後の1人が抜けたロビーは
// 削除されます。
//
// Parameters:
//   lobbyID  : ロビーID
//   playerID : 退出するプレイヤーのID
// Returns:
//   LobbySnapshot: 退出後のスナップショット
//   bool         : ロビー自体が削除された場合 true
func (s *LobbyStore) Leave(lobbyID, playerID string) (LobbySnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lb, ok := s.lobbies[lobbyID]
	if !ok {
		return LobbySnapshot{}, false
	}

	for i, m := range lb.members {
		if m.PlayerID == playerID {
			lb.members = append(lb.members[:i], lb.members[i+1:]...)
			lb.appendMessage(LobbyMessage{
				ID:        uuid.New().String(),
				Name:      "システム",
				Text:      m.Name + " が退出しました",
				System:    true,
				Timestamp: time.Now().UnixMilli(),
			})
			log.Printf("[LobbyStore] Player %s left lobby %s (%d remaining)", playerID, lobbyID, len(lb.members))
			break
		}
	}

	if len(lb.members) == 0 {
		delete(s.lobbies, lobbyID)
		log.Printf("[LobbyStore] Lobby removed: %s", lobbyID)
		return LobbySnapshot{}, true
	}
	return lb.snapshot(), false
}

// Remove はロビーを無条件に削除します（ゲーム開始後の後始末用）。
func (s *LobbyStore) Remove(lobbyID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lobbies, lobbyID)
}

// Snapshot は現在のロビー状態のコピーを返します。
func (s *LobbyStore) Snapshot(lobbyID string) (LobbySnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lb, ok := s.lobbies[lobbyID]
	if !ok {
		return LobbySnapshot{}, false
	}
	return lb.snapshot(), true
}

// LobbyOf は指定プレイヤーが参加しているロビーIDを返します。
func (s *LobbyStore) LobbyOf(playerID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, lb := range s.lobbies {
		for _, m := range lb.members {
			if m.PlayerID == playerID {
				return id, true
			}
		}
	}
	return "", false
}

func (lb *lobby) appendMessage(msg LobbyMessage) {
	lb.messages = append(lb.messages, msg)
	if len(lb.messages) > LobbyChatLimit {
		lb.messages = lb.messages[len(lb.messages)-LobbyChatLimit:]
	}
}

func (lb *lobby) snapshot() LobbySnapshot {
	return LobbySnapshot{
		ID:       lb.id,
		Mode:     lb.mode,
		Capacity: lb.capacity,
		Members:  append([]LobbyMember(nil), lb.members...),
		Messages: append([]LobbyMessage(nil), lb.messages...),
	}
}
