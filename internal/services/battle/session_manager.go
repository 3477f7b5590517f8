package battle

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/godfield-crew/KAMIFUDA-backend/internal/models"
)

// Client はWebSocket接続を持つ単一のクライアントを表します。
type Client struct {
	PlayerID string          // このクライアントに紐づくプレイヤーのID
	Name     string          // 表示名
	Conn     *websocket.Conn // クライアントとの実際のWebSocketコネクション
	Send     chan []byte     // クライアントへメッセージを送信するためのバッファ付きチャネル
	RoomID   string          // 参加中のルームID（未参加なら空）
	LobbyID  string          // 参加中のロビーID（未参加なら空）
	closed   bool            // チャネルが閉じられたかどうかのフラグ
	mu       sync.Mutex      // closedフラグ保護用
}

// SafeSend は安全にチャネルにメッセージを送信します（closedチェック付き）
func (c *Client) SafeSend(message []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false // 既に閉じられている
	}

	select {
	case c.Send <- message:
		return true // 送信成功
	default:
		return false // チャネルがフル
	}
}

// SafeClose は安全にチャネルを閉じます
func (c *Client) SafeClose() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		close(c.Send)
		c.closed = true
	}
}

// Envelope はWebSocketメッセージの外枠です。typeでイベント種別を判別し、
// payloadは種別ごとの構造体に二段階でデコードします。
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// 受信ペイロード
type joinRoomPayload struct {
	RoomID string `json:"roomId"`
	Name   string `json:"name"`
}

type drawCardPayload struct {
	RoomID string `json:"roomId"`
	Count  int    `json:"count"`
}

type lobbyJoinPayload struct {
	LobbyID string    `json:"lobbyId"`
	Mode    LobbyMode `json:"mode"`
	Name    string    `json:"name"`
}

type lobbyMessagePayload struct {
	Text string `json:"text"`
}

type sendSkillPayload struct {
	RoomID   string              `json:"roomId"`
	TargetID string              `json:"targetId"`
	ToHand   bool                `json:"toHand"`
	Card     models.ExternalCard `json:"card"`
}

// SessionManager はルーム・ロビー・マッチメイキングとWebSocketクライアント
// 接続の全体を管理します。アプリケーション内でシングルトンとして動作する
// ことが想定されます。
type SessionManager struct {
	rooms      *RoomStore
	lobbies    *LobbyStore
	matchmaker *Matchmaker
	clients    map[string]*Client // playerID -> Client のマップ (現在接続中の全WebSocketクライアント)
	register   chan *Client       // 新しいクライアント接続の登録リクエスト用チャネル
	unregister chan *Client       // クライアント切断の登録解除リクエスト用チャネル
	quit       chan struct{}      // シャットダウン用チャネル
	mu         sync.RWMutex       // clients マップへのアクセスを保護するためのRWMutex
	startDelay time.Duration      // ロビー開始カウントダウンの長さ
}

// NewSessionManager は新しい SessionManager インスタンスを作成し、その
// メインイベントループをバックグラウンドで開始します。
//
// Parameters:
//   rooms   : ルームレジストリ
//   lobbies : ロビーレジストリ
// Returns:
//   *SessionManager: 初期化されたセッションマネージャーのポインタ
func NewSessionManager(rooms *RoomStore, lobbies *LobbyStore) *SessionManager {
	sm := &SessionManager{
		rooms:      rooms,
		lobbies:    lobbies,
		matchmaker: NewMatchmaker(rooms),
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
		startDelay: LobbyStartDelay,
	}
	go sm.Run() // SessionManager のメインイベントループをゴルーチンで開始
	return sm
}

// Run は SessionManager のメインイベントループです。クライアントの登録／
// 登録解除と、それに伴う退出処理を直列に処理します。ゲーム操作自体は
// ルーム・ロビー側のロックで守られているため、readPumpから直接ディスパッチ
// されます。
func (sm *SessionManager) Run() {
	for {
		select {
		case client := <-sm.register:
			sm.mu.Lock()
			sm.clients[client.PlayerID] = client
			sm.mu.Unlock()
			log.Printf("[SessionManager] Client registered: %s", client.PlayerID)

		case client := <-sm.unregister:
			sm.mu.Lock()
			registered, ok := sm.clients[client.PlayerID]
			if ok && registered == client {
				registered.SafeClose()
				delete(sm.clients, client.PlayerID)
				log.Printf("[SessionManager] Client unregistered: %s", client.PlayerID)
			}
			sm.mu.Unlock()
			if ok && registered == client {
				sm.handleDisconnect(client)
			}

		case <-sm.quit:
			log.Printf("[SessionManager] シャットダウンシグナルを受信、メインループを終了します")
			return
		}
	}
}

// RegisterClient は認証済みのWebSocketコネクションをクライアントとして
// 登録し、読み書きのポンプを開始します。
//
// Parameters:
//   playerID : 認証済みのプレイヤーID
//   name     : 表示名
//   conn     : WebSocketコネクション
func (sm *SessionManager) RegisterClient(playerID, name string, conn *websocket.Conn) {
	// 既存の接続があれば先にクリーンアップ（再接続対応）
	sm.mu.Lock()
	if existing, ok := sm.clients[playerID]; ok {
		log.Printf("[SessionManager] Replacing existing connection for player %s", playerID)
		if existing.Conn != nil {
			existing.Conn.Close()
		}
		existing.SafeClose()
		delete(sm.clients, playerID)
	}
	sm.mu.Unlock()

	client := &Client{
		PlayerID: playerID,
		Name:     name,
		Conn:     conn,
		Send:     make(chan []byte, 256),
	}

	conn.SetReadLimit(4096)
	conn.SetReadDeadline(time.Now().Add(300 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(300 * time.Second)) // Pong受信時にタイムアウトリセット
		return nil
	})

	go sm.readPump(client)
	go client.writePump()

	sm.register <- client

	if message, err := marshalEnvelope("auth_success", map[string]string{"playerId": playerID, "name": name}); err == nil {
		client.SafeSend(message)
	}
}

// readPump はクライアントからのWebSocketメッセージを読み込み、イベント種別
// ごとのハンドラーにディスパッチします。
func (sm *SessionManager) readPump(client *Client) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[SessionManager] Panic in readPump for player %s: %v", client.PlayerID, r)
		}

		log.Printf("[SessionManager] Client %s disconnecting", client.PlayerID)
		sm.unregister <- client

		if client.Conn != nil {
			client.Conn.Close()
		}
	}()

	for {
		_, message, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				log.Printf("[SessionManager] WebSocket unexpected close error for player %s: %v", client.PlayerID, err)
			}
			return
		}
		if len(message) == 0 {
			continue
		}

		var env Envelope
		if err := json.Unmarshal(message, &env); err != nil {
			log.Printf("[SessionManager] Failed to unmarshal message from %s: %v", client.PlayerID, err)
			sm.sendError(client, "不正なメッセージ形式です")
			continue
		}

		sm.dispatch(client, env)
	}
}

// dispatch は受信イベントを種別ごとの処理に振り分けます。
func (sm *SessionManager) dispatch(client *Client, env Envelope) {
	switch env.Type {
	case "matchmaking:join":
		sm.handleMatchmakingJoin(client)
	case "matchmaking:cancel":
		sm.handleMatchmakingCancel(client)
	case "lobby:join":
		sm.handleLobbyJoin(client, env.Payload)
	case "lobby:ready":
		sm.handleLobbyReady(client)
	case "lobby:sendMessage":
		sm.handleLobbyMessage(client, env.Payload)
	case "joinRoom":
		sm.handleJoinRoom(client, env.Payload)
	case "drawCard":
		sm.handleDrawCard(client, env.Payload)
	case "playCard":
		sm.handlePlayCard(client, env.Payload)
	case "send-skill":
		sm.handleSendSkill(client, env.Payload)
	default:
		log.Printf("[SessionManager] Unknown event type %q from player %s", env.Type, client.PlayerID)
		sm.sendError(client, "未対応のイベントです: "+env.Type)
	}
}

// handleMatchmakingJoin はランダムマッチの待機登録です。2人揃った時点で
// matchルームを作成して両者を参加させ、手札が配られた状態でルームIDを
// 通知します。着席に失敗したマッチは破棄して再マッチを試みます。
func (sm *SessionManager) handleMatchmakingJoin(client *Client) {
	position := sm.matchmaker.Enqueue(client.PlayerID)
	sm.sendTo(client.PlayerID, "matchmaking:status", map[string]interface{}{
		"status":   "waiting",
		"position": position,
	})

	for {
		result := sm.matchmaker.TryMatch()
		if result == nil {
			return
		}
		if sm.seatMatch(result) {
			return
		}
	}
}

// seatMatch はマッチ成立した2人をルームに着席させます。マッチ直後に片方が
// 切断していた場合は空のルームを破棄し、残ったプレイヤーを再度キューへ
// 戻してfalseを返します（呼び出し側が再マッチを試みます）。
func (sm *SessionManager) seatMatch(result *MatchResult) bool {
	members := make([]*Client, 0, len(result.PlayerIDs))
	sm.mu.RLock()
	for _, playerID := range result.PlayerIDs {
		if member, connected := sm.clients[playerID]; connected {
			members = append(members, member)
		} else {
			log.Printf("[SessionManager] Matched player %s already disconnected", playerID)
		}
	}
	sm.mu.RUnlock()

	if len(members) < len(result.PlayerIDs) {
		sm.rooms.Remove(result.Room.ID)
		for _, member := range members {
			position := sm.matchmaker.Enqueue(member.PlayerID)
			log.Printf("[SessionManager] Requeued player %s after dead match", member.PlayerID)
			sm.sendTo(member.PlayerID, "matchmaking:status", map[string]interface{}{
				"status":   "waiting",
				"position": position,
			})
		}
		return false
	}

	var state models.GameState
	var started bool
	for _, member := range members {
		var err error
		state, started, err = result.Room.Join(models.Player{ID: member.PlayerID, Name: member.Name})
		if err != nil {
			log.Printf("[SessionManager] Failed to seat matched player %s: %v", member.PlayerID, err)
			continue
		}
		sm.mu.Lock()
		member.RoomID = result.Room.ID
		sm.mu.Unlock()
	}

	for _, member := range members {
		sm.sendTo(member.PlayerID, "game:matched", map[string]string{"roomId": result.Room.ID})
	}
	sm.broadcastState(result.Room.ID, state)
	if started {
		sm.broadcastToRoom(result.Room.ID, "game:start", map[string]interface{}{
			"roomId": result.Room.ID,
			"state":  state,
		})
	}
	return true
}

// handleMatchmakingCancel は待機キューからの離脱です。
func (sm *SessionManager) handleMatchmakingCancel(client *Client) {
	cancelled := sm.matchmaker.Cancel(client.PlayerID)
	sm.sendTo(client.PlayerID, "matchmaking:status", map[string]interface{}{
		"status":    "cancelled",
		"cancelled": cancelled,
	})
}

// handleLobbyJoin はロビーへの参加です。
func (sm *SessionManager) handleLobbyJoin(client *Client, raw json.RawMessage) {
	var payload lobbyJoinPayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.LobbyID == "" {
		sm.sendError(client, "ロビーIDが不正です")
		return
	}
	name := payload.Name
	if name == "" {
		name = client.Name
	}

	snapshot, err := sm.lobbies.Join(payload.LobbyID, payload.Mode, client.PlayerID, name)
	if err != nil {
		sm.sendError(client, err.Error())
		return
	}

	sm.mu.Lock()
	client.LobbyID = payload.LobbyID
	sm.mu.Unlock()

	sm.broadcastToLobby(snapshot, "lobby:update")
}

// handleLobbyReady は準備状態の切り替えです。全員準備完了になった場合、
// カウントダウンを告知してから遅延付きでゲームを開始します。
func (sm *SessionManager) handleLobbyReady(client *Client) {
	sm.mu.RLock()
	lobbyID := client.LobbyID
	sm.mu.RUnlock()
	if lobbyID == "" {
		sm.sendError(client, "ロビーに参加していません")
		return
	}

	snapshot, shouldStart, err := sm.lobbies.ToggleReady(lobbyID, client.PlayerID)
	if err != nil {
		sm.sendError(client, err.Error())
		return
	}
	sm.broadcastToLobby(snapshot, "lobby:update")

	if !shouldStart {
		return
	}
	memberIDs, acquired := sm.lobbies.BeginStart(lobbyID)
	if !acquired {
		return
	}

	roomID := "lobby-" + lobbyID
	for _, playerID := range memberIDs {
		sm.sendTo(playerID, "lobby:startGame", map[string]interface{}{
			"roomId":     roomID,
			"startsInMs": sm.startDelay.Milliseconds(),
		})
	}

	// カウントダウン後にメンバーをまとめてルームへ移す
	time.AfterFunc(sm.startDelay, func() {
		sm.startLobbyGame(lobbyID, roomID, memberIDs, snapshot.Capacity)
	})
}

// startLobbyGame はロビーの全メンバーをルームに参加させてゲームを開始します。
func (sm *SessionManager) startLobbyGame(lobbyID, roomID string, memberIDs []string, capacity int) {
	room, created := sm.rooms.GetOrCreateWithCapacity(roomID, capacity)
	if !created && room.Status() != StatusWaiting {
		log.Printf("[SessionManager] Lobby %s start aborted: room %s already in use", lobbyID, roomID)
		return
	}

	for _, playerID := range memberIDs {
		sm.mu.RLock()
		member, connected := sm.clients[playerID]
		sm.mu.RUnlock()
		if !connected {
			log.Printf("[SessionManager] Lobby member %s disconnected before start", playerID)
			continue
		}

		state, started, err := room.Join(models.Player{ID: playerID, Name: member.Name})
		if err != nil {
			log.Printf("[SessionManager] Failed to move player %s into room %s: %v", playerID, roomID, err)
			continue
		}

		sm.mu.Lock()
		member.RoomID = roomID
		member.LobbyID = ""
		sm.mu.Unlock()

		sm.broadcastState(roomID, state)
		if started {
			sm.broadcastToRoom(roomID, "game:start", map[string]interface{}{
				"roomId": roomID,
				"state":  state,
			})
		}
	}

	sm.lobbies.Remove(lobbyID)
}

// handleLobbyMessage はロビーチャットへの発言です。
func (sm *SessionManager) handleLobbyMessage(client *Client, raw json.RawMessage) {
	var payload lobbyMessagePayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.Text == "" {
		sm.sendError(client, "メッセージが空です")
		return
	}

	sm.mu.RLock()
	lobbyID := client.LobbyID
	sm.mu.RUnlock()
	if lobbyID == "" {
		sm.sendError(client, "ロビーに参加していません")
		return
	}

	msg, err := sm.lobbies.AddMessage(lobbyID, client.PlayerID, payload.Text)
	if err != nil {
		sm.sendError(client, err.Error())
		return
	}

	snapshot, ok := sm.lobbies.Snapshot(lobbyID)
	if !ok {
		return
	}
	for _, m := range snapshot.Members {
		sm.sendTo(m.PlayerID, "lobby:message", msg)
	}
}

// handleJoinRoom はルームへの参加です。定員に達した時点でゲームが開始され、
// 全参加者にgame:startが通知されます。
func (sm *SessionManager) handleJoinRoom(client *Client, raw json.RawMessage) {
	var payload joinRoomPayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.RoomID == "" {
		sm.sendError(client, "ルームIDが不正です")
		return
	}
	name := payload.Name
	if name == "" {
		name = client.Name
	}

	room, _ := sm.rooms.GetOrCreate(payload.RoomID)
	state, started, err := room.Join(models.Player{ID: client.PlayerID, Name: name})
	if err != nil {
		sm.sendError(client, err.Error())
		return
	}

	sm.mu.Lock()
	client.RoomID = payload.RoomID
	sm.mu.Unlock()

	sm.broadcastState(payload.RoomID, state)
	if started {
		sm.broadcastToRoom(payload.RoomID, "game:start", map[string]interface{}{
			"roomId": payload.RoomID,
			"state":  state,
		})
	}
}

// handleDrawCard は手動ドローです。引けたカードは本人にのみ通知し、
// 状態更新はルーム全体にブロードキャストします。
func (sm *SessionManager) handleDrawCard(client *Client, raw json.RawMessage) {
	var payload drawCardPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		sm.sendError(client, "ドロー要求が不正です")
		return
	}
	roomID := payload.RoomID
	if roomID == "" {
		roomID = sm.clientRoomID(client)
	}

	room, ok := sm.rooms.Get(roomID)
	if !ok {
		sm.sendError(client, "ルームが見つかりません")
		return
	}

	drawn, state, err := room.DrawCards(client.PlayerID, payload.Count)
	if errors.Is(err, ErrDeckExhausted) {
		sm.sendTo(client.PlayerID, "draw:failed", map[string]string{"reason": err.Error()})
		return
	}
	if err != nil {
		sm.sendError(client, err.Error())
		return
	}

	sm.sendTo(client.PlayerID, "cards:drawn", map[string]interface{}{"cards": drawn})
	sm.broadcastState(roomID, state)
}

// handlePlayCard はカード使用アクションです。解決結果の状態を全員に
// ブロードキャストし、決着した場合はgameOverを送ってルームを片付けます。
func (sm *SessionManager) handlePlayCard(client *Client, raw json.RawMessage) {
	var payload models.PlayCardPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		sm.sendError(client, "アクションが不正です")
		return
	}
	payload.PlayerID = client.PlayerID // なりすまし防止のため送信元で上書き
	if payload.RoomID == "" {
		payload.RoomID = sm.clientRoomID(client)
	}

	room, ok := sm.rooms.Get(payload.RoomID)
	if !ok {
		sm.sendError(client, "ルームが見つかりません")
		return
	}

	state, _, gameOver, err := room.PlayCard(payload)
	if err != nil {
		sm.sendError(client, err.Error())
		return
	}

	sm.broadcastState(payload.RoomID, state)
	if gameOver != nil {
		sm.broadcastToRoom(payload.RoomID, "gameOver", gameOver)
		sm.cleanupRoom(payload.RoomID)
	}
}

// handleSendSkill は外部生成カードのルームへの持ち込みです。宛先を省略した
// 場合は自分自身が受け取ります。
func (sm *SessionManager) handleSendSkill(client *Client, raw json.RawMessage) {
	var payload sendSkillPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		sm.sendError(client, "スキルデータが不正です")
		return
	}
	roomID := payload.RoomID
	if roomID == "" {
		roomID = sm.clientRoomID(client)
	}
	targetID := payload.TargetID
	if targetID == "" {
		targetID = client.PlayerID
	}

	card, err := models.CardFromExternal(payload.Card)
	if err != nil {
		sm.sendError(client, err.Error())
		return
	}

	room, ok := sm.rooms.Get(roomID)
	if !ok {
		sm.sendError(client, "ルームが見つかりません")
		return
	}

	state, err := room.InjectCard(targetID, card, payload.ToHand)
	if err != nil {
		sm.sendError(client, err.Error())
		return
	}

	sm.sendTo(targetID, "skill-received", map[string]interface{}{"card": card, "from": client.PlayerID})
	sm.sendTo(client.PlayerID, "skill-sent", map[string]interface{}{"card": card, "to": targetID})
	sm.broadcastState(roomID, state)
}

// handleDisconnect は切断クライアントの後始末です。ルーム・ロビー・
// マッチメイキングの全てから退出させます。
func (sm *SessionManager) handleDisconnect(client *Client) {
	sm.matchmaker.Cancel(client.PlayerID)

	// 紐付けはcleanupRoomなどが別ゴルーチンから書き換えるためロック下で読む
	sm.mu.RLock()
	lobbyID, roomID := client.LobbyID, client.RoomID
	sm.mu.RUnlock()

	if lobbyID != "" {
		snapshot, removed := sm.lobbies.Leave(lobbyID, client.PlayerID)
		if !removed {
			sm.broadcastToLobby(snapshot, "lobby:update")
		}
	}

	if roomID == "" {
		return
	}
	room, ok := sm.rooms.Get(roomID)
	if !ok {
		return
	}

	state, gameOver, empty := room.Leave(client.PlayerID)
	sm.broadcastToRoom(roomID, "playerLeft", map[string]string{"playerId": client.PlayerID})
	sm.broadcastState(roomID, state)
	if gameOver != nil {
		sm.broadcastToRoom(roomID, "gameOver", gameOver)
	}
	if empty || gameOver != nil {
		sm.cleanupRoom(roomID)
	}
}

// clientRoomID はクライアントのルーム紐付けをロック下で読み取ります。
// 紐付けはcleanupRoomやstartLobbyGameが別ゴルーチンから書き換えます。
func (sm *SessionManager) clientRoomID(client *Client) string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return client.RoomID
}

// cleanupRoom は終了したルームをレジストリから外し、残ったクライアントの
// ルーム紐付けを解除します。
func (sm *SessionManager) cleanupRoom(roomID string) {
	sm.rooms.Remove(roomID)
	sm.mu.Lock()
	for _, client := range sm.clients {
		if client.RoomID == roomID {
			client.RoomID = ""
		}
	}
	sm.mu.Unlock()
}

// broadcastState はルーム全員へのstate:updateです。
func (sm *SessionManager) broadcastState(roomID string, state models.GameState) {
	sm.broadcastToRoom(roomID, "state:update", map[string]interface{}{
		"roomId": roomID,
		"state":  state,
	})
}

// broadcastToRoom はルーム内の全接続クライアントへイベントを送信します。
func (sm *SessionManager) broadcastToRoom(roomID, eventType string, payload interface{}) {
	message, err := marshalEnvelope(eventType, payload)
	if err != nil {
		log.Printf("[SessionManager] Error marshaling %s for room %s: %v", eventType, roomID, err)
		return
	}

	sm.mu.RLock()
	defer sm.mu.RUnlock()
	for _, client := range sm.clients {
		if client.RoomID == roomID {
			if !client.SafeSend(message) {
				log.Printf("[SessionManager] Failed to send to client %s (channel closed or full)", client.PlayerID)
			}
		}
	}
}

// broadcastToLobby はスナップショットのメンバー全員へイベントを送信します。
func (sm *SessionManager) broadcastToLobby(snapshot LobbySnapshot, eventType string) {
	for _, member := range snapshot.Members {
		sm.sendTo(member.PlayerID, eventType, snapshot)
	}
}

// sendTo は指定プレイヤーにのみイベントを送信します。
func (sm *SessionManager) sendTo(playerID, eventType string, payload interface{}) {
	message, err := marshalEnvelope(eventType, payload)
	if err != nil {
		log.Printf("[SessionManager] Error marshaling %s for player %s: %v", eventType, playerID, err)
		return
	}

	sm.mu.RLock()
	client, ok := sm.clients[playerID]
	sm.mu.RUnlock()
	if !ok {
		return
	}
	if !client.SafeSend(message) {
		log.Printf("[SessionManager] Failed to send %s to player %s (channel closed or full)", eventType, playerID)
	}
}

func (sm *SessionManager) sendError(client *Client, reason string) {
	message, err := marshalEnvelope("error", map[string]string{"message": reason})
	if err != nil {
		return
	}
	client.SafeSend(message)
}

func marshalEnvelope(eventType string, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: eventType, Payload: raw})
}

// RoomSnapshot は観戦・デバッグ用にルームの現在状態を返します。
func (sm *SessionManager) RoomSnapshot(roomID string) (models.GameState, RoomStatus, bool) {
	room, ok := sm.rooms.Get(roomID)
	if !ok {
		return models.GameState{}, "", false
	}
	return room.Snapshot(), room.Status(), true
}

// Shutdown はSessionManagerを安全にシャットダウンします
func (sm *SessionManager) Shutdown() {
	log.Printf("[SessionManager] シャットダウン開始...")

	close(sm.quit)

	sm.mu.Lock()
	for playerID, client := range sm.clients {
		log.Printf("[SessionManager] クライアント %s を切断中...", playerID)
		if client.Conn != nil {
			client.Conn.Close()
		}
		client.SafeClose()
	}
	sm.clients = make(map[string]*Client)
	sm.mu.Unlock()

	log.Printf("[SessionManager] シャットダウン完了")
}

// writePump は Client の Send チャネルからのメッセージをWebSocket
// コネクションに書き込みます。クライアントごとにこのゴルーチンが動作します。
func (c *Client) writePump() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Client] Panic in writePump for player %s: %v", c.PlayerID, r)
		}
		if c.Conn != nil {
			c.Conn.Close()
		}
	}()

	// ピング送信のタイマー設定
	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// マネージャーがチャネルを閉じた場合 (クライアントの登録解除時など)
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[Client] Error writing message for player %s: %v", c.PlayerID, err)
				return
			}

		case <-ticker.C:
			// ピングメッセージを定期的に送信してコネクションの生存確認
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[Client] Error sending ping for player %s: %v", c.PlayerID, err)
				return
			}
		}
	}
}
