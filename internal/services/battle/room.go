package battle

import (
	"errors"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/godfield-crew/KAMIFUDA-backend/internal/game"
	"github.com/godfield-crew/KAMIFUDA-backend/internal/models"
)

// RoomStatus はルームのライフサイクル状態です。
type RoomStatus string

const (
	StatusWaiting RoomStatus = "waiting" // 対戦相手待ち
	StatusActive  RoomStatus = "active"  // 対戦中
	StatusEnded   RoomStatus = "ended"   // 決着済み
)

const (
	// DefaultRoomCapacity は1ルームの定員です。
	DefaultRoomCapacity = 2
	// InitialHandSize はゲーム開始時に各プレイヤーへ配る手札の枚数です。
	InitialHandSize = 5
)

var (
	ErrRoomClosed    = errors.New("このルームは既に終了しています")
	ErrRoomFull      = errors.New("ルームが満員です")
	ErrRoomNotActive = errors.New("ゲームがまだ開始されていません")
	ErrDeckExhausted = errors.New("山札と捨て札が両方空です")
)

// GameOver は決着の結果です。
type GameOver struct {
	WinnerID string `json:"winnerId"`
	LoserID  string `json:"loserId"`
}

// Room は1つの対戦ルームの集約です。ゲーム状態・共有の山札・乱数源を保持し、
// 全ての操作をルーム単位のミューテックスで直列化します。
// ルーム外（セッションマネージャーなど）はスナップショットのみを受け取り、
// 内部状態への参照は共有しません。
type Room struct {
	ID        string
	mu        sync.Mutex
	status    RoomStatus
	state     models.GameState
	deck      *game.DeckState
	rng       *rand.Rand
	capacity  int
	createdAt time.Time
}

// NewRoom は空の待機中ルームを作成します。
//
// Parameters:
//   id       : ルームID
//   capacity : 定員（0以下ならDefaultRoomCapacity）
//   rng      : このルーム専用の乱数源（nilなら時刻シードで生成）
// Returns:
//   *Room: 初期化されたルーム
func NewRoom(id string, capacity int, rng *rand.Rand) *Room {
	if capacity <= 0 {
		capacity = DefaultRoomCapacity
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	cards := game.BuildDeck(game.DefaultDeckSize, rng)
	if len(cards) < game.DefaultDeckSize {
		// デッキ構築が規定枚数を満たせなかった場合は決定的な予備デッキで開始する
		log.Printf("[Room %s] Deck build came up short (%d cards), using default deck", id, len(cards))
		cards = game.DefaultDeck(game.DefaultDeckSize)
	}
	return &Room{
		ID:        id,
		status:    StatusWaiting,
		state:     models.GameState{Players: []models.Player{}, GameLog: []models.GameLog{}, Phase: models.PhaseSelect},
		deck:      game.NewDeckState(cards, rng),
		rng:       rng,
		capacity:  capacity,
		createdAt: time.Now(),
	}
}

// Join はプレイヤーをルームに参加させます。既に参加済みのIDによる再参加は
// 名前の更新のみ行い、定員の再計算はしません。定員に達した時点で各プレイヤーに
// 初期手札を配り、ゲームを開始します。
//
// Parameters:
//   player : 参加するプレイヤー（HP/MP等の未設定値はデフォルトで補完）
// Returns:
//   models.GameState: 参加後のスナップショット
//   bool            : この参加でゲームが開始された場合 true
//   error           : 満員・終了済みの場合
func (r *Room) Join(player models.Player) (models.GameState, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status == StatusEnded {
		return models.GameState{}, false, ErrRoomClosed
	}

	// 再接続: 既存プレイヤーなら名前だけ更新して現状を返す
	if idx, existing := r.state.FindPlayer(player.ID); existing != nil {
		if player.Name != "" {
			r.state.Players[idx].Name = player.Name
		}
		log.Printf("[Room %s] Player %s rejoined", r.ID, player.ID)
		return r.state.Clone(), false, nil
	}

	if len(r.state.Players) >= r.capacity {
		return models.GameState{}, false, ErrRoomFull
	}

	r.state.Players = append(r.state.Players, models.NormalizePlayer(player))
	log.Printf("[Room %s] Player %s joined (%d/%d)", r.ID, player.ID, len(r.state.Players), r.capacity)

	started := false
	if len(r.state.Players) == r.capacity {
		r.startGame()
		started = true
	}

	return r.state.Clone(), started, nil
}

// startGame は定員到達時の開始処理です。呼び出し側でロック済みであること。
func (r *Room) startGame() {
	r.state = game.CreateInitialGameState(r.state.Players)
	for i := range r.state.Players {
		r.state.Players[i].Hand = r.deck.Draw(InitialHandSize)
	}
	r.status = StatusActive
	log.Printf("[Room %s] Game started with %d players (draw pile: %d)", r.ID, len(r.state.Players), r.deck.DrawPileSize())
}

// PlayCard はカード使用アクションを解決します。解決に成功した場合、使用済み
// カードは捨て札に置かれ、使用者は自動で1枚補充します。決着がついた場合は
// GameOverを返し、ルームを終了状態にします。
//
// Parameters:
//   payload : カード使用アクション
// Returns:
//   models.GameState : 解決後のスナップショット
//   *game.PlayResult : ダメージ等の解決結果
//   *GameOver        : 決着した場合のみ非nil
//   error            : 拒否された場合（状態は変化しない）
func (r *Room) PlayCard(payload models.PlayCardPayload) (models.GameState, *game.PlayResult, *GameOver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusActive {
		return models.GameState{}, nil, nil, ErrRoomNotActive
	}

	next, result, err := game.ApplyPlayCard(r.state, payload, r.rng)
	if err != nil {
		return models.GameState{}, nil, nil, err
	}

	// 使用したカードは捨て札へ、使用者は1枚自動補充
	r.deck.Discard(result.Card)
	if idx, attacker := next.FindPlayer(payload.PlayerID); attacker != nil {
		drawn := r.deck.Draw(1)
		next.Players[idx].Hand = append(next.Players[idx].Hand, drawn...)
	}

	r.state = next

	var gameOver *GameOver
	if loser, defeated := game.FindDefeated(r.state); defeated {
		r.state.Phase = models.PhaseResult
		r.status = StatusEnded
		gameOver = &GameOver{LoserID: loser.ID, WinnerID: r.survivorID(loser.ID)}
		log.Printf("[Room %s] Game over: winner=%s loser=%s", r.ID, gameOver.WinnerID, gameOver.LoserID)
	}

	return r.state.Clone(), result, gameOver, nil
}

// survivorID は敗者以外で最初にHPが残っているプレイヤーIDを返します。
// 呼び出し側でロック済みであること。
func (r *Room) survivorID(loserID string) string {
	for _, p := range r.state.Players {
		if p.ID != loserID && p.HP > 0 {
			return p.ID
		}
	}
	return ""
}

// DrawCards はプレイヤーの手動ドローを処理します。山札と捨て札が両方空で
// 1枚も引けない場合はErrDeckExhaustedを返します。
//
// Parameters:
//   playerID : ドローするプレイヤーのID
//   count    : 要求枚数
// Returns:
//   []models.Card    : 実際に引けたカード
//   models.GameState : ドロー後のスナップショット
//   error            : 拒否された場合
func (r *Room) DrawCards(playerID string, count int) ([]models.Card, models.GameState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusActive {
		return nil, models.GameState{}, ErrRoomNotActive
	}
	idx, player := r.state.FindPlayer(playerID)
	if player == nil {
		return nil, models.GameState{}, game.ErrPlayerNotFound
	}
	if count <= 0 {
		count = 1
	}

	drawn := r.deck.Draw(count)
	if len(drawn) == 0 {
		return nil, models.GameState{}, ErrDeckExhausted
	}
	r.state.Players[idx].Hand = append(r.state.Players[idx].Hand, drawn...)
	log.Printf("[Room %s] Player %s drew %d card(s) (draw pile: %d)", r.ID, playerID, len(drawn), r.deck.DrawPileSize())

	return drawn, r.state.Clone(), nil
}

// InjectCard は外部生成カードをルームへ持ち込みます。カードは常に山札へ
// 混ぜ込まれ、toHandがtrueの場合はさらに対象プレイヤーの手札にも直接加わります。
//
// Parameters:
//   playerID : 受け取るプレイヤーのID
//   card     : 持ち込むカード
//   toHand   : 山札に加えて手札にも直接加えるかどうか
// Returns:
//   models.GameState: 反映後のスナップショット
//   error           : プレイヤー不在・ルーム終了済みの場合
func (r *Room) InjectCard(playerID string, card models.Card, toHand bool) (models.GameState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status == StatusEnded {
		return models.GameState{}, ErrRoomClosed
	}
	idx, player := r.state.FindPlayer(playerID)
	if player == nil {
		return models.GameState{}, game.ErrPlayerNotFound
	}

	r.deck.ShuffleIn(card)
	if toHand {
		r.state.Players[idx].Hand = append(r.state.Players[idx].Hand, card)
	}
	log.Printf("[Room %s] Card %s injected for player %s (toHand=%v)", r.ID, card.ID, playerID, toHand)

	return r.state.Clone(), nil
}

// Leave はプレイヤーをルームから退出させます。対戦中の退出は没収負けとして
// 扱われ、ルームは終了状態になります。没収負けしたプレイヤーはHP0の敗者
// として最終スナップショットに残ります（resultフェーズは常に誰かのHPが
// 0以下であることの維持）。待機中の退出は単にロスターから除きます。
//
// Parameters:
//   playerID : 退出するプレイヤーのID
// Returns:
//   models.GameState : 退出後のスナップショット
//   *GameOver        : 対戦中の退出で決着した場合のみ非nil
//   bool             : ルームが空になった場合 true
func (r *Room) Leave(playerID string) (models.GameState, *GameOver, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, player := r.state.FindPlayer(playerID)
	if player == nil {
		return r.state.Clone(), nil, len(r.state.Players) == 0
	}

	if r.status == StatusActive {
		// 対戦中の切断は残ったプレイヤーの勝ち。敗者は盤面に残す
		r.state.Players[idx].HP = 0
		r.state.Phase = models.PhaseResult
		r.status = StatusEnded
		gameOver := &GameOver{LoserID: playerID, WinnerID: r.survivorID(playerID)}
		log.Printf("[Room %s] Player %s left during game, forfeiting", r.ID, playerID)
		return r.state.Clone(), gameOver, false
	}

	r.state.Players = append(r.state.Players[:idx], r.state.Players[idx+1:]...)
	if len(r.state.Players) > 0 {
		r.state.CurrentTurnIndex %= len(r.state.Players)
	} else {
		r.state.CurrentTurnIndex = 0
	}
	log.Printf("[Room %s] Player %s removed (%d remaining)", r.ID, playerID, len(r.state.Players))

	return r.state.Clone(), nil, len(r.state.Players) == 0
}

// Snapshot は現在のゲーム状態のディープコピーを返します。
func (r *Room) Snapshot() models.GameState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Clone()
}

// Status は現在のルーム状態を返します。
func (r *Room) Status() RoomStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// PlayerIDs は参加中のプレイヤーIDを参加順で返します。
func (r *Room) PlayerIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.state.Players))
	for _, p := range r.state.Players {
		ids = append(ids, p.ID)
	}
	return ids
}

// HasPlayer はプレイヤーが参加中かどうかを返します。
func (r *Room) HasPlayer(playerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, p := r.state.FindPlayer(playerID)
	return p != nil
}
