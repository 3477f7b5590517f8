package models

import "slices"

// Phase はゲームの進行フェーズです。
type Phase string

const (
	PhaseSelect Phase = "select" // カード選択待ち
	PhaseBattle Phase = "battle" // 戦闘解決中
	PhaseResult Phase = "result" // 決着（誰かのHPが0以下）
)

// GameLog は追記専用のゲームログ1件です。
type GameLog struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"` // Unixミリ秒
}

// GameState はルームごとの正規のゲーム状態スナップショットです。
// 全クライアントへのブロードキャストはこの値だけを使います。
// players の並び順がそのままターンローテーションの順序になります。
type GameState struct {
	Players          []Player  `json:"players"`
	CurrentTurnIndex int       `json:"currentTurnIndex"`
	Phase            Phase     `json:"phase"`
	GameLog          []GameLog `json:"gameLog"`
}

// Clone はGameStateの深いコピーを返します。
// 戦闘リゾルバが入力を破壊しないための基盤です。
// 空スライスはnilにせず空のまま複製します（JSONで[]として出すため）。
func (s GameState) Clone() GameState {
	out := s
	if s.Players != nil {
		out.Players = make([]Player, len(s.Players))
		for i, p := range s.Players {
			out.Players[i] = p.Clone()
		}
	}
	out.GameLog = slices.Clone(s.GameLog)
	return out
}

// FindPlayer はIDでプレイヤーを探し、インデックスとポインタを返します。
// 見つからない場合は (-1, nil) です。
func (s *GameState) FindPlayer(id string) (int, *Player) {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return i, &s.Players[i]
		}
	}
	return -1, nil
}

// PlayCardPayload はカード使用アクションの入力です。
type PlayCardPayload struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
	TargetID string `json:"targetId"`
	CardID   string `json:"cardId"`
}
