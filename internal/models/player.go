package models

import "slices"

// プレイヤーの初期値。HP/MPは0未満にならないよう常にクランプされます。
const (
	DefaultHP = 100
	DefaultMP = 50
)

// Player はルーム内の1人のプレイヤーを表します。
// ID は再接続をまたいで安定しており、同じIDでのjoinは上書き（upsert）になります。
type Player struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	HP            int      `json:"hp"`
	MP            int      `json:"mp"`
	Hand          []Card   `json:"hand"`          // ドロー順
	Equipment     []Card   `json:"equipment"`     // 防具・属性の供給源
	IsTurn        bool     `json:"isTurn"`        // アクティブプレイヤー中、常にちょうど1人だけtrue
	StatusEffects []string `json:"statusEffects"` // 付与された状態異常タグ
}

// NormalizePlayer はクライアントから届いたプレイヤーデータを検証し、
// 欠けているフィールドを初期値で埋めて返します。nilスライスもここで潰します。
func NormalizePlayer(p Player) Player {
	if p.Name == "" {
		p.Name = "Unknown Player"
	}
	if p.HP <= 0 {
		p.HP = DefaultHP
	}
	if p.MP <= 0 {
		p.MP = DefaultMP
	}
	if p.Hand == nil {
		p.Hand = []Card{}
	}
	if p.Equipment == nil {
		p.Equipment = []Card{}
	}
	if p.StatusEffects == nil {
		p.StatusEffects = []string{}
	}
	p.IsTurn = false
	return p
}

// Clone はプレイヤーの深いコピーを返します。空スライスは空のまま維持します。
func (p Player) Clone() Player {
	out := p
	out.Hand = slices.Clone(p.Hand)
	out.Equipment = slices.Clone(p.Equipment)
	out.StatusEffects = slices.Clone(p.StatusEffects)
	return out
}
