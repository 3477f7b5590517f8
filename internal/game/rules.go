package game

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/godfield-crew/KAMIFUDA-backend/internal/models"
)

// リゾルバが返す型付きエラー。どれも「状態変化なしの拒否」を意味し、
// 古いクライアント状態（切断→再参加後の2重送信など）で普通に起きるので
// 致命的エラーとしては扱いません。
var (
	ErrPlayerNotFound = errors.New("プレイヤーが見つかりません")
	ErrTargetNotFound = errors.New("対象プレイヤーが見つかりません")
	ErrCardNotInHand  = errors.New("カードが手札にありません")
)

// elementAdvantage は属性相性マップ（攻撃側 → 有利な防御側属性）です。
// 火→土、水→火、土→水、風→土、雷→水、光→闇、闇→光。
// 対称なじゃんけん関係ではなく閉路でもないのは意図的なゲームデザインで、
// このテーブルのまま維持します（例: 火は土に強いが、土の得意相手は水）。
var elementAdvantage = map[models.Element]models.Element{
	models.ElementFire:    models.ElementEarth,
	models.ElementWater:   models.ElementFire,
	models.ElementEarth:   models.ElementWater,
	models.ElementWind:    models.ElementEarth,
	models.ElementThunder: models.ElementWater,
	models.ElementLight:   models.ElementDark,
	models.ElementDark:    models.ElementLight,
}

// statusPool は状態異常ロールの候補です。
var statusPool = []string{"気絶", "炎上", "凍結", "呪い"}

// statusChance はダメージが通ったときに状態異常が付与される確率です。
const statusChance = 0.25

// ElementMultiplier は属性相性によるダメージ倍率を計算します。
// 攻撃側有利で1.5倍、防御側有利で0.5倍、それ以外（noneを含む組み合わせ
// 全て）は等倍です。
func ElementMultiplier(attack, defense models.Element) float64 {
	if attack == models.ElementNone || defense == models.ElementNone {
		return 1.0
	}
	if elementAdvantage[attack] == defense {
		return 1.5
	}
	if elementAdvantage[defense] == attack {
		return 0.5
	}
	return 1.0
}

// TotalArmor は装備のうちarmor種別のpower合計を返します。
func TotalArmor(equipment []models.Card) int {
	sum := 0
	for _, c := range equipment {
		if c.Kind == models.KindArmor {
			sum += c.Power
		}
	}
	return sum
}

// MainElement は装備リストの先頭の属性を「主属性」として返します。
// 装備なしは none 扱いです。
func MainElement(equipment []models.Card) models.Element {
	if len(equipment) == 0 {
		return models.ElementNone
	}
	return equipment[0].Element
}

// PlayResult は1回のカード使用の解決結果サマリです。
type PlayResult struct {
	Card          models.Card // 使用されたカードインスタンス
	Damage        int
	Multiplier    float64
	StatusApplied string // 付与された状態異常（なしは空文字）
}

// ApplyPlayCard は1回のカード使用アクションを現在の状態に適用し、
// 新しいGameStateを返します。入力のstateは一切変更しません
// （リプレイやテストで適用前後の状態を比較できるようにするため）。
//
// 解決内容:
//   - 攻撃側/防御側/カードの解決（見つからなければ型付きエラーで拒否）
//   - ダメージ = floor(max(威力 - 防御力, 0) × 属性倍率)、負にはならない
//   - ダメージ>0のとき確率0.25で状態異常を1つ付与
//   - 攻撃側のMP消費とカードの手札からの除去（捨て札への追加は呼び出し側の仕事）
//   - ターンを (currentTurnIndex+1) mod 人数 に進め、isTurnを更新
//   - ログを1件追記し、phaseをbattleにする
//
// ダメージ0の「空振り」も正常な解決であり、カード消費・MP消費・ターン進行は
// 同じように起きます。
//
// Parameters:
//
//	state  : 適用前のゲーム状態（変更されない）
//	payload: カード使用アクション
//	rng    : 状態異常ロール用の乱数源（シード固定で決定的になる）
//
// Returns:
//
//	models.GameState: 適用後の新しい状態
//	*PlayResult     : 解決サマリ
//	error           : 拒否された場合（状態変化なし）
func ApplyPlayCard(state models.GameState, payload models.PlayCardPayload, rng *rand.Rand) (models.GameState, *PlayResult, error) {
	_, attacker := state.FindPlayer(payload.PlayerID)
	if attacker == nil {
		return state, nil, ErrPlayerNotFound
	}
	_, defender := state.FindPlayer(payload.TargetID)
	if defender == nil {
		return state, nil, ErrTargetNotFound
	}

	// 手札からカードを解決。既に使用済み（重複・遅延メッセージ）なら拒否。
	// これが冪等性のガードになります。
	var card *models.Card
	for i := range attacker.Hand {
		if attacker.Hand[i].ID == payload.CardID {
			card = &attacker.Hand[i]
			break
		}
	}
	if card == nil {
		return state, nil, ErrCardNotInHand
	}

	armor := TotalArmor(defender.Equipment)
	defenderElement := MainElement(defender.Equipment)
	multiplier := ElementMultiplier(card.Element, defenderElement)

	baseDamage := card.Power - armor
	if baseDamage < 0 {
		baseDamage = 0
	}
	damage := int(math.Floor(float64(baseDamage) * multiplier))

	statusApplied := ""
	if damage > 0 && rng.Float64() < statusChance {
		statusApplied = statusPool[rng.Intn(len(statusPool))]
	}

	next := state.Clone()
	nextTurnIndex := (state.CurrentTurnIndex + 1) % len(state.Players)

	for i := range next.Players {
		p := &next.Players[i]
		// ちょうど1人だけがisTurn=trueになる
		p.IsTurn = i == nextTurnIndex

		switch p.ID {
		case payload.PlayerID:
			p.MP = p.MP - card.Cost
			if p.MP < 0 {
				p.MP = 0
			}
			remaining := make([]models.Card, 0, len(p.Hand)-1)
			for _, c := range p.Hand {
				if c.ID != payload.CardID {
					remaining = append(remaining, c)
				}
			}
			p.Hand = remaining
		case payload.TargetID:
			p.HP = p.HP - damage
			if p.HP < 0 {
				p.HP = 0
			}
			if statusApplied != "" {
				p.StatusEffects = append(p.StatusEffects, statusApplied)
			}
		}
	}

	result := &PlayResult{
		Card:          *card,
		Damage:        damage,
		Multiplier:    multiplier,
		StatusApplied: statusApplied,
	}

	message := fmt.Sprintf("%sが%sに%dのダメージを与えた", attacker.Name, defender.Name, damage)
	if multiplier == 1.5 {
		message += "（効果抜群！）"
	} else if multiplier == 0.5 {
		message += "（効果今一つ...）"
	}
	if statusApplied != "" {
		message += fmt.Sprintf("（%s付与）", statusApplied)
	}

	next.GameLog = append(next.GameLog, models.GameLog{
		ID:        uuid.New().String(),
		Message:   message,
		Timestamp: time.Now().UnixMilli(),
	})
	next.CurrentTurnIndex = nextTurnIndex
	next.Phase = models.PhaseBattle

	return next, result, nil
}

// CreateInitialGameState は参加プレイヤーから初期ゲーム状態を作ります。
// 最初に参加したプレイヤー（先頭）が先攻です。
func CreateInitialGameState(players []models.Player) models.GameState {
	indexed := make([]models.Player, len(players))
	for i, p := range players {
		cloned := p.Clone()
		cloned.IsTurn = i == 0
		indexed[i] = cloned
	}
	return models.GameState{
		Players:          indexed,
		CurrentTurnIndex: 0,
		Phase:            models.PhaseSelect,
		GameLog:          []models.GameLog{},
	}
}

// FindDefeated はHPが0以下のプレイヤーのうち、ローテーション順で最初の
// 1人を返します。決着判定のタイブレークはこの「最初に見つかった敗者」です。
func FindDefeated(state models.GameState) (models.Player, bool) {
	for _, p := range state.Players {
		if p.HP <= 0 {
			return p, true
		}
	}
	return models.Player{}, false
}
