package models

import (
	"fmt"

	"github.com/google/uuid"
)

// CardKind はカードの種別を表します。
type CardKind string

const (
	KindWeapon  CardKind = "weapon"  // 武器（攻撃）
	KindArmor   CardKind = "armor"   // 防具（防御）
	KindItem    CardKind = "item"    // 道具
	KindMiracle CardKind = "miracle" // 奇跡
)

// Element はカードの属性を表します。相性テーブルの入力になります。
type Element string

const (
	ElementPhysical Element = "physical"
	ElementFire     Element = "fire"
	ElementWater    Element = "water"
	ElementEarth    Element = "earth"
	ElementWind     Element = "wind"
	ElementThunder  Element = "thunder"
	ElementLight    Element = "light"
	ElementDark     Element = "dark"
	ElementNone     Element = "none"
)

// Elements は none を除く8属性の一覧です（相性テーブルの定義域）。
var Elements = []Element{
	ElementPhysical,
	ElementFire,
	ElementWater,
	ElementEarth,
	ElementWind,
	ElementThunder,
	ElementLight,
	ElementDark,
}

// IsValidElement は e が定義済みの属性（none 含む）かどうかを返します。
func IsValidElement(e Element) bool {
	if e == ElementNone {
		return true
	}
	for _, known := range Elements {
		if e == known {
			return true
		}
	}
	return false
}

// Card は1枚の物理的なカードインスタンスを表す不変の値です。
// ID はインスタンスごとに一意で、定義IDとは別物です（同名カードが
// 同じデッキに複数枚入るため、手札/山札/捨て札の追跡に必要）。
// 「使用」は手札からの除去と捨て札への追加であり、Card自体は変化しません。
type Card struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Kind        CardKind `json:"type"`
	Element     Element  `json:"element"`
	Power       int      `json:"value"`
	Cost        int      `json:"cost"`
	Description string   `json:"description,omitempty"`
}

// AI生成カードの数値クランプ境界。外部サービスの出力は信用しない。
const (
	GeneratedAttackMax  = 30
	GeneratedDefenseMax = 20
	GeneratedCostMin    = 1
	GeneratedCostMax    = 5
	GeneratedPowerMin   = 1
	GeneratedPowerMax   = 50
)

// ExternalCard は外部のカード生成サービスから届く未検証のペイロードです。
// フィールドは欠けている可能性があり、数値は範囲外の可能性があります。
type ExternalCard struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Cost    int    `json:"cost"`
	Effect  string `json:"effect"`
	Attack  int    `json:"attack"`
	Defense int    `json:"defense"`
	Element string `json:"element"`
}

// CardFromExternal は外部ペイロードを検証・クランプして正規のCardを構築します。
// これが外部入力とゲーム状態の境界であり、ここを通らないカードは
// デッキにも手札にも入りません。
//
// Returns:
//
//	Card : 検証済みのカード（kind は miracle 固定）
//	error: 名前が空など、クランプで救済できない場合
func CardFromExternal(ext ExternalCard) (Card, error) {
	if ext.Name == "" {
		return Card{}, fmt.Errorf("生成カードに名前がありません")
	}

	element := ElementNone
	if ext.Element != "" {
		if !IsValidElement(Element(ext.Element)) {
			return Card{}, fmt.Errorf("不明な属性です: %q", ext.Element)
		}
		element = Element(ext.Element)
	}

	attack := clampInt(ext.Attack, 0, GeneratedAttackMax)
	defense := clampInt(ext.Defense, 0, GeneratedDefenseMax)
	cost := clampInt(ext.Cost, GeneratedCostMin, GeneratedCostMax)
	power := clampInt(attack+defense+cost*2, GeneratedPowerMin, GeneratedPowerMax)

	id := ext.ID
	if id == "" {
		id = "ai-" + uuid.New().String()
	}

	return Card{
		ID:          id,
		Name:        ext.Name,
		Kind:        KindMiracle,
		Element:     element,
		Power:       power,
		Cost:        cost,
		Description: ext.Effect,
	}, nil
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
