package game

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/godfield-crew/KAMIFUDA-backend/internal/models"
)

// DefaultDeckSize は新規ルーム作成時のデッキ枚数です。
const DefaultDeckSize = 60

// DeckState はルーム1つ分の山札と捨て札を所有します。
// カードインスタンスは常に {いずれかの手札, 山札, 捨て札} のうち
// ちょうど1箇所にだけ存在します。例外は持ち込みカードで、手札配布と
// 山札混入を同時に行うため同じIDが2箇所に並存しえます。
// ロックは持たないので、並行アクセスの直列化は所有者であるRoom側の責務です。
type DeckState struct {
	drawPile    []models.Card
	discardPile []models.Card
	rng         *rand.Rand
}

// NewDeckState は初期山札からDeckStateを作ります。
func NewDeckState(cards []models.Card, rng *rand.Rand) *DeckState {
	return &DeckState{
		drawPile:    append([]models.Card(nil), cards...),
		discardPile: []models.Card{},
		rng:         rng,
	}
}

// BuildDeck はカタログ全体から重複ありでsize枚をサンプリングし、
// シャッフル済みのデッキを返します。同じ定義から引かれたコピーでも
// 衝突しないよう、コピーごとに一意なインスタンスIDを採番します。
// カタログが空やsizeが0以下の場合はnilを返すので、呼び出し側は
// DefaultDeckに切り替えられます。
func BuildDeck(size int, rng *rand.Rand) []models.Card {
	if size <= 0 || len(cardMaster) == 0 {
		return nil
	}
	deck := make([]models.Card, 0, size)
	for i := 0; i < size; i++ {
		card := cardMaster[rng.Intn(len(cardMaster))]
		card.ID = fmt.Sprintf("%s-%s", card.ID, uuid.New().String())
		deck = append(deck, card)
	}
	return Shuffle(deck, rng)
}

// DefaultDeck は決定的なフォールバックデッキを返します。
// カタログを固定順で巡回し、インスタンスIDも連番で採番するため、
// 生成やデッキ構築が失敗したときの代替として毎回同じ内容になります。
func DefaultDeck(size int) []models.Card {
	deck := make([]models.Card, 0, size)
	for i := 0; i < size; i++ {
		card := cardMaster[i%len(cardMaster)]
		card.ID = fmt.Sprintf("fallback-%d-%s", i, card.ID)
		deck = append(deck, card)
	}
	return deck
}

// Shuffle は一様ランダムな並べ替え（Fisher-Yates）をしたコピーを返します。
func Shuffle(cards []models.Card, rng *rand.Rand) []models.Card {
	out := append([]models.Card(nil), cards...)
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// Draw は山札の先頭から最大count枚を取り除いて返します。
// 山札が尽きたら捨て札をシャッフルして山札に戻してから続行します。
// どこにもカードが残っていなければ、そこまでに集めた分だけを返します
// （枚数不足はエラーではなく、観測可能な不足です）。
func (d *DeckState) Draw(count int) []models.Card {
	drawn := make([]models.Card, 0, count)
	for i := 0; i < count; i++ {
		if len(d.drawPile) == 0 {
			if len(d.discardPile) == 0 {
				break
			}
			d.drawPile = Shuffle(d.discardPile, d.rng)
			d.discardPile = []models.Card{}
		}
		drawn = append(drawn, d.drawPile[0])
		d.drawPile = d.drawPile[1:]
	}
	return drawn
}

// Discard はカードを捨て札の末尾に追加します。
func (d *DeckState) Discard(card models.Card) {
	d.discardPile = append(d.discardPile, card)
}

// ShuffleIn はカードを山札に混ぜ込みます（AI生成カードの注入用）。
func (d *DeckState) ShuffleIn(card models.Card) {
	d.drawPile = Shuffle(append(d.drawPile, card), d.rng)
}

// DrawPileSize は山札の残り枚数を返します。
func (d *DeckState) DrawPileSize() int {
	return len(d.drawPile)
}

// DiscardPileSize は捨て札の枚数を返します。
func (d *DeckState) DiscardPileSize() int {
	return len(d.discardPile)
}
