package game

import (
	"github.com/godfield-crew/KAMIFUDA-backend/internal/models"
)

// ゴッドフィールド風カードマスターデータ（全54種類）。
// プロセス起動時に固定され、変更APIはありません。
// 各エントリは「定義」であり、デッキ構築時にインスタンスIDが別途採番されます。

// weaponCards は武器カード（攻撃）15種類です。
var weaponCards = []models.Card{
	// 火属性武器
	{ID: "w001", Name: "炎帝の剣", Kind: models.KindWeapon, Power: 28, Cost: 5, Element: models.ElementFire, Description: "灼熱の刃が敵を焼き尽くす"},
	{ID: "w002", Name: "紅蓮の槍", Kind: models.KindWeapon, Power: 25, Cost: 4, Element: models.ElementFire, Description: "業火を纏った槍で貫く"},
	{ID: "w003", Name: "焔の短剣", Kind: models.KindWeapon, Power: 18, Cost: 3, Element: models.ElementFire, Description: "素早く燃える刃で切り裂く"},

	// 水属性武器
	{ID: "w004", Name: "氷晶の剣", Kind: models.KindWeapon, Power: 26, Cost: 4, Element: models.ElementWater, Description: "凍てつく刃が敵を凍らせる"},
	{ID: "w005", Name: "蒼海の三叉槍", Kind: models.KindWeapon, Power: 30, Cost: 5, Element: models.ElementWater, Description: "海神の力を宿す三叉の槍"},
	{ID: "w006", Name: "水流の短剣", Kind: models.KindWeapon, Power: 20, Cost: 3, Element: models.ElementWater, Description: "流水のように滑らかに斬る"},

	// 土属性武器
	{ID: "w007", Name: "世界樹の弓", Kind: models.KindWeapon, Power: 24, Cost: 4, Element: models.ElementEarth, Description: "生命の力を矢に込めて放つ"},
	{ID: "w008", Name: "森羅の杖", Kind: models.KindWeapon, Power: 22, Cost: 3, Element: models.ElementEarth, Description: "自然の怒りを呼び起こす"},
	{ID: "w009", Name: "翠玉の鞭", Kind: models.KindWeapon, Power: 19, Cost: 3, Element: models.ElementEarth, Description: "蔦のように敵を拘束する"},

	// 光属性武器
	{ID: "w010", Name: "聖剣エクスカリバー", Kind: models.KindWeapon, Power: 32, Cost: 6, Element: models.ElementLight, Description: "選ばれし者だけが扱える聖剣"},
	{ID: "w011", Name: "天使の弓", Kind: models.KindWeapon, Power: 27, Cost: 4, Element: models.ElementLight, Description: "聖なる光の矢を射る"},
	{ID: "w012", Name: "煌めきの槍", Kind: models.KindWeapon, Power: 23, Cost: 3, Element: models.ElementLight, Description: "輝く穂先が闇を貫く"},

	// 闇属性武器
	{ID: "w013", Name: "魔剣グラム", Kind: models.KindWeapon, Power: 30, Cost: 5, Element: models.ElementDark, Description: "呪われた魔剣、使用者の魂を喰らう"},
	{ID: "w014", Name: "冥府の鎌", Kind: models.KindWeapon, Power: 29, Cost: 5, Element: models.ElementDark, Description: "死神の鎌が魂を刈り取る"},
	{ID: "w015", Name: "闇夜の短剣", Kind: models.KindWeapon, Power: 21, Cost: 3, Element: models.ElementDark, Description: "影に潜んで急所を狙う"},
}

// armorCards は防具カード（防御）15種類です。
var armorCards = []models.Card{
	// 火属性防具
	{ID: "a001", Name: "炎竜の鎧", Kind: models.KindArmor, Power: 15, Cost: 0, Element: models.ElementFire, Description: "竜の鱗で作られた灼熱の鎧"},
	{ID: "a002", Name: "業火の盾", Kind: models.KindArmor, Power: 12, Cost: 0, Element: models.ElementFire, Description: "炎を纏う盾で攻撃を防ぐ"},
	{ID: "a003", Name: "紅蓮の籠手", Kind: models.KindArmor, Power: 10, Cost: 0, Element: models.ElementFire, Description: "燃える拳で反撃する"},

	// 水属性防具
	{ID: "a004", Name: "氷河の盾", Kind: models.KindArmor, Power: 14, Cost: 0, Element: models.ElementWater, Description: "永久凍土の氷で作られた盾"},
	{ID: "a005", Name: "深海の鎧", Kind: models.KindArmor, Power: 16, Cost: 0, Element: models.ElementWater, Description: "水圧に耐える深海の鎧"},
	{ID: "a006", Name: "水晶の兜", Kind: models.KindArmor, Power: 11, Cost: 0, Element: models.ElementWater, Description: "透明な水晶で頭部を守る"},

	// 土属性防具
	{ID: "a007", Name: "大地の鎧", Kind: models.KindArmor, Power: 18, Cost: 0, Element: models.ElementEarth, Description: "岩盤のように硬い鎧"},
	{ID: "a008", Name: "森の盾", Kind: models.KindArmor, Power: 13, Cost: 0, Element: models.ElementEarth, Description: "生命力が宿る木の盾"},
	{ID: "a009", Name: "樹皮の鎧", Kind: models.KindArmor, Power: 12, Cost: 0, Element: models.ElementEarth, Description: "古木の樹皮で作られた鎧"},

	// 光属性防具
	{ID: "a010", Name: "天使の鎧", Kind: models.KindArmor, Power: 17, Cost: 0, Element: models.ElementLight, Description: "聖なる光が身を守る"},
	{ID: "a011", Name: "聖なる盾", Kind: models.KindArmor, Power: 15, Cost: 0, Element: models.ElementLight, Description: "邪悪を跳ね返す聖盾"},
	{ID: "a012", Name: "光の結界", Kind: models.KindArmor, Power: 14, Cost: 0, Element: models.ElementLight, Description: "光の膜が全身を包む"},

	// 闇属性防具
	{ID: "a013", Name: "魔王の鎧", Kind: models.KindArmor, Power: 19, Cost: 0, Element: models.ElementDark, Description: "闇の力を纏う漆黒の鎧"},
	{ID: "a014", Name: "冥府の盾", Kind: models.KindArmor, Power: 16, Cost: 0, Element: models.ElementDark, Description: "死者の魂が守る盾"},
	{ID: "a015", Name: "影の外套", Kind: models.KindArmor, Power: 13, Cost: 0, Element: models.ElementDark, Description: "影に身を隠す外套"},
}

// miracleCards は奇跡カード12種類です。
var miracleCards = []models.Card{
	{ID: "m001", Name: "炎神の怒り", Kind: models.KindMiracle, Power: 35, Cost: 7, Element: models.ElementFire, Description: "炎の神が天より火柱を降らせる"},
	{ID: "m002", Name: "大洪水", Kind: models.KindMiracle, Power: 32, Cost: 6, Element: models.ElementWater, Description: "全てを飲み込む津波を召喚"},
	{ID: "m003", Name: "大地震", Kind: models.KindMiracle, Power: 30, Cost: 6, Element: models.ElementEarth, Description: "大地を揺るがす地震を起こす"},
	{ID: "m004", Name: "神の裁き", Kind: models.KindMiracle, Power: 40, Cost: 8, Element: models.ElementLight, Description: "天からの光線が敵を裁く"},
	{ID: "m005", Name: "魔王降臨", Kind: models.KindMiracle, Power: 38, Cost: 8, Element: models.ElementDark, Description: "魔王を召喚して敵を滅ぼす"},
	{ID: "m006", Name: "火炎嵐", Kind: models.KindMiracle, Power: 28, Cost: 5, Element: models.ElementFire, Description: "炎の竜巻が敵を焼き尽くす"},
	{ID: "m007", Name: "氷結世界", Kind: models.KindMiracle, Power: 26, Cost: 5, Element: models.ElementWater, Description: "全てを凍らせる吹雪を起こす"},
	{ID: "m008", Name: "森羅万象", Kind: models.KindMiracle, Power: 25, Cost: 5, Element: models.ElementEarth, Description: "自然の力を総動員して攻撃"},
	{ID: "m009", Name: "聖域展開", Kind: models.KindMiracle, Power: 0, Cost: 4, Element: models.ElementLight, Description: "聖なる結界で味方全員を守る"},
	{ID: "m010", Name: "暗黒領域", Kind: models.KindMiracle, Power: 27, Cost: 5, Element: models.ElementDark, Description: "闇の空間で敵の力を奪う"},
	{ID: "m011", Name: "天罰", Kind: models.KindMiracle, Power: 33, Cost: 7, Element: models.ElementLight, Description: "雷を伴う神の怒りが降り注ぐ"},
	{ID: "m012", Name: "黒き終焉", Kind: models.KindMiracle, Power: 36, Cost: 7, Element: models.ElementDark, Description: "全てを終わらせる闇の波動"},
}

// itemCards は道具カード12種類です。
var itemCards = []models.Card{
	{ID: "i001", Name: "生命の薬", Kind: models.KindItem, Power: 0, Cost: 2, Element: models.ElementNone, Description: "HPを50回復する"},
	{ID: "i002", Name: "魔力の薬", Kind: models.KindItem, Power: 0, Cost: 1, Element: models.ElementNone, Description: "MPを30回復する"},
	{ID: "i003", Name: "万能薬", Kind: models.KindItem, Power: 0, Cost: 3, Element: models.ElementNone, Description: "HP・MPを全回復する"},
	{ID: "i004", Name: "火炎石", Kind: models.KindItem, Power: 15, Cost: 2, Element: models.ElementFire, Description: "火の魔力を解放する石"},
	{ID: "i005", Name: "水晶球", Kind: models.KindItem, Power: 15, Cost: 2, Element: models.ElementWater, Description: "水の力を引き出す球"},
	{ID: "i006", Name: "大地の結晶", Kind: models.KindItem, Power: 15, Cost: 2, Element: models.ElementEarth, Description: "大地のエネルギーを込めた結晶"},
	{ID: "i007", Name: "聖水", Kind: models.KindItem, Power: 12, Cost: 2, Element: models.ElementLight, Description: "邪悪を浄化する聖なる水"},
	{ID: "i008", Name: "呪いの人形", Kind: models.KindItem, Power: 18, Cost: 3, Element: models.ElementDark, Description: "敵に呪いをかける人形"},
	{ID: "i009", Name: "速さの靴", Kind: models.KindItem, Power: 0, Cost: 1, Element: models.ElementNone, Description: "次のターンまで先制攻撃"},
	{ID: "i010", Name: "鋼の盾", Kind: models.KindItem, Power: 8, Cost: 0, Element: models.ElementNone, Description: "一度だけダメージを軽減"},
	{ID: "i011", Name: "不死鳥の羽", Kind: models.KindItem, Power: 0, Cost: 4, Element: models.ElementFire, Description: "HPが0になっても一度だけ復活"},
	{ID: "i012", Name: "時の砂時計", Kind: models.KindItem, Power: 0, Cost: 5, Element: models.ElementNone, Description: "ターンを1つ戻す"},
}

// cardMaster は全カードマスターデータ（54種類）です。
var cardMaster = buildCardMaster()

func buildCardMaster() []models.Card {
	master := make([]models.Card, 0, len(weaponCards)+len(armorCards)+len(miracleCards)+len(itemCards))
	master = append(master, weaponCards...)
	master = append(master, armorCards...)
	master = append(master, miracleCards...)
	master = append(master, itemCards...)
	return master
}

// CatalogSize はカタログに登録されている定義数を返します。
func CatalogSize() int {
	return len(cardMaster)
}

// DefinitionByID は定義IDからカード定義を取得します。
//
// Returns:
//
//	models.Card: 見つかったカード定義
//	bool       : 見つかったかどうか
func DefinitionByID(cardID string) (models.Card, bool) {
	for _, card := range cardMaster {
		if card.ID == cardID {
			return card, true
		}
	}
	return models.Card{}, false
}

// DefinitionsByKind は種別でカード定義を絞り込みます。
func DefinitionsByKind(kind models.CardKind) []models.Card {
	var out []models.Card
	for _, card := range cardMaster {
		if card.Kind == kind {
			out = append(out, card)
		}
	}
	return out
}

// DefinitionsByElement は属性でカード定義を絞り込みます。
func DefinitionsByElement(element models.Element) []models.Card {
	var out []models.Card
	for _, card := range cardMaster {
		if card.Element == element {
			out = append(out, card)
		}
	}
	return out
}
