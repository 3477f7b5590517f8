package game

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/godfield-crew/KAMIFUDA-backend/internal/models"
)

// newTestState は§のシナリオ用の2人対戦状態を作るヘルパーです。
// p1は火属性カード（威力20/コスト5）を1枚持ち、p2は土属性の防具（防御5）を装備しています。
func newTestState() models.GameState {
	p1 := models.Player{
		ID:   "p1",
		Name: "勇者",
		HP:   100,
		MP:   50,
		Hand: []models.Card{
			{ID: "card-1", Name: "焔の短剣", Kind: models.KindWeapon, Element: models.ElementFire, Power: 20, Cost: 5},
		},
		Equipment:     []models.Card{},
		StatusEffects: []string{},
	}
	p2 := models.Player{
		ID:   "p2",
		Name: "魔王",
		HP:   100,
		MP:   50,
		Hand: []models.Card{},
		Equipment: []models.Card{
			{ID: "armor-1", Name: "森の盾", Kind: models.KindArmor, Element: models.ElementEarth, Power: 5},
		},
		StatusEffects: []string{},
	}
	return CreateInitialGameState([]models.Player{p1, p2})
}

func testPayload() models.PlayCardPayload {
	return models.PlayCardPayload{
		RoomID:   "room-1",
		PlayerID: "p1",
		TargetID: "p2",
		CardID:   "card-1",
	}
}

// TestElementMultiplier_AdvantageTable は相性テーブルが仕様どおり
// 非対称なまま再現されていることを確認します。
func TestElementMultiplier_AdvantageTable(t *testing.T) {
	advantaged := map[models.Element]models.Element{
		models.ElementFire:    models.ElementEarth,
		models.ElementWater:   models.ElementFire,
		models.ElementEarth:   models.ElementWater,
		models.ElementWind:    models.ElementEarth,
		models.ElementThunder: models.ElementWater,
		models.ElementLight:   models.ElementDark,
		models.ElementDark:    models.ElementLight,
	}

	for attack, defense := range advantaged {
		if got := ElementMultiplier(attack, defense); got != 1.5 {
			t.Errorf("ElementMultiplier(%s, %s) = %v, want 1.5", attack, defense, got)
		}
		// 逆向きは0.5倍
		if got := ElementMultiplier(defense, attack); got != 0.5 {
			t.Errorf("ElementMultiplier(%s, %s) = %v, want 0.5", defense, attack, got)
		}
	}

	// 物理は有利な相手を持たない
	for _, defense := range models.Elements {
		if got := ElementMultiplier(models.ElementPhysical, defense); got != 1.0 {
			t.Errorf("ElementMultiplier(physical, %s) = %v, want 1.0", defense, got)
		}
	}
}

// TestElementMultiplier_Totality は8×8全組み合わせで倍率が
// {0.5, 1.0, 1.5} のいずれかになること、noneを含む組は常に等倍に
// なることを確認します。
func TestElementMultiplier_Totality(t *testing.T) {
	for _, attack := range models.Elements {
		for _, defense := range models.Elements {
			got := ElementMultiplier(attack, defense)
			if got != 0.5 && got != 1.0 && got != 1.5 {
				t.Errorf("ElementMultiplier(%s, %s) = %v, want one of 0.5/1.0/1.5", attack, defense, got)
			}
		}
	}

	for _, e := range models.Elements {
		if got := ElementMultiplier(models.ElementNone, e); got != 1.0 {
			t.Errorf("ElementMultiplier(none, %s) = %v, want 1.0", e, got)
		}
		if got := ElementMultiplier(e, models.ElementNone); got != 1.0 {
			t.Errorf("ElementMultiplier(%s, none) = %v, want 1.0", e, got)
		}
	}
	if got := ElementMultiplier(models.ElementNone, models.ElementNone); got != 1.0 {
		t.Errorf("ElementMultiplier(none, none) = %v, want 1.0", got)
	}
}

// TestApplyPlayCard_FireAgainstEarth は基準シナリオです:
// 威力20のカード vs 防御5・土装備 → 火は土に有利なので
// damage = floor((20-5)*1.5) = 22。
func TestApplyPlayCard_FireAgainstEarth(t *testing.T) {
	state := newTestState()
	rng := rand.New(rand.NewSource(1))

	next, result, err := ApplyPlayCard(state, testPayload(), rng)
	if err != nil {
		t.Fatalf("ApplyPlayCard returned error: %v", err)
	}

	if result.Damage != 22 {
		t.Errorf("Damage = %d, want 22", result.Damage)
	}
	if result.Multiplier != 1.5 {
		t.Errorf("Multiplier = %v, want 1.5", result.Multiplier)
	}

	_, p1 := next.FindPlayer("p1")
	_, p2 := next.FindPlayer("p2")
	if p2.HP != 78 {
		t.Errorf("p2.HP = %d, want 78", p2.HP)
	}
	if p1.MP != 45 {
		t.Errorf("p1.MP = %d, want 45", p1.MP)
	}
	if len(p1.Hand) != 0 {
		t.Errorf("p1.Hand length = %d, want 0", len(p1.Hand))
	}
	if next.CurrentTurnIndex != 1 {
		t.Errorf("CurrentTurnIndex = %d, want 1", next.CurrentTurnIndex)
	}
	if next.Phase != models.PhaseBattle {
		t.Errorf("Phase = %s, want battle", next.Phase)
	}
	if len(next.GameLog) != 1 {
		t.Errorf("GameLog length = %d, want 1", len(next.GameLog))
	}
}

// TestApplyPlayCard_CardNotInHand は既に使用済みのカードIDでの再送が
// 状態変化なしで拒否されることを確認します（冪等性ガード）。
func TestApplyPlayCard_CardNotInHand(t *testing.T) {
	state := newTestState()
	rng := rand.New(rand.NewSource(1))

	payload := testPayload()
	payload.CardID = "already-played"

	next, result, err := ApplyPlayCard(state, payload, rng)
	if err != ErrCardNotInHand {
		t.Fatalf("err = %v, want ErrCardNotInHand", err)
	}
	if result != nil {
		t.Error("Expected nil result on rejection")
	}
	if !reflect.DeepEqual(next, state) {
		t.Error("State changed on rejected action")
	}
	if len(next.GameLog) != 0 {
		t.Errorf("GameLog length = %d, want 0 (no log entry on rejection)", len(next.GameLog))
	}
}

// TestApplyPlayCard_UnknownPlayers は攻撃側・対象が見つからない場合の拒否を確認します。
func TestApplyPlayCard_UnknownPlayers(t *testing.T) {
	state := newTestState()
	rng := rand.New(rand.NewSource(1))

	payload := testPayload()
	payload.PlayerID = "ghost"
	if _, _, err := ApplyPlayCard(state, payload, rng); err != ErrPlayerNotFound {
		t.Errorf("err = %v, want ErrPlayerNotFound", err)
	}

	payload = testPayload()
	payload.TargetID = "ghost"
	if _, _, err := ApplyPlayCard(state, payload, rng); err != ErrTargetNotFound {
		t.Errorf("err = %v, want ErrTargetNotFound", err)
	}
}

// TestApplyPlayCard_Whiff は防御力がカード威力以上の場合でも、
// カード消費・MP消費・ターン進行が起きることを確認します。
// 空振りは正常な解決であり、エラーではありません。
func TestApplyPlayCard_Whiff(t *testing.T) {
	state := newTestState()
	// p2の防御をカード威力以上に引き上げる
	state.Players[1].Equipment = []models.Card{
		{ID: "armor-big", Name: "魔王の鎧", Kind: models.KindArmor, Element: models.ElementDark, Power: 30},
	}
	rng := rand.New(rand.NewSource(1))

	next, result, err := ApplyPlayCard(state, testPayload(), rng)
	if err != nil {
		t.Fatalf("ApplyPlayCard returned error: %v", err)
	}
	if result.Damage != 0 {
		t.Errorf("Damage = %d, want 0", result.Damage)
	}
	if result.StatusApplied != "" {
		t.Error("Status must not be applied when damage is 0")
	}

	_, p1 := next.FindPlayer("p1")
	_, p2 := next.FindPlayer("p2")
	if p2.HP != 100 {
		t.Errorf("p2.HP = %d, want 100", p2.HP)
	}
	if p1.MP != 45 {
		t.Errorf("p1.MP = %d, want 45 (cost still consumed)", p1.MP)
	}
	if len(p1.Hand) != 0 {
		t.Error("Card must still be consumed on a whiff")
	}
	if next.CurrentTurnIndex != 1 {
		t.Errorf("CurrentTurnIndex = %d, want 1 (turn still advances)", next.CurrentTurnIndex)
	}
}

// TestApplyPlayCard_Floors はHP/MPが0未満にならないことを確認します。
func TestApplyPlayCard_Floors(t *testing.T) {
	state := newTestState()
	state.Players[0].MP = 2                    // コスト5のカードに対してMP不足
	state.Players[1].HP = 10                   // ダメージ22に対してHP不足
	state.Players[1].Equipment[0].Power = 5    // 防御はそのまま
	rng := rand.New(rand.NewSource(1))

	next, _, err := ApplyPlayCard(state, testPayload(), rng)
	if err != nil {
		t.Fatalf("ApplyPlayCard returned error: %v", err)
	}

	_, p1 := next.FindPlayer("p1")
	_, p2 := next.FindPlayer("p2")
	if p1.MP != 0 {
		t.Errorf("p1.MP = %d, want 0 (clamped)", p1.MP)
	}
	if p2.HP != 0 {
		t.Errorf("p2.HP = %d, want 0 (clamped)", p2.HP)
	}
}

// TestApplyPlayCard_Deterministic は同じシードなら同じ結果になることを確認します。
func TestApplyPlayCard_Deterministic(t *testing.T) {
	state := newTestState()

	next1, result1, err1 := ApplyPlayCard(state, testPayload(), rand.New(rand.NewSource(42)))
	next2, result2, err2 := ApplyPlayCard(state, testPayload(), rand.New(rand.NewSource(42)))
	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected errors: %v, %v", err1, err2)
	}

	if result1.Damage != result2.Damage || result1.StatusApplied != result2.StatusApplied {
		t.Errorf("Results differ for same seed: %+v vs %+v", result1, result2)
	}
	if !reflect.DeepEqual(next1.Players, next2.Players) {
		t.Error("Player states differ for same seed")
	}
}

// TestApplyPlayCard_DoesNotMutateInput はリゾルバが入力状態を
// 変更しないこと（純粋関数であること）を確認します。
func TestApplyPlayCard_DoesNotMutateInput(t *testing.T) {
	state := newTestState()
	before := state.Clone()
	rng := rand.New(rand.NewSource(1))

	if _, _, err := ApplyPlayCard(state, testPayload(), rng); err != nil {
		t.Fatalf("ApplyPlayCard returned error: %v", err)
	}

	if !reflect.DeepEqual(before, state) {
		t.Error("ApplyPlayCard mutated its input state")
	}
}

// TestApplyPlayCard_TurnRotation は解決後にちょうど1人だけが
// isTurn=trueになり、それが (旧index+1) mod 人数 のプレイヤーであることを
// 確認します。
func TestApplyPlayCard_TurnRotation(t *testing.T) {
	state := newTestState()
	rng := rand.New(rand.NewSource(1))

	next, _, err := ApplyPlayCard(state, testPayload(), rng)
	if err != nil {
		t.Fatalf("ApplyPlayCard returned error: %v", err)
	}

	turnCount := 0
	for i, p := range next.Players {
		if p.IsTurn {
			turnCount++
			if i != next.CurrentTurnIndex {
				t.Errorf("isTurn is on index %d, but CurrentTurnIndex is %d", i, next.CurrentTurnIndex)
			}
		}
	}
	if turnCount != 1 {
		t.Errorf("isTurn=true player count = %d, want exactly 1", turnCount)
	}
}

// TestApplyPlayCard_StatusRoll は状態異常ロールの観測的な性質を確認します:
// 多数回の解決で付与はゼロでも全回でもなく、付与された名前は必ず候補プールに
// 含まれます。
func TestApplyPlayCard_StatusRoll(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	pool := map[string]bool{"気絶": true, "炎上": true, "凍結": true, "呪い": true}

	applied := 0
	const trials = 200
	for i := 0; i < trials; i++ {
		state := newTestState()
		next, result, err := ApplyPlayCard(state, testPayload(), rng)
		if err != nil {
			t.Fatalf("ApplyPlayCard returned error: %v", err)
		}
		if result.StatusApplied != "" {
			applied++
			if !pool[result.StatusApplied] {
				t.Errorf("Applied status %q is not in the fixed pool", result.StatusApplied)
			}
			_, p2 := next.FindPlayer("p2")
			if len(p2.StatusEffects) != 1 || p2.StatusEffects[0] != result.StatusApplied {
				t.Errorf("Defender statusEffects = %v, want [%s]", p2.StatusEffects, result.StatusApplied)
			}
		}
	}

	if applied == 0 || applied == trials {
		t.Errorf("Status applied %d/%d times, expected strictly between 0 and %d", applied, trials, trials)
	}
}

// TestCreateInitialGameState は先頭プレイヤーが先攻で、フェーズが
// selectであることを確認します。
func TestCreateInitialGameState(t *testing.T) {
	state := newTestState()

	if !state.Players[0].IsTurn {
		t.Error("First joiner must have the first turn")
	}
	if state.Players[1].IsTurn {
		t.Error("Second player must not have the turn initially")
	}
	if state.CurrentTurnIndex != 0 {
		t.Errorf("CurrentTurnIndex = %d, want 0", state.CurrentTurnIndex)
	}
	if state.Phase != models.PhaseSelect {
		t.Errorf("Phase = %s, want select", state.Phase)
	}
}

// TestFindDefeated はローテーション順で最初に見つかった敗者が返ることを確認します。
func TestFindDefeated(t *testing.T) {
	state := newTestState()
	if _, found := FindDefeated(state); found {
		t.Error("No player should be defeated initially")
	}

	state.Players[1].HP = 0
	loser, found := FindDefeated(state)
	if !found {
		t.Fatal("Expected a defeated player")
	}
	if loser.ID != "p2" {
		t.Errorf("Loser = %s, want p2", loser.ID)
	}

	// 同時に複数が0なら、ローテーション順で先のプレイヤーが敗者
	state.Players[0].HP = 0
	loser, _ = FindDefeated(state)
	if loser.ID != "p1" {
		t.Errorf("Loser = %s, want p1 (first in player order)", loser.ID)
	}
}
