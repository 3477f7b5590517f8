package generator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/godfield-crew/KAMIFUDA-backend/internal/models"
)

// DefaultAPIURL はOpenAI互換のチャット補完エンドポイントです。
const DefaultAPIURL = "https://api.openai.com/v1/chat/completions"

// SkillService は自由文のお願いからスキルカードを1枚生成するサービスです。
// 外部のLLM APIを呼び出し、返答からJSONを抽出してカードに変換します。
// APIキーが無い場合やAPIが失敗した場合は、お願い文から決定的に導出した
// フォールバックカードを返します。
type SkillService struct {
	apiURL     string
	apiKey     string
	model      string
	httpClient *http.Client
	rng        *rand.Rand
}

// NewSkillService は新しい SkillService インスタンスを作成します。
//
// Parameters:
//   apiURL : チャット補完エンドポイント（空ならDefaultAPIURL）
//   apiKey : APIキー（空ならフォールバック生成のみ）
// Returns:
//   *SkillService: 初期化されたサービス
func NewSkillService(apiURL, apiKey string) *SkillService {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &SkillService{
		apiURL:     apiURL,
		apiKey:     apiKey,
		model:      "gpt-4o-mini",
		httpClient: &http.Client{Timeout: 30 * time.Second}, // LLMの応答は遅いのでタイムアウトを長めにする
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// chatRequest はチャット補完リクエストのボディです。
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse はチャット補完レスポンスのうち必要な部分です。
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

const systemPrompt = `あなたはカードバトルゲームのカードデザイナーです。
プレイヤーのお願いをもとに、スキルカードを1枚だけJSONで出力してください。
形式: {"name": "カード名", "element": "fire|water|earth|wind|thunder|light|dark|physical|none", "attack": 数値, "defense": 数値, "cost": 数値, "effect": "短い説明"}
JSON以外の文は出力しないでください。`

// GenerateCard はお願い文からスキルカードを1枚生成します。値の正規化
// （攻撃・防御・コストのクランプ）はカードへの変換時に行われます。
// APIキーが未設定の開発時はキーワードベースのフォールバック生成を使い、
// キー設定時のAPI失敗はそのままエラーとして返します（状態は変化しません）。
//
// Parameters:
//   prompt : プレイヤーのお願い文
// Returns:
//   models.Card: 生成されたカード
//   error      : お願い文が空の場合、またはAPI生成に失敗した場合
func (s *SkillService) GenerateCard(prompt string) (models.Card, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return models.Card{}, fmt.Errorf("お願い文が空です")
	}

	if s.apiKey == "" {
		log.Printf("[SkillService] APIキー未設定のためフォールバック生成を使用します")
		return s.fallbackCard(prompt), nil
	}

	ext, err := s.requestExternalCard(prompt)
	if err != nil {
		log.Printf("[SkillService] API生成に失敗しました: %v", err)
		return models.Card{}, fmt.Errorf("スキル生成に失敗しました: %w", err)
	}

	card, err := models.CardFromExternal(ext)
	if err != nil {
		log.Printf("[SkillService] 生成結果が不正です: %v", err)
		return models.Card{}, fmt.Errorf("スキル生成に失敗しました: %w", err)
	}
	log.Printf("[SkillService] Card generated: %s (%s, power=%d, cost=%d)", card.Name, card.Element, card.Power, card.Cost)
	return card, nil
}

// requestExternalCard はLLM APIを呼び出し、返答からExternalCardを抽出します。
func (s *SkillService) requestExternalCard(prompt string) (models.ExternalCard, error) {
	requestBody, err := json.Marshal(chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return models.ExternalCard{}, fmt.Errorf("リクエストボディのJSONエンコードに失敗しました: %w", err)
	}

	req, err := http.NewRequest("POST", s.apiURL, bytes.NewBuffer(requestBody))
	if err != nil {
		return models.ExternalCard{}, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return models.ExternalCard{}, fmt.Errorf("HTTPリクエストの送信に失敗しました: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.ExternalCard{}, fmt.Errorf("レスポンスボディの読み込みに失敗しました: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return models.ExternalCard{}, fmt.Errorf("APIからエラーレスポンスが返されました (ステータス: %d): %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return models.ExternalCard{}, fmt.Errorf("JSONレスポンスのパースに失敗しました: %w", err)
	}
	if chatResp.Error != nil {
		return models.ExternalCard{}, fmt.Errorf("APIエラー: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return models.ExternalCard{}, fmt.Errorf("APIレスポンスに候補がありません")
	}

	return extractCardJSON(chatResp.Choices[0].Message.Content)
}

// extractCardJSON はLLMの返答テキストから最初のJSONオブジェクトを抜き出して
// パースします。コードフェンスや前置きの文が混ざっていても動くようにします。
func extractCardJSON(content string) (models.ExternalCard, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return models.ExternalCard{}, fmt.Errorf("返答にJSONオブジェクトが含まれていません: %s", content)
	}

	var ext models.ExternalCard
	if err := json.Unmarshal([]byte(content[start:end+1]), &ext); err != nil {
		return models.ExternalCard{}, fmt.Errorf("カードJSONのパースに失敗しました: %w", err)
	}
	return ext, nil
}

// fallbackCard はお願い文のキーワードから属性を推測し、乱数で能力値を
// 決めた控えめなカードを返します。
func (s *SkillService) fallbackCard(prompt string) models.Card {
	element := guessElement(prompt)
	attack := 5 + s.rng.Intn(16)  // 5..20
	defense := s.rng.Intn(11)     // 0..10
	cost := 1 + s.rng.Intn(4)     // 1..4

	card, err := models.CardFromExternal(models.ExternalCard{
		ID:      "ai-" + uuid.New().String(),
		Name:    fallbackName(element),
		Element: string(element),
		Attack:  attack,
		Defense: defense,
		Cost:    cost,
		Effect:  "オリジナルスキル: " + truncate(prompt, 40),
	})
	if err != nil {
		// guessElementは必ず既知の属性を返すのでここには来ない
		log.Printf("[SkillService] フォールバック生成に失敗しました: %v", err)
	}
	return card
}

var elementKeywords = map[models.Element][]string{
	models.ElementFire:    {"火", "炎", "燃", "フレイム", "ファイア"},
	models.ElementWater:   {"水", "氷", "凍", "アクア", "ウォーター"},
	models.ElementEarth:   {"土", "岩", "大地", "アース"},
	models.ElementWind:    {"風", "嵐", "竜巻", "ウィンド"},
	models.ElementThunder: {"雷", "電", "サンダー"},
	models.ElementLight:   {"光", "聖", "ホーリー", "ライト"},
	models.ElementDark:    {"闇", "呪", "ダーク", "シャドウ"},
}

// guessElement はお願い文に含まれるキーワードから属性を推測します。
// 一致しなければ物理属性になります。
func guessElement(prompt string) models.Element {
	for _, element := range models.Elements {
		for _, keyword := range elementKeywords[element] {
			if strings.Contains(prompt, keyword) {
				return element
			}
		}
	}
	return models.ElementPhysical
}

func fallbackName(element models.Element) string {
	names := map[models.Element]string{
		models.ElementFire:     "即興の火炎撃",
		models.ElementWater:    "即興の水流撃",
		models.ElementEarth:    "即興の岩石撃",
		models.ElementWind:     "即興の旋風撃",
		models.ElementThunder:  "即興の雷撃",
		models.ElementLight:    "即興の閃光撃",
		models.ElementDark:     "即興の闇討ち",
		models.ElementPhysical: "即興の一撃",
	}
	if name, ok := names[element]; ok {
		return name
	}
	return "即興の一撃"
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}
