package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/godfield-crew/KAMIFUDA-backend/internal/api/middleware"
	"github.com/godfield-crew/KAMIFUDA-backend/internal/services/battle"
	"github.com/godfield-crew/KAMIFUDA-backend/internal/services/generator"
)

// upgrader はHTTP接続をWebSocketプロトコルにアップグレードするための設定です。
// CheckOrigin はクロスオリジンリクエストを許可するかどうかを制御します。
// 開発中は true で良いですが、本番環境では適切な Origin チェックを行うべきです。
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// すべてのOriginからの接続を許可 (開発用)
		return true
	},
}

// GameHandler は対戦関連のHTTPリクエスト（WebSocket接続、スキル生成、
// ルーム状態取得）を処理します。
type GameHandler struct {
	sessionManager *battle.SessionManager
	skillService   *generator.SkillService
}

// NewGameHandler は新しい GameHandler インスタンスを作成します。
//
// Parameters:
//   sm    : セッションマネージャーへのポインタ
//   skill : スキル生成サービスへのポインタ
// Returns:
//   *GameHandler: 新しく作成された GameHandler のポインタ
func NewGameHandler(sm *battle.SessionManager, skill *generator.SkillService) *GameHandler {
	return &GameHandler{
		sessionManager: sm,
		skillService:   skill,
	}
}

// WriteErrorResponse はエラーレスポンスをJSON形式で書き込みます。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// WriteJSONResponse はJSONレスポンスを書き込みます。
func WriteJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// HealthCheck は死活監視用のエンドポイントです。
func (h *GameHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	WriteJSONResponse(w, http.StatusOK, map[string]bool{"ok": true})
}

// GenerateSkill はお願い文からスキルカードを1枚生成するHTTPハンドラーです。
// 生成されたカードはそのままレスポンスで返すだけで、ルームへの持ち込みは
// WebSocket側のsend-skillイベントで行います。
func (h *GameHandler) GenerateSkill(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "リクエストボディのパースに失敗しました")
		return
	}
	if req.Prompt == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "お願い文が必要です")
		return
	}

	card, err := h.skillService.GenerateCard(req.Prompt)
	if err != nil {
		WriteErrorResponse(w, http.StatusBadGateway, err.Error())
		return
	}

	// JWT運用時は生成したカードを要求ユーザーに紐付けて記録する
	if userID, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		log.Printf("[GameHandler] Card %s generated for user %s", card.ID, userID)
	} else {
		log.Printf("[GameHandler] Card %s generated", card.ID)
	}

	WriteJSONResponse(w, http.StatusOK, map[string]interface{}{"card": card})
}

// GetRoomStatus は特定のルームの現在の状態を返すハンドラーです。（デバッグやルーム一覧表示用）
func (h *GameHandler) GetRoomStatus(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomID"]
	if roomID == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "ルームIDが必要です")
		return
	}

	state, status, ok := h.sessionManager.RoomSnapshot(roomID)
	if !ok {
		WriteErrorResponse(w, http.StatusNotFound, "指定されたルームは見つかりませんでした")
		return
	}

	WriteJSONResponse(w, http.StatusOK, map[string]interface{}{
		"roomId": roomID,
		"status": status,
		"state":  state,
	})
}

// authMessage はWebSocket接続直後に送られる認証メッセージです。
// JWT運用時はtokenを、開発時はplayerIdを直接指定します。
type authMessage struct {
	Type     string `json:"type"`
	Token    string `json:"token"`
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

// HandleWebSocketConnection はHTTP接続をWebSocketプロトコルにアップグレードし、
// 認証メッセージの検証後にセッションマネージャーへコネクションを引き渡します。
func (h *GameHandler) HandleWebSocketConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[GameHandler] Failed to upgrade to websocket: %v", err)
		return // アップグレード失敗時はエラーログのみ
	}

	// 認証メッセージを待つ
	conn.SetReadDeadline(time.Now().Add(10 * time.Second)) // 10秒のタイムアウト

	_, message, err := conn.ReadMessage()
	if err != nil {
		log.Printf("[GameHandler] Failed to read auth message: %v", err)
		conn.Close()
		return
	}

	var authMsg authMessage
	if err := json.Unmarshal(message, &authMsg); err != nil || authMsg.Type != "auth" {
		log.Printf("[GameHandler] Invalid auth message: %v", err)
		conn.WriteJSON(map[string]string{"error": "最初のメッセージはauthである必要があります"})
		conn.Close()
		return
	}

	playerID, err := resolvePlayerID(authMsg)
	if err != nil {
		log.Printf("[GameHandler] WebSocket auth failed: %v", err)
		conn.WriteJSON(map[string]string{"error": err.Error()})
		conn.Close()
		return
	}

	name := authMsg.Name
	if name == "" {
		name = playerID
	}

	// タイムアウトを解除
	conn.SetReadDeadline(time.Time{})

	log.Printf("[GameHandler] WebSocket authenticated for player %s", playerID)
	h.sessionManager.RegisterClient(playerID, name, conn)

	// RegisterClient内で readPump と writePump ゴルーチンが開始されるため、
	// ここではそれ以上の処理は不要です。
}

// resolvePlayerID は認証メッセージからプレイヤーIDを確定します。
// JWT_SECRETが設定されている場合はトークンのsubクレームを使い、
// 未設定の開発環境ではplayerIdフィールドをそのまま信用します。
func resolvePlayerID(authMsg authMessage) (string, error) {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		if authMsg.PlayerID == "" {
			return "", fmt.Errorf("playerIdが必要です")
		}
		return authMsg.PlayerID, nil
	}

	tokenString := authMsg.Token
	if len(tokenString) > 7 && tokenString[0:7] == "Bearer " {
		tokenString = tokenString[7:]
	}
	if tokenString == "" {
		return "", fmt.Errorf("トークンが必要です")
	}

	parsedToken, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// アルゴリズムがHMACであることを確認
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return "", fmt.Errorf("トークンの検証に失敗しました: %w", err)
	}
	if !parsedToken.Valid {
		return "", fmt.Errorf("無効なトークンです")
	}

	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("トークンのクレームが不正です")
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", fmt.Errorf("トークンにユーザーID (sub) がありません")
	}
	return sub, nil
}
