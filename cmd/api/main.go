package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/godfield-crew/KAMIFUDA-backend/internal/api/handlers"
	"github.com/godfield-crew/KAMIFUDA-backend/internal/api/middleware"
	"github.com/godfield-crew/KAMIFUDA-backend/internal/services/battle"
	"github.com/godfield-crew/KAMIFUDA-backend/internal/services/generator"
)

func main() {
	if os.Getenv("APP_ENV") != "production" {
		err := godotenv.Load()
		if err != nil {
			log.Printf("warning: Error loading .env file (this is fine in production): %v", err)
		}
	}

	roomStore := battle.NewRoomStore(nil)
	lobbyStore := battle.NewLobbyStore()
	sessionManager := battle.NewSessionManager(roomStore, lobbyStore)
	defer sessionManager.Shutdown()

	skillService := generator.NewSkillService(os.Getenv("OPENAI_API_URL"), os.Getenv("OPENAI_API_KEY"))
	gameHandler := handlers.NewGameHandler(sessionManager, skillService)

	r := mux.NewRouter()
	r.Use(middleware.CORSHandler())

	r.HandleFunc("/health", gameHandler.HealthCheck).Methods("GET")

	// REST API（JWT_SECRET設定時はBearerトークンが必要）
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.AuthMiddleware)
	api.HandleFunc("/generate-skill", gameHandler.GenerateSkill).Methods("POST")
	api.HandleFunc("/rooms/{roomID}", gameHandler.GetRoomStatus).Methods("GET")
	// ゲーム本体はWebSocket経由（認証メッセージでハンドシェイク）
	r.HandleFunc("/ws", gameHandler.HandleWebSocketConnection)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server starting on :%s", port)
	log.Fatal(http.ListenAndServe(":"+port, r))
}
