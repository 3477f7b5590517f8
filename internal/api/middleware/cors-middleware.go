package middleware

import (
	"net/http"
	"os"
	"strings"

	"github.com/rs/cors"
)

// CORSHandler はCORS設定を適用するミドルウェアを返します。
// 許可オリジンは ALLOWED_ORIGINS 環境変数（カンマ区切り）で上書きできます。
func CORSHandler() func(http.Handler) http.Handler {
	origins := []string{"http://localhost:3000"} // フロントエンドのオリジン
	if env := os.Getenv("ALLOWED_ORIGINS"); env != "" {
		origins = strings.Split(env, ",")
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	return c.Handler
}
