package jwtmw

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ContextUserID は検証済みユーザーIDを保持するginコンテキストのキーです。
const ContextUserID = "userID"

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}

// AuthRequired はBearerトークンを検証し、認証済みユーザーのみを通すginミドルウェアを返します。
func AuthRequired(secret string) gin.HandlerFunc {
	key := []byte(secret)
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())

	return func(c *gin.Context) {
		// 1. Authorizationヘッダーを取得
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			abort(c, http.StatusUnauthorized, "Missing bearer token")
			return
		}
		tokenStr := strings.TrimPrefix(auth, "Bearer ")

		// 2. シークレット未設定はサーバー設定の誤り
		if len(key) == 0 {
			abort(c, http.StatusInternalServerError, "Server misconfigured")
			return
		}

		// 3. 署名と有効期限を検証
		token, err := parser.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			return key, nil
		})
		if err != nil || !token.Valid {
			abort(c, http.StatusUnauthorized, "Invalid token")
			return
		}

		// 4. subからユーザーIDを取り出す（JSONの数値はfloat64）
		claims, _ := token.Claims.(jwt.MapClaims)
		sub, ok := claims["sub"].(float64)
		if !ok || sub < 1 {
			abort(c, http.StatusUnauthorized, "Invalid token")
			return
		}
		c.Set(ContextUserID, uint(sub))
		c.Next()
	}
}

// UserIDFrom は AuthRequired が設定したユーザーIDを返します。
func UserIDFrom(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
