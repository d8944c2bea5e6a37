// Package dto はauthフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

// LoginReq は/loginエンドポイントのリクエストボディを表します。
type LoginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// GoogleLoginReq は/google-loginエンドポイントのリクエストボディを表します。
type GoogleLoginReq struct {
	GoogleToken string `json:"googleToken" binding:"required"`
}

// RegisterReq は/registerエンドポイントのリクエストボディを表します。
// メールアドレスは形式も検証します。パスワードの長さ制限はユースケース側で扱います。
type RegisterReq struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
