// Package dto はprofileフィーチャーのリクエスト・レスポンスを定義します。
package dto

import (
	"bytes"
	"encoding/json"
)

// ProfileRes は GET /profile のレスポンスです。birthday は YYYY-MM-DD か空文字です。
type ProfileRes struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Birthday string `json:"birthday"`
	Adresse  string `json:"adresse"`
}

// NullableString distinguishes an absent key from an explicit null.
type NullableString struct {
	Present bool
	Value   *string
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *NullableString) UnmarshalJSON(b []byte) error {
	n.Present = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}

// UpdateProfileReq は PUT /profile のリクエストです。省略したキーは変更しません。
type UpdateProfileReq struct {
	Phone    *string        `json:"phone"`
	Birthday NullableString `json:"birthday"`
	Adresse  *string        `json:"adresse"`
}

// MessageRes is the body of PUT /profile and of every profile error.
type MessageRes struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
