// Package entity はscreenshotフィーチャーのドメインモデルを定義します。
package entity

import (
	"strings"
	"unicode"
)

// Analysis はスクリーンショット1枚の解析結果です。ImageURI ごとに1件だけ保存されます。
// Description と Tags はフランス語、DescriptionEN と TagsEN は英語です。
type Analysis struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	ImageURI      string `gorm:"column:image_uri;uniqueIndex;size:2048;not null" json:"imageUri"`
	Description   string `gorm:"column:description;type:text" json:"description"`
	DescriptionEN string `gorm:"column:description_en;type:text" json:"description_en"`
	Tags          string `gorm:"column:tags;type:text" json:"tags"`
	TagsEN        string `gorm:"column:tags_en;type:text" json:"tags_en"`
	// CreationTime is epoch milliseconds.
	CreationTime int64 `gorm:"column:creation_time" json:"creationTime"`
}

// TableName returns the table name for GORM.
func (Analysis) TableName() string {
	return "screenshot_analysis"
}

// Caption はアップロードされた画像から生成した説明とタグです。
type Caption struct {
	Caption   string `json:"caption"`
	CaptionFR string `json:"caption_fr"`
	TagsEN    string `json:"tags_en"`
	TagsFR    string `json:"tags_fr"`
}

// Label は画像から検出されたラベルです。
type Label struct {
	Description string
	Score       float32
}

// JoinTags は小文字化・重複除去したタグをカンマ区切りで連結します。順序は最初の出現順です。
func JoinTags(tags []string) string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimFunc(t, func(r rune) bool {
			return unicode.IsSpace(r) || r == ','
		}))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return strings.Join(out, ", ")
}

// SplitTags はカンマ区切りのタグを分割します。
func SplitTags(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
