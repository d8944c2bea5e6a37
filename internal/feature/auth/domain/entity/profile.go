package entity

import "time"

// Profile はユーザーと1対1で紐づく連絡先情報です。
// 登録時と初回Googleログイン時に、ユーザーと同一トランザクションで空のまま作成されます。
type Profile struct {
	ID       uint       `gorm:"primaryKey"`
	UserID   uint       `gorm:"uniqueIndex;not null"`
	Phone    string     `gorm:"size:64"`
	Birthday *time.Time `gorm:"type:date"`
	Adresse  string     `gorm:"size:512"`
}

// TableName returns the table name for GORM.
func (Profile) TableName() string {
	return "profiles"
}
