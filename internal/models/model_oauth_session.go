package models

import "time"

type OAuthSessionStatus string

const (
	OAuthSessionStatusPending   OAuthSessionStatus = "pending"
	OAuthSessionStatusCompleted OAuthSessionStatus = "completed"
)

// OAuthSession is an ephemeral record bridging a desktop login to the web
// login flow. One-time use: deleted on the first successful read after
// completion, or when expiry is detected.
type OAuthSession struct {
	ID           string             `gorm:"column:id;type:varchar(100);primary_key" json:"id"`
	Status       OAuthSessionStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`
	UID          string             `gorm:"column:uid;type:varchar(64)" json:"uid"`
	Email        string             `gorm:"column:email;type:varchar(256)" json:"email"`
	DisplayName  string             `gorm:"column:display_name;type:varchar(256)" json:"display_name"`
	PhotoURL     string             `gorm:"column:photo_url;type:text" json:"photo_url"`
	Handle       string             `gorm:"column:handle;type:varchar(128)" json:"handle"`
	Plan         string             `gorm:"column:plan;type:varchar(64)" json:"plan"`
	IDToken      string             `gorm:"column:id_token;type:text" json:"id_token"`
	RefreshToken string             `gorm:"column:refresh_token;type:text" json:"refresh_token"`
	CreatedAt    time.Time          `json:"created_at"`
	ExpiresAt    time.Time          `gorm:"column:expires_at;not null" json:"expires_at"`
}

func (OAuthSession) TableName() string { return "oauth_sessions" }

func (s *OAuthSession) Expired(now time.Time) bool {
	return s != nil && now.After(s.ExpiresAt)
}
