package domain

import (
	"time"
)

// MaxDescriptionLength is the column width of challenge.description.
const MaxDescriptionLength = 500

type ChallengeStatus string

const (
	ChallengeStatusPending   ChallengeStatus = "PENDING"
	ChallengeStatusActive    ChallengeStatus = "ACTIVE"
	ChallengeStatusCompleted ChallengeStatus = "COMPLETED"
	ChallengeStatusRejected  ChallengeStatus = "REJECTED"
)

// IsTerminal reports whether the status has no outgoing transitions.
func (s ChallengeStatus) IsTerminal() bool {
	return s == ChallengeStatusCompleted || s == ChallengeStatusRejected
}

func (s ChallengeStatus) IsValid() bool {
	switch s {
	case ChallengeStatusPending, ChallengeStatusActive, ChallengeStatusCompleted, ChallengeStatusRejected:
		return true
	}
	return false
}

// Challenge is a head-to-head contest between two users in a channel.
// Participants, channel and description are fixed at creation; only status,
// scores and the mutation timestamps change afterwards.
type Challenge struct {
	ID              int64           `gorm:"primaryKey;autoIncrement"`
	ChallengerID    string          `gorm:"column:challenger_id;type:varchar(255);not null"`
	ChallengedID    string          `gorm:"column:challenged_id;type:varchar(255);not null"`
	ChannelID       string          `gorm:"column:channel_id;type:varchar(255);not null"`
	Status          ChallengeStatus `gorm:"type:varchar(20);not null;default:PENDING"`
	ChallengerScore int             `gorm:"not null;default:0"`
	ChallengedScore int             `gorm:"not null;default:0"`
	Description     *string         `gorm:"type:varchar(500)"`
	CreatedAt       time.Time       `gorm:"not null;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"not null;autoUpdateTime"`
	CompletedAt     *time.Time
}

func (Challenge) TableName() string {
	return "challenge"
}

// HasParticipant reports whether userID is the challenger or the challenged.
func (c *Challenge) HasParticipant(userID string) bool {
	return c.ChallengerID == userID || c.ChallengedID == userID
}
