package model

import (
	"time"

	"github.com/google/uuid"
)

type Meeting struct {
	ID              string     `gorm:"size:6;primaryKey"`
	Name            string     `gorm:"size:255;not null"`
	PasswordHash    string     `gorm:"size:128;not null"`
	OwnerTokenHash  string     `gorm:"size:128;not null"`
	OwnerPrincipal  string     `gorm:"size:128;not null;index"`
	IsPublic        bool       `gorm:"not null;index"`
	MaxParticipants int        `gorm:"not null"`
	HostID          *uuid.UUID `gorm:"type:uuid"`
	Status          string     `gorm:"size:16;not null;index"`
	CreatedAt       time.Time  `gorm:"not null;index"`
	EndedAt         *time.Time
	Participants    []Participant `gorm:"constraint:OnDelete:CASCADE"`
	Signals         []Signal      `gorm:"constraint:OnDelete:CASCADE"`
}

type Participant struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	MeetingID   string    `gorm:"size:6;index;not null"`
	Nickname    string    `gorm:"size:64;not null"`
	IsHost      bool      `gorm:"not null"`
	IsMuted     bool      `gorm:"not null"`
	IsConnected bool      `gorm:"not null;index"`
	JoinedAt    time.Time `gorm:"not null"`
	LeftAt      *time.Time
}

type Signal struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	MeetingID string    `gorm:"size:6;index;not null"`
	FromID    uuid.UUID `gorm:"type:uuid;not null"`
	ToID      uuid.UUID `gorm:"type:uuid;index;not null"`
	Kind      string    `gorm:"size:16;not null"`
	Payload   []byte    `gorm:"type:jsonb;not null"`
	CreatedAt time.Time `gorm:"not null;index"`
	Processed bool      `gorm:"not null;index"`
}
