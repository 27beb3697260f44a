package models

import "time"

// Game represents one organized game session, its capacity, and its roster.
// JoinedPlayers keeps join order. Version is bumped on every stored write.
type Game struct {
	ID            string `gorm:"primaryKey;size:36"`
	Title         string `gorm:"size:255;not null"`
	Description   string
	GameType      string    `gorm:"size:100;index"`
	PlayersNeeded int       `gorm:"not null"`
	Creator       string    `gorm:"size:255;not null"`
	RentalID      string    `gorm:"size:255"`
	Date          time.Time `gorm:"index"`
	Duration      int
	JoinedPlayers []string `gorm:"serializer:json;type:text"`
	Version       int64    `gorm:"not null;default:1"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Clone returns a deep copy so callers never share the roster slice.
func (g Game) Clone() Game {
	out := g
	if g.JoinedPlayers != nil {
		out.JoinedPlayers = append(make([]string, 0, len(g.JoinedPlayers)), g.JoinedPlayers...)
	}
	return out
}

// HasJoined reports whether email is already on the roster.
func (g Game) HasJoined(email string) bool {
	for _, p := range g.JoinedPlayers {
		if p == email {
			return true
		}
	}
	return false
}
