package models

import (
	"time"

	"github.com/google/uuid"
)

// PointAdjustment — ручная корректировка очков, введённая администратором.
// Хранится отдельно от points_earned и суммируется поверх пересчитанной
// базы; пересчёт скорингового движка её никогда не перезаписывает.
type PointAdjustment struct {
	ID           int       `json:"id" db:"id"`
	Reference    uuid.UUID `json:"reference" db:"reference"`
	BetID        *int      `json:"bet_id,omitempty" db:"bet_id"`
	UserID       int       `json:"user_id" db:"user_id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	Delta        int       `json:"delta" db:"delta"`
	Reason       string    `json:"reason" db:"reason"`
	CreatedBy    int       `json:"created_by" db:"created_by"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
