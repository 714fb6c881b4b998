package dto

import "github.com/learnytics/insights-api/internal/models"

// LeaderboardResponse wraps the ranked list with the pre-limit total.
type LeaderboardResponse struct {
	Leaderboard []models.LeaderboardEntry `json:"leaderboard"`
	Total       int                       `json:"total"`
}
