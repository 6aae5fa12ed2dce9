package risk

import (
	"time"

	"github.com/google/uuid"
)

// Contribution is one explained component of a risk score. Moderators see
// the breakdown next to the number, never the number alone.
type Contribution struct {
	Source string  `json:"source"`
	Count  int     `json:"count"`
	Points float64 `json:"points"`
}

// Profile is a user's aggregated risk picture, recomputed on every call
type Profile struct {
	UserID      uuid.UUID      `json:"user_id"`
	Score       float64        `json:"score"`
	Breakdown   []Contribution `json:"breakdown"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// Statistics are the operational dashboard counts
type Statistics struct {
	OpenReports          int64     `json:"open_reports"`
	PendingActivities    int64     `json:"pending_activities"`
	ActiveSuspensions    int64     `json:"active_suspensions"`
	PendingManualReviews int64     `json:"pending_manual_reviews"`
	GeneratedAt          time.Time `json:"generated_at"`
}
