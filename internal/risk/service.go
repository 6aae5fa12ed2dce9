package risk

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/stagepass/trust-safety/internal/activity"
	"github.com/stagepass/trust-safety/internal/auth"
	"github.com/stagepass/trust-safety/internal/reports"
	"github.com/stagepass/trust-safety/internal/suspension"
	"github.com/stagepass/trust-safety/pkg/common"
)

// Contribution weights and caps. Every source saturates so a flood of one
// signal cannot drown out the others, and the total never leaves [0,100].
const (
	reportPointsCap = 40.0

	activityPointsCap      = 30.0
	activityPointsLow      = 2.0
	activityPointsMedium   = 5.0
	activityPointsHigh     = 10.0
	activityPointsCritical = 15.0

	rejectedVerificationPoints = 8.0
	rejectedVerificationCap    = 16.0

	activeSuspensionPoints = 40.0
	activeWarningPoints    = 8.0

	liftedSuspensionPoints   = 10.0
	liftedSuspensionHalfLife = 30.0 // days

	maxScore = 100.0

	suspensionHistoryLimit = 200
)

// Service aggregates the four stores into per-user risk profiles and the
// operational dashboard counts. Pure reads, recomputed on every call.
type Service struct {
	reports       ReportReader
	activities    ActivityReader
	verifications VerificationReader
	suspensions   SuspensionReader
}

// NewService creates a new risk aggregation service
func NewService(reports ReportReader, activities ActivityReader, verifications VerificationReader, suspensions SuspensionReader) *Service {
	return &Service{
		reports:       reports,
		activities:    activities,
		verifications: verifications,
		suspensions:   suspensions,
	}
}

// GetUserRiskProfile combines a user's unresolved reports, pending
// findings, rejected verifications and suspension history into one score
// with an explanatory breakdown. A user with no history scores zero with
// an empty breakdown.
func (s *Service) GetUserRiskProfile(ctx context.Context, actor auth.Actor, userID uuid.UUID) (*Profile, error) {
	if err := auth.Require(actor, auth.RoleModerator); err != nil {
		return nil, err
	}
	if userID == uuid.Nil {
		return nil, common.NewBadRequestError("user ID is required", nil)
	}

	now := time.Now()
	profile := &Profile{
		UserID:      userID,
		Breakdown:   []Contribution{},
		GeneratedAt: now,
	}

	reportCounts, err := s.reports.CountOpenByReportedUser(ctx, userID)
	if err != nil {
		return nil, common.NewDependencyError("unable to read fraud reports", err)
	}
	if contribution, ok := reportContribution(reportCounts); ok {
		profile.Breakdown = append(profile.Breakdown, contribution)
	}

	activityCounts, err := s.activities.CountPendingByUser(ctx, userID)
	if err != nil {
		return nil, common.NewDependencyError("unable to read suspicious activities", err)
	}
	if contribution, ok := activityContribution(activityCounts); ok {
		profile.Breakdown = append(profile.Breakdown, contribution)
	}

	rejected, err := s.verifications.CountRejectedBySeller(ctx, userID)
	if err != nil {
		return nil, common.NewDependencyError("unable to read verifications", err)
	}
	if rejected > 0 {
		profile.Breakdown = append(profile.Breakdown, Contribution{
			Source: "rejected_verifications",
			Count:  rejected,
			Points: math.Min(float64(rejected)*rejectedVerificationPoints, rejectedVerificationCap),
		})
	}

	history, err := s.suspensions.ListByUser(ctx, userID, suspensionHistoryLimit, 0)
	if err != nil {
		return nil, common.NewDependencyError("unable to read suspensions", err)
	}
	profile.Breakdown = append(profile.Breakdown, suspensionContributions(history, now)...)

	total := 0.0
	for _, contribution := range profile.Breakdown {
		total += contribution.Points
	}
	profile.Score = math.Min(math.Max(total, 0), maxScore)

	return profile, nil
}

// GetSystemStatistics returns the dashboard counts across all four stores
func (s *Service) GetSystemStatistics(ctx context.Context, actor auth.Actor) (*Statistics, error) {
	if err := auth.Require(actor, auth.RoleAdmin); err != nil {
		return nil, err
	}

	now := time.Now()
	stats := &Statistics{GeneratedAt: now}

	var err error
	if stats.OpenReports, err = s.reports.CountOpen(ctx); err != nil {
		return nil, common.NewDependencyError("unable to count open reports", err)
	}
	if stats.PendingActivities, err = s.activities.CountPending(ctx); err != nil {
		return nil, common.NewDependencyError("unable to count pending activities", err)
	}
	if stats.ActiveSuspensions, err = s.suspensions.CountActiveExclusive(ctx, now); err != nil {
		return nil, common.NewDependencyError("unable to count active suspensions", err)
	}
	if stats.PendingManualReviews, err = s.verifications.CountPendingManualReview(ctx); err != nil {
		return nil, common.NewDependencyError("unable to count manual reviews", err)
	}

	return stats, nil
}

func reportContribution(counts map[reports.ReportType]int) (Contribution, bool) {
	total := 0
	points := 0.0
	for reportType, count := range counts {
		total += count
		points += float64(count * reportType.Priority())
	}
	if total == 0 {
		return Contribution{}, false
	}
	return Contribution{
		Source: "open_reports",
		Count:  total,
		Points: math.Min(points, reportPointsCap),
	}, true
}

func activityContribution(counts map[activity.Severity]int) (Contribution, bool) {
	total := 0
	points := 0.0
	for severity, count := range counts {
		total += count
		points += float64(count) * severityPoints(severity)
	}
	if total == 0 {
		return Contribution{}, false
	}
	return Contribution{
		Source: "pending_activities",
		Count:  total,
		Points: math.Min(points, activityPointsCap),
	}, true
}

func severityPoints(severity activity.Severity) float64 {
	switch severity {
	case activity.SeverityCritical:
		return activityPointsCritical
	case activity.SeverityHigh:
		return activityPointsHigh
	case activity.SeverityMedium:
		return activityPointsMedium
	default:
		return activityPointsLow
	}
}

// suspensionContributions scores enforcement history. The one active
// exclusive suspension dominates; active warnings add a flat amount each;
// suspensions that have ended keep a weight that halves roughly monthly,
// vanishing after a quarter.
func suspensionContributions(history []*suspension.UserSuspension, now time.Time) []Contribution {
	var activeExclusive, activeWarnings int
	pastPoints := 0.0
	pastCount := 0

	for _, record := range history {
		if record.ActiveAt(now) {
			if record.Type.Exclusive() {
				activeExclusive++
			} else {
				activeWarnings++
			}
			continue
		}

		endedAt := record.LiftedAt
		if endedAt == nil {
			endedAt = record.EndDate
		}
		if endedAt == nil {
			continue
		}
		ageDays := now.Sub(*endedAt).Hours() / 24
		if ageDays < 0 {
			ageDays = 0
		}
		pastCount++
		pastPoints += liftedSuspensionPoints * math.Exp(-ageDays/liftedSuspensionHalfLife)
	}

	var contributions []Contribution
	if activeExclusive > 0 {
		contributions = append(contributions, Contribution{
			Source: "active_suspension",
			Count:  activeExclusive,
			Points: activeSuspensionPoints,
		})
	}
	if activeWarnings > 0 {
		contributions = append(contributions, Contribution{
			Source: "active_warnings",
			Count:  activeWarnings,
			Points: float64(activeWarnings) * activeWarningPoints,
		})
	}
	if pastCount > 0 && pastPoints >= 0.05 {
		contributions = append(contributions, Contribution{
			Source: "past_suspensions",
			Count:  pastCount,
			Points: pastPoints,
		})
	}
	return contributions
}
