package dto

import "github.com/bea-academy/academy-go-api/internal/repository"

// KindStatsResponse is the per-kind activity summary with a derived
// completion rate.
type KindStatsResponse struct {
	Kind                 string  `json:"kind"`
	TotalAssignments     int64   `json:"total_assignments"`
	CompletedSubmissions int64   `json:"completed_submissions"`
	TotalStudents        int64   `json:"total_students"`
	AvgScore             float64 `json:"avg_score"`
	CompletionRate       float64 `json:"completion_rate"`
}

// NewKindStatsResponse derives the completion rate as completed
// submissions over assignments times students; zero denominators yield zero.
func NewKindStatsResponse(stats repository.KindStats) KindStatsResponse {
	response := KindStatsResponse{
		Kind:                 stats.Kind.String(),
		TotalAssignments:     stats.TotalAssignments,
		CompletedSubmissions: stats.CompletedSubmissions,
		TotalStudents:        stats.TotalStudents,
		AvgScore:             stats.AvgScore,
	}

	expected := stats.TotalAssignments * stats.TotalStudents
	if expected > 0 {
		response.CompletionRate = float64(stats.CompletedSubmissions) / float64(expected) * 100
	}

	return response
}

// PerformanceClusterResponse buckets students by graded average.
type PerformanceClusterResponse struct {
	Category   string  `json:"category"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// PerformanceReportResponse is the full cluster breakdown for one kind.
type PerformanceReportResponse struct {
	Kind          string                       `json:"kind"`
	TotalStudents int                          `json:"total_students"`
	Clusters      []PerformanceClusterResponse `json:"clusters"`
}
