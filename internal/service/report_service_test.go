package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/bea-academy/academy-go-api/internal/models"
	"github.com/bea-academy/academy-go-api/internal/repository"
)

type fakeReportRepo struct {
	stats     repository.KindStats
	averages  []repository.StudentAverage
	statCalls int
}

func (f *fakeReportRepo) KindStats(ctx context.Context, kind models.AssignmentKind, filter repository.ReportFilter) (repository.KindStats, error) {
	f.statCalls++
	stats := f.stats
	stats.Kind = kind
	return stats, nil
}

func (f *fakeReportRepo) StudentAverages(ctx context.Context, kind models.AssignmentKind, filter repository.ReportFilter) ([]repository.StudentAverage, error) {
	return f.averages, nil
}

func TestReportKindStatsDerivesCompletionRate(t *testing.T) {
	repo := &fakeReportRepo{stats: repository.KindStats{
		TotalAssignments:     4,
		CompletedSubmissions: 6,
		TotalStudents:        3,
		AvgScore:             71.25,
	}}
	svc := NewReportService(repo, nil, time.Minute, testLogger())

	stats, err := svc.KindStats(context.Background(), models.KindTest, repository.ReportFilter{})
	require.NoError(t, err)
	require.Equal(t, "test", stats.Kind)
	require.InDelta(t, 50.0, stats.CompletionRate, 1e-9, "6 of 12 expected submissions")
	require.Equal(t, 71.25, stats.AvgScore)
}

func TestReportKindStatsUsesCache(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer redisClient.Close()

	repo := &fakeReportRepo{stats: repository.KindStats{TotalAssignments: 1, TotalStudents: 1, CompletedSubmissions: 1}}
	svc := NewReportService(repo, redisClient, time.Minute, testLogger())
	ctx := context.Background()

	_, err = svc.KindStats(ctx, models.KindCourseWork, repository.ReportFilter{})
	require.NoError(t, err)
	_, err = svc.KindStats(ctx, models.KindCourseWork, repository.ReportFilter{})
	require.NoError(t, err)
	require.Equal(t, 1, repo.statCalls, "second read must come from the cache")
}

func TestReportPerformanceClusters(t *testing.T) {
	repo := &fakeReportRepo{averages: []repository.StudentAverage{
		{StudentID: 1, AvgScore: 92},
		{StudentID: 2, AvgScore: 80},
		{StudentID: 3, AvgScore: 60},
		{StudentID: 4, AvgScore: 59.9},
	}}
	svc := NewReportService(repo, nil, time.Minute, testLogger())

	report, err := svc.PerformanceClusters(context.Background(), models.KindTest, repository.ReportFilter{})
	require.NoError(t, err)
	require.Equal(t, 4, report.TotalStudents)
	require.Len(t, report.Clusters, 3)
	require.Equal(t, 2, report.Clusters[0].Count, "80 and above is high")
	require.Equal(t, 1, report.Clusters[1].Count, "60 to 79.99 is average")
	require.Equal(t, 1, report.Clusters[2].Count)
	require.InDelta(t, 50.0, report.Clusters[0].Percentage, 1e-9)
}

func TestReportPerformanceClustersEmpty(t *testing.T) {
	svc := NewReportService(&fakeReportRepo{}, nil, time.Minute, testLogger())

	report, err := svc.PerformanceClusters(context.Background(), models.KindOralAssignment, repository.ReportFilter{})
	require.NoError(t, err)
	require.Equal(t, 0, report.TotalStudents)
	for _, cluster := range report.Clusters {
		require.Zero(t, cluster.Count)
		require.Zero(t, cluster.Percentage)
	}
}
