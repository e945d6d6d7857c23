package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/bea-academy/academy-go-api/internal/dto"
	"github.com/bea-academy/academy-go-api/internal/models"
	"github.com/bea-academy/academy-go-api/internal/repository"
)

// Performance cluster thresholds over a student's graded average.
const (
	performanceHighThreshold    = 80.0
	performanceAverageThreshold = 60.0
)

// ReportService aggregates assignment activity for dashboards. Results are
// read-only and cached in Redis briefly; the cache is an optimization, a
// cold or absent Redis only costs a recount.
type ReportService interface {
	KindStats(ctx context.Context, kind models.AssignmentKind, filter repository.ReportFilter) (dto.KindStatsResponse, error)
	AllKindStats(ctx context.Context, filter repository.ReportFilter) ([]dto.KindStatsResponse, error)
	PerformanceClusters(ctx context.Context, kind models.AssignmentKind, filter repository.ReportFilter) (dto.PerformanceReportResponse, error)
}

type reportService struct {
	reports  repository.ReportRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	tracer   trace.Tracer
}

// NewReportService constructs the report service. The cache client may be
// nil when Redis is not configured.
func NewReportService(reports repository.ReportRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) ReportService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &reportService{
		reports:  reports,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "report_service").Logger(),
		tracer:   otel.Tracer("github.com/bea-academy/academy-go-api/internal/service/report"),
	}
}

func reportCacheKey(prefix string, kind models.AssignmentKind, filter repository.ReportFilter) string {
	classPart := "all"
	if filter.ClassID != nil {
		classPart = fmt.Sprintf("%d", *filter.ClassID)
	}
	programPart := "all"
	if filter.ProgramID != nil {
		programPart = fmt.Sprintf("%d", *filter.ProgramID)
	}
	return fmt.Sprintf("reports:%s:%s:c%s:p%s", prefix, kind, classPart, programPart)
}

func (s *reportService) KindStats(ctx context.Context, kind models.AssignmentKind, filter repository.ReportFilter) (dto.KindStatsResponse, error) {
	ctx, span := s.tracer.Start(ctx, "reports.kind_stats", trace.WithAttributes(
		attribute.String("report.kind", kind.String()),
	))
	defer span.End()

	cacheKey := reportCacheKey("stats", kind, filter)
	var response dto.KindStatsResponse
	if s.readCache(ctx, cacheKey, &response) {
		span.SetAttributes(attribute.Bool("report.cache_hit", true))
		return response, nil
	}

	stats, err := s.reports.KindStats(ctx, kind, filter)
	if err != nil {
		span.RecordError(err)
		return dto.KindStatsResponse{}, err
	}

	response = dto.NewKindStatsResponse(stats)
	s.writeCache(ctx, cacheKey, response)

	return response, nil
}

func (s *reportService) AllKindStats(ctx context.Context, filter repository.ReportFilter) ([]dto.KindStatsResponse, error) {
	responses := make([]dto.KindStatsResponse, 0, len(models.AllKinds()))
	for _, kind := range models.AllKinds() {
		stats, err := s.KindStats(ctx, kind, filter)
		if err != nil {
			return nil, err
		}
		responses = append(responses, stats)
	}

	return responses, nil
}

func (s *reportService) PerformanceClusters(ctx context.Context, kind models.AssignmentKind, filter repository.ReportFilter) (dto.PerformanceReportResponse, error) {
	ctx, span := s.tracer.Start(ctx, "reports.performance_clusters", trace.WithAttributes(
		attribute.String("report.kind", kind.String()),
	))
	defer span.End()

	cacheKey := reportCacheKey("clusters", kind, filter)
	var response dto.PerformanceReportResponse
	if s.readCache(ctx, cacheKey, &response) {
		span.SetAttributes(attribute.Bool("report.cache_hit", true))
		return response, nil
	}

	averages, err := s.reports.StudentAverages(ctx, kind, filter)
	if err != nil {
		span.RecordError(err)
		return dto.PerformanceReportResponse{}, err
	}

	var high, average, low int
	for _, row := range averages {
		switch {
		case row.AvgScore >= performanceHighThreshold:
			high++
		case row.AvgScore >= performanceAverageThreshold:
			average++
		default:
			low++
		}
	}

	total := len(averages)
	percentage := func(count int) float64 {
		if total == 0 {
			return 0
		}
		return float64(count) / float64(total) * 100
	}

	response = dto.PerformanceReportResponse{
		Kind:          kind.String(),
		TotalStudents: total,
		Clusters: []dto.PerformanceClusterResponse{
			{Category: "high", Count: high, Percentage: percentage(high)},
			{Category: "average", Count: average, Percentage: percentage(average)},
			{Category: "low", Count: low, Percentage: percentage(low)},
		},
	}
	s.writeCache(ctx, cacheKey, response)

	return response, nil
}

func (s *reportService) readCache(ctx context.Context, key string, target interface{}) bool {
	if s.cache == nil {
		return false
	}

	cached, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("failed to read report cache")
		}
		return false
	}

	if err := json.Unmarshal([]byte(cached), target); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("invalid report cache payload")
		return false
	}

	return true
}

func (s *reportService) writeCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to store report cache")
	}
}
