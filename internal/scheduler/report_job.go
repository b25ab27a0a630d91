package scheduler

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/djstrauss/dingertuesday/internal/modules/analysis"
	"github.com/djstrauss/dingertuesday/internal/modules/daily"
	"github.com/djstrauss/dingertuesday/internal/modules/report"
)

// ReportAuthor is the byline on generated articles.
const ReportAuthor = "MLB Analyst"

// ReportJob resolves the day's pitchers, ranks them and publishes the
// editorial report.
type ReportJob struct {
	resolver  *daily.Resolver
	generator *report.Generator
	content   *report.ContentRepository
	analysis  analysis.Config
	log       zerolog.Logger
}

// NewReportJob creates the report generation job.
func NewReportJob(resolver *daily.Resolver, generator *report.Generator, content *report.ContentRepository, cfg analysis.Config, log zerolog.Logger) *ReportJob {
	return &ReportJob{
		resolver:  resolver,
		generator: generator,
		content:   content,
		analysis:  cfg,
		log:       log.With().Str("job", "report").Logger(),
	}
}

// Name implements Job.
func (j *ReportJob) Name() string { return "report" }

// OncePerDay implements Job.
func (j *ReportJob) OncePerDay() bool { return true }

// Run publishes the report for the current operating day. By 11:00 the
// refresh has normally populated the tiers, so this resolves from
// memory; a cold process falls through to a live fetch.
func (j *ReportJob) Run(ctx context.Context) error {
	res, err := j.resolver.Resolve(ctx, daily.ClassPitchers)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}

	payload, ok := res.Payload.(*daily.PitcherPayload)
	if !ok {
		return fmt.Errorf("report: unexpected pitchers payload type %T", res.Payload)
	}

	scores := analysis.Analyze(payload.Pitchers, j.analysis)
	if len(scores) == 0 {
		j.log.Info().Str("day", res.Day).Msg("No qualifying pitchers, skipping report")
		return nil
	}

	doc := j.generator.Generate(ctx, res.Day, scores)
	id, err := j.content.Create(doc, ReportAuthor)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}

	j.log.Info().
		Str("day", res.Day).
		Int64("article_id", id).
		Int("pitchers", len(scores)).
		Msg("Report published")

	return nil
}
