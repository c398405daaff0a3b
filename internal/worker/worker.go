package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/assembleia-vote/backend/internal/reports"
	"github.com/assembleia-vote/backend/pkg/queue"
	"github.com/assembleia-vote/backend/pkg/storage"
)

// ReportProcessor processes report archive jobs: render the CSV, upload to
// S3, update the report row.
type ReportProcessor struct {
	reports    *reports.Service
	reportRepo *reports.Repository
	s3         *storage.S3
	queue      *queue.Queue
	logger     *zap.Logger
}

// NewReportProcessor creates a report archive processor.
func NewReportProcessor(svc *reports.Service, repo *reports.Repository, s3 *storage.S3, q *queue.Queue, logger *zap.Logger) *ReportProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportProcessor{reports: svc, reportRepo: repo, s3: s3, queue: q, logger: logger}
}

// Process executes one report archive job.
func (p *ReportProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeReportArchive {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.ReportArchivePayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	rep, err := p.reportRepo.Get(ctx, payload.ReportID)
	if err != nil || rep == nil {
		return fmt.Errorf("report not found: %s", payload.ReportID)
	}
	if rep.Status == "completed" {
		p.logger.Info("report already completed", zap.String("report_id", rep.ID.String()))
		return nil
	}

	body, _, err := p.reports.Build(ctx, payload.EventID)
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}

	key := storage.ReportKey(payload.EventID.String(), payload.ReportID.String())
	size := int64(len(body))
	if _, err := p.s3.Upload(ctx, p.s3.ReportsBucket(), key, "text/csv; charset=utf-8", bytes.NewReader(body), size); err != nil {
		return fmt.Errorf("s3 upload: %w", err)
	}

	if err := p.reportRepo.MarkCompleted(ctx, payload.ReportID, key, size); err != nil {
		p.logger.Error("mark report completed failed", zap.Error(err), zap.String("report_id", payload.ReportID.String()))
		return fmt.Errorf("update db: %w", err)
	}

	p.logger.Info("report archived",
		zap.String("report_id", payload.ReportID.String()),
		zap.String("s3_key", key),
		zap.Int64("size_bytes", size))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error. A job that
// exhausts its retries is flagged failed and parked in the DLQ.
func (p *ReportProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("report worker stopping")
			return
		default:
		}

		job, _, err := p.queue.Dequeue(ctx)
		if err != nil {
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if job.Attempt+1 >= queue.MaxRetries {
				p.markFailed(ctx, job)
			}
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}

func (p *ReportProcessor) markFailed(ctx context.Context, job *queue.Job) {
	var payload queue.ReportArchivePayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return
	}
	if err := p.reportRepo.MarkFailed(ctx, payload.ReportID); err != nil {
		p.logger.Error("mark report failed errored", zap.Error(err), zap.String("report_id", payload.ReportID.String()))
	}
}
