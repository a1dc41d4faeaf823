package audit

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/leadsight/leadsight/log"
	"github.com/leadsight/leadsight/models"
)

// Reporter persists one site's artifacts. report.Renderer satisfies it.
type Reporter interface {
	Write(result models.AuditResult) error
}

// Summary aggregates one batch run.
type Summary struct {
	RunID     string               `json:"runId"`
	Total     int                  `json:"total"`
	Succeeded int                  `json:"succeeded"`
	Failed    int                  `json:"failed"`
	Skipped   int                  `json:"skipped"`
	Results   []models.AuditResult `json:"results"`
}

// RunBatch audits every site in order, one at a time over the shared session.
// A failed site is recorded and the batch continues; the batch runner itself
// never handles an exception. Cancelling ctx stops the batch from taking new
// sites but lets the in-flight audit finish or time out.
func RunBatch(ctx context.Context, a *Auditor, urls []string, reporter Reporter) Summary {
	summary := Summary{RunID: uuid.NewString(), Total: len(urls)}

	var limiter *rate.Limiter
	if delay := a.cfg.Audit.DelayBetweenAudits; delay > 0 {
		limiter = rate.NewLimiter(rate.Every(delay), 1)
		// The bucket starts full; drain it so the first inter-site gap is
		// paced like every later one.
		limiter.Allow()
	}

	log.Logger.Info("starting batch",
		zap.String("runId", summary.RunID),
		zap.Int("sites", len(urls)),
	)

	for i, url := range urls {
		if ctx.Err() != nil {
			summary.Skipped = len(urls) - i
			log.Logger.Info("shutdown requested, not taking new sites",
				zap.Int("skipped", summary.Skipped))
			break
		}
		if i > 0 && limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				summary.Skipped = len(urls) - i
				break
			}
		}

		// The in-flight audit must not be aborted by a shutdown signal;
		// it finishes or times out on its own navigation deadlines.
		result := a.Audit(context.WithoutCancel(ctx), url)

		if result.Success {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
		summary.Results = append(summary.Results, result)

		if reporter != nil {
			if err := reporter.Write(result); err != nil {
				log.Logger.Error("report write failed",
					zap.String("url", url), zap.Error(err))
			}
		}
	}

	log.Logger.Info("batch finished",
		zap.String("runId", summary.RunID),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
	)
	return summary
}
