package cmd

import (
	"context"
	"time"

	"github.com/sitepipe/sitepipe/internal/event"
	"github.com/sitepipe/sitepipe/internal/task"
)

// runPipeline invokes t as a top-level pipeline and publishes its outcome.
func (a *app) runPipeline(ctx context.Context, t task.Task) (task.Result, time.Duration, error) {
	logger := a.logger.WithPipeline(t.Name())
	logger.Info("pipeline started")

	start := time.Now()
	res, err := t.Run(ctx)
	elapsed := time.Since(start)

	a.bus.Publish(event.NewPipelineFinishedEvent(t.Name(), elapsed, err))
	if err != nil {
		logger.Error("pipeline failed", "error", err.Error(), "duration_ms", elapsed.Milliseconds())
	} else {
		logger.Info("pipeline finished", "outputs", len(res.Outputs), "duration_ms", elapsed.Milliseconds())
	}
	return res, elapsed, err
}
