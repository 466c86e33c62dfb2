package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/vk/fishgrid/internal/ctxlog"
	"github.com/vk/fishgrid/internal/sfo"
	"golang.org/x/sync/errgroup"
)

// Run executes the loaded jobs: every tool block in declaration order, then
// all report jobs concurrently, then all grid jobs concurrently. Grid jobs
// run after reports because channel_type_from reads a parsed report. The
// first failure cancels the remaining jobs of its phase.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.HealthcheckPort > 0 {
		if err := a.startHealthcheckServer(a.config.HealthcheckPort); err != nil {
			return err
		}
		defer a.closeHealthcheckServer()
	}

	if len(a.model.Tools)+len(a.model.Reports)+len(a.model.Grids) == 0 {
		a.logger.Warn("No jobs found, execution not required.")
		return nil
	}
	a.logger.Info("🚀 Starting run.", "tools", len(a.model.Tools), "reports", len(a.model.Reports), "grids", len(a.model.Grids), "workers", a.config.WorkerCount)

	for _, tool := range a.model.Tools {
		err := a.runTool(ctx, tool)
		a.progress.finish(err)
		if err != nil {
			return fmt.Errorf("execution failed: %w", err)
		}
	}

	reports := &reportStore{byName: make(map[string]*sfo.Report)}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.config.WorkerCount)
	for _, job := range a.model.Reports {
		g.Go(func() error {
			rep, err := a.runReport(gctx, job)
			a.progress.finish(err)
			if err != nil {
				return err
			}
			reports.put(job.Name, rep)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}

	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(a.config.WorkerCount)
	for _, job := range a.model.Grids {
		g.Go(func() error {
			err := a.runGrid(gctx, job, reports)
			a.progress.finish(err)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}

	a.logger.Info("🏁 Execution finished.", "status", a.progress.snapshot())
	return nil
}

// reportStore holds parsed reports for grid jobs to consult.
type reportStore struct {
	mu     sync.Mutex
	byName map[string]*sfo.Report
}

func (s *reportStore) put(name string, rep *sfo.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byName[name] = rep
}

func (s *reportStore) get(name string) (*sfo.Report, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rep, ok := s.byName[name]
	return rep, ok
}
