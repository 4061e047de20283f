package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// TableReloader re-reads tax tables from a file, keeping the loaded ones
// when the file is invalid.
type TableReloader interface {
	Reload(path string) error
	IDs() []int
}

type TaxTableJobs struct {
	tables   TableReloader
	path     string
	interval time.Duration
}

func NewTaxTableJobs(tables TableReloader, path string, interval time.Duration) *TaxTableJobs {
	return &TaxTableJobs{
		tables:   tables,
		path:     path,
		interval: interval,
	}
}

// RegisterJobs defers the first reload since the tables were just loaded at startup.
func (j *TaxTableJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.Add(Job{
		Name:     "reload_tax_tables",
		Interval: j.interval,
		Fn:       j.ReloadTaxTables,
		Deferred: true,
	})
}

func (j *TaxTableJobs) ReloadTaxTables(ctx context.Context) error {
	if err := j.tables.Reload(j.path); err != nil {
		slog.WarnContext(ctx, "Cron: tax table reload rejected, keeping loaded tables",
			"path", j.path,
			"tax_years", j.tables.IDs(),
			"error", err,
		)
		return fmt.Errorf("failed to reload tax tables from %s: %w", j.path, err)
	}

	slog.InfoContext(ctx, "Cron: tax tables reloaded", "path", j.path, "tax_years", j.tables.IDs())
	return nil
}
