package retention

import (
	"github.com/prometheus/client_golang/prometheus"

	"snapsweep/internal/deleter"
	"snapsweep/internal/logging"
	"snapsweep/internal/metrics"
	"snapsweep/internal/safety"
	"snapsweep/internal/snapshot"
)

// SnapshotDeleter removes a single snapshot and reports which stage it
// reached. Injected so the engine can be tested with scripted outcomes.
type SnapshotDeleter interface {
	Delete(path string) deleter.Outcome
}

// Recorder receives per-snapshot outcomes for the audit trail
type Recorder interface {
	RecordOutcome(action string, number int, path, detail string) error
}

// Metrics interface for retention metrics
type Metrics interface {
	SnapshotsDeleted() prometheus.Counter
	DeleteErrors() prometheus.Counter
}

// engineMetrics wraps the global metrics to implement Metrics
type engineMetrics struct{}

func (engineMetrics) SnapshotsDeleted() prometheus.Counter { return metrics.SnapshotsDeletedTotal }
func (engineMetrics) DeleteErrors() prometheus.Counter     { return metrics.DeleteErrorsTotal }

// Summary aggregates the result of one cleanup run
type Summary struct {
	Deleted  int // snapshots successfully removed
	Attempts int // attempt counter as reported, see Run for its semantics
	Total    int // snapshots discovered before the run
}

// Failed reports whether the run must produce a non-zero exit status
func (s Summary) Failed() bool {
	return s.Attempts > s.Deleted
}

// Engine applies the retention policy: delete oldest snapshots until at
// most maxKeep remain, never touching the latest-marked snapshot or
// anything resolving to the filesystem root.
type Engine struct {
	deleter SnapshotDeleter
	log     logging.Logger
	metrics Metrics
	rec     Recorder // optional, nil disables history recording
	dryRun  bool
}

func New(d SnapshotDeleter, log logging.Logger) *Engine {
	if log == nil {
		log = logging.Nop()
	}
	return &Engine{
		deleter: d,
		log:     log,
		metrics: engineMetrics{},
	}
}

// SetRecorder attaches an audit recorder for per-snapshot outcomes
func (e *Engine) SetRecorder(rec Recorder) {
	e.rec = rec
}

// SetMetrics overrides the metrics sink, used in tests
func (e *Engine) SetMetrics(m Metrics) {
	e.metrics = m
}

// SetDryRun makes the engine log what it would delete without invoking
// the deleter
func (e *Engine) SetDryRun(dryRun bool) {
	e.dryRun = dryRun
}

// Run sorts the snapshots ascending by number and deletes oldest-first
// until the keep threshold is satisfied. latestNum (when haveLatest) is the
// snapshot marked as the most recent successful backup; it is skipped
// whenever maxKeep > 0.
//
// The attempt counter replicates the original tool's behavior: it restarts
// at every delete-eligible candidate and clears again on success, so it
// finishes at 1 only when the last attempted delete failed. Skips do not
// count as attempts.
func (e *Engine) Run(snapshots []snapshot.Snapshot, latestNum int, haveLatest bool, maxKeep int) Summary {
	snapshot.SortByNumber(snapshots)

	e.log.Debug("snapshot list", "count", len(snapshots), "numbers", numbers(snapshots))

	deleteCount := 0
	deleteAttempts := 0
	for i, snap := range snapshots {
		// remaining snapshots not yet visited, minus attempts since the
		// last success, against the keep threshold
		if len(snapshots)-i-deleteAttempts <= maxKeep {
			break
		}

		if haveLatest && snap.Number == latestNum && maxKeep > 0 {
			e.log.Debug("skipping latest backup", "number", snap.Number)
			e.record("SKIP", snap, "latest backup")
			continue
		}

		if safety.ResolvesToRoot(snap.Path) {
			e.log.Warn("skipping snapshot since it resolves to the root path", "path", snap.Path)
			e.record("SKIP", snap, "resolves to filesystem root")
			continue
		}

		// Delete-eligible from here on.
		deleteAttempts = 1

		if e.dryRun {
			e.log.Info("[dry run] would delete snapshot", "number", snap.Number, "path", snap.Path)
			e.record("DELETE", snap, "dry run")
			deleteCount++
			deleteAttempts = 0
			continue
		}

		outcome := e.deleter.Delete(snap.Path)
		if outcome.OK() {
			e.log.Info("successfully deleted snapshot", "number", snap.Number)
			e.record("DELETE", snap, "")
			e.metrics.SnapshotsDeleted().Inc()
			deleteCount++
			deleteAttempts = 0
			continue
		}

		e.record("ERROR", snap, "failed at stage "+outcome.Stage.String()+": "+outcome.Err.Error())
		e.metrics.DeleteErrors().Inc()
	}

	summary := Summary{
		Deleted:  deleteCount,
		Attempts: deleteAttempts,
		Total:    len(snapshots),
	}

	e.log.Info("successful deletes", "count", summary.Deleted)
	e.log.Info("delete attempts", "count", summary.Attempts)
	e.log.Info("total snapshots discovered", "count", summary.Total)

	return summary
}

func (e *Engine) record(action string, snap snapshot.Snapshot, detail string) {
	if e.rec == nil {
		return
	}
	if err := e.rec.RecordOutcome(action, snap.Number, snap.Path, detail); err != nil {
		e.log.Error("failed to record outcome to history", "error", err)
	}
}

func numbers(snapshots []snapshot.Snapshot) []int {
	nums := make([]int, len(snapshots))
	for i, s := range snapshots {
		nums[i] = s.Number
	}
	return nums
}
