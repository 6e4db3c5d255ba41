package history

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return db
}

func TestRunRoundTrip(t *testing.T) {
	db := openTestDB(t)

	runID, err := db.BeginRun("home", "/backups", 5)
	if err != nil {
		t.Fatalf("BeginRun() error = %v", err)
	}
	if runID == 0 {
		t.Fatal("BeginRun() returned id 0")
	}

	if err := db.FinishRun(runID, 8, 3, 0); err != nil {
		t.Fatalf("FinishRun() error = %v", err)
	}

	runs, err := db.RecentRuns(10)
	if err != nil {
		t.Fatalf("RecentRuns() error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("RecentRuns() returned %d runs, want 1", len(runs))
	}

	run := runs[0]
	if run.Config != "home" || run.Remote != "/backups" || run.MaxKeep != 5 {
		t.Errorf("run = %+v", run)
	}
	if run.FinishedAt == nil {
		t.Error("run.FinishedAt not set")
	}
	if run.Discovered == nil || *run.Discovered != 8 {
		t.Errorf("run.Discovered = %v, want 8", run.Discovered)
	}
	if run.Deleted == nil || *run.Deleted != 3 {
		t.Errorf("run.Deleted = %v, want 3", run.Deleted)
	}
	if run.Attempts == nil || *run.Attempts != 0 {
		t.Errorf("run.Attempts = %v, want 0", run.Attempts)
	}
}

func TestOutcomeRecording(t *testing.T) {
	db := openTestDB(t)

	runID, err := db.BeginRun("home", "/backups", 2)
	if err != nil {
		t.Fatalf("BeginRun() error = %v", err)
	}

	rec := db.Run(runID)
	if err := rec.RecordOutcome(ActionDelete, 1, "/backups/home/1", ""); err != nil {
		t.Fatalf("RecordOutcome() error = %v", err)
	}
	if err := rec.RecordOutcome(ActionError, 2, "/backups/home/2", "failed at stage volume: exit status 1"); err != nil {
		t.Fatalf("RecordOutcome() error = %v", err)
	}
	if err := rec.RecordOutcome(ActionSkip, 9, "/backups/home/9", "latest backup"); err != nil {
		t.Fatalf("RecordOutcome() error = %v", err)
	}

	outcomes, err := db.RecentOutcomes(10)
	if err != nil {
		t.Fatalf("RecentOutcomes() error = %v", err)
	}
	if len(outcomes) != 3 {
		t.Fatalf("RecentOutcomes() returned %d rows, want 3", len(outcomes))
	}
	for _, o := range outcomes {
		if o.RunID != runID {
			t.Errorf("outcome.RunID = %d, want %d", o.RunID, runID)
		}
		if o.Config != "home" {
			t.Errorf("outcome.Config = %s, want home", o.Config)
		}
	}

	errorsOnly, err := db.OutcomesByAction(ActionError, 10)
	if err != nil {
		t.Fatalf("OutcomesByAction() error = %v", err)
	}
	if len(errorsOnly) != 1 || errorsOnly[0].Number != 2 {
		t.Errorf("OutcomesByAction(ERROR) = %+v, want snapshot 2 only", errorsOnly)
	}
	if errorsOnly[0].Detail == "" {
		t.Error("error outcome lost its detail")
	}

	byConfig, err := db.OutcomesByConfig("home", 10)
	if err != nil {
		t.Fatalf("OutcomesByConfig() error = %v", err)
	}
	if len(byConfig) != 3 {
		t.Errorf("OutcomesByConfig(home) returned %d rows, want 3", len(byConfig))
	}
	if other, _ := db.OutcomesByConfig("other", 10); len(other) != 0 {
		t.Errorf("OutcomesByConfig(other) returned %d rows, want 0", len(other))
	}
}

func TestOpenCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "history.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	db.Close()
}
