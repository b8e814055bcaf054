package history

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/soocke/llama-bot-go/domain/automation"
	"github.com/soocke/llama-bot-go/domain/script"
	"github.com/soocke/llama-bot-go/domain/watchdog"
)

func fixedNow() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(nil, filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpen_Migrates(t *testing.T) {
	db := openTestDB(t)
	v, err := db.Version()
	if err != nil {
		t.Fatal(err)
	}
	if v != SchemaVersion {
		t.Fatalf("expected schema version %d, got %d", SchemaVersion, v)
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	db, err := Open(nil, path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.StartRun("collect", fixedNow()); err != nil {
		t.Fatal(err)
	}
	db.Close()

	db, err = Open(nil, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	runs, err := db.RecentRuns(10)
	if err != nil || len(runs) != 1 {
		t.Fatalf("expected the run to survive reopen, got %v %v", runs, err)
	}
}

func TestRecorder_RunLifecycle(t *testing.T) {
	db := openTestDB(t)
	rec := NewRecorder(nil, db)
	rec.now = fixedNow

	if err := rec.Begin("open"); err != nil {
		t.Fatal(err)
	}
	r := script.NewRunner(nil, "open",
		script.Step{Name: "a", Run: func(context.Context) error { return nil }},
		script.Step{Name: "b", When: func() bool { return false }},
	)
	r.AddListener(rec.Listener())
	if err := r.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := rec.End(nil); err != nil {
		t.Fatal(err)
	}

	run, err := db.GetRun(rec.RunID())
	if err != nil {
		t.Fatal(err)
	}
	if run.Mode != "open" || run.Outcome != OutcomeSucceeded || !run.FinishedAt.Valid {
		t.Fatalf("unexpected run %+v", run)
	}
	steps, err := db.Steps(run.ID)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, s := range steps {
		got = append(got, s.Name+":"+s.State)
	}
	want := "[a:started a:done b:skipped]"
	if fmt.Sprint(got) != want {
		t.Fatalf("steps %v, want %s", got, want)
	}
}

func TestClassify(t *testing.T) {
	abort := fmt.Errorf("collect/team: %w", &automation.AbortError{Verdict: watchdog.Verdict{Cause: watchdog.CauseIdle}})
	cases := []struct {
		err  error
		want Outcome
	}{
		{nil, OutcomeSucceeded},
		{abort, OutcomeAborted},
		{fmt.Errorf("x: %w", context.Canceled), OutcomeCancelled},
		{errors.New("boom"), OutcomeFailed},
	}
	for _, c := range cases {
		if got, _ := Classify(c.err); got != c.want {
			t.Errorf("Classify(%v) = %s, want %s", c.err, got, c.want)
		}
	}
}
