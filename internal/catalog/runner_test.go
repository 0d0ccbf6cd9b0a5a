package catalog

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/heimdex/heimdex-turnover/internal/db"
)

func setupRunnerTest(t *testing.T) (*Runner, *Service, Repository) {
	t.Helper()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")
	database, err := db.New(dbPath, nil)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	repo := NewRepository(database.Conn())
	svc := NewService(repo, nil)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	return NewRunner(svc, repo, logger), svc, repo
}

func TestRunner_DrainScanAndImports(t *testing.T) {
	runner, svc, repo := setupRunnerTest(t)
	ctx := context.Background()

	dir := t.TempDir()
	writeFile(t, dir, "reel1.edl", sampleEDL)
	writeFile(t, dir, "logs/day1.ale", sampleALE)
	writeFile(t, dir, "notes.txt", "nothing to see here")

	source, err := svc.AddFolder(ctx, "p1", dir, "")
	if err != nil {
		t.Fatalf("AddFolder() error = %v", err)
	}
	if _, err := svc.ScanSource(ctx, source.ID); err != nil {
		t.Fatalf("ScanSource() error = %v", err)
	}

	runner.Drain(ctx)

	jobs, _ := repo.ListJobs(ctx, 10)
	if len(jobs) != 4 {
		t.Fatalf("jobs = %d, want scan + 3 imports", len(jobs))
	}
	failed := 0
	for _, j := range jobs {
		switch j.Status {
		case JobStatusCompleted:
		case JobStatusFailed:
			failed++
		default:
			t.Fatalf("job %s left in %s", j.ID, j.Status)
		}
	}
	if failed != 1 {
		t.Fatalf("failed jobs = %d, want 1 for the unrecognized text file", failed)
	}

	shots, _ := svc.ListShots(ctx, "p1")
	media, _ := svc.ListSourceMedia(ctx, "p1")
	if len(shots) != 2 || len(media) != 2 {
		t.Fatalf("shots = %d, media = %d", len(shots), len(media))
	}
	if shots[0].SourceMediaID == "" {
		t.Fatal("first shot should link to its camera clip whichever file imported first")
	}
}

func TestRunner_UnknownJobType(t *testing.T) {
	runner, _, repo := setupRunnerTest(t)
	ctx := context.Background()

	job := newJob("transcode", "", "")
	if err := repo.CreateJob(ctx, job); err != nil {
		t.Fatalf("create job: %v", err)
	}

	if !runner.processNextJob(ctx) {
		t.Fatal("processNextJob() = false, want true")
	}
	got, _ := repo.GetJob(ctx, job.ID)
	if got.Status != JobStatusFailed || got.Error != "unknown job type" {
		t.Fatalf("job = %+v", got)
	}
	if runner.processNextJob(ctx) {
		t.Fatal("no pending jobs should remain")
	}
}

func TestRunner_ImportMissingFile(t *testing.T) {
	runner, _, repo := setupRunnerTest(t)
	ctx := context.Background()

	job := newJob(JobTypeImport, "", "no-such-file")
	repo.CreateJob(ctx, job)

	runner.processNextJob(ctx)

	got, _ := repo.GetJob(ctx, job.ID)
	if got.Status != JobStatusFailed || got.Error != "file not found" {
		t.Fatalf("job = %+v", got)
	}
}

func TestRunner_StartPauseStop(t *testing.T) {
	runner, svc, repo := setupRunnerTest(t)
	runner.SetPollInterval(10 * time.Millisecond)

	dir := t.TempDir()
	writeFile(t, dir, "reel1.edl", sampleEDL)
	source, _ := svc.AddFolder(context.Background(), "p1", dir, "")

	runner.Pause()
	if !runner.IsPaused() {
		t.Fatal("runner should be paused")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		runner.Start(ctx)
		close(done)
	}()

	job, _ := svc.ScanSource(context.Background(), source.ID)
	time.Sleep(50 * time.Millisecond)
	if got, _ := repo.GetJob(context.Background(), job.ID); got.Status != JobStatusPending {
		t.Fatalf("paused runner ran job: %s", got.Status)
	}

	runner.Resume()
	deadline := time.Now().Add(2 * time.Second)
	for {
		got, _ := repo.GetJob(context.Background(), job.ID)
		if got.Status == JobStatusCompleted {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("scan job not completed, status = %s", got.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	<-done
	if runner.IsRunning() {
		t.Fatal("runner should report stopped")
	}
}
