package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewRejectsBadTimezone(t *testing.T) {
	if _, err := New("Mars/Olympus_Mons"); err == nil {
		t.Error("Expected error for unknown timezone")
	}
	if _, err := New(""); err != nil {
		t.Errorf("Empty timezone should mean local: %v", err)
	}
}

func TestAddRunJob(t *testing.T) {
	tests := []struct {
		spec     string
		wantErr  bool
		wantNext string // next firing after start, as 15:04
	}{
		{"07:30", false, "07:30"},
		{"0 */6 * * *", false, ""},
		{"@daily", false, "00:00"},
		{"25:00", true, ""},
		{"not a schedule", true, ""},
	}

	for _, tt := range tests {
		s, err := New("UTC")
		if err != nil {
			t.Fatal(err)
		}
		err = s.AddRunJob(tt.spec, func(ctx context.Context) error { return nil })
		if (err != nil) != tt.wantErr {
			t.Errorf("AddRunJob(%q) error = %v, wantErr %v", tt.spec, err, tt.wantErr)
			continue
		}
		if tt.wantErr {
			continue
		}

		s.Start()
		jobs := s.ListJobs()
		<-s.Stop().Done()

		if len(jobs) != 1 || jobs[0].Name != "run" {
			t.Fatalf("AddRunJob(%q) registered %+v", tt.spec, jobs)
		}
		if jobs[0].NextRun.IsZero() {
			t.Errorf("AddRunJob(%q) has no next run", tt.spec)
		}
		if tt.wantNext != "" && jobs[0].NextRun.Format("15:04") != tt.wantNext {
			t.Errorf("AddRunJob(%q) next run %s, want %s", tt.spec, jobs[0].NextRun.Format("15:04"), tt.wantNext)
		}
	}
}

func TestRunNow(t *testing.T) {
	s, err := New("UTC")
	if err != nil {
		t.Fatal(err)
	}

	ran := false
	if err := s.RunNow(context.Background(), "run", func(ctx context.Context) error {
		ran = true
		if d, ok := ctx.Deadline(); !ok || time.Until(d) > jobTimeout {
			t.Error("Job context is not bounded by the job timeout")
		}
		return nil
	}); err != nil {
		t.Fatalf("RunNow failed: %v", err)
	}
	if !ran {
		t.Error("Job did not run")
	}

	boom := errors.New("boom")
	if err := s.RunNow(context.Background(), "run", func(ctx context.Context) error { return boom }); !errors.Is(err, boom) {
		t.Errorf("Expected job error, got %v", err)
	}
}

func TestRunNowFollowsParentContext(t *testing.T) {
	s, err := New("UTC")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = s.RunNow(ctx, "run", func(ctx context.Context) error { return ctx.Err() })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
