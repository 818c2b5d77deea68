package internal

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestShowProgress(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		message string
		fn      func() error
		wantErr bool
	}{
		{
			name:    "successful function",
			message: "Indexing sessions",
			fn: func() error {
				return nil
			},
			wantErr: false,
		},
		{
			name:    "function with error",
			message: "Indexing sessions",
			fn: func() error {
				return errors.New("test error")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ShowProgress(ctx, tt.message, tt.fn)
			if (err != nil) != tt.wantErr {
				t.Errorf("ShowProgress() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRunSilently(t *testing.T) {
	called := false
	err := RunSilently(context.Background(), "ignored", func() error {
		called = true
		return nil
	})
	if err != nil || !called {
		t.Errorf("RunSilently() err = %v, called = %v", err, called)
	}
}

func TestShowProgressSimple(t *testing.T) {
	var buf bytes.Buffer

	err := showProgressSimple(context.Background(), &buf, "Indexing sessions", func() error {
		time.Sleep(250 * time.Millisecond)
		return nil
	})
	if err != nil {
		t.Fatalf("showProgressSimple() error = %v", err)
	}

	out := buf.String()
	if !strings.HasSuffix(out, "✓ Indexing sessions\n") {
		t.Errorf("output should end with the success line, got %q", out)
	}
	if !strings.Contains(out, "⠋") {
		t.Errorf("spinner frames should be drawn, got %q", out)
	}
}

func TestShowProgressSimple_Error(t *testing.T) {
	var buf bytes.Buffer
	want := errors.New("boom")

	err := showProgressSimple(context.Background(), &buf, "Indexing sessions", func() error { return want })
	if !errors.Is(err, want) {
		t.Errorf("showProgressSimple() error = %v, want %v", err, want)
	}
	if !strings.Contains(buf.String(), "✗ Indexing sessions") {
		t.Errorf("output should contain the failure line, got %q", buf.String())
	}
}

func TestShowProgressSimple_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	finished := false
	err := showProgressSimple(ctx, &bytes.Buffer{}, "Indexing sessions", func() error {
		select {
		case <-ctx.Done():
		case <-time.After(2 * time.Second):
		}
		time.Sleep(20 * time.Millisecond)
		finished = true
		return ctx.Err()
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("showProgressSimple() error = %v, want deadline exceeded", err)
	}
	if !finished {
		t.Error("showProgressSimple() returned while the work was still running")
	}
	if time.Since(start) > time.Second {
		t.Error("showProgressSimple() should return as soon as the work stops")
	}
}

func TestIsTerminal(t *testing.T) {
	if isTerminal(&bytes.Buffer{}) {
		t.Error("a buffer is not a terminal")
	}
}
