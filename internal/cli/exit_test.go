package cli

import (
	"context"
	"errors"
	"fmt"
	"testing"

	gserrors "github.com/matzehuels/gitstat/pkg/errors"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"aborted", fmt.Errorf("%w: %w", gserrors.ErrAborted, context.Canceled), ExitInterrupted},
		{"canceled", fmt.Errorf("load: %w", context.Canceled), ExitInterrupted},
		{"not found", &gserrors.HTTPError{Status: 404}, 1},
		{"reported", reported(errors.New("boom")), 1},
		{"invalid input", gserrors.New(gserrors.ErrCodeInvalidInput, "bad"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"reported", reported(&gserrors.HTTPError{Status: 404}), ""},
		{"aborted", gserrors.ErrAborted, ""},
		{"coded", gserrors.New(gserrors.ErrCodeInvalidInput, "login cannot be empty"), "login cannot be empty"},
		{"rate limited", &gserrors.HTTPError{Status: 429}, "GitHub rate limit exceeded. Please try again later."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Message(tt.err); got != tt.want {
				t.Errorf("Message() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReportedUnwraps(t *testing.T) {
	if reported(nil) != nil {
		t.Error("reported(nil) should be nil")
	}
	err := reported(&gserrors.HTTPError{Status: 404})
	if !gserrors.IsNotFound(err) {
		t.Error("reported errors should keep their cause")
	}
}
