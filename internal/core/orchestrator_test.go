package core

import (
	"log/slog"
	"testing"
)

// CreateJob, CreateReprocessJob, CreateReprocessFileJob, and Process all
// drive the Repository and Schema Service against a live destination
// database; NewOrchestrator's defaulting behaviour is the pure piece
// covered here.

func TestNewOrchestrator_DefaultsLogger(t *testing.T) {
	o := NewOrchestrator(nil, 4, 1000, 5000, nil)
	if o.log == nil {
		t.Fatal("NewOrchestrator(nil logger) left log nil, want slog.Default()")
	}
}

func TestNewOrchestrator_KeepsGivenLogger(t *testing.T) {
	logger := slog.Default().With("component", "test")
	o := NewOrchestrator(nil, 4, 1000, 5000, logger)
	if o.log != logger {
		t.Error("NewOrchestrator() did not keep the provided logger")
	}
}
