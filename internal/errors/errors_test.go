package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestAutoscalerError_ImplementsError(t *testing.T) {
	var err error = New(ErrTransport, "cluster", "list nodes", stderrors.New("connection refused"))

	if got, want := err.Error(), "list nodes: connection refused"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestAutoscalerError_NoWrappedError(t *testing.T) {
	err := New(ErrInvalidConfig, "config", "ELASTIGROUP_ID is required", nil)
	if got := err.Error(); got != "ELASTIGROUP_ID is required" {
		t.Errorf("Error() = %q", got)
	}
}

func TestAutoscalerError_Unwrap(t *testing.T) {
	sentinel := stderrors.New("sentinel")
	err := fmt.Errorf("evaluate: %w", New(ErrUnrecognizedUnit, "convert", "normalize", sentinel))

	if !stderrors.Is(err, sentinel) {
		t.Error("errors.Is should find the wrapped sentinel")
	}

	var ae *AutoscalerError
	if !stderrors.As(err, &ae) {
		t.Fatal("errors.As should find AutoscalerError")
	}
	if ae.Component != "convert" {
		t.Errorf("Component = %q, want %q", ae.Component, "convert")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain error", stderrors.New("boom"), ExitUnclassified},
		{"transport", New(ErrTransport, "cluster", "x", nil), 6},
		{"wrapped unit", fmt.Errorf("outer: %w", New(ErrUnrecognizedUnit, "convert", "x", nil)), 7},
		{"no capacity", New(ErrNoAllocatableCapacity, "utilization", "x", nil), 8},
		{"fleet", New(ErrFleetAPI, "spotinst", "x", nil), 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExitCode_Distinct(t *testing.T) {
	seen := make(map[int]Code)
	for code, status := range exitCodes {
		if status == 0 || status == ExitUnclassified {
			t.Errorf("code %s uses reserved status %d", code, status)
		}
		if other, ok := seen[status]; ok {
			t.Errorf("codes %s and %s share exit status %d", code, other, status)
		}
		seen[status] = code
	}
}
