package app

import (
	"errors"
	"testing"

	"times-go/internal/testutil"
)

func TestNewOperation(t *testing.T) {
	op := NewOperation("Backup", testutil.FixedClock())

	if op.ID != "20240101T090000Z" {
		t.Errorf("ID = %q, want 20240101T090000Z", op.ID)
	}
	if op.Name != "Backup" {
		t.Errorf("Name = %q, want Backup", op.Name)
	}
	if op.Status != "success" {
		t.Errorf("Status = %q, want success", op.Status)
	}
}

func TestOperation_Fail(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil keeps success", err: nil, want: "success"},
		{name: "error marks failure", err: errors.New("boom"), want: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := NewOperation("Post", testutil.FixedClock())
			if got := op.Fail(tt.err); got != tt.err {
				t.Errorf("Fail() returned %v, want %v", got, tt.err)
			}
			if op.Status != tt.want {
				t.Errorf("Status = %q, want %q", op.Status, tt.want)
			}
		})
	}
}
