package logger

import (
	"errors"
	"strings"
	"testing"
)

func TestWrapError(t *testing.T) {
	base := errors.New("boom")

	err := WrapError(base, "settle")
	if !errors.Is(err, base) {
		t.Fatalf("wrapped error lost its cause: %v", err)
	}
	if !strings.Contains(err.Error(), "logger_test.go") || !strings.Contains(err.Error(), "settle: boom") {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if WrapError(nil, "x") != nil {
		t.Fatal("nil error must stay nil")
	}
}

func TestInit(t *testing.T) {
	defer Set(L())

	if err := Init("development"); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := Init("verbose"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}
