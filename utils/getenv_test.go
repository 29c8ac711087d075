package utils

import (
	"math"
	"testing"
	"time"
)

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("SKIRMISH_TEST_STR", "screen")
	t.Setenv("SKIRMISH_TEST_INT", "12")
	t.Setenv("SKIRMISH_TEST_BAD", "x")
	t.Setenv("SKIRMISH_TEST_DUR", "150ms")

	if got := GetEnvDefault("SKIRMISH_TEST_STR", "text"); got != "screen" {
		t.Errorf("GetEnvDefault = %q", got)
	}
	if got := GetEnvDefault("SKIRMISH_TEST_UNSET", "text"); got != "text" {
		t.Errorf("GetEnvDefault default = %q", got)
	}
	if n, err := GetEnvInt("SKIRMISH_TEST_INT", 1); err != nil || n != 12 {
		t.Errorf("GetEnvInt = %d, %v", n, err)
	}
	if _, err := GetEnvInt("SKIRMISH_TEST_BAD", 1); err == nil {
		t.Errorf("GetEnvInt should reject non integers")
	}
	if n, err := GetEnvUint64("SKIRMISH_TEST_UNSET", 7); err != nil || n != 7 {
		t.Errorf("GetEnvUint64 default = %d, %v", n, err)
	}
	if d, err := GetEnvDuration("SKIRMISH_TEST_DUR", time.Second); err != nil || d != 150*time.Millisecond {
		t.Errorf("GetEnvDuration = %v, %v", d, err)
	}
}

func TestFinite(t *testing.T) {
	if !Finite(1.5) || Finite(math.NaN()) || Finite(math.Inf(-1)) {
		t.Fatalf("Finite misclassified values")
	}
}
