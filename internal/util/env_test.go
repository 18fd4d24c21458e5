package util

import (
	"testing"
	"time"
)

func TestParseBoolEnv(t *testing.T) {
	tests := []struct {
		value    string
		def      bool
		expected bool
	}{
		{"true", false, true},
		{"1", false, true},
		{"yes", false, true},
		{"ON", false, true},
		{"false", true, false},
		{"0", true, false},
		{"no", true, false},
		{"off", true, false},
		{"", true, true},
		{"", false, false},
		{"maybe", true, true},
		{"maybe", false, false},
		{" true ", false, true},
	}

	for _, tt := range tests {
		t.Setenv("TEST_BOOL_ENV", tt.value)
		if got := ParseBoolEnv("TEST_BOOL_ENV", tt.def); got != tt.expected {
			t.Errorf("ParseBoolEnv(%q, %v) = %v, expected %v", tt.value, tt.def, got, tt.expected)
		}
	}
}

func TestParseDurationEnv(t *testing.T) {
	t.Setenv("TEST_DURATION_ENV", "30s")
	if got := ParseDurationEnv("TEST_DURATION_ENV", time.Minute); got != 30*time.Second {
		t.Errorf("expected 30s, got %v", got)
	}

	t.Setenv("TEST_DURATION_ENV", "")
	if got := ParseDurationEnv("TEST_DURATION_ENV", time.Minute); got != time.Minute {
		t.Errorf("expected default for empty value, got %v", got)
	}

	t.Setenv("TEST_DURATION_ENV", "not-a-duration")
	if got := ParseDurationEnv("TEST_DURATION_ENV", 15*time.Second); got != 15*time.Second {
		t.Errorf("expected default for invalid value, got %v", got)
	}
}
