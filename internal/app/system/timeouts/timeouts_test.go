package timeouts

import (
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	Reset()
	if Short() != DefaultShort {
		t.Errorf("Short: got %v, want %v", Short(), DefaultShort)
	}
	if Long() != DefaultLong {
		t.Errorf("Long: got %v, want %v", Long(), DefaultLong)
	}
}

func TestConfigure_IgnoresZero(t *testing.T) {
	Reset()
	defer Reset()

	Configure(Config{Short: 7 * time.Second})

	if Short() != 7*time.Second {
		t.Errorf("Short: got %v, want 7s", Short())
	}
	if Medium() != DefaultMedium {
		t.Errorf("Medium should keep default, got %v", Medium())
	}
}

func TestConfigureFromEnv(t *testing.T) {
	Reset()
	defer Reset()

	t.Setenv("TIMEOUT_PING", "500ms")
	t.Setenv("TIMEOUT_LONG", "not-a-duration")
	t.Setenv("TIMEOUT_MEDIUM", "-1s")

	if n := ConfigureFromEnv(); n != 1 {
		t.Errorf("expected 1 value applied, got %d", n)
	}
	if Ping() != 500*time.Millisecond {
		t.Errorf("Ping: got %v, want 500ms", Ping())
	}
	if Long() != DefaultLong {
		t.Errorf("Long should keep default, got %v", Long())
	}
}
