package config

import (
	"os"
	"testing"

	"github.com/sirupsen/logrus"

	"go.polydawn.net/gitjfs/rev"
)

func TestGetDefaultRefFallsBackToRevDefault(t *testing.T) {
	os.Unsetenv("GITJFS_DEFAULT_REF")
	if got := GetDefaultRef(); got != rev.Default {
		t.Fatalf("expected %q, got %q", rev.Default, got)
	}
}

func TestGetDefaultRefHonorsEnv(t *testing.T) {
	os.Setenv("GITJFS_DEFAULT_REF", "refs/heads/develop")
	defer os.Unsetenv("GITJFS_DEFAULT_REF")
	if got := GetDefaultRef(); got != "refs/heads/develop" {
		t.Fatalf("unexpected ref: %q", got)
	}
}

func TestGetLogLevelDefaultsToInfo(t *testing.T) {
	os.Unsetenv("GITJFS_LOG_LEVEL")
	if got := GetLogLevel(); got != logrus.InfoLevel {
		t.Fatalf("expected InfoLevel, got %v", got)
	}
}

func TestGetLogLevelHonorsEnv(t *testing.T) {
	os.Setenv("GITJFS_LOG_LEVEL", "debug")
	defer os.Unsetenv("GITJFS_LOG_LEVEL")
	if got := GetLogLevel(); got != logrus.DebugLevel {
		t.Fatalf("expected DebugLevel, got %v", got)
	}
}

func TestGetLogLevelFallsBackOnGarbage(t *testing.T) {
	os.Setenv("GITJFS_LOG_LEVEL", "not-a-level")
	defer os.Unsetenv("GITJFS_LOG_LEVEL")
	if got := GetLogLevel(); got != logrus.InfoLevel {
		t.Fatalf("expected fallback to InfoLevel, got %v", got)
	}
}
