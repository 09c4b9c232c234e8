package runtimeconfig_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-docref/internal/runtimeconfig"
)

func TestConfigValidate_DefaultsAreValid(t *testing.T) {
	if err := runtimeconfig.DefaultConfig().Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate_RejectsNonPositiveTabWidth(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Markup.TabWidth = 0

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrTabWidthInvalid) {
		t.Fatalf("expected ErrTabWidthInvalid, got %v", err)
	}
}

func TestConfigValidate_RequiresDisplayPropertyWhenXrefEnabled(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Xref.DisplayProperty = " "

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrDisplayPropertyRequired) {
		t.Fatalf("expected ErrDisplayPropertyRequired, got %v", err)
	}

	cfg.Features.Xref = false
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected disabled xref to skip property checks, got %v", err)
	}
}

func TestConfigValidate_RejectsBlankWhitelistEntry(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Bookmark.Whitelist = []string{"top", ""}

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrBookmarkWhitelistInvalid) {
		t.Fatalf("expected ErrBookmarkWhitelistInvalid, got %v", err)
	}
}

func TestConfigValidate_RequiresOutputDir(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Build.OutputDir = ""

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrBuildOutputDirRequired) {
		t.Fatalf("expected ErrBuildOutputDirRequired, got %v", err)
	}
}

func TestConfigValidate_StorageRules(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Driver = "oracle"
	cfg.Storage.DSN = "x"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrStorageDriverUnknown) {
		t.Fatalf("expected ErrStorageDriverUnknown, got %v", err)
	}

	cfg.Storage.Driver = "sqlite3"
	cfg.Storage.DSN = ""
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrStorageDSNRequired) {
		t.Fatalf("expected ErrStorageDSNRequired, got %v", err)
	}

	cfg = runtimeconfig.DefaultConfig()
	cfg.Cache.Enabled = true
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrCacheRequiresStorage) {
		t.Fatalf("expected ErrCacheRequiresStorage, got %v", err)
	}
}

func TestConfigValidate_LoggingRules(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "syslog"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}

	cfg.Logging.Provider = "gologger"
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingFormatInvalid) {
		t.Fatalf("expected ErrLoggingFormatInvalid, got %v", err)
	}

	cfg.Logging.Format = "json"
	cfg.Logging.Level = "loud"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingLevelInvalid) {
		t.Fatalf("expected ErrLoggingLevelInvalid, got %v", err)
	}
}
