package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrTabWidthInvalid          = errors.New("docref config: markup tab width must be positive")
	ErrDisplayPropertyRequired  = errors.New("docref config: xref display property is required")
	ErrAltPropertyRequired      = errors.New("docref config: xref alt property is required")
	ErrBookmarkWhitelistInvalid = errors.New("docref config: bookmark whitelist entries must not be blank")
	ErrBuildSourceDirRequired   = errors.New("docref config: build source directory is required")
	ErrBuildOutputDirRequired   = errors.New("docref config: build output directory is required")
	ErrBuildWorkersInvalid      = errors.New("docref config: build workers must be zero or positive")
	ErrStorageDriverUnknown     = errors.New("docref config: storage driver is invalid")
	ErrStorageDSNRequired       = errors.New("docref config: storage dsn is required when a driver is set")
	ErrCacheRequiresStorage     = errors.New("docref config: xref cache requires a storage driver")
	ErrLoggingProviderRequired  = errors.New("docref config: logging provider is required when logging feature is enabled")
	ErrLoggingProviderUnknown   = errors.New("docref config: logging provider is invalid")
	ErrLoggingLevelInvalid      = errors.New("docref config: logging level is invalid")
	ErrLoggingFormatInvalid     = errors.New("docref config: logging format is invalid")
)

// Config is the full runtime configuration of a docref build.
type Config struct {
	Markup   MarkupConfig
	Xref     XrefConfig
	Bookmark BookmarkConfig
	Build    BuildConfig
	Storage  StorageConfig
	Cache    CacheConfig
	Logging  LoggingConfig
	Features Features
}

// Features toggles optional stages of the build.
type Features struct {
	Xref      bool
	Bookmarks bool
	Logger    bool
}

// MarkupConfig controls normalisation and the built-in HTML renderer.
type MarkupConfig struct {
	TabWidth   int
	HeadingIDs bool
	// Sanitize drops raw HTML blocks instead of passing them through.
	Sanitize bool
}

// XrefConfig controls cross-reference resolution.
type XrefConfig struct {
	Language        string
	DisplayProperty string
	AltProperty     string
	// Strict turns unresolved markers flagged data-throw-if-not-resolved into
	// a build error. Resolution itself never fails on them.
	Strict  bool
	MapFile string
}

// BookmarkConfig controls fragment link validation.
type BookmarkConfig struct {
	Whitelist []string
	// CaseInsensitivePaths overrides the platform default (case-insensitive
	// on windows only) when set.
	CaseInsensitivePaths *bool
}

// BuildConfig drives the site pipeline.
type BuildConfig struct {
	SourceDir     string
	OutputDir     string
	Pattern       string
	Recursive     bool
	Workers       int
	RenderTimeout time.Duration
}

// StorageConfig selects the persistent xref store. An empty driver keeps
// specs in memory.
type StorageConfig struct {
	Driver string
	DSN    string
}

// CacheConfig wraps the persistent store with go-repository-cache.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns the configuration used by the CLI when no flags
// override it.
func DefaultConfig() Config {
	return Config{
		Markup: MarkupConfig{
			TabWidth:   4,
			HeadingIDs: true,
		},
		Xref: XrefConfig{
			DisplayProperty: "name",
			AltProperty:     "fullname",
		},
		Bookmark: BookmarkConfig{
			Whitelist: []string{"top"},
		},
		Build: BuildConfig{
			SourceDir: "docs",
			OutputDir: "_site",
			Pattern:   "*.md",
			Recursive: true,
		},
		Cache: CacheConfig{
			TTL: time.Minute,
		},
		Features: Features{
			Xref:      true,
			Bookmarks: true,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs consistency checks.
func (cfg Config) Validate() error {
	if cfg.Markup.TabWidth <= 0 {
		return ErrTabWidthInvalid
	}
	if cfg.Features.Xref {
		if strings.TrimSpace(cfg.Xref.DisplayProperty) == "" {
			return ErrDisplayPropertyRequired
		}
		if strings.TrimSpace(cfg.Xref.AltProperty) == "" {
			return ErrAltPropertyRequired
		}
	}
	for _, entry := range cfg.Bookmark.Whitelist {
		if strings.TrimSpace(entry) == "" {
			return ErrBookmarkWhitelistInvalid
		}
	}
	if strings.TrimSpace(cfg.Build.SourceDir) == "" {
		return ErrBuildSourceDirRequired
	}
	if strings.TrimSpace(cfg.Build.OutputDir) == "" {
		return ErrBuildOutputDirRequired
	}
	if cfg.Build.Workers < 0 {
		return fmt.Errorf("%w: %d", ErrBuildWorkersInvalid, cfg.Build.Workers)
	}
	if driver := normalize(cfg.Storage.Driver); driver != "" {
		if !isSupportedDriver(driver) {
			return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, driver)
		}
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return ErrStorageDSNRequired
		}
	} else if cfg.Cache.Enabled {
		return ErrCacheRequiresStorage
	}
	if cfg.Features.Logger {
		provider := normalize(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedDriver(driver string) bool {
	return driver == "sqlite3" || driver == "sqlite"
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
