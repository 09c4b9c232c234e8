package docref

import "github.com/goliatone/go-docref/internal/runtimeconfig"

var (
	ErrTabWidthInvalid          = runtimeconfig.ErrTabWidthInvalid
	ErrDisplayPropertyRequired  = runtimeconfig.ErrDisplayPropertyRequired
	ErrAltPropertyRequired      = runtimeconfig.ErrAltPropertyRequired
	ErrBookmarkWhitelistInvalid = runtimeconfig.ErrBookmarkWhitelistInvalid
	ErrBuildSourceDirRequired   = runtimeconfig.ErrBuildSourceDirRequired
	ErrBuildOutputDirRequired   = runtimeconfig.ErrBuildOutputDirRequired
	ErrBuildWorkersInvalid      = runtimeconfig.ErrBuildWorkersInvalid
	ErrStorageDriverUnknown     = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDSNRequired       = runtimeconfig.ErrStorageDSNRequired
	ErrCacheRequiresStorage     = runtimeconfig.ErrCacheRequiresStorage
	ErrLoggingProviderRequired  = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown   = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid      = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid     = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config         = runtimeconfig.Config
	Features       = runtimeconfig.Features
	MarkupConfig   = runtimeconfig.MarkupConfig
	XrefConfig     = runtimeconfig.XrefConfig
	BookmarkConfig = runtimeconfig.BookmarkConfig
	BuildConfig    = runtimeconfig.BuildConfig
	StorageConfig  = runtimeconfig.StorageConfig
	CacheConfig    = runtimeconfig.CacheConfig
	LoggingConfig  = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
