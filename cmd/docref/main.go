package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/goliatone/go-docref"
)

type module interface {
	BuildSiteHandler() *docref.BuildSiteHandler
	ImportXrefMapHandler() *docref.ImportXrefMapHandler
	Close() error
}

var (
	moduleBuilder = func(cfg docref.Config) (module, error) {
		return docref.New(cfg)
	}
	stdout io.Writer = os.Stdout
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("docref: %v", err)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: docref <build|import-xrefmap> [flags]")
	}
	switch args[0] {
	case "build":
		return runBuild(args[1:])
	case "import-xrefmap":
		return runImport(args[1:])
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// commonFlags registers the flags shared by every subcommand.
func commonFlags(fs *flag.FlagSet, cfg *docref.Config) {
	fs.StringVar(&cfg.Storage.Driver, "storage-driver", cfg.Storage.Driver, "Spec store driver (sqlite3); empty keeps specs in memory")
	fs.StringVar(&cfg.Storage.DSN, "storage-dsn", cfg.Storage.DSN, "Spec store data source name")
	fs.BoolVar(&cfg.Cache.Enabled, "cache", cfg.Cache.Enabled, "Cache spec store lookups")
	fs.BoolVar(&cfg.Features.Logger, "log", cfg.Features.Logger, "Enable logging")
	fs.StringVar(&cfg.Logging.Provider, "log-provider", cfg.Logging.Provider, "Logging provider (console, gologger)")
	fs.StringVar(&cfg.Logging.Level, "log-level", cfg.Logging.Level, "Minimum log level")
	fs.StringVar(&cfg.Logging.Format, "log-format", cfg.Logging.Format, "go-logger format (json, console, pretty)")
}

func runBuild(args []string) error {
	cfg := docref.DefaultConfig()
	fs := flag.NewFlagSet("docref-build", flag.ContinueOnError)
	commonFlags(fs, &cfg)
	fs.StringVar(&cfg.Build.SourceDir, "source", cfg.Build.SourceDir, "Directory holding the markdown sources")
	fs.StringVar(&cfg.Build.OutputDir, "output", cfg.Build.OutputDir, "Directory receiving the html pages")
	fs.StringVar(&cfg.Build.Pattern, "pattern", cfg.Build.Pattern, "Glob pattern applied when discovering sources")
	fs.BoolVar(&cfg.Build.Recursive, "recursive", cfg.Build.Recursive, "Walk sub-directories")
	fs.IntVar(&cfg.Build.Workers, "workers", cfg.Build.Workers, "Render workers; zero uses every CPU")
	fs.BoolVar(&cfg.Xref.Strict, "strict", cfg.Xref.Strict, "Fail when a must-resolve reference stays unresolved")
	fs.StringVar(&cfg.Xref.MapFile, "xrefmap", cfg.Xref.MapFile, "xrefmap file consulted after the spec store")
	fs.StringVar(&cfg.Xref.Language, "lang", cfg.Xref.Language, "Language used for spec properties")
	fs.BoolVar(&cfg.Markup.Sanitize, "sanitize", cfg.Markup.Sanitize, "Escape raw html instead of passing it through")
	whitelist := fs.String("bookmark-whitelist", strings.Join(cfg.Bookmark.Whitelist, ","), "Comma separated fragments never reported")
	dryRun := fs.Bool("dry-run", false, "Render without writing files")

	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg.Bookmark.Whitelist = splitList(*whitelist)

	mod, err := moduleBuilder(cfg)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer mod.Close()

	cmd := docref.BuildSiteCommand{
		DryRun: *dryRun,
		ResultCallback: func(env docref.BuildSiteResultEnvelope) {
			if env.Result == nil {
				return
			}
			for _, w := range env.Result.Warnings {
				fmt.Fprintf(stdout, "warning: %s\n", w.Message())
			}
			for _, u := range env.Result.Unresolved {
				fmt.Fprintf(stdout, "unresolved: %s in %s\n", u.UID, u.Source)
			}
			fmt.Fprintf(stdout, "built %d documents (%d references resolved, %d unresolved, %d bookmark warnings)\n",
				len(env.Result.Written), env.Result.Resolved, len(env.Result.Unresolved), len(env.Result.Warnings))
		},
	}
	if err := mod.BuildSiteHandler().Execute(context.Background(), cmd); err != nil {
		return fmt.Errorf("execute build command: %w", err)
	}
	return nil
}

func runImport(args []string) error {
	cfg := docref.DefaultConfig()
	fs := flag.NewFlagSet("docref-import-xrefmap", flag.ContinueOnError)
	commonFlags(fs, &cfg)
	path := fs.String("file", "xrefmap.json", "xrefmap file to import")
	if err := fs.Parse(args); err != nil {
		return err
	}

	mod, err := moduleBuilder(cfg)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer mod.Close()

	if err := mod.ImportXrefMapHandler().Execute(context.Background(), docref.ImportXrefMapCommand{Path: *path}); err != nil {
		return fmt.Errorf("execute import command: %w", err)
	}
	fmt.Fprintf(stdout, "imported %s\n", *path)
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
