package sitecmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-docref/internal/site"
)

const (
	buildSiteMessageType     = "docref.site.build"
	importXrefMapMessageType = "docref.xref.import"
)

// ResultCallback receives the build result synchronously from the handler.
type ResultCallback func(ResultEnvelope)

// ResultEnvelope carries the outcome of a build command.
type ResultEnvelope struct {
	Result   *site.Result
	Metadata map[string]any
}

// BuildSiteCommand builds the site, optionally overriding the configured
// directories and strict policy.
type BuildSiteCommand struct {
	SourceDir      string         `json:"source_dir,omitempty"`
	OutputDir      string         `json:"output_dir,omitempty"`
	Strict         *bool          `json:"strict,omitempty"`
	DryRun         bool           `json:"dry_run,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (BuildSiteCommand) Type() string { return buildSiteMessageType }

// Validate rejects identical source and output directories.
func (m BuildSiteCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.SourceDir, validation.By(notBlankWhenSet("source_dir"))),
		validation.Field(&m.OutputDir,
			validation.By(notBlankWhenSet("output_dir")),
			validation.When(strings.TrimSpace(m.SourceDir) != "",
				validation.NotIn(m.SourceDir).Error("output_dir must differ from source_dir"),
			),
		),
	)
}

func (m BuildSiteCommand) request() site.Request {
	return site.Request{
		SourceDir: strings.TrimSpace(m.SourceDir),
		OutputDir: strings.TrimSpace(m.OutputDir),
		Strict:    m.Strict,
		DryRun:    m.DryRun,
	}
}

// ImportXrefMapCommand loads an xrefmap file into the configured spec store.
type ImportXrefMapCommand struct {
	Path string `json:"path"`
}

// Type implements command.Message.
func (ImportXrefMapCommand) Type() string { return importXrefMapMessageType }

func (m ImportXrefMapCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Path,
			validation.Required.Error("path is required"),
			validation.By(notBlankWhenSet("path")),
		),
	)
}

func notBlankWhenSet(field string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != "" && strings.TrimSpace(s) == "" {
			return validation.NewError("docref.command."+field+"_blank", field+" must not be blank")
		}
		return nil
	}
}
