package site

// Request overrides the configured directories and policy for one build.
// Blank directories keep the configured ones.
type Request struct {
	SourceDir string
	OutputDir string
	Strict    *bool
	DryRun    bool
}
