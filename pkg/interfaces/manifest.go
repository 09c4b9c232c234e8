package interfaces

// Manifest describes every source-to-output mapping produced by one site
// build. Validators read it and hand it back unchanged.
type Manifest struct {
	SourceBasePath string         `json:"source_base_path,omitempty"`
	Files          []ManifestItem `json:"files"`
}

// ManifestItem is one source document and the output files built from it.
type ManifestItem struct {
	Type               string                    `json:"type,omitempty"`
	SourceRelativePath string                    `json:"source_relative_path"`
	OutputFiles        map[string]OutputFileInfo `json:"output,omitempty"`
	Metadata           map[string]any            `json:"metadata,omitempty"`
}

// OutputFileInfo identifies one generated artifact keyed by extension in
// ManifestItem.OutputFiles.
type OutputFileInfo struct {
	RelativePath string `json:"relative_path"`
	LinkToPath   string `json:"link_to_path,omitempty"`
}

// OutputFile returns the output entry registered for ext, if any.
func (m ManifestItem) OutputFile(ext string) (OutputFileInfo, bool) {
	if m.OutputFiles == nil {
		return OutputFileInfo{}, false
	}
	info, ok := m.OutputFiles[ext]
	return info, ok
}
