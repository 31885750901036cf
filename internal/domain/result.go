package domain

// CatalogMeta contains metadata about a discovery run
type CatalogMeta struct {
	Root               string  `json:"root" yaml:"root"`
	TotalTestFiles     int     `json:"total_test_files" yaml:"total_test_files"`
	DisruptiveTests    int     `json:"disruptive_tests" yaml:"disruptive_tests"`
	NonDisruptiveTests int     `json:"non_disruptive_tests" yaml:"non_disruptive_tests"`
	FailedTestFiles    int     `json:"failed_test_files" yaml:"failed_test_files"`
	Components         int     `json:"components" yaml:"components"`
	Duration           string  `json:"duration" yaml:"duration"`
	DurationSeconds    float64 `json:"duration_seconds" yaml:"duration_seconds"`
	Timestamp          string  `json:"timestamp" yaml:"timestamp"`
}

// CatalogOutput is the complete handoff document written after a build
type CatalogOutput struct {
	Meta     CatalogMeta   `json:"meta" yaml:"meta"`
	Catalog  *Catalog      `json:"catalog" yaml:"catalog"`
	Failures []FileFailure `json:"failures" yaml:"failures"`
}

// Complete reports whether every candidate file was classified.
func (o *CatalogOutput) Complete() bool {
	return len(o.Failures) == 0
}
