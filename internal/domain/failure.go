package domain

// FileFailure describes a candidate test file that could not be classified
type FileFailure struct {
	ModulePath string   `json:"modulePath" yaml:"modulePath"`
	Kind       string   `json:"kind" yaml:"kind"` // MalformedTestMetadata, AmbiguousTestImplementation, ...
	Message    string   `json:"message" yaml:"message"`
	Candidates []string `json:"candidates,omitempty" yaml:"candidates,omitempty"`
}
