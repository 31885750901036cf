package discovery

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"testcat/internal/domain"
	"testcat/internal/pysource"
)

// CommentSource returns the raw comments of a source file in file order.
type CommentSource interface {
	ExtractComments(path, contentType string) ([]string, error)
}

// Metadata is the execution metadata declared by a test file.
type Metadata struct {
	Nature     domain.Nature
	Topologies []string
	Class      string // Implementation class named by a sidecar, if any
	Source     string // "comment" or the sidecar path
}

// Descriptor is the YAML sidecar form of the annotation:
//
//	nature: disruptive
//	topologies: [replicated, distributed]
//	class: TestCase
type Descriptor struct {
	Nature     string   `yaml:"nature"`
	Topologies []string `yaml:"topologies"`
	Class      string   `yaml:"class,omitempty"`
}

var (
	topologyPattern   = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)
	identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	// PEP 263 source encoding declaration
	codingPattern = regexp.MustCompile(`^.*?coding[:=][ \t]*[-_.a-zA-Z0-9]+`)
)

// MetadataExtractor reads the nature and topology annotation of test files
type MetadataExtractor struct {
	comments      CommentSource
	sidecarSuffix string
}

// NewMetadataExtractor creates a new MetadataExtractor. A non-empty
// sidecarSuffix enables descriptor files such as test_snap.meta.yaml, which
// take precedence over the comment annotation when present.
func NewMetadataExtractor(comments CommentSource, sidecarSuffix string) *MetadataExtractor {
	return &MetadataExtractor{comments: comments, sidecarSuffix: sidecarSuffix}
}

// Extract returns the metadata of the test file at path. Any failure is a
// *FileError of kind ErrMalformedMetadata; a nature is never assumed.
func (m *MetadataExtractor) Extract(path string) (Metadata, error) {
	if m.sidecarSuffix != "" {
		sidecar := SidecarPath(path, m.sidecarSuffix)
		meta, found, err := m.fromSidecar(path, sidecar)
		if err != nil {
			return Metadata{}, err
		}
		if found {
			return meta, nil
		}
	}

	comments, err := m.comments.ExtractComments(path, pysource.MimePython)
	if err != nil {
		return Metadata{}, malformed(path, err, "cannot read comments")
	}

	annotation, ok := firstAnnotation(comments)
	if !ok {
		return Metadata{}, malformed(path, nil, "no leading comment block")
	}
	return ParseAnnotation(path, annotation)
}

// ParseAnnotation parses "nature;topology[,topology...]". Fields beyond the
// second are ignored.
func ParseAnnotation(path, text string) (Metadata, error) {
	fields := strings.Split(text, ";")
	if len(fields) < 2 {
		return Metadata{}, malformed(path, nil, "annotation %q has %d field(s), expected nature;topologies", strings.TrimSpace(text), len(fields))
	}

	nature, err := parseNature(path, fields[0])
	if err != nil {
		return Metadata{}, err
	}
	topologies, err := parseTopologies(path, strings.Split(fields[1], ","))
	if err != nil {
		return Metadata{}, err
	}

	return Metadata{Nature: nature, Topologies: topologies, Source: "comment"}, nil
}

// SidecarPath returns the descriptor path of a test file.
func SidecarPath(path, suffix string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + suffix
}

func (m *MetadataExtractor) fromSidecar(path, sidecar string) (Metadata, bool, error) {
	data, err := os.ReadFile(sidecar)
	if errors.Is(err, os.ErrNotExist) {
		return Metadata{}, false, nil
	}
	if err != nil {
		return Metadata{}, false, malformed(path, err, "cannot read descriptor %s", sidecar)
	}

	var desc Descriptor
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&desc); err != nil && !errors.Is(err, io.EOF) {
		return Metadata{}, false, malformed(path, err, "invalid descriptor %s", sidecar)
	}

	nature, err := parseNature(path, desc.Nature)
	if err != nil {
		return Metadata{}, false, err
	}
	topologies, err := parseTopologies(path, desc.Topologies)
	if err != nil {
		return Metadata{}, false, err
	}
	class := strings.TrimSpace(desc.Class)
	if class != "" && !identifierPattern.MatchString(class) {
		return Metadata{}, false, malformed(path, nil, "descriptor %s names invalid class %q", sidecar, class)
	}

	return Metadata{Nature: nature, Topologies: topologies, Class: class, Source: sidecar}, true, nil
}

// firstAnnotation returns the first comment that is not an interpreter
// pragma (a shebang or a source encoding declaration).
func firstAnnotation(comments []string) (string, bool) {
	for i, c := range comments {
		if i == 0 && strings.HasPrefix(c, "!") {
			continue
		}
		if i < 2 && codingPattern.MatchString(c) {
			continue
		}
		return c, true
	}
	return "", false
}

func parseNature(path, tag string) (domain.Nature, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return "", malformed(path, nil, "missing nature tag")
	}
	nature, ok := domain.ParseNature(tag)
	if !ok {
		return "", malformed(path, nil, "unrecognized nature %q, expected disruptive or nonDisruptive", tag)
	}
	return nature, nil
}

// parseTopologies trims and de-duplicates the topology list, keeping the
// declared order.
func parseTopologies(path string, raw []string) ([]string, error) {
	if len(raw) == 0 || (len(raw) == 1 && strings.TrimSpace(raw[0]) == "") {
		return nil, malformed(path, nil, "no volume topologies declared")
	}

	var topologies []string
	seen := make(map[string]bool, len(raw))
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t == "" {
			return nil, malformed(path, nil, "empty topology in %q", strings.Join(raw, ","))
		}
		if !topologyPattern.MatchString(t) {
			return nil, malformed(path, nil, "invalid topology %q", t)
		}
		if seen[t] {
			continue
		}
		seen[t] = true
		topologies = append(topologies, t)
	}
	return topologies, nil
}
