package pysource

import (
	"errors"
	"fmt"
	"os"
)

// MimePython is the content type of Python source files.
const MimePython = "text/x-python"

// ErrUnsupportedContentType is returned for content types other than Python.
var ErrUnsupportedContentType = errors.New("unsupported content type")

// CommentExtractor returns the comments of a source file in file order.
type CommentExtractor struct{}

// NewCommentExtractor creates a new CommentExtractor
func NewCommentExtractor() *CommentExtractor {
	return &CommentExtractor{}
}

// ExtractComments reads path and returns the text of every comment, without
// the leading '#'. Only MimePython is supported.
func (e *CommentExtractor) ExtractComments(path, contentType string) ([]string, error) {
	if contentType != MimePython {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedContentType, contentType)
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", path, err)
	}
	return Comments(path, src)
}

// Comments returns the comments found in src.
func Comments(filename string, src []byte) ([]string, error) {
	tokens, err := Tokenize(filename, src)
	if err != nil {
		return nil, err
	}

	var comments []string
	for _, t := range tokens {
		if t.Kind == KindComment {
			comments = append(comments, t.Value[1:])
		}
	}
	return comments, nil
}
