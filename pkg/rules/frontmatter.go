package rules

import (
	"bytes"
	"errors"
)

var (
	// ErrMissingFrontMatter indicates the document does not start with a `---` fence.
	ErrMissingFrontMatter = errors.New("missing frontmatter")
	// ErrUnterminatedFrontMatter indicates the closing `---` fence was not found.
	ErrUnterminatedFrontMatter = errors.New("unterminated frontmatter")
)

const fence = "---"

// SplitFrontMatter separates the YAML frontmatter from the document body.
// CRLF line endings are normalized before splitting.
func SplitFrontMatter(content []byte) ([]byte, []byte, error) {
	normalized := bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	normalized = bytes.TrimPrefix(normalized, []byte("\ufeff"))

	if !bytes.HasPrefix(normalized, []byte(fence+"\n")) {
		return nil, nil, ErrMissingFrontMatter
	}

	rest := normalized[len(fence)+1:]

	// Empty frontmatter.
	if bytes.HasPrefix(rest, []byte(fence+"\n")) {
		return []byte{}, rest[len(fence)+1:], nil
	}
	if bytes.Equal(rest, []byte(fence)) {
		return []byte{}, []byte{}, nil
	}

	meta, body, ok := bytes.Cut(rest, []byte("\n"+fence+"\n"))
	if ok {
		return meta, body, nil
	}

	// Closing fence at end of file, without a trailing newline.
	if meta, ok := bytes.CutSuffix(rest, []byte("\n"+fence)); ok {
		return meta, []byte{}, nil
	}

	return nil, nil, ErrUnterminatedFrontMatter
}

// JoinFrontMatter renders YAML frontmatter and a body into a single document.
func JoinFrontMatter(meta, body []byte) []byte {
	var b bytes.Buffer

	b.WriteString(fence + "\n")
	b.Write(bytes.TrimRight(meta, "\n"))
	b.WriteString("\n" + fence + "\n")

	if len(body) > 0 {
		if !bytes.HasPrefix(body, []byte("\n")) {
			b.WriteString("\n")
		}

		b.Write(body)
	}

	return b.Bytes()
}
