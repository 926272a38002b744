// Package jsonfile loads profile documents from JSON files on disk.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/custodia-labs/twinsync/internal/core/domain"
	"github.com/custodia-labs/twinsync/internal/core/ports/driven"
	"github.com/custodia-labs/twinsync/internal/logger"
)

// Ensure Loader implements the interface.
var _ driven.ProfileLoader = (*Loader)(nil)

// Loader reads a profile document from a file.
type Loader struct{}

// NewLoader creates a new file loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads and decodes the file at path. The undecoded bytes are kept on
// the document for full-document storage. A missing file is reported as
// domain.ErrNotFound; anything that is not a JSON object is a validation error.
func (l *Loader) Load(ctx context.Context, path string) (*domain.ProfileDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("profile %s: %w", path, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading profile %s: %w", path, err)
	}
	logger.Debug("Read profile %s (%d bytes)", path, len(data))

	return Decode(data)
}

// Decode parses profile JSON.
func Decode(data []byte) (*domain.ProfileDocument, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, &domain.ValidationError{Field: "document", Reason: "profile must be a JSON object"}
	}

	var doc domain.ProfileDocument
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, &domain.ValidationError{Field: "document", Reason: err.Error()}
	}
	doc.Raw = trimmed
	return &doc, nil
}
