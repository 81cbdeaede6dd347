package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	id "votegate/pkg/domain"
	"votegate/pkg/platform/sentinel"
)

// Registry is the identity registry port. Production wiring loads a JSON
// snapshot; a national registry client would satisfy the same interface.
type Registry interface {
	Lookup(ctx context.Context, docType id.DocumentType, docNumber id.DocumentNumber) (Registrant, error)
	ReferencePhoto(ctx context.Context, registrant Registrant) ([]byte, error)
}

// FileRegistry serves registrant records from a JSON file loaded once at
// startup. Reference photos are resolved relative to the registry file.
type FileRegistry struct {
	mu         sync.RWMutex
	records    map[string]Registrant
	photoRoot  string
	sourcePath string
}

type registryFile struct {
	Registrants []Registrant `json:"registrants"`
}

// NewFileRegistry loads the registry snapshot from path.
func NewFileRegistry(path string) (*FileRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry file: %w", err)
	}

	var file registryFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse registry file: %w", err)
	}

	records := make(map[string]Registrant, len(file.Registrants))
	for _, r := range file.Registrants {
		if !r.DocumentType.IsValid() {
			return nil, fmt.Errorf("registry record %q has unknown document type %q", r.DocumentNumber, r.DocumentType)
		}
		records[r.Key()] = r
	}

	return &FileRegistry{
		records:    records,
		photoRoot:  filepath.Dir(path),
		sourcePath: path,
	}, nil
}

// Lookup returns the registrant for a document, or sentinel.ErrNotFound.
func (f *FileRegistry) Lookup(_ context.Context, docType id.DocumentType, docNumber id.DocumentNumber) (Registrant, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	key := fmt.Sprintf("%s:%s", docType, docNumber)
	r, ok := f.records[key]
	if !ok {
		return Registrant{}, sentinel.ErrNotFound
	}
	return r, nil
}

// ReferencePhoto reads the registrant's reference image from disk.
func (f *FileRegistry) ReferencePhoto(_ context.Context, registrant Registrant) ([]byte, error) {
	if registrant.PhotoRef == "" {
		return nil, sentinel.ErrNotFound
	}
	data, err := os.ReadFile(filepath.Join(f.photoRoot, registrant.PhotoRef))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read reference photo: %w", err)
	}
	return data, nil
}

// Size reports how many registrants are loaded.
func (f *FileRegistry) Size() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.records)
}
