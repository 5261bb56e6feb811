package dist

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"
)

// cborEncMode uses canonical options so equal bundles encode to equal bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("dist: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// MarshalBundle serializes a Bundle to CBOR bytes.
func MarshalBundle(b *Bundle) ([]byte, error) {
	return cborEncMode.Marshal(b)
}

// UnmarshalBundle deserializes a Bundle from CBOR bytes.
func UnmarshalBundle(data []byte) (*Bundle, error) {
	var b Bundle
	if err := cbor.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("dist: unmarshal bundle: %w", err)
	}
	return &b, nil
}

// WriteFile writes b to path, creating the parent directory.
func WriteFile(path string, b *Bundle) error {
	data, err := MarshalBundle(b)
	if err != nil {
		return fmt.Errorf("dist: marshal bundle: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("dist: create dir for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("dist: write %s: %w", path, err)
	}
	return nil
}

// ReadFile reads and verifies a bundle from path.
func ReadFile(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dist: read %s: %w", path, err)
	}
	b, err := UnmarshalBundle(data)
	if err != nil {
		return nil, err
	}
	if err := b.Verify(); err != nil {
		return nil, err
	}
	return b, nil
}
