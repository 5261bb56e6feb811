// Package dist packages compiled code lines as content-addressed chunks
// so a program can be compiled once and delivered later.
package dist

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/chazu/kindling/compiler"
)

// BundleVersion is the current bundle format version.
const BundleVersion byte = 1

// ErrHashMismatch indicates a chunk whose payload does not decode to the
// block list its hash was computed from.
var ErrHashMismatch = errors.New("dist: hash mismatch")

// Chunk is one compiled code line. Hash is the SHA-256 of the line's
// block-list JSON, so it is independent of compression.
type Chunk struct {
	Hash    [32]byte `cbor:"1,keyasint"`
	Name    string   `cbor:"2,keyasint"`
	Payload string   `cbor:"3,keyasint"`
}

// Bundle is a compiled program. Root hashes the chunk hashes in order.
type Bundle struct {
	Version byte     `cbor:"1,keyasint"`
	Author  string   `cbor:"2,keyasint"`
	Root    [32]byte `cbor:"3,keyasint"`
	Chunks  []Chunk  `cbor:"4,keyasint,omitempty"`
}

// NewBundle compiles every line of p into a chunk.
func NewBundle(p *compiler.Program) (*Bundle, error) {
	b := &Bundle{
		Version: BundleVersion,
		Author:  p.Author(),
		Chunks:  make([]Chunk, 0, len(p.Lines)),
	}
	for i, l := range p.Lines {
		data, err := compiler.SerializeLine(l)
		if err != nil {
			return nil, fmt.Errorf("dist: line %d: %w", i, err)
		}
		payload, err := compiler.Encode(data)
		if err != nil {
			return nil, fmt.Errorf("dist: line %d: %w", i, err)
		}
		b.Chunks = append(b.Chunks, Chunk{
			Hash:    sha256.Sum256(data),
			Name:    l.Name(),
			Payload: payload,
		})
	}
	b.Root = b.rootHash()
	return b, nil
}

func (b *Bundle) rootHash() [32]byte {
	h := sha256.New()
	h.Write([]byte{b.Version})
	for _, c := range b.Chunks {
		h.Write(c.Hash[:])
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Verify decodes every chunk payload and checks it against the chunk hash,
// then checks the root hash.
func (b *Bundle) Verify() error {
	if b.Version != BundleVersion {
		return fmt.Errorf("dist: unsupported bundle version %d", b.Version)
	}
	for i, c := range b.Chunks {
		data, err := compiler.Decode(c.Payload)
		if err != nil {
			return fmt.Errorf("dist: chunk %d (%s): %w", i, c.Name, err)
		}
		if sha256.Sum256(data) != c.Hash {
			return fmt.Errorf("%w: chunk %d (%s)", ErrHashMismatch, i, c.Name)
		}
	}
	if b.rootHash() != b.Root {
		return fmt.Errorf("%w: root", ErrHashMismatch)
	}
	return nil
}

// Artifacts returns the chunks as deliverable artifacts, in order.
func (b *Bundle) Artifacts() []compiler.Artifact {
	out := make([]compiler.Artifact, len(b.Chunks))
	for i, c := range b.Chunks {
		out[i] = compiler.Artifact{Author: b.Author, Name: c.Name, Payload: c.Payload}
	}
	return out
}
