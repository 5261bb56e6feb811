// Package compiler builds code-block programs and compiles each code line
// into the gzip+base64 template payload the game accepts.
package compiler

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// CodeLine is one top-level line of code blocks.
type CodeLine struct {
	Statements []Statement
}

// NewCodeLine creates a line from the given statements.
func NewCodeLine(stmts ...Statement) *CodeLine {
	return &CodeLine{Statements: stmts}
}

// Name returns the display name of the first statement, or "Empty".
func (l *CodeLine) Name() string {
	if len(l.Statements) == 0 {
		return "Empty"
	}
	return l.Statements[0].DisplayName()
}

// Serialize returns the block-list JSON of the line.
func (l *CodeLine) Serialize() ([]byte, error) {
	return SerializeLine(l)
}

// Compile serializes the line and encodes it as a transport payload.
func (l *CodeLine) Compile() (string, error) {
	data, err := SerializeLine(l)
	if err != nil {
		return "", err
	}
	return Encode(data)
}

// Encode gzips data at the default level and returns it as padded base64.
// The gzip header carries no timestamp or name, so equal input always
// yields an equal payload.
func Encode(data []byte) (string, error) {
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.DefaultCompression)
	if err != nil {
		return "", fmt.Errorf("gzip init: %w", err)
	}
	zw.Header.OS = 255
	if _, err := zw.Write(data); err != nil {
		_ = zw.Close()
		return "", fmt.Errorf("gzip write: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("gzip close: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Decode reverses Encode, returning the block-list JSON.
func Decode(payload string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("base64: %w", err)
	}
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	defer zr.Close()
	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	return data, nil
}
