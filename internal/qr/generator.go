// Package qr produces the scannable artifact handed out at vehicle entry.
package qr

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

const pngSize = 256

// Generator writes QR PNG files encoding session tokens.
type Generator struct {
	dir       string
	urlPrefix string
}

// NewGenerator ensures the output directory exists and returns a generator.
func NewGenerator(dir, urlPrefix string) (*Generator, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("qr: output dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("qr: create dir: %w", err)
	}
	return &Generator{dir: dir, urlPrefix: strings.TrimSuffix(urlPrefix, "/")}, nil
}

// Generate writes <dir>/<token>.png and returns the URL the file is served at.
func (g *Generator) Generate(token string) (string, error) {
	path := filepath.Join(g.dir, token+".png")
	if err := qrcode.WriteFile(token, qrcode.Low, pngSize, path); err != nil {
		return "", fmt.Errorf("qr: write %s: %w", path, err)
	}
	return fmt.Sprintf("%s/%s.png", g.urlPrefix, token), nil
}

// Dir returns the directory QR files are written to.
func (g *Generator) Dir() string {
	return g.dir
}
