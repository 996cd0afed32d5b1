package local

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Client stores uploaded images on the local filesystem beneath a fixed root.
// Paths handed to callers are root-relative ("/lost-dogs/169...jpg") so the
// value recorded on a report stays valid if the root moves.
type Client struct {
	root string
}

// New prepares the uploads root and returns a client bound to it.
func New(root string) (*Client, error) {
	trimmed := strings.TrimSpace(root)
	if trimmed == "" {
		return nil, errors.New("uploads root is required")
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return nil, fmt.Errorf("resolving uploads root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("creating uploads root: %w", err)
	}
	return &Client{root: abs}, nil
}

// Root returns the absolute uploads root.
func (c *Client) Root() string {
	return c.root
}

// Write persists data at the relative path, creating parent directories.
func (c *Client) Write(relPath string, data []byte) error {
	full, err := c.resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", relPath, err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", relPath, err)
	}
	return nil
}

// Read returns the raw bytes stored at the relative path.
func (c *Client) Read(relPath string) ([]byte, error) {
	full, err := c.resolve(relPath)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", relPath, err)
	}
	return data, nil
}

// Exists reports whether a file is present at the relative path.
func (c *Client) Exists(relPath string) bool {
	full, err := c.resolve(relPath)
	if err != nil {
		return false
	}
	info, err := os.Stat(full)
	return err == nil && !info.IsDir()
}

// Delete removes the file at the relative path. Missing files are not an error.
func (c *Client) Delete(relPath string) error {
	full, err := c.resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting %s: %w", relPath, err)
	}
	return nil
}

// resolve joins the relative path onto the root and rejects traversal outside it.
func (c *Client) resolve(relPath string) (string, error) {
	cleaned := filepath.Clean("/" + strings.TrimSpace(relPath))
	full := filepath.Join(c.root, cleaned)
	if !strings.HasPrefix(full, c.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("path %q escapes uploads root", relPath)
	}
	return full, nil
}
