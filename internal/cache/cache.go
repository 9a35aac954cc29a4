package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// ResponseCache stores extraction payloads keyed by a digest of the model,
// the prompt, and the attached image bytes. Hitting the cache skips the
// vision call entirely, so re-running the same extraction is free and
// reproducible.
type ResponseCache struct {
	Dir string
	// StrictPerms, when true, enforces 0700 on the cache directory and 0600
	// on files.
	StrictPerms bool
}

// KeyFrom builds a cache key from the model, the full prompt text, and a
// digest per attached image.
func KeyFrom(model string, prompt string, images ...[]byte) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte("\n\n"))
	h.Write([]byte(prompt))
	for _, img := range images {
		d := sha256.Sum256(img)
		h.Write([]byte("\n"))
		h.Write(d[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (c *ResponseCache) ensureDir() error {
	if c == nil || c.Dir == "" {
		return errors.New("cache dir not configured")
	}
	perm := os.FileMode(0o755)
	if c.StrictPerms {
		perm = 0o700
	}
	if err := os.MkdirAll(c.Dir, perm); err != nil {
		return err
	}
	if c.StrictPerms {
		if info, err := os.Stat(c.Dir); err == nil {
			if info.Mode()&0o777 != 0o700 {
				_ = os.Chmod(c.Dir, 0o700)
			}
		}
	}
	return nil
}

func (c *ResponseCache) pathFor(key string) string {
	return filepath.Join(c.Dir, key+".json")
}

// Get returns cached bytes if present.
func (c *ResponseCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if err := c.ensureDir(); err != nil {
		return nil, false, err
	}
	p := c.pathFor(key)
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, false, nil
	}
	// Touch mtime on access so purge-by-age treats hits as fresh
	now := time.Now()
	_ = os.Chtimes(p, now, now)
	return b, true, nil
}

// Save writes bytes to cache.
func (c *ResponseCache) Save(_ context.Context, key string, data []byte) error {
	if err := c.ensureDir(); err != nil {
		return err
	}
	mode := os.FileMode(0o644)
	if c.StrictPerms {
		mode = 0o600
	}
	return os.WriteFile(c.pathFor(key), data, mode)
}
