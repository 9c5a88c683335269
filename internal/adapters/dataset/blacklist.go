package dataset

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/andrescamacho/factorio-calculator/internal/domain/catalog"
)

// ReadBlacklist reads recipe ids to exclude, one per line. Blank lines and
// lines starting with # are ignored. A missing file is an empty blacklist.
func ReadBlacklist(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}

	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open blacklist %s: %w", path, err)
	}
	defer file.Close()

	var ids []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read blacklist %s: %w", path, err)
	}
	return ids, nil
}

// blacklistProvider adds a blacklist file to another provider's excluded set
type blacklistProvider struct {
	inner catalog.DataProvider
	path  string
}

// WithBlacklist wraps a provider so the recipes listed in path start excluded
func WithBlacklist(inner catalog.DataProvider, path string) catalog.DataProvider {
	if path == "" {
		return inner
	}
	return &blacklistProvider{inner: inner, path: path}
}

func (p *blacklistProvider) Load(ctx context.Context) (*catalog.Snapshot, error) {
	snapshot, err := p.inner.Load(ctx)
	if err != nil {
		return nil, err
	}

	ids, err := ReadBlacklist(p.path)
	if err != nil {
		return nil, err
	}
	snapshot.Excluded = append(snapshot.Excluded, ids...)
	return snapshot, nil
}
