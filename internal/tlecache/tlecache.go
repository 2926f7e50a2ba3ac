// Package tlecache fetches and caches bulk Two-Line Element catalogs so a
// PlanRequest can reference a satellite by NORAD ID instead of pasting its
// TLE lines. It uses a tiered fallback strategy: fresh disk cache, network
// fetch, then stale disk cache.
package tlecache

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/akhenakh/sgp4"

	"github.com/orbitalcue/mission-planner/internal/orbit"
)

const cacheFileName = "tle_catalog.txt"

// Cache fetches a bulk TLE catalog from a configured URL and caches it on
// disk under dataRoot, keyed by NORAD catalog number.
type Cache struct {
	url      string
	dataRoot string
	maxAge   time.Duration
}

// New returns a Cache backed by url, caching under dataRoot and treating
// the cache as stale after refreshHours.
func New(url, dataRoot string, refreshHours int) *Cache {
	return &Cache{
		url:      url,
		dataRoot: dataRoot,
		maxAge:   time.Duration(refreshHours) * time.Hour,
	}
}

// Lookup returns the TLE for noradID, fetching and caching the bulk
// catalog first if needed.
func (c *Cache) Lookup(noradID int) (orbit.TLE, error) {
	catalog, err := c.catalog()
	if err != nil {
		return orbit.TLE{}, err
	}
	tle, ok := catalog[noradID]
	if !ok {
		return orbit.TLE{}, fmt.Errorf("norad id %d not found in TLE catalog", noradID)
	}
	return tle, nil
}

// ForceRefresh re-fetches the catalog from the network regardless of cache
// age and returns how many elements it contains.
func (c *Cache) ForceRefresh() (int, error) {
	body, err := c.fetchFromNetwork()
	if err != nil {
		return 0, err
	}
	cachePath := filepath.Join(c.dataRoot, cacheFileName)
	_ = c.writeCache(cachePath, body)
	catalog, err := parseCatalog(body)
	if err != nil {
		return 0, err
	}
	return len(catalog), nil
}

func (c *Cache) catalog() (map[int]orbit.TLE, error) {
	cachePath := filepath.Join(c.dataRoot, cacheFileName)

	raw, err := c.loadOrFetch(cachePath)
	if err != nil {
		return nil, err
	}
	return parseCatalog(raw)
}

// loadOrFetch walks the fallback chain for raw TLE text: fresh cache ->
// network -> stale cache.
func (c *Cache) loadOrFetch(cachePath string) (string, error) {
	info, err := os.Stat(cachePath)
	if err == nil && time.Since(info.ModTime()) < c.maxAge {
		if b, readErr := os.ReadFile(cachePath); readErr == nil && len(b) > 0 {
			return string(b), nil
		}
	}

	body, fetchErr := c.fetchFromNetwork()
	if fetchErr == nil {
		_ = c.writeCache(cachePath, body)
		return body, nil
	}

	if b, readErr := os.ReadFile(cachePath); readErr == nil && len(b) > 0 {
		return string(b), nil
	}

	return "", fmt.Errorf("TLE catalog unavailable: %w", fetchErr)
}

func (c *Cache) fetchFromNetwork() (string, error) {
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(c.url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("TLE fetch returned HTTP %d", resp.StatusCode)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// writeCache atomically writes data to cachePath via a temp file and
// rename so readers never see a half-written file.
func (c *Cache) writeCache(cachePath, data string) error {
	dir := filepath.Dir(cachePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "tle-*.tmp")
	if err != nil {
		return err
	}

	if _, err := tmp.WriteString(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	return os.Rename(tmp.Name(), cachePath)
}

// parseCatalog extracts every TLE from a bulk 3-line-per-satellite dump, as
// served by CelesTrak, keyed by NORAD catalog number.
func parseCatalog(raw string) (map[int]orbit.TLE, error) {
	result := make(map[int]orbit.TLE)
	lines := strings.Split(strings.TrimSpace(raw), "\n")

	for i := 0; i+2 < len(lines); i += 3 {
		name := strings.TrimSpace(lines[i])
		line1 := strings.TrimSpace(lines[i+1])
		line2 := strings.TrimSpace(lines[i+2])
		group := name + "\n" + line1 + "\n" + line2

		parsed, err := sgp4.ParseTLE(group)
		if err != nil {
			continue
		}

		result[parsed.SatelliteNumber] = orbit.TLE{Name: name, Line1: line1, Line2: line2}
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("no valid TLEs found in %d lines of input", len(lines))
	}

	return result, nil
}
