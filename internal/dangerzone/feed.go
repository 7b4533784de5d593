// Package dangerzone reads the offline danger-zone feed and renders it as
// advisor context.
package dangerzone

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/Veraticus/origin/internal/model"
)

// DefaultLimit is how many zones Context mentions by default.
const DefaultLimit = 3

// Feed is a loaded set of danger zones.
type Feed struct {
	Zones []model.DangerZone
}

// Load reads the feed at path. A missing file yields an empty feed.
func Load(path string) (*Feed, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from configuration
	if errors.Is(err, fs.ErrNotExist) {
		return &Feed{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open danger zone feed: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Parse(f)
}

// Parse decodes a JSON array of zones.
func Parse(r io.Reader) (*Feed, error) {
	var zones []model.DangerZone
	if err := json.NewDecoder(r).Decode(&zones); err != nil {
		return nil, fmt.Errorf("failed to decode danger zone feed: %w", err)
	}

	valid := zones[:0]
	for _, z := range zones {
		if strings.TrimSpace(z.Merchant) == "" || z.RegretCount < 1 {
			continue
		}
		valid = append(valid, z)
	}
	return &Feed{Zones: valid}, nil
}

// Top returns up to limit zones ordered by regret count, highest first.
// Ties keep feed order.
func (f *Feed) Top(limit int) []model.DangerZone {
	if f == nil || len(f.Zones) == 0 {
		return nil
	}

	zones := make([]model.DangerZone, len(f.Zones))
	copy(zones, f.Zones)
	sort.SliceStable(zones, func(i, j int) bool {
		return zones[i].RegretCount > zones[j].RegretCount
	})

	if limit > 0 && len(zones) > limit {
		zones = zones[:limit]
	}
	return zones
}

// Context renders the top zones as a single context line, or "" when the
// feed is empty.
func (f *Feed) Context(limit int) string {
	top := f.Top(limit)
	if len(top) == 0 {
		return ""
	}

	parts := make([]string, 0, len(top))
	for _, z := range top {
		noun := "regretted purchases"
		if z.RegretCount == 1 {
			noun = "regretted purchase"
		}
		parts = append(parts, fmt.Sprintf("%s (%d %s)", z.Merchant, z.RegretCount, noun))
	}
	return "High-regret locations: " + strings.Join(parts, ", ") + "."
}

// AppendContext joins the danger-zone line onto an existing financial context.
func (f *Feed) AppendContext(financialContext string, limit int) string {
	line := f.Context(limit)
	switch {
	case line == "":
		return financialContext
	case financialContext == "":
		return line
	default:
		return financialContext + " " + line
	}
}
