package database

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/condatools/condafeed/internal/models"
	"github.com/condatools/condafeed/internal/utils"
)

// DB maps a package name to its published builds, sorted ascending by
// version (oldest first). Downstream stages treat it as read-only.
type DB map[string][]models.PackageRecord

// Build constructs the package database from a merged channel listing.
// Records are grouped by name and each group is version-sorted.
func Build(listing map[string]RepodataEntry, baseURL string) DB {
	db := make(DB)
	base := strings.TrimRight(baseURL, "/")

	for filename, e := range listing {
		db[e.Name] = append(db[e.Name], models.PackageRecord{
			Name:      e.Name,
			Version:   e.Version,
			URL:       base + "/" + e.Subdir + "/" + filename,
			Depends:   e.Depends,
			NV:        e.Name + "-" + e.Version,
			Timestamp: e.Timestamp,
			Build:     e.Build,
			Subdir:    e.Subdir,
		})
	}

	for _, group := range db {
		sortGroup(group)
	}

	return db
}

// sortGroup orders one package's builds ascending by parsed version. When any
// version in the group does not parse, the whole group falls back to a
// lexicographic (version, timestamp, build) order so the group still has a
// single consistent total order.
func sortGroup(group []models.PackageRecord) {
	type keyed struct {
		rec models.PackageRecord
		ver *semver.Version
	}

	entries := make([]keyed, 0, len(group))
	for _, r := range group {
		v, err := semver.NewVersion(r.Version)
		if err != nil {
			sortGroupFallback(group)
			return
		}
		entries = append(entries, keyed{rec: r, ver: v})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.ver.Equal(b.ver) {
			return a.ver.LessThan(b.ver)
		}
		// Equal versions need a deterministic order too; the listing is a
		// map, so insertion order carries no meaning.
		if a.rec.Timestamp != b.rec.Timestamp {
			return a.rec.Timestamp < b.rec.Timestamp
		}
		return a.rec.Build < b.rec.Build
	})

	for i := range entries {
		group[i] = entries[i].rec
	}
}

func sortGroupFallback(group []models.PackageRecord) {
	sort.SliceStable(group, func(i, j int) bool {
		a, b := group[i], group[j]
		if a.Version != b.Version {
			return a.Version < b.Version
		}
		if a.Timestamp != b.Timestamp {
			return a.Timestamp < b.Timestamp
		}
		return a.Build < b.Build
	})
}

// Save writes the database as indented JSON. Map keys marshal in sorted
// order, which keeps the file diffable across runs.
func (db DB) Save(path string) error {
	data, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return &models.PipelineError{Type: models.ErrFileOp, Err: fmt.Errorf("encode database: %w", err)}
	}
	if err := utils.WriteFile(path, data, 0644); err != nil {
		return &models.PipelineError{Type: models.ErrFileOp, Err: fmt.Errorf("write %s: %w", path, err)}
	}
	return nil
}

// Load reads a previously saved database file.
func Load(path string) (DB, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &models.PipelineError{Type: models.ErrFileOp, Err: fmt.Errorf("read database: %w", err)}
	}
	var db DB
	if err := json.Unmarshal(data, &db); err != nil {
		return nil, &models.PipelineError{Type: models.ErrFileOp, Err: fmt.Errorf("parse %s: %w", path, err)}
	}
	return db, nil
}
