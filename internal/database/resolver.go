package database

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/condatools/condafeed/internal/models"
	"github.com/sirupsen/logrus"
)

// Resolve selects the single build of name that satisfies the query.
//
// The group is already sorted ascending, so without an upper bound the last
// record is the newest build. With a bound, the group is scanned newest to
// oldest for the first version not exceeding it, which picks the closest
// version under the bound without requiring an exact match. A build filter
// that matches nothing is dropped rather than emptying the candidate set.
func (db DB) Resolve(name, upperBound, buildFilter string) (*models.PackageRecord, error) {
	group, ok := db[name]
	if !ok || len(group) == 0 {
		return nil, &models.PipelineError{
			Type:    models.ErrNotFound,
			Package: name,
			Err:     fmt.Errorf("package is not in the database"),
		}
	}

	if buildFilter != "" {
		var filtered []models.PackageRecord
		for _, r := range group {
			if strings.Contains(r.Build, buildFilter) {
				filtered = append(filtered, r)
			}
		}
		if len(filtered) > 0 {
			group = filtered
		} else {
			logrus.Warnf("No %s builds with %q in the build string, ignoring the filter", name, buildFilter)
		}
	}

	if upperBound == "" {
		rec := group[len(group)-1]
		return &rec, nil
	}

	bound, err := semver.NewVersion(upperBound)
	if err != nil {
		bound = nil // fall back to raw string comparison below
	}
	for i := len(group) - 1; i >= 0; i-- {
		if versionLTE(group[i].Version, upperBound, bound) {
			rec := group[i]
			return &rec, nil
		}
	}

	return nil, &models.PipelineError{
		Type:    models.ErrVersionNotFound,
		Package: name,
		Err:     fmt.Errorf("no version <= %s in the database", upperBound),
	}
}

// versionLTE reports whether raw is at most the bound, degrading to a raw
// string comparison when either side is not a parseable version.
func versionLTE(raw, boundRaw string, bound *semver.Version) bool {
	if bound != nil {
		if v, err := semver.NewVersion(raw); err == nil {
			return !v.GreaterThan(bound)
		}
	}
	return raw <= boundRaw
}
