package database

import (
	"compress/bzip2"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/condatools/condafeed/internal/models"
	"github.com/condatools/condafeed/internal/utils"
	"github.com/sirupsen/logrus"
)

// RepodataEntry is the metadata the channel publishes for one artifact file.
type RepodataEntry struct {
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	Build     string   `json:"build"`
	Subdir    string   `json:"subdir"`
	Depends   []string `json:"depends"`
	Timestamp int64    `json:"timestamp"`
}

// repodata is one architecture's listing. The channel splits it into two
// tables for the two on-disk packaging variants; both carry the same record
// shape, so ingestion merges them into a single mapping.
type repodata struct {
	Packages      map[string]RepodataEntry `json:"packages"`
	PackagesConda map[string]RepodataEntry `json:"packages.conda"`
}

// FetchListing downloads repodata.json.bz2 for every arch and merges the
// loose and .conda package tables into one filename-keyed listing.
func FetchListing(channelURL string, arches []string) (map[string]RepodataEntry, error) {
	listing := make(map[string]RepodataEntry)

	for _, arch := range arches {
		url := strings.TrimRight(channelURL, "/") + "/" + arch + "/repodata.json.bz2"
		if err := fetchArch(url, listing); err != nil {
			return nil, err
		}
	}

	return listing, nil
}

func fetchArch(url string, listing map[string]RepodataEntry) error {
	logrus.Infof("Connecting to %s ...", url)
	resp, err := http.Get(url)
	if err != nil {
		return &models.PipelineError{Type: models.ErrNetwork, Err: fmt.Errorf("GET %s: %w", url, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &models.PipelineError{Type: models.ErrNetwork, Err: fmt.Errorf("GET %s: %s", url, resp.Status)}
	}

	logrus.Infof("Loading %s ...", url)
	var rd repodata
	if err := json.NewDecoder(bzip2.NewReader(resp.Body)).Decode(&rd); err != nil {
		return &models.PipelineError{Type: models.ErrNetwork, Err: fmt.Errorf("decode %s: %w", url, err)}
	}

	for fn, e := range rd.Packages {
		listing[fn] = e
	}
	for fn, e := range rd.PackagesConda {
		listing[fn] = e
	}

	return nil
}

// SaveListing caches the merged raw listing so a rebuild of the database
// does not have to hit the channel again.
func SaveListing(path string, listing map[string]RepodataEntry) error {
	data, err := json.Marshal(listing)
	if err != nil {
		return &models.PipelineError{Type: models.ErrFileOp, Err: fmt.Errorf("encode listing: %w", err)}
	}
	if err := utils.WriteFile(path, data, 0644); err != nil {
		return &models.PipelineError{Type: models.ErrFileOp, Err: fmt.Errorf("write %s: %w", path, err)}
	}
	return nil
}

// LoadListing reads a cached raw listing.
func LoadListing(path string) (map[string]RepodataEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &models.PipelineError{Type: models.ErrFileOp, Err: fmt.Errorf("read listing: %w", err)}
	}
	var listing map[string]RepodataEntry
	if err := json.Unmarshal(data, &listing); err != nil {
		return nil, &models.PipelineError{Type: models.ErrFileOp, Err: fmt.Errorf("parse %s: %w", path, err)}
	}
	return listing, nil
}
