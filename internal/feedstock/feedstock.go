package feedstock

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/condatools/condafeed/internal/archive"
	"github.com/condatools/condafeed/internal/fetch"
	"github.com/condatools/condafeed/internal/models"
	"github.com/condatools/condafeed/internal/recipe"
	"github.com/condatools/condafeed/internal/utils"
	"github.com/sirupsen/logrus"
)

// Dirs holds the directories a pipeline run writes to. Work is scratch
// space owned by the run; Recipes and Pkgs are durable outputs with
// last-writer-wins semantics.
type Dirs struct {
	Work    string
	Recipes string
	Pkgs    string
}

// Create rebuilds a source feedstock from a resolved binary package: it
// downloads and unpacks the artifact, copies the embedded recipe, downloads
// the declared sources, points the recipe's url lines at the local copies
// and records the declared dependencies for review.
//
// Stages run sequentially and any stage error aborts the rest of the
// pipeline. A rerun overwrites whatever a failed run left behind.
func Create(rec *models.PackageRecord, dirs Dirs) error {
	logrus.Infof("Creating feedstock for %q %s", rec.Name, rec.Version)

	logrus.Infof("Downloading binary package %s from the channel ...", rec.NV)
	artifact := filepath.Join(dirs.Work, fetch.Basename(rec.URL))
	if err := fetch.Download(rec.URL, artifact); err != nil {
		return err
	}

	extractDir, err := unpack(artifact, dirs.Work)
	if err != nil {
		return err
	}

	r, err := recipe.Locate(extractDir, dirs.Recipes, rec.NV)
	if err != nil {
		return err
	}

	entries, err := recipe.LoadURLs(r.MetaYAML)
	if err != nil {
		return err
	}

	logrus.Infof("Downloading source packages to %s ...", dirs.Pkgs)
	for i := range entries {
		entries[i].LocalName = recipe.DestinationName(rec.Name, entries[i])
		dest := filepath.Join(dirs.Pkgs, entries[i].LocalName)
		if err := fetch.Download(entries[i].URL, dest); err != nil {
			return err
		}
		reportDigest(dest, entries[i])
	}

	logrus.Infof("Replacing urls in %s ...", r.Template)
	if err := recipe.ReplaceURLs(r.Template, entries, dirs.Pkgs); err != nil {
		return err
	}
	if err := r.Finalize(); err != nil {
		return err
	}

	logrus.Infof("Created feedstock for %q at %s", rec.Name, r.Dir)
	logrus.Warn("Please be sure to check the recipe for necessary modifications.")
	logrus.Warn("Please check if all the following dependencies are built:")

	deps, err := recipe.ExtractRequirements(r.FinalPath())
	if err != nil {
		return err
	}
	fmt.Println(strings.Repeat("-", 80))
	fmt.Println(deps)
	fmt.Println(strings.Repeat("-", 80))

	return appendDepsLog(dirs.Work, rec.NV, deps)
}

// unpack extracts the downloaded artifact into a clean per-artifact scratch
// directory and returns that directory.
func unpack(artifact, workDir string) (string, error) {
	name := filepath.Base(artifact)
	name = strings.TrimSuffix(name, ".tar.bz2")
	name = strings.TrimSuffix(name, ".conda")
	extractDir := filepath.Join(workDir, name)

	logrus.Infof("Unpacking %s to %s ...", filepath.Base(artifact), extractDir)
	if err := os.RemoveAll(extractDir); err != nil {
		return "", &models.PipelineError{Type: models.ErrFileOp, Err: err}
	}
	if err := utils.EnsureDir(extractDir); err != nil {
		return "", &models.PipelineError{Type: models.ErrFileOp, Err: err}
	}
	if err := archive.Extract(artifact, extractDir); err != nil {
		return "", err
	}
	return extractDir, nil
}

// reportDigest compares the downloaded file against the hash the recipe
// declares. The result is informational only; verification is left to the
// human rebuilding the package.
func reportDigest(path string, e models.SourceEntry) {
	sum, err := utils.Digest(path, e.HashKind)
	if err != nil {
		logrus.Debugf("Could not hash %s: %v", path, err)
		return
	}
	if sum == e.HashValue {
		logrus.Debugf("%s of %s matches the recipe", e.HashKind, filepath.Base(path))
		return
	}
	logrus.Warnf("%s of %s is %s, recipe declares %s", e.HashKind, filepath.Base(path), sum, e.HashValue)
}

// appendDepsLog records the extracted requirements in the running deps log,
// one section per invocation.
func appendDepsLog(workDir, nv, deps string) error {
	if err := utils.EnsureDir(workDir); err != nil {
		return &models.PipelineError{Type: models.ErrFileOp, Err: err}
	}

	f, err := os.OpenFile(filepath.Join(workDir, "deps.txt"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return &models.PipelineError{Type: models.ErrFileOp, Err: err}
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%s\ndependencies for %s:\n%s\n\n", strings.Repeat("-", 72), nv, deps); err != nil {
		return &models.PipelineError{Type: models.ErrFileOp, Err: err}
	}
	return nil
}
