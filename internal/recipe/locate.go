package recipe

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/condatools/condafeed/internal/models"
	"github.com/condatools/condafeed/internal/utils"
	"github.com/sirupsen/logrus"
)

// Recipe is a recipe tree copied out of an unpacked artifact.
type Recipe struct {
	// Dir is the copied feedstock recipe directory, <recipesDir>/<nv>.
	Dir string
	// MetaYAML is the rendered metadata document the source urls are read
	// from. For multi-output recipes it still lives in the scratch tree.
	MetaYAML string
	// Template is the templated document whose url lines get rewritten.
	Template string
	// MultiOutput marks a recipe whose real metadata sat under parent/.
	MultiOutput bool
}

// Locate finds the recipe embedded in an unpacked artifact and copies it to
// <recipesDir>/<nv>. An existing destination is removed first, never merged,
// so a rerun always produces a clean feedstock.
//
// A parent/ subdirectory marks a multi-output recipe: the real metadata
// document is nested under it, and the parent subtree is copied wholesale.
// The resulting feedstock keeps the parent's name, which is ambiguous, so the
// caller is warned to rename it.
func Locate(extractDir, recipesDir, nv string) (*Recipe, error) {
	old := filepath.Join(extractDir, "info", "recipe")
	dest := filepath.Join(recipesDir, nv)

	if err := utils.EnsureDir(recipesDir); err != nil {
		return nil, &models.PipelineError{Type: models.ErrFileOp, Err: err}
	}
	if err := os.RemoveAll(dest); err != nil {
		return nil, &models.PipelineError{Type: models.ErrFileOp, Err: err}
	}

	parent := filepath.Join(old, "parent")
	if fi, err := os.Stat(parent); err == nil && fi.IsDir() {
		logrus.Warnf("%s is a multi-output package, correct its name", nv)
		if err := utils.CopyTree(parent, dest); err != nil {
			return nil, &models.PipelineError{Type: models.ErrFileOp, Err: fmt.Errorf("copy recipe: %w", err)}
		}
		return &Recipe{
			Dir:         dest,
			MetaYAML:    filepath.Join(old, "meta.yaml"),
			Template:    filepath.Join(dest, "meta.yaml"),
			MultiOutput: true,
		}, nil
	}

	logrus.Infof("Copying recipe to %s ...", dest)
	if err := utils.CopyTree(old, dest); err != nil {
		return nil, &models.PipelineError{Type: models.ErrFileOp, Err: fmt.Errorf("copy recipe: %w", err)}
	}

	// The build configuration pins variants across a whole channel; for a
	// single rebuilt feedstock it is redundant.
	buildCfg := filepath.Join(dest, "conda_build_config.yaml")
	if _, err := os.Stat(buildCfg); err == nil {
		logrus.Infof("Removing redundant %s ...", buildCfg)
		if err := os.Remove(buildCfg); err != nil {
			return nil, &models.PipelineError{Type: models.ErrFileOp, Err: err}
		}
	}

	return &Recipe{
		Dir:         dest,
		MetaYAML:    filepath.Join(dest, "meta.yaml"),
		Template:    filepath.Join(dest, "meta.yaml.template"),
		MultiOutput: false,
	}, nil
}

// Finalize makes the rewritten template the canonical metadata document of a
// single-output feedstock. Multi-output recipes skip this entirely; their
// copied parent tree is left as-is.
func (r *Recipe) Finalize() error {
	if r.MultiOutput {
		return nil
	}
	if err := os.Remove(r.MetaYAML); err != nil {
		return &models.PipelineError{Type: models.ErrFileOp, Err: err}
	}
	if err := os.Rename(r.Template, r.MetaYAML); err != nil {
		return &models.PipelineError{Type: models.ErrFileOp, Err: err}
	}
	r.Template = r.MetaYAML
	return nil
}

// FinalPath returns the metadata document inside the copied feedstock, the
// one dependencies are extracted from.
func (r *Recipe) FinalPath() string {
	return filepath.Join(r.Dir, "meta.yaml")
}
