package cli

import (
	"github.com/condatools/condafeed/internal/database"
	"github.com/condatools/condafeed/internal/feedstock"
	"github.com/condatools/condafeed/internal/models"
	"github.com/spf13/cobra"
)

// NewCreateCmd creates the create command
func NewCreateCmd() *cobra.Command {
	var config models.FeedstockConfig

	cmd := &cobra.Command{
		Use:   "create PKG_NAME",
		Short: "Create a feedstock from a published binary package",
		Long: `Resolves a package against the package database, downloads and unpacks
the binary artifact, recovers the embedded recipe, downloads the declared
source archives and rewrites the recipe to reference the local copies.

The recovered recipe lands in <recipes-dir>/<name>-<version>. An existing
feedstock of the same name-version is replaced. The declared dependencies
are printed and appended to <workdir>/deps.txt for manual review.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config.Name = args[0]
			return runCreate(&config)
		},
	}

	cmd.Flags().StringVar(&config.UpperBound, "upper-bound", "", "Package version upper bound (default: highest)")
	cmd.Flags().StringVar(&config.BuildFilter, "py", "310", "Python version build string filter")
	cmd.Flags().StringVar(&config.DBPath, "db", "data/pkgdb.json", "Package database file")
	cmd.Flags().StringVar(&config.WorkDir, "workdir", "workdir", "Scratch directory for downloads")
	cmd.Flags().StringVar(&config.RecipesDir, "recipes-dir", "recipes", "Recipes output directory")
	cmd.Flags().StringVar(&config.PkgsDir, "pkgs-dir", "pkgs", "Source packages directory")

	return cmd
}

func runCreate(config *models.FeedstockConfig) error {
	db, err := database.Load(config.DBPath)
	if err != nil {
		return err
	}

	record, err := db.Resolve(config.Name, config.UpperBound, config.BuildFilter)
	if err != nil {
		return err
	}

	return feedstock.Create(record, feedstock.Dirs{
		Work:    config.WorkDir,
		Recipes: config.RecipesDir,
		Pkgs:    config.PkgsDir,
	})
}
