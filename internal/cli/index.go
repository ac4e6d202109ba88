package cli

import (
	"os"

	"github.com/condatools/condafeed/internal/database"
	"github.com/condatools/condafeed/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const defaultChannelURL = "https://conda.anaconda.org/conda-forge"

// NewIndexCmd creates the index command
func NewIndexCmd() *cobra.Command {
	var config models.IndexConfig

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build the package database from channel repodata",
		Long: `Fetches repodata for every requested architecture from the channel,
merges the loose and .conda package tables and writes a name-indexed,
version-sorted package database.

The merged raw listing is cached on disk and reused on the next run, so
a database rebuild does not have to hit the channel again.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(&config)
		},
	}

	cmd.Flags().StringVarP(&config.Output, "output", "o", "data/pkgdb.json", "Output package database file")
	cmd.Flags().StringSliceVar(&config.Arches, "arch", []string{"linux-64", "noarch"}, "Channel architectures to index")
	cmd.Flags().StringVar(&config.ChannelURL, "url", defaultChannelURL, "Channel base URL")
	cmd.Flags().StringVar(&config.CachePath, "cache", "data/data.json", "Raw listing cache file")

	return cmd
}

func runIndex(config *models.IndexConfig) error {
	var listing map[string]database.RepodataEntry
	var err error

	if _, statErr := os.Stat(config.CachePath); statErr == nil {
		logrus.Infof("Using cached channel listing %s", config.CachePath)
		listing, err = database.LoadListing(config.CachePath)
		if err != nil {
			return err
		}
	} else {
		listing, err = database.FetchListing(config.ChannelURL, config.Arches)
		if err != nil {
			return err
		}
		if err := database.SaveListing(config.CachePath, listing); err != nil {
			return err
		}
	}

	logrus.Info("Extracting package database ...")
	db := database.Build(listing, config.ChannelURL)

	logrus.Infof("Writing package database to %s", config.Output)
	return db.Save(config.Output)
}
