package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/condatools/condafeed/internal/config"
	"github.com/condatools/condafeed/internal/models"
	"github.com/condatools/condafeed/internal/server"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	var envPath, addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the current configuration with hot reload",
		Long: `Loads an env file, watches it for changes and serves the currently
loaded values on GET /info. Edits to the file are picked up without a
restart; readers always see a complete snapshot.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), envPath, addr)
		},
	}

	cmd.Flags().StringVar(&envPath, "env-file", ".env", "Env file to load and watch")
	cmd.Flags().StringVar(&addr, "listen", ":8000", "Listen address")

	return cmd
}

func runServe(ctx context.Context, envPath, addr string) error {
	settings, err := config.Load(envPath)
	if err != nil {
		return &models.PipelineError{Type: models.ErrInvalidConfig, Err: err}
	}
	store := config.NewStore(settings)

	go func() {
		if err := store.Watch(ctx, envPath); err != nil && !errors.Is(err, context.Canceled) {
			logrus.Errorf("Configuration watcher stopped: %v", err)
		}
	}()

	srv := &http.Server{Addr: addr, Handler: server.New(store)}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logrus.Warnf("Shutdown: %v", err)
		}
	}()

	logrus.Infof("Serving configuration on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
