package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gogpu/geofield"
	"github.com/gogpu/geofield/internal/parallel"
)

var rootCmd = &cobra.Command{
	Use:   "geodemo",
	Short: "Evaluate fields on geometry described by YAML scenes",
	Long: `geodemo builds meshes, curves, point clouds and grease pencil layers from a
scene file, captures fields onto them and prints the stored attributes.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		l, err := newLogger(cmd.ErrOrStderr(), level)
		if err != nil {
			return err
		}
		geofield.SetLogger(l)

		workers, _ := cmd.Flags().GetInt("workers")
		if workers > 0 {
			parallel.SetDefaultWorkers(workers)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "off", "Log level (off, debug, info, warn, error)")
	rootCmd.PersistentFlags().Int("workers", 0, "Worker goroutines for parallel evaluation (0 uses GOMAXPROCS)")
}

// newLogger returns a text logger on w, or nil for level "off".
func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "off", "":
		return nil, nil
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	})), nil
}
