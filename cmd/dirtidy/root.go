package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"dirtidy/internal/config"
	"dirtidy/internal/filter"
	"dirtidy/internal/history"
	log "dirtidy/internal/log"
	"dirtidy/internal/organize"
	"dirtidy/internal/undo"
)

var errUndoDryRun = errors.New("--undo cannot be combined with --dry-run")

type rootOptions struct {
	configPath string
	dryRun     bool
	undo       bool
	verbose    bool
	logFile    string
	logJSON    bool
}

// NewRootCmd creates the root command operating on fs
func NewRootCmd(fs afero.Fs) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "dirtidy [directory]",
		Short: "Sort the files of a directory into category folders",
		Long: `dirtidy moves the files of one directory into subdirectories named after
their type (images, documents, code, ...). Every run is recorded in
.dirtidy_history.json inside the directory so it can be reverted with --undo.

Subdirectories are never entered. Hidden files are left alone unless the
configuration enables them.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := "warn"
			if opts.verbose {
				level = "debug"
			}
			logOpts := []log.Option{log.WithOutput(cmd.ErrOrStderr()), log.WithLevel(level)}
			if opts.logJSON {
				logOpts = append(logOpts, log.WithJSON())
			}
			if opts.logFile != "" {
				logOpts = append(logOpts, log.WithFile(opts.logFile))
			}
			log.SetDebug(opts.verbose)
			log.Configure(logOpts...)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = log.Close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.undo && opts.dryRun {
				return errUndoDryRun
			}

			targetDir := ""
			if len(args) > 0 {
				targetDir = args[0]
			}
			if targetDir == "" {
				var err error
				targetDir, err = os.Getwd()
				if err != nil {
					return fmt.Errorf("error getting current directory: %w", err)
				}
			}

			if opts.undo {
				return runUndo(cmd, fs, targetDir)
			}
			return runOrganize(cmd, fs, targetDir, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.dryRun, "dry-run", "n", false, "show what would be moved without changing anything")
	cmd.Flags().BoolVar(&opts.undo, "undo", false, "revert the last organize run in the directory")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "config file (default ./.dirtidyrc.toml, then $XDG_CONFIG_HOME/dirtidy/config.toml)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log every step to stderr")
	cmd.Flags().StringVar(&opts.logFile, "log-file", "", "also append log lines to this file")
	cmd.Flags().BoolVar(&opts.logJSON, "log-json", false, "write log lines as JSON")

	return cmd
}

func runOrganize(cmd *cobra.Command, fs afero.Fs, targetDir string, opts *rootOptions) error {
	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("error getting current directory: %w", err)
	}

	cfg, source, err := config.LoadConfig(opts.configPath, workDir)
	if err != nil {
		return err
	}
	if source != "" {
		log.LogWithFields(log.F("path", source)).Debug("Using configuration file")
	}

	rules, err := filter.New(cfg.Filters)
	if err != nil {
		return err
	}

	organizer := organize.CurrentOrganizerFactory(fs, rules, organize.Options{DryRun: opts.dryRun})
	result, err := organizer.Organize(cmd.Context(), targetDir)
	if result != nil {
		printOrganizeResult(cmd.OutOrStdout(), result)
		if result.DryRun && len(result.Planned) > 0 {
			printHistoryNote(cmd.OutOrStdout(), history.NewStore(fs).State(result.TargetDir))
		}
	}
	return err
}

func runUndo(cmd *cobra.Command, fs afero.Fs, targetDir string) error {
	report, err := undo.New(fs).Undo(cmd.Context(), targetDir)
	if report != nil {
		printUndoReport(cmd.OutOrStdout(), targetDir, report)
	}
	return err
}
