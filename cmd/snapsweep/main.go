package main

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"

	"snapsweep/internal/btrfs"
	"snapsweep/internal/config"
	"snapsweep/internal/deleter"
	"snapsweep/internal/exitcodes"
	"snapsweep/internal/fsops"
	"snapsweep/internal/history"
	"snapsweep/internal/logging"
	"snapsweep/internal/metrics"
	"snapsweep/internal/retention"
	"snapsweep/internal/snapper"
	"snapsweep/internal/snapshot"
)

var errDeletesFailed = errors.New("delete attempts exceeded successful deletes")

func main() {
	var (
		configName string
		remoteRoot string
		maxKeep    int
		noColor    bool
		verbosity  int
		dryRun     bool
		configFile string
	)

	rootCmd := &cobra.Command{
		Use:           "snapsweep",
		Short:         "Cleans up old remote snap-sync backups",
		Long:          "snapsweep deletes the oldest mirrored snap-sync snapshots until at most --max-keep remain, always preserving the latest incremental backup. Intended to run from cron on the mirror host.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, configName, remoteRoot, maxKeep, noColor, verbosity, dryRun, configFile)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&configName, "config", "c", "", "the snapper config to use")
	flags.StringVarP(&remoteRoot, "remote", "r", "", "the remote volume path")
	flags.IntVarP(&maxKeep, "max-keep", "m", 0, "the max number of backups to keep")
	flags.BoolVar(&noColor, "no-color", false, "emit logs without colors")
	flags.CountVarP(&verbosity, "verbose", "v", "verbose output (repeat for more)")
	flags.BoolVar(&dryRun, "dry-run", false, "log what would be deleted without deleting")
	flags.StringVar(&configFile, "config-file", "", "operational settings file (default "+config.DefaultPath+")")
	cobra.CheckErr(rootCmd.MarkFlagRequired("config"))
	cobra.CheckErr(rootCmd.MarkFlagRequired("remote"))
	cobra.CheckErr(rootCmd.MarkFlagRequired("max-keep"))

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errDeletesFailed) {
			rootCmd.PrintErrln("Error:", err)
		}
		os.Exit(exitcodes.Failure)
	}
	os.Exit(exitcodes.Success)
}

func run(cmd *cobra.Command, configName, remoteRoot string, maxKeep int, noColor bool, verbosity int, dryRun bool, configFile string) error {
	log := logging.New(logging.Options{Verbosity: verbosity, NoColor: noColor})

	if maxKeep < 0 {
		return errors.New("--max-keep must be non-negative")
	}

	cfg, err := loadConfig(cmd, configFile)
	if err != nil {
		log.Error("failed to load config file", "error", err)
		return err
	}

	if maxKeep == 0 {
		log.Warn("the --max-keep flag was set to 0, deleting all snapshots")
	}
	if dryRun {
		log.Info("dry run mode, no snapshots will be deleted")
	}

	metrics.Init()
	start := time.Now()

	// History recording is best-effort and never blocks the cleanup.
	var hist *history.DB
	if cfg.DatabasePath != "" {
		hist, err = history.Open(cfg.DatabasePath)
		if err != nil {
			log.Warn("history database unavailable, continuing without recording", "error", err)
			hist = nil
		} else {
			defer func() {
				if err := hist.Close(); err != nil {
					log.Error("failed to close history database", "error", err)
				}
			}()
		}
	}

	// Find the latest backup number before touching the filesystem; a
	// snapper failure aborts the whole run.
	resolver := snapper.NewResolver(snapper.ExecLister{Bin: cfg.SnapperBin}, log)
	latestNum, haveLatest, err := resolver.Latest(configName)
	if err != nil {
		return err
	}
	if haveLatest {
		log.Info("latest backup number", "number", latestNum)
	} else {
		log.Info("no latest backup marker found")
	}

	root, err := snapshot.Locate(remoteRoot, configName)
	if err != nil {
		log.Error("could not find snapshot path", "error", err)
		return err
	}

	snapshots, err := snapshot.Enumerate(root, log)
	if err != nil {
		log.Error("could not list snapshots", "error", err)
		return err
	}
	metrics.SnapshotsDiscovered.Set(float64(len(snapshots)))

	del := deleter.New(btrfs.ExecRemover{Bin: cfg.BtrfsBin}, fsops.OSDeleter{}, log)
	engine := retention.New(del, log)
	engine.SetDryRun(dryRun)

	var runID int64
	if hist != nil {
		runID, err = hist.BeginRun(configName, remoteRoot, maxKeep)
		if err != nil {
			log.Warn("failed to record run start", "error", err)
		} else {
			engine.SetRecorder(hist.Run(runID))
		}
	}

	summary := engine.Run(snapshots, latestNum, haveLatest, maxKeep)

	if hist != nil && runID != 0 {
		if err := hist.FinishRun(runID, summary.Total, summary.Deleted, summary.Attempts); err != nil {
			log.Warn("failed to record run result", "error", err)
		}
	}

	metrics.LastRunTimestamp.Set(float64(start.Unix()))
	metrics.RunDuration.Observe(time.Since(start).Seconds())
	if cfg.Pushgateway.URL != "" {
		if err := metrics.Push(cfg.Pushgateway.URL, cfg.Pushgateway.Job); err != nil {
			log.Warn("failed to push metrics", "error", err)
		}
	}

	if summary.Failed() {
		log.Error("some delete attempts failed", "attempts", summary.Attempts, "deleted", summary.Deleted)
		return errDeletesFailed
	}
	return nil
}

// loadConfig reads the operational config file. An explicitly given path
// must exist; the default path is optional.
func loadConfig(cmd *cobra.Command, configFile string) (*config.Config, error) {
	if cmd.Flags().Changed("config-file") {
		return config.Load(configFile)
	}
	if _, err := os.Stat(config.DefaultPath); err == nil {
		return config.Load(config.DefaultPath)
	}
	return config.Default(), nil
}
