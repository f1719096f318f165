package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ensigniasec/winescan/internal/catalog"
	"github.com/ensigniasec/winescan/internal/config"
	"github.com/ensigniasec/winescan/internal/favorites"
	"github.com/ensigniasec/winescan/internal/report"
	"github.com/ensigniasec/winescan/internal/scan"
	"github.com/ensigniasec/winescan/internal/storage"
	"github.com/ensigniasec/winescan/internal/tui"
)

//nolint:gochecknoglobals // Cobra requires package-level vars for flag bindings in current structure.
var (
	// Version metadata populated at build time via -ldflags.
	releaseVersion = "dev"
	commit         = "none"
	date           = "unknown"

	// Used for flags.
	configFile  string
	storageFile string
	catalogPath string
	seed        uint64
	verbose     bool
	jsonOutput  bool
	tuiMode     bool
	autoStart   bool
	watchCat    bool

	rootCmd = &cobra.Command{
		Use:   "winescan",
		Short: "Point your camera at a wine label and find out what's in the bottle.",
		Long:  `winescan simulates the label scanner of a wine app: a scan moves through scanning, detected and analyzing stages with a progress bar and ends on a wine picked from the catalog. Found wines can be saved to favorites and every scan is counted in a local profile.`,
	}
)

//nolint:gochecknoinits // Cobra command wiring performed in init in current structure.
func init() {
	// Route logs to stderr to avoid polluting stdout, especially for --json output.
	logrus.SetOutput(os.Stderr)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable detailed logging output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output results in JSON format instead of rich text")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Optional: config file (default ~/.config/winescan/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&storageFile, "storage-file", "", "Optional: profile file (default ~/.config/winescan/profile.json)")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "Optional: wine catalog YAML file or directory (default built-in catalog)")
	rootCmd.PersistentFlags().Uint64Var(&seed, "seed", 0, "Optional: seed the wine picker for reproducible results")

	scanCmd.Flags().BoolVar(&tuiMode, "tui", false, "Enable interactive TUI mode with a live viewfinder")
	scanCmd.Flags().BoolVar(&autoStart, "autostart", true, "Start scanning as soon as the TUI opens")
	scanCmd.Flags().BoolVar(&watchCat, "watch-catalog", false, "Reload the --catalog files whenever they change")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(favoritesCmd)
	rootCmd.AddCommand(profileCmd)

	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogShowCmd)

	favoritesCmd.AddCommand(favoritesListCmd)
	favoritesCmd.AddCommand(favoritesAddCmd)
	favoritesCmd.AddCommand(favoritesRemoveCmd)
	favoritesCmd.AddCommand(favoritesResetCmd)

	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileResetCmd)

	// Built-in version flag: set version string and a custom template.
	rootCmd.Version = releaseVersion
	rootCmd.Annotations = map[string]string{"commit": commit, "date": date}
	rootCmd.SetVersionTemplate("{{printf \"%s %s\\ncommit: %s\\ndate: %s\\n\" .DisplayName .Version (index .Annotations \"commit\") (index .Annotations \"date\")}}")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Fatal(err)
	}
}

func main() {
	Execute()
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan a wine label",
	Long:  "Run one label scan and print the wine it resolves to. With --tui the scan runs in an interactive viewfinder where it can be restarted, cancelled and favorited.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		// Check for conflicting flags
		if jsonOutput && tuiMode {
			logrus.Fatal("Cannot use --json and --tui flags together")
		}
		setLogLevel(jsonOutput || tuiMode)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg := loadConfig()
		var (
			source scan.ResultSource
			lookup favorites.Lookup
		)
		if watchCat {
			if cfg.Catalog == "" {
				logrus.Fatal("--watch-catalog needs --catalog")
			}
			live, err := catalog.Watch(ctx, cfg.Catalog, catalogOptions()...)
			if err != nil {
				logrus.Fatalf("Unable to watch wine catalog: %v", err)
			}
			source, lookup = live, live
		} else {
			cat := loadCatalog(ctx, cfg)
			source, lookup = cat, cat
		}

		st, err := storage.NewOrExistingStorage(cfg.StorageFile)
		if err != nil {
			logrus.Fatalf("Unable to open or create profile: %v", err)
		}
		favs := &favorites.Manager{Storage: st, Catalog: lookup}
		engine, err := scan.NewEngine(source, scan.WithTimings(cfg.Scan))
		if err != nil {
			logrus.Fatal(err)
		}

		if tuiMode {
			if err := tui.Run(ctx, engine, st, favs, autoStart); err != nil {
				logrus.Fatalf("TUI mode failed: %v", err)
			}
			return
		}

		defer engine.Close()
		if err := runScan(ctx, engine, st, favs); err != nil {
			logrus.Fatal(err)
		}
	},
}

// runScan performs one headless scan, logging each stage, and prints the report.
func runScan(ctx context.Context, engine *scan.Engine, st *storage.Storage, favs *favorites.Manager) error {
	last := scan.PhaseIdle
	unsubscribe := engine.Subscribe(func(s scan.State) {
		// Found is logged from the outcome below; its notification may land
		// after Scan returns.
		if s.Phase == scan.PhaseIdle || s.Phase == scan.PhaseFound {
			return
		}
		if s.Phase != last {
			last = s.Phase
			logrus.WithFields(logrus.Fields{"progress": s.Progress}).Info(s.StatusText)
			return
		}
		logrus.Debugf("%s %d%%", s.Phase, s.Progress)
	})

	startedAt := time.Now()
	o, err := engine.Scan(ctx)
	elapsed := time.Since(startedAt)
	unsubscribe()
	switch {
	case err == nil && o.Success:
		logrus.WithFields(logrus.Fields{"progress": 100, "wine": o.Result.ID}).Info(scan.PhaseFound.StatusText())
	case err == nil, errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logrus.Warn("Scan cancelled")
	default:
		return err
	}

	r := report.New(o, startedAt, elapsed)
	if o.Success && o.Result != nil {
		if err := st.RecordScan(o.Result.ID, time.Now()); err != nil {
			return err
		}
		r.Favorite = favs.IsFavorite(o.Result.ID)
	} else if err := st.RecordCancelled(); err != nil {
		return err
	}
	r.TotalScans = st.Data.Stats.TotalScans

	return report.Print(os.Stdout, r, jsonOutput)
}

// setLogLevel applies --verbose, quieting info logs for machine or TUI output.
func setLogLevel(quiet bool) {
	if quiet && !verbose {
		logrus.SetLevel(logrus.WarnLevel)
	} else if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
}

// loadConfig resolves configuration and applies flag overrides.
func loadConfig() config.Config {
	cfg, err := config.Load(configFile)
	if err != nil {
		logrus.Fatal(err)
	}
	if storageFile != "" {
		cfg.StorageFile = storageFile
	}
	if catalogPath != "" {
		cfg.Catalog = catalogPath
	}
	return cfg
}

func catalogOptions() []catalog.Option {
	if rootCmd.PersistentFlags().Changed("seed") {
		return []catalog.Option{catalog.WithSeed(seed)}
	}
	return nil
}

func loadCatalog(ctx context.Context, cfg config.Config) *catalog.Catalog {
	cat, err := catalog.Load(ctx, cfg.Catalog, catalogOptions()...)
	if err != nil {
		logrus.Fatalf("Unable to load wine catalog: %v", err)
	}
	logrus.Debugf("Loaded %d wines", cat.Len())
	return cat
}
