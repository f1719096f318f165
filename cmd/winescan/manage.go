package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ensigniasec/winescan/internal/catalog"
	"github.com/ensigniasec/winescan/internal/favorites"
	"github.com/ensigniasec/winescan/internal/report"
	"github.com/ensigniasec/winescan/internal/storage"
	"github.com/ensigniasec/winescan/internal/validate"
)

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Browse the wines a scan can resolve to",
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every wine in the catalog",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel(jsonOutput)
		cat := loadCatalog(cmd.Context(), loadConfig())
		if jsonOutput {
			printJSON(cat.All())
			return
		}
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("ID", "WINE", "TYPE", "REGION", "RATING")
		for _, w := range cat.All() {
			t.Row(w.ID, w.Label(), w.Type, w.Region+", "+w.Country, fmt.Sprintf("%.1f", w.Rating))
		}
		fmt.Fprintln(os.Stdout, t.String())
	},
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var catalogShowCmd = &cobra.Command{
	Use:   "show [WINE_ID]",
	Short: "Show one wine from the catalog",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel(jsonOutput)
		requireWineID(args[0])
		cat := loadCatalog(cmd.Context(), loadConfig())
		w, err := cat.Get(args[0])
		if err != nil {
			logrus.Fatal(err)
		}
		if jsonOutput {
			printJSON(w)
			return
		}
		printWine(w)
	},
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var favoritesCmd = &cobra.Command{
	Use:   "favorites",
	Short: "Manage your favorite wines",
	Long:  "View, add, remove or reset the wines saved to your local favorites.",
	Run: func(cmd *cobra.Command, args []string) {
		newFavorites(cmd).ViewFavorites(os.Stdout)
	},
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var favoritesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your favorite wines",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		m := newFavorites(cmd)
		if jsonOutput {
			printJSON(m.Storage.Data.Favorites)
			return
		}
		m.ViewFavorites(os.Stdout)
	},
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var favoritesAddCmd = &cobra.Command{
	Use:   "add [WINE_ID]",
	Short: "Add a wine to your favorites",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		requireWineID(args[0])
		m := newFavorites(cmd)
		if err := m.AddFavorite(args[0]); err != nil {
			logrus.Fatal(err)
		}
		fmt.Fprintf(os.Stdout, "Added %s to favorites\n", args[0])
	},
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var favoritesRemoveCmd = &cobra.Command{
	Use:   "remove [WINE_ID]",
	Short: "Remove a wine from your favorites",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		requireWineID(args[0])
		m := newFavorites(cmd)
		removed, err := m.RemoveFavorite(args[0])
		if err != nil {
			logrus.Fatal(err)
		}
		if !removed {
			fmt.Fprintf(os.Stdout, "%s is not in your favorites\n", args[0])
			return
		}
		fmt.Fprintf(os.Stdout, "Removed %s from favorites\n", args[0])
	},
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var favoritesResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Remove all favorites",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := newFavorites(cmd).ResetFavorites(); err != nil {
			logrus.Fatal(err)
		}
		fmt.Fprintln(os.Stdout, "Favorites cleared")
	},
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage your local scan profile",
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your user id and scan counters",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel(jsonOutput)
		s, err := storage.NewOrExistingStorage(loadConfig().StorageFile)
		if err != nil {
			logrus.Fatal(err)
		}
		if jsonOutput {
			printJSON(s.Data)
			return
		}
		st := s.Data.Stats
		fmt.Fprintf(os.Stdout, "User ID:         %s\n", s.Data.UserID)
		fmt.Fprintf(os.Stdout, "Total scans:     %d\n", st.TotalScans)
		fmt.Fprintf(os.Stdout, "Cancelled scans: %d\n", st.CancelledScans)
		if st.LastScanAt.IsZero() {
			fmt.Fprintln(os.Stdout, "Last scan:       never")
		} else {
			fmt.Fprintf(os.Stdout, "Last scan:       %s (%s)\n", st.LastScanAt.Local().Format("2006-01-02 15:04:05"), st.LastWineID)
		}
		fmt.Fprintf(os.Stdout, "Favorites:       %d\n", len(s.Data.Favorites))
	},
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var profileResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear scan counters and favorites, keeping your user id",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		s, err := storage.NewOrExistingStorage(loadConfig().StorageFile)
		if err != nil {
			logrus.Fatal(err)
		}
		if err := s.ResetProfile(); err != nil {
			logrus.Fatal(err)
		}
		fmt.Fprintln(os.Stdout, "Profile reset")
	},
}

func newFavorites(cmd *cobra.Command) *favorites.Manager {
	setLogLevel(jsonOutput)
	cfg := loadConfig()
	m, err := favorites.NewManager(cfg.StorageFile, loadCatalog(cmd.Context(), cfg))
	if err != nil {
		logrus.Fatal(err)
	}
	return m
}

func requireWineID(id string) {
	if err := validate.Var(id, "wineid"); err != nil {
		logrus.Fatalf(
			"Invalid wine id: %q. Expected lowercase words joined by dashes (example: chateau-margaux-2015).",
			id,
		)
	}
}

func printWine(w catalog.Wine) {
	fmt.Fprintln(os.Stdout, w.Label())
	fmt.Fprintf(os.Stdout, "  Winery : %s\n", w.Winery)
	fmt.Fprintf(os.Stdout, "  Region : %s, %s\n", w.Region, w.Country)
	if w.Varietal != "" {
		fmt.Fprintf(os.Stdout, "  Grapes : %s\n", w.Varietal)
	}
	fmt.Fprintf(os.Stdout, "  Style  : %s\n", w.Type)
	fmt.Fprintf(os.Stdout, "  Rating : %s\n", report.Stars(w.Rating))
	fmt.Fprintf(os.Stdout, "  Price  : $%.2f\n", w.Price)
	if w.Description != "" {
		fmt.Fprintf(os.Stdout, "\n  %s\n", w.Description)
	}
}

func printJSON(v any) {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		logrus.Fatal(err)
	}
	fmt.Fprintln(os.Stdout, string(output))
}
