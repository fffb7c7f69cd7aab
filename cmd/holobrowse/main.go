// Package main provides the command-line entry point for holobrowse.
package main

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"holobrowse/pkg/config"
	"holobrowse/pkg/engine"
	"holobrowse/pkg/export"
	"holobrowse/pkg/layout"
	"holobrowse/pkg/loader"
	"holobrowse/pkg/replay"
	"holobrowse/pkg/repository"
	"holobrowse/pkg/series"
	"holobrowse/pkg/texture"
	"holobrowse/pkg/visualization"
)

var (
	configPath string
	verbose    bool

	checkTextures bool
	preload       bool
	numCores      int
	previewsDir   string
	resolution    float64

	strict bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "holobrowse",
		Short: "Browse depth-ordered hologram datasets",
		Long: `holobrowse loads a directory of dataset folders, lays them out along
the depth axis and replays recorded controller sessions against them.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Configuration file (.yaml or .toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	inspectCmd := &cobra.Command{
		Use:   "inspect <root>",
		Short: "Load datasets and print a summary",
		Args:  cobra.ExactArgs(1),
		RunE:  runInspect,
	}
	inspectCmd.Flags().BoolVar(&checkTextures, "check-textures", false, "Read every panel texture header")
	inspectCmd.Flags().BoolVar(&preload, "preload", false, "Decode every panel texture and assign texture handles")
	inspectCmd.Flags().IntVar(&numCores, "cores", runtime.NumCPU(), "Number of goroutines for texture checks")
	inspectCmd.Flags().StringVar(&previewsDir, "previews", "", "Directory to save slice previews along all axes")
	inspectCmd.Flags().Float64Var(&resolution, "resolution", 100, "Preview pixels per normalized unit")

	replayCmd := &cobra.Command{
		Use:   "replay <root> <script.yaml>",
		Short: "Replay a recorded input session",
		Args:  cobra.ExactArgs(2),
		RunE:  runReplay,
	}
	replayCmd.Flags().BoolVar(&strict, "strict", false, "Fail on events without a binding")

	exportCmd := &cobra.Command{
		Use:   "export <root> <out.xlsx>",
		Short: "Export series and panels to a spreadsheet",
		Args:  cobra.ExactArgs(2),
		RunE:  runExport,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration files",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "init <path>",
		Short: "Write the default configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.CreateDefaultConfigFile(args[0]); err != nil {
				return err
			}
			fmt.Printf("Default configuration written to: %s\n", args[0])
			return nil
		},
	})

	rootCmd.AddCommand(inspectCmd, replayCmd, exportCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads the configuration, installs the logger and loads the datasets
func setup(root string) (*config.Config, *repository.Repository) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	level := slog.LevelInfo
	if verbose || cfg.Output.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	startTime := time.Now()
	repo, err := loader.New(loader.OptionsFromConfig(cfg)).Load(root)
	if err != nil {
		log.Fatalf("Failed to load datasets: %v", err)
	}
	fmt.Printf("Loaded %d datasets (%d panels) in %.2f seconds\n",
		repo.Len(), repo.PanelCount(), time.Since(startTime).Seconds())

	return cfg, repo
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, repo := setup(args[0])

	extent := layout.ComputeExtent(repo)
	fmt.Printf("Extent: %.4f x %.4f x %.4f\n\n", extent.X, extent.Y, extent.Z)

	for i := 0; i < repo.Len(); i++ {
		names, _ := repo.Metadata(i)
		fmt.Printf("%4d  %-24s panels=%-5d fields=%d\n", i, repo.Label(i), len(repo.Panels(i)), len(names))
	}

	ext := &series.Extractor{Undefined: cfg.Series.Undefined}
	cursor := series.NewCursor(repo)
	if cursor.Count() > 0 {
		fmt.Println("\nFields:")
		for j := 0; j < cursor.Count(); j++ {
			name := repo.Dataset(0).Metadata.Name(j)
			sum, err := ext.Summarize(ext.Extract(repo, j))
			if err != nil {
				fmt.Printf("- %s: %v\n", name, err)
				continue
			}
			fmt.Printf("- %s: min %.3f max %.3f mean %.3f (%d/%d datasets)\n",
				name, sum.Min, sum.Max, sum.Mean, sum.Count, repo.Len())
		}
	}

	if checkTextures || preload {
		fmt.Println()
		reportTextures(cmd.OutOrStdout(), repo, numCores, preload)
	}

	if previewsDir != "" {
		fmt.Println("\nSaving slice previews along all axes...")
		viewer := visualization.NewViewer(repo, extent, resolution)
		for _, axis := range []string{"x", "y", "z"} {
			axisDir := filepath.Join(previewsDir, axis)
			fmt.Printf("Saving %s-axis slices to: %s\n", axis, axisDir)

			if err := viewer.SaveSliceSequence(axis, axisDir); err != nil {
				log.Printf("Warning: Failed to save %s-axis slices: %v", axis, err)
			}
		}
	}

	return nil
}

// reportTextures checks or preloads every panel texture and prints the
// unreadable ones
func reportTextures(w io.Writer, repo *repository.Repository, cores int, decode bool) {
	var problems []texture.Problem
	if decode {
		fmt.Fprintf(w, "Preloading textures with %d cores...\n", cores)
		var atlas *texture.Atlas
		atlas, problems = texture.Preload(repo, cores)
		fmt.Fprintf(w, "Atlas holds %d of %d textures\n", atlas.Len()-len(problems), atlas.Len())
	} else {
		fmt.Fprintf(w, "Checking textures with %d cores...\n", cores)
		problems = texture.Check(repo, cores)
	}

	for _, p := range problems {
		fmt.Fprintf(w, "- dataset %d panel %d: %v\n", p.Ref.Dataset, p.Ref.Index, p.Err)
	}
	fmt.Fprintf(w, "%d of %d textures unreadable\n", len(problems), repo.PanelCount())
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, repo := setup(args[0])

	script, err := replay.LoadScript(args[1])
	if err != nil {
		return err
	}

	e := engine.New(repo, cfg)
	opts := []replay.Option{replay.WithOutput(cmd.OutOrStdout())}
	if strict {
		opts = append(opts, replay.Strict())
	}

	states, err := replay.NewRunner(e, engine.NewDecoder(cfg.Bindings), opts...).Run(script)
	if err != nil {
		return fmt.Errorf("replay failed: %w", err)
	}
	fmt.Printf("\nReplayed %d frames\n", len(states))
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, repo := setup(args[0])

	ext := &series.Extractor{Undefined: cfg.Series.Undefined}
	if err := export.New(repo, ext).Save(args[1]); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	fmt.Printf("Workbook saved to: %s\n", args[1])
	return nil
}
