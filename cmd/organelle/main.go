package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/organelle/internal/config"
	"github.com/san-kum/organelle/internal/engine"
	"github.com/san-kum/organelle/internal/export"
	"github.com/san-kum/organelle/internal/frame"
	"github.com/san-kum/organelle/internal/interact"
	"github.com/san-kum/organelle/internal/metrics"
	"github.com/san-kum/organelle/internal/render"
	"github.com/san-kum/organelle/internal/storage"
	"github.com/san-kum/organelle/internal/tui"
)

var (
	dataDir    string
	configFile string
	preset     string
	compact    bool
	seed       int64
	entities   []string
	frameRate  int
	frames     int
	smoothing  bool
	theme      string
	realtime   bool
	stride     int
	jsonPath   string
	svgPath    string
	pngPath    string
	activeID   string
	shotFrames int
	samples    int
	numRuns    int
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("organelle: ")

	rootCmd := &cobra.Command{
		Use:          "organelle",
		Short:        "breathing membrane of drifting organelles",
		SilenceUsage: true,
		RunE:         runLive,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".organelle", "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.BoolVar(&compact, "compact", false, "rounded-square membrane (mobile layout)")
	pf.Int64Var(&seed, "seed", 0, "random seed (0 picks one)")
	pf.StringSliceVar(&entities, "entities", nil, "entity ids, comma separated")
	pf.IntVar(&frameRate, "fps", config.DefaultFPS, "frame rate")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive terminal view",
		RunE:  runLive,
	}
	for _, c := range []*cobra.Command{rootCmd, liveCmd} {
		c.Flags().BoolVar(&smoothing, "smooth", true, "ease displayed positions with a spring")
		c.Flags().StringVar(&theme, "theme", "", "colour theme ("+strings.Join(tui.ThemeNames(), ", ")+")")
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run headless and record positions",
		RunE:  runHeadless,
	}
	runCmd.Flags().IntVar(&frames, "frames", config.DefaultFrames, "frames to simulate")
	runCmd.Flags().BoolVar(&realtime, "realtime", false, "pace frames on the wall clock")
	runCmd.Flags().IntVar(&stride, "stride", 1, "record every n-th frame")
	runCmd.Flags().StringVar(&jsonPath, "json", "", "also export the run to a JSON file")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot recorded motion",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "simulate a few frames and draw the result",
		RunE:  snapshot,
	}
	snapshotCmd.Flags().IntVar(&shotFrames, "frames", 120, "frames to simulate first")
	snapshotCmd.Flags().StringVar(&svgPath, "svg", "", "write an SVG file")
	snapshotCmd.Flags().StringVar(&pngPath, "png", "", "write a PNG file")
	snapshotCmd.Flags().StringVar(&activeID, "active", "", "expand this entity before drawing")

	breatheCmd := &cobra.Command{
		Use:   "breathe",
		Short: "plot one breathing cycle",
		RunE:  plotBreathing,
	}
	breatheCmd.Flags().IntVar(&samples, "samples", 80, "samples per cycle")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run many seeds in parallel and compare metrics",
		RunE:  sweep,
	}
	sweepCmd.Flags().IntVar(&frames, "frames", config.DefaultFrames, "frames per run")
	sweepCmd.Flags().IntVar(&numRuns, "runs", 8, "number of seeds")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("presets:")
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "configuration helpers",
	}
	configInitCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a config file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initConfig,
	}
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(liveCmd, runCmd, listCmd, plotCmd, snapshotCmd, breatheCmd, sweepCmd, presetsCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig layers preset, config file and explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("compact") {
		cfg.Compact = compact
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("entities") {
		cfg.Entities = entities
	}
	if flags.Changed("fps") {
		cfg.FPS = frameRate
	}
	if cmd.Name() != "snapshot" && flags.Changed("frames") {
		cfg.Frames = frames
	}
	if flags.Changed("smooth") {
		cfg.Smoothing = smoothing
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newSimulation(cfg *config.Config, src frame.Source) (*engine.Simulation, error) {
	opts, err := cfg.EngineOptions()
	if err != nil {
		return nil, err
	}
	opts.Source = src
	sim, err := engine.New(opts)
	if err != nil {
		return nil, err
	}
	cfg.Seed = sim.Seed()
	for _, m := range metrics.Default() {
		sim.AddMetric(m)
	}
	return sim, nil
}

func runMetadata(cfg *config.Config, sim *engine.Simulation) storage.RunMetadata {
	return storage.RunMetadata{
		Layout:          layoutName(cfg),
		Seed:            sim.Seed(),
		Width:           cfg.Width,
		Height:          cfg.Height,
		EntityRadius:    cfg.EntityRadius,
		ExpansionFactor: cfg.ExpansionFactor,
		Entities:        cfg.Entities,
		FPS:             cfg.FPS,
		Frames:          sim.Frame().Index,
		Metrics:         sim.Metrics(),
	}
}

func layoutName(cfg *config.Config) string {
	if cfg.Compact {
		return "mobile"
	}
	return "desktop"
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sim, err := newSimulation(cfg, nil)
	if err != nil {
		return err
	}
	defer sim.Close()

	ctrl := interact.New(sim, cfg.Entities, cfg.ExpansionFactor)
	m := tui.NewModel(sim, ctrl, tui.Options{
		FPS:       cfg.FPS,
		Smoothing: cfg.Smoothing,
		Theme:     theme,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(tui.Model); ok && fm.Err() != nil {
		return fm.Err()
	}
	return nil
}

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var src frame.Source
	if realtime {
		if src, err = frame.NewTicker(cfg.FPS); err != nil {
			return err
		}
	}
	sim, err := newSimulation(cfg, src)
	if err != nil {
		return err
	}
	defer sim.Close()

	rec := storage.NewRecorder(stride)
	sim.AddObserver(rec)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s layout, %d entities, %d frames...\n", layoutName(cfg), len(cfg.Entities), cfg.Frames)
	start := time.Now()
	if realtime {
		err = runRealtime(ctx, sim, cfg.Frames)
	} else {
		err = sim.RunFrames(ctx, cfg.Frames, frame.Interval(cfg.FPS))
	}
	if err != nil && ctx.Err() == nil {
		return err
	}
	if ctx.Err() != nil {
		log.Printf("interrupted after %d frames", sim.Frame().Index)
	}
	elapsed := time.Since(start)

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	meta := runMetadata(cfg, sim)
	rows := rec.Rows()
	runID, err := st.Save(meta, rows)
	if err != nil {
		return err
	}
	if jsonPath != "" {
		meta.ID = runID
		if err := storage.ExportJSON(jsonPath, meta, rows); err != nil {
			return err
		}
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("frames: %d (%d recorded)\n", meta.Frames, rec.Frames())
	fmt.Println("\nmetrics:")
	for _, name := range sortedKeys(meta.Metrics) {
		fmt.Printf("  %s: %.6f\n", name, meta.Metrics[name])
	}
	return nil
}

// runRealtime drives the simulation from its frame source until n frames
// have been stepped or ctx ends.
func runRealtime(ctx context.Context, sim *engine.Simulation, n int) error {
	done := make(chan struct{})
	var once bool
	sim.AddObserver(engine.ObserverFunc(func(f engine.Frame) {
		if f.Index >= n && !once {
			once = true
			close(done)
		}
	}))
	if err := sim.Start(ctx); err != nil {
		return err
	}
	select {
	case <-done:
	case <-ctx.Done():
	}
	return sim.Stop()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLAYOUT\tTIME\tENTITIES\tFRAMES\tFPS\tSEED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
			run.ID,
			run.Layout,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			len(run.Entities),
			run.Frames,
			run.FPS,
			run.Seed,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	rows, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no data to plot")
	}

	dist, speed := motionSeries(rows)
	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("layout: %s\n", meta.Layout)
	fmt.Printf("samples: %d\n\n", len(dist))

	fmt.Println(asciigraph.Plot(dist,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("mean distance from centre (px)"),
	))
	fmt.Println()
	if len(speed) > 1 {
		fmt.Println(asciigraph.Plot(speed,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("mean displacement per recorded frame (px)"),
		))
	}
	return nil
}

func snapshot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sim, err := newSimulation(cfg, nil)
	if err != nil {
		return err
	}
	defer sim.Close()

	ctrl := interact.New(sim, cfg.Entities, cfg.ExpansionFactor)
	if activeID != "" {
		if _, ok := sim.Entity(activeID); !ok {
			log.Printf("ignoring --active: unknown entity %q", activeID)
		} else {
			ctrl.Click(activeID)
		}
	}
	if err := sim.RunFrames(context.Background(), shotFrames, frame.Interval(cfg.FPS)); err != nil {
		return err
	}

	sc := render.Compose(sim.Frame(), ctrl.View(), render.DefaultOptions())
	if svgPath != "" {
		if err := os.WriteFile(svgPath, []byte(export.SceneToSVG(sc, export.DefaultPalette)), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgPath)
	}
	if pngPath != "" {
		if err := export.SavePNG(pngPath, sc, export.DefaultPalette); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", pngPath)
	}
	if svgPath == "" && pngPath == "" {
		canvas := render.NewCanvas(80, 30)
		canvas.Render(sc)
		fmt.Println(canvas.String())
	}
	return nil
}

func sweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts, err := cfg.EngineOptions()
	if err != nil {
		return err
	}
	if numRuns < 1 {
		return fmt.Errorf("--runs must be positive, got %d", numRuns)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %d seeds x %d frames...\n", numRuns, cfg.Frames)
	start := time.Now()
	results, err := engine.NewEnsemble(opts, numRuns, metrics.Default).Run(ctx, cfg.Frames, frame.Interval(cfg.FPS))
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n\n", time.Since(start))

	names := sortedKeys(engine.Mean(results))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\t"+strings.ToUpper(strings.Join(names, "\t")))
	for _, r := range results {
		fmt.Fprintf(w, "%d", r.Seed)
		for _, n := range names {
			fmt.Fprintf(w, "\t%.4f", r.Metrics[n])
		}
		fmt.Fprintln(w)
	}
	mean := engine.Mean(results)
	fmt.Fprint(w, "MEAN")
	for _, n := range names {
		fmt.Fprintf(w, "\t%.4f", mean[n])
	}
	fmt.Fprintln(w)
	return w.Flush()
}

func plotBreathing(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	b, err := cfg.BreathingParams()
	if err != nil {
		return err
	}
	fmt.Printf("period: %s, inhale: %.0f%%\n\n", b.Period, b.InhaleFraction*100)
	fmt.Println(asciigraph.Plot(b.Sample(samples),
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("membrane radius over one cycle"),
	))
	return nil
}

func initConfig(cmd *cobra.Command, args []string) error {
	path := "organelle.yaml"
	if len(args) > 0 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
