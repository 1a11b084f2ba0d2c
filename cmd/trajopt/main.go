package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/trajopt/internal/config"
	"github.com/san-kum/trajopt/internal/cost"
	"github.com/san-kum/trajopt/internal/dynamo"
	"github.com/san-kum/trajopt/internal/export"
	"github.com/san-kum/trajopt/internal/ilqr"
	"github.com/san-kum/trajopt/internal/integrators"
	"github.com/san-kum/trajopt/internal/metrics"
	"github.com/san-kum/trajopt/internal/optim"
	"github.com/san-kum/trajopt/internal/physics"
	"github.com/san-kum/trajopt/internal/sensitivity"
	"github.com/san-kum/trajopt/internal/solver"
	"github.com/san-kum/trajopt/internal/storage"
	"github.com/san-kum/trajopt/internal/tui"
)

var (
	dataDir    string
	dt         float64
	horizon    float64
	scheme     string
	integrator string
	substeps   int
	iterations int
	tolerance  float64
	theta      float64
	omega      float64
	pos        float64
	vel        float64
	goal       []float64
	configFile string
	preset     string
	live       bool
	noSave     bool
	// export-svg
	svgOut   string
	svgIndex int
	svgKind  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "trajopt",
		Short: "nonlinear trajectory optimization lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".trajopt", "data directory")

	solveCmd := &cobra.Command{
		Use:   "solve [model]",
		Short: "solve an optimal control problem",
		Args:  cobra.ExactArgs(1),
		RunE:  runSolve,
	}
	solveCmd.Flags().Float64Var(&dt, "dt", 0.01, "timestep")
	solveCmd.Flags().Float64Var(&horizon, "horizon", 3.0, "time horizon")
	solveCmd.Flags().StringVar(&scheme, "scheme", "forward_euler", "discretization scheme")
	solveCmd.Flags().StringVar(&integrator, "integrator", "rk4", "rollout integrator")
	solveCmd.Flags().IntVar(&substeps, "substeps", 1, "integration substeps per timestep")
	solveCmd.Flags().IntVar(&iterations, "iterations", 100, "iteration budget")
	solveCmd.Flags().Float64Var(&tolerance, "tolerance", 1e-6, "convergence tolerance")
	solveCmd.Flags().Float64Var(&theta, "theta", 0.5, "initial angle")
	solveCmd.Flags().Float64Var(&omega, "omega", 0.0, "initial angular velocity")
	solveCmd.Flags().Float64Var(&pos, "pos", 0.0, "initial position")
	solveCmd.Flags().Float64Var(&vel, "vel", 0.0, "initial velocity")
	solveCmd.Flags().Float64SliceVar(&goal, "goal", nil, "goal state")
	solveCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	solveCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	solveCmd.Flags().BoolVar(&live, "live", false, "show live solver progress")
	solveCmd.Flags().BoolVar(&noSave, "no-save", false, "skip saving the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list solve runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a solved trajectory",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render one trajectory component to svg",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVar(&svgOut, "out", "trajectory.svg", "output file")
	exportSVGCmd.Flags().IntVar(&svgIndex, "index", 0, "component index")
	exportSVGCmd.Flags().StringVar(&svgKind, "kind", "state", "state or control")

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for model: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list available models",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range physics.Names() {
				fmt.Println(name)
			}
		},
	}

	compareCmd := &cobra.Command{
		Use:   "compare [model] [scheme1] [scheme2] ...",
		Short: "compare discretization schemes on the same problem",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareSchemes,
	}
	compareCmd.Flags().Float64Var(&dt, "dt", 0.01, "timestep")
	compareCmd.Flags().Float64Var(&horizon, "horizon", 3.0, "time horizon")
	compareCmd.Flags().IntVar(&iterations, "iterations", 100, "iteration budget")
	compareCmd.Flags().Float64Var(&theta, "theta", 0.5, "initial angle")

	tuneCmd := &cobra.Command{
		Use:   "tune [model]",
		Short: "grid-search control weight and timestep for lowest cost",
		Args:  cobra.ExactArgs(1),
		RunE:  runTune,
	}
	tuneCmd.Flags().Float64Var(&horizon, "horizon", 3.0, "time horizon")
	tuneCmd.Flags().IntVar(&iterations, "iterations", 100, "iteration budget per point")
	tuneCmd.Flags().Float64Var(&theta, "theta", 0.5, "initial angle")

	rootCmd.AddCommand(solveCmd, listCmd, plotCmd, exportCmd, exportSVGCmd, presetsCmd, modelsCmd, compareCmd, tuneCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildConfig merges preset, config file and CLI flags into one config.
// CLI flags win over the file, the file wins over the preset.
func buildConfig(cmd *cobra.Command, model string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.Model = model

	if preset != "" {
		p := config.GetPreset(model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(model))
		}
		*cfg = *p
	}

	if configFile != "" {
		fileCfg, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		*cfg = *fileCfg
		cfg.Model = model
	}

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("horizon") {
		cfg.Horizon = horizon
	}
	if cmd.Flags().Changed("scheme") {
		cfg.Scheme = scheme
	}
	if cmd.Flags().Changed("integrator") {
		cfg.Integrator = integrator
	}
	if cmd.Flags().Changed("substeps") {
		cfg.Substeps = substeps
	}
	if cmd.Flags().Changed("iterations") {
		cfg.MaxIterations = iterations
	}
	if cmd.Flags().Changed("tolerance") {
		cfg.Tolerance = tolerance
	}
	if cmd.Flags().Changed("theta") {
		cfg.InitState.Theta = theta
	}
	if cmd.Flags().Changed("omega") {
		cfg.InitState.Omega = omega
	}
	if cmd.Flags().Changed("pos") {
		cfg.InitState.Pos = pos
	}
	if cmd.Flags().Changed("vel") {
		cfg.InitState.Vel = vel
	}
	if cmd.Flags().Changed("goal") {
		cfg.Goal = goal
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func buildControl(cfg *config.Config) (*solver.IterationControl, *ilqr.Backend, physics.Model, error) {
	model, err := physics.ByName(cfg.Model)
	if err != nil {
		return nil, nil, model, err
	}

	n := model.System.StateDim()
	m := model.System.ControlDim()
	q, r, qf := cfg.GetWeights(n, m)
	cf, err := cost.NewDiagonal(q, r, qf, cfg.GetGoal(n))
	if err != nil {
		return nil, nil, model, err
	}

	sch, err := sensitivity.ParseScheme(cfg.Scheme)
	if err != nil {
		return nil, nil, model, err
	}

	problem := &solver.Problem{
		Dynamics:   model.System,
		Linearizer: model.Linearizer,
		Cost:       cf,
		X0:         dynamo.State(cfg.GetInitState()),
		Horizon:    cfg.Horizon,
	}
	settings := solver.Settings{
		Dt:            cfg.Dt,
		Scheme:        sch,
		Substeps:      cfg.Substeps,
		MaxIterations: cfg.MaxIterations,
		Tolerance:     cfg.Tolerance,
	}

	bk := ilqr.New(integrators.ByName(cfg.Integrator))
	ctl := solver.New(bk, problem)
	if err := ctl.Configure(settings); err != nil {
		return nil, nil, model, err
	}
	return ctl, bk, model, nil
}

func runSolve(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}

	ctl, bk, model, err := buildControl(cfg)
	if err != nil {
		return err
	}

	start := time.Now()
	if live {
		err = solveLive(cfg, ctl, bk)
	} else {
		fmt.Printf("solving %s...\n", cfg.Model)
		err = ctl.Solve(context.Background())
	}
	elapsed := time.Since(start)
	if err != nil {
		return err
	}

	j, _ := ctl.GetCost()
	xs, _ := ctl.GetStateTrajectory()
	us, _ := ctl.GetControlTrajectory()
	ts, _ := ctl.GetTimeArray()

	tr := &dynamo.Trajectory{States: xs, Controls: us, Times: ts}

	effort := metrics.NewControlEffort()
	goalErr := metrics.NewGoalError(cfg.GetGoal(model.System.StateDim()))
	drift := metrics.NewEnergyDrift(model.System)
	metrics.EvaluateTrajectory(tr, effort, goalErr, drift)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "model\t%s\n", cfg.Model)
	fmt.Fprintf(w, "scheme\t%s\n", cfg.Scheme)
	fmt.Fprintf(w, "status\t%s\n", ctl.Status())
	fmt.Fprintf(w, "iterations\t%d\n", ctl.Iterations())
	fmt.Fprintf(w, "cost\t%.6g\n", j)
	fmt.Fprintf(w, "elapsed\t%v\n", elapsed)
	fmt.Fprintf(w, "control_effort\t%.6f\n", effort.Value())
	fmt.Fprintf(w, "goal_error\t%.6f\n", goalErr.Value())
	w.Flush()

	if hist := bk.CostHistory(); len(hist) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(hist,
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Caption("cost per iteration")))
	}

	if noSave {
		return nil
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(storage.RunMetadata{
		Model:      cfg.Model,
		Dt:         cfg.Dt,
		Horizon:    cfg.Horizon,
		Scheme:     cfg.Scheme,
		Integrator: cfg.Integrator,
		Substeps:   cfg.Substeps,
		Iterations: ctl.Iterations(),
		Cost:       j,
		Metrics: map[string]float64{
			effort.Name():  effort.Value(),
			goalErr.Name(): goalErr.Value(),
			drift.Name():   drift.Value(),
		},
	}, tr)
	if err != nil {
		return err
	}
	fmt.Printf("\nrun id: %s\n", runID)
	return nil
}

// solveLive drives the iteration loop by hand so every pass can be pushed
// into the progress view.
func solveLive(cfg *config.Config, ctl *solver.IterationControl, bk *ilqr.Backend) error {
	// buffered so the solve loop never blocks if the view quits early
	ch := make(chan tui.Progress, cfg.MaxIterations+1)
	finished := make(chan struct{})
	var solveErr error

	go func() {
		defer close(ch)
		defer close(finished)
		for i := 0; i < cfg.MaxIterations; i++ {
			done, err := ctl.RunIteration()
			if err != nil {
				solveErr = err
				ch <- tui.Progress{Iteration: ctl.Iterations(), Err: err}
				return
			}
			j, _ := ctl.GetCost()
			ch <- tui.Progress{Iteration: ctl.Iterations(), Cost: j, Done: done}
			if done {
				return
			}
		}
		solveErr = solver.ErrNoConvergence
	}()

	viewErr := tui.RunLive(tui.Info{
		Model:         cfg.Model,
		Scheme:        cfg.Scheme,
		Dt:            cfg.Dt,
		Horizon:       cfg.Horizon,
		MaxIterations: cfg.MaxIterations,
	}, ch)
	<-finished
	if viewErr != nil {
		return viewErr
	}
	return solveErr
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
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tSCHEME\tDT\tHORIZON\tITERS\tCOST")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.4fs\t%.2fs\t%d\t%.4g\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Scheme,
			run.Dt,
			run.Horizon,
			run.Iterations,
			run.Cost,
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

	tr, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("steps: %d\n\n", tr.Steps())

	labels := stateLabels(meta.Model)
	numVars := len(tr.States[0])
	if numVars > 6 {
		numVars = 6
	}

	for varIdx := 0; varIdx < numVars; varIdx++ {
		data := make([]float64, len(tr.States))
		for i := range tr.States {
			data[i] = tr.States[i][varIdx]
		}

		caption := fmt.Sprintf("x%d vs time", varIdx)
		if varIdx < len(labels) {
			caption = labels[varIdx]
		}

		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(caption)))
		fmt.Println()
	}

	if len(tr.Controls) > 0 {
		for uIdx := range tr.Controls[0] {
			data := make([]float64, len(tr.Controls))
			for i := range tr.Controls {
				data[i] = tr.Controls[i][uIdx]
			}
			fmt.Println(asciigraph.Plot(data,
				asciigraph.Height(10),
				asciigraph.Width(80),
				asciigraph.Caption(fmt.Sprintf("u%d vs time", uIdx))))
			fmt.Println()
		}
	}

	return nil
}

func stateLabels(model string) []string {
	switch model {
	case "pendulum":
		return []string{"theta (angle)", "omega (angular velocity)"}
	case "cartpole":
		return []string{"cart position", "cart velocity", "pole angle", "pole angular velocity"}
	case "spring_mass", "double_integrator":
		return []string{"position", "velocity"}
	default:
		return nil
	}
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	tr, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}

	var pts []export.Point
	switch svgKind {
	case "control":
		pts = export.ControlSeries(tr, svgIndex)
	default:
		pts = export.StateSeries(tr, svgIndex)
	}
	if pts == nil {
		return fmt.Errorf("component %d not present in %s columns", svgIndex, svgKind)
	}

	if err := export.WriteSVG(svgOut, pts, 800, 400, "#00ff00"); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", svgOut)
	return nil
}

func runTune(cmd *cobra.Command, args []string) error {
	model := args[0]

	search := optim.NewGridSearch(
		[]string{"r", "dt"},
		[][]float64{
			{0.001, 0.01, 0.1, 1.0},
			{0.005, 0.01, 0.02},
		},
	)

	fmt.Printf("tuning %s over %d grid points...\n", model, 4*3)

	best, score, err := search.Search(context.Background(), func(ctx context.Context, p map[string]float64) (float64, error) {
		cfg := config.DefaultConfig()
		cfg.Model = model
		cfg.Horizon = horizon
		cfg.MaxIterations = iterations
		cfg.InitState.Theta = theta
		cfg.Dt = p["dt"]

		ctl, _, mdl, err := buildControl(cfg)
		if err != nil {
			return 0, err
		}
		r := make([]float64, mdl.System.ControlDim())
		for i := range r {
			r[i] = p["r"]
		}
		q, _, qf := cfg.GetWeights(mdl.System.StateDim(), mdl.System.ControlDim())
		cf, err := cost.NewDiagonal(q, r, qf, cfg.GetGoal(mdl.System.StateDim()))
		if err != nil {
			return 0, err
		}
		if err := ctl.ChangeCostFunction(cf); err != nil {
			return 0, err
		}

		if err := ctl.Solve(ctx); err != nil {
			return 0, err
		}
		j, err := ctl.GetCost()
		if err != nil {
			return 0, err
		}
		return j, nil
	})
	if err != nil {
		return err
	}
	if best == nil {
		return fmt.Errorf("no grid point solved successfully")
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "best r\t%g\n", best["r"])
	fmt.Fprintf(w, "best dt\t%g\n", best["dt"])
	fmt.Fprintf(w, "cost\t%.6g\n", score)
	return w.Flush()
}

func compareSchemes(cmd *cobra.Command, args []string) error {
	model := args[0]
	schemes := args[1:]

	fmt.Printf("comparing schemes for %s (dt=%.4f, horizon=%.1fs)\n\n", model, dt, horizon)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCHEME\tSTATUS\tITERS\tCOST\tTIME")

	for _, name := range schemes {
		cfg := config.DefaultConfig()
		cfg.Model = model
		cfg.Scheme = name
		cfg.Dt = dt
		cfg.Horizon = horizon
		cfg.MaxIterations = iterations
		cfg.InitState.Theta = theta
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(w, "%s\terror: %v\t\t\t\n", name, err)
			continue
		}

		ctl, _, _, err := buildControl(cfg)
		if err != nil {
			fmt.Fprintf(w, "%s\terror: %v\t\t\t\n", name, err)
			continue
		}

		start := time.Now()
		err = ctl.Solve(context.Background())
		elapsed := time.Since(start)
		if err != nil {
			fmt.Fprintf(w, "%s\t%v\t%d\t\t%v\n", name, err, ctl.Iterations(), elapsed)
			continue
		}

		j, _ := ctl.GetCost()
		fmt.Fprintf(w, "%s\t%s\t%d\t%.6g\t%v\n", name, ctl.Status(), ctl.Iterations(), j, elapsed)
	}

	return w.Flush()
}
