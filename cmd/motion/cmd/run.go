package cmd

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/go-drift/motion/cmd/motion/internal/sim"
)

func init() {
	RegisterCommand(&Command{
		Name:  "run",
		Short: "Simulate a timeline and print samples",
		Long: `Simulate a timeline file and print every target's values once per frame.

The simulation advances by exactly 1/fps per frame and stops when every tween
has finished, or when max is reached for timelines that loop forever. Call
steps print a "# <target>: <message>" line before the frame they fire in.

Flags:
  --fps N            Override the timeline's frame rate
  --max DURATION     Override the timeline's maximum simulated time
  --format FORMAT    Output format: text (default) or csv
  --metrics          Print tween counters in Prometheus text format to stderr`,
		Usage: "motion run <file> [--fps N] [--max DURATION] [--format text|csv] [--metrics]",
		Run:   runRun,
	})
}

type runOptions struct {
	scene   sceneFlags
	format  string
	metrics bool
}

func parseRunArgs(args []string) ([]string, runOptions, error) {
	opts := runOptions{format: "text"}
	var positional []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		used, err := parseSceneFlag(&opts.scene, args, i)
		if err != nil {
			return nil, opts, err
		}
		if used >= 0 {
			i += used
			continue
		}
		switch {
		case arg == "--metrics":
			opts.metrics = true
		case arg == "--format":
			if i+1 >= len(args) {
				return nil, opts, fmt.Errorf("--format requires a value")
			}
			opts.format = args[i+1]
			i++
		case strings.HasPrefix(arg, "--format="):
			opts.format = strings.TrimPrefix(arg, "--format=")
		case strings.HasPrefix(arg, "-"):
			return nil, opts, fmt.Errorf("unknown flag %q", arg)
		default:
			positional = append(positional, arg)
		}
	}
	if opts.format != "text" && opts.format != "csv" {
		return nil, opts, fmt.Errorf("unknown format %q (use text or csv)", opts.format)
	}
	return positional, opts, nil
}

func runRun(args []string) error {
	files, opts, err := parseRunArgs(args)
	if err != nil {
		return err
	}
	if len(files) != 1 {
		return fmt.Errorf("exactly one timeline file is required\n\nUsage: motion run <file>")
	}

	_, scene, reg, err := loadScene(files[0], opts.scene)
	if err != nil {
		return err
	}
	defer scene.Dispose()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	w := newSampleWriter(opts.format, scene.Properties())
	res, err := scene.Run(ctx, w.frame)
	if err != nil {
		return err
	}
	if err := w.flush(); err != nil {
		return err
	}

	status := "completed"
	if !res.Completed {
		status = "stopped at max"
	}
	fmt.Fprintf(stdout, "# %s after %s (%d frames)\n", status, formatSeconds(res.Elapsed), res.Frames)

	if opts.metrics {
		return writeMetrics(reg)
	}
	return nil
}

type sampleWriter struct {
	format string
	props  map[string][]string
	csv    *csv.Writer
	err    error
}

func newSampleWriter(format string, props map[string][]string) *sampleWriter {
	w := &sampleWriter{format: format, props: props}
	if format == "csv" {
		w.csv = csv.NewWriter(stdout)
		w.err = w.csv.Write([]string{"time", "target", "property", "value"})
	}
	return w
}

func (w *sampleWriter) frame(f sim.Frame) error {
	if w.err != nil {
		return w.err
	}
	if w.csv != nil {
		// Comment lines go through the same buffer to keep their order.
		w.csv.Flush()
	}
	for _, n := range f.Notes {
		fmt.Fprintf(stdout, "# %s: %s\n", n.Target, n.Message)
	}
	t := formatSeconds(f.Time)
	for _, st := range f.States {
		props := w.props[st.Target]
		if w.csv != nil {
			for _, p := range props {
				if err := w.csv.Write([]string{t, st.Target, p, formatFloat(st.Values[p])}); err != nil {
					return err
				}
			}
			continue
		}
		var b strings.Builder
		fmt.Fprintf(&b, "%s %s", t, st.Target)
		for _, p := range props {
			fmt.Fprintf(&b, " %s=%s", p, formatFloat(st.Values[p]))
		}
		fmt.Fprintln(stdout, b.String())
	}
	return nil
}

func (w *sampleWriter) flush() error {
	if w.err != nil {
		return w.err
	}
	if w.csv != nil {
		w.csv.Flush()
		return w.csv.Error()
	}
	return nil
}

func writeMetrics(reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(stderr, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
