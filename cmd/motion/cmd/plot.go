package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/go-drift/motion/cmd/motion/internal/plot"
	"github.com/go-drift/motion/cmd/motion/internal/sim"
)

func init() {
	RegisterCommand(&Command{
		Name:  "plot",
		Short: "Plot property trajectories to a PNG",
		Long: `Simulate a timeline and draw every target property over time.

Each property is drawn as one line labelled "target.property" on shared
axes: simulated time across, value up.

Flags:
  -o, --output FILE  PNG file to write (required)
  --width PX         Image width (default 800)
  --height PX        Image height (default 400)
  --fps N            Override the timeline's frame rate
  --max DURATION     Override the timeline's maximum simulated time`,
		Usage: "motion plot <file> -o <out.png> [--width PX] [--height PX] [--fps N] [--max DURATION]",
		Run:   runPlot,
	})
}

type plotOptions struct {
	scene  sceneFlags
	output string
	width  int
	height int
}

func parsePlotArgs(args []string) ([]string, plotOptions, error) {
	var opts plotOptions
	var positional []string
	for i := 0; i < len(args); i++ {
		used, err := parseSceneFlag(&opts.scene, args, i)
		if err != nil {
			return nil, opts, err
		}
		if used >= 0 {
			i += used
			continue
		}

		name, value, inline := strings.Cut(args[i], "=")
		switch name {
		case "-o", "--output", "--width", "--height":
		default:
			if strings.HasPrefix(name, "-") {
				return nil, opts, fmt.Errorf("unknown flag %q", name)
			}
			positional = append(positional, args[i])
			continue
		}
		if !inline {
			if i+1 >= len(args) {
				return nil, opts, fmt.Errorf("%s requires a value", name)
			}
			value = args[i+1]
			i++
		}
		switch name {
		case "-o", "--output":
			opts.output = value
		case "--width", "--height":
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 {
				return nil, opts, fmt.Errorf("%s must be a positive integer, got %q", name, value)
			}
			if name == "--width" {
				opts.width = n
			} else {
				opts.height = n
			}
		}
	}
	return positional, opts, nil
}

func runPlot(args []string) error {
	files, opts, err := parsePlotArgs(args)
	if err != nil {
		return err
	}
	if len(files) != 1 {
		return fmt.Errorf("exactly one timeline file is required\n\nUsage: motion plot <file> -o <out.png>")
	}
	if opts.output == "" {
		return fmt.Errorf("--output is required")
	}

	_, scene, _, err := loadScene(files[0], opts.scene)
	if err != nil {
		return err
	}
	defer scene.Dispose()

	var frames []sim.Frame
	res, err := scene.Run(context.Background(), func(f sim.Frame) error {
		frames = append(frames, f)
		return nil
	})
	if err != nil {
		return err
	}

	series := plot.FromFrames(frames, scene.Properties(), scene.Targets())
	img, err := plot.Render(series, plot.Options{Width: opts.width, Height: opts.height})
	if err != nil {
		return err
	}

	f, err := os.Create(opts.output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", opts.output, err)
	}
	if err := plot.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", opts.output, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	logger.Debug("plot written",
		zap.String("output", opts.output),
		zap.Int("series", len(series)),
		zap.Int("frames", len(frames)))
	fmt.Fprintf(stdout, "wrote %s (%d series, %s simulated)\n", opts.output, len(series), formatSeconds(res.Elapsed))
	return nil
}
