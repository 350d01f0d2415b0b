package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/go-drift/motion/cmd/motion/internal/config"
	"github.com/go-drift/motion/cmd/motion/internal/sim"
	"github.com/go-drift/motion/pkg/animation"
)

// sceneFlags are the simulation overrides shared by run and plot.
type sceneFlags struct {
	fps int
	max time.Duration
}

// parseSceneFlag consumes --fps and --max (with a separate or inline
// value). It returns how many extra args were used, or -1 if arg is not a
// scene flag.
func parseSceneFlag(flags *sceneFlags, args []string, i int) (int, error) {
	name, value, inline := strings.Cut(args[i], "=")
	if name != "--fps" && name != "--max" {
		return -1, nil
	}
	used := 0
	if !inline {
		if i+1 >= len(args) {
			return 0, fmt.Errorf("%s requires a value", name)
		}
		value = args[i+1]
		used = 1
	}
	switch name {
	case "--fps":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 || n > config.MaxFPS {
			return 0, fmt.Errorf("--fps must be an integer between 1 and %d, got %q", config.MaxFPS, value)
		}
		flags.fps = n
	case "--max":
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return 0, fmt.Errorf("--max must be a positive duration, got %q", value)
		}
		flags.max = d
	}
	return used, nil
}

// loadScene resolves the timeline at path, applies flag overrides and
// builds its tweens with the CLI logger and a fresh metrics registry.
func loadScene(path string, flags sceneFlags) (*config.Resolved, *sim.Scene, *prometheus.Registry, error) {
	tl, err := config.Load(path)
	if err != nil {
		return nil, nil, nil, err
	}
	if flags.fps > 0 {
		tl.FPS = flags.fps
	}
	if flags.max > 0 {
		tl.Max = config.Duration(flags.max)
	}
	res, err := config.Resolve(path, tl)
	if err != nil {
		return nil, nil, nil, err
	}

	reg := prometheus.NewRegistry()
	scene, err := sim.Build(res,
		sim.WithLogger(logger),
		sim.WithMetrics(animation.NewMetrics(reg)))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Debug("timeline loaded",
		zap.String("path", path),
		zap.Int("fps", res.FPS),
		zap.Duration("max", res.Max),
		zap.Strings("targets", scene.Targets()))
	return res, scene, reg, nil
}

func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', 4, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		s = "0"
	}
	return s
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64) + "s"
}
