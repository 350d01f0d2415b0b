package cmd

import "fmt"

func init() {
	RegisterCommand(&Command{
		Name:  "validate",
		Short: "Check timeline files without running them",
		Long: `Parse and resolve one or more timeline files and build their tweens
without advancing time.

Reports schema errors (unknown fields, bad durations, fractional or negative
loop counts, unsupported versions) and build errors such as unknown ease
names. Exits non-zero if any file is invalid.`,
		Usage: "motion validate <file>...",
		Run:   runValidate,
	})
}

func runValidate(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("at least one timeline file is required\n\nUsage: motion validate <file>...")
	}

	failed := 0
	for _, path := range args {
		res, scene, _, err := loadScene(path, sceneFlags{})
		if err != nil {
			fmt.Fprintf(stdout, "FAIL %s: %v\n", path, err)
			failed++
			continue
		}
		steps := 0
		for _, t := range res.Targets {
			steps += len(t.Steps)
		}
		scene.Dispose()
		fmt.Fprintf(stdout, "ok   %s (%d targets, %d steps, %d fps)\n", path, len(res.Targets), steps, res.FPS)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d timelines invalid", failed, len(args))
	}
	return nil
}
