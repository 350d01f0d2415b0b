package cmd

import (
	"fmt"

	"github.com/go-drift/motion/pkg/animation"
)

func init() {
	RegisterCommand(&Command{
		Name:  "eases",
		Short: "List available ease names",
		Long: `List the ease names a timeline step may use, one per line.

With --sample, each name is followed by its value at t = 0.25, 0.5 and 0.75.`,
		Usage: "motion eases [--sample]",
		Run:   runEases,
	})
}

func runEases(args []string) error {
	sample := false
	for _, arg := range args {
		switch arg {
		case "--sample":
			sample = true
		default:
			return fmt.Errorf("unexpected argument %q", arg)
		}
	}

	eases := animation.DefaultEases()
	for _, name := range eases.Names() {
		if !sample {
			fmt.Fprintln(stdout, name)
			continue
		}
		fn, _ := eases.Lookup(name)
		fmt.Fprintf(stdout, "%-14s %7s %7s %7s\n", name,
			formatFloat(fn(0.25)), formatFloat(fn(0.5)), formatFloat(fn(0.75)))
	}
	return nil
}
