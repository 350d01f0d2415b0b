// Package config loads and resolves timeline files for the motion CLI.
package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/motion/pkg/errors"
)

// SupportedMajor is the timeline schema major version this build reads.
const SupportedMajor = "v1"

// Defaults applied by Resolve.
const (
	DefaultFPS = 60
	MaxFPS     = 1000
)

// Timeline is the decoded form of a timeline file.
type Timeline struct {
	Version string   `yaml:"version"`
	FPS     int      `yaml:"fps,omitempty"`
	Max     Duration `yaml:"max,omitempty"`
	Targets []Target `yaml:"targets"`
}

// Target describes one animated object and its step sequence.
type Target struct {
	Name     string             `yaml:"name"`
	Values   map[string]float64 `yaml:"values,omitempty"`
	Override bool               `yaml:"override,omitempty"`
	Loop     Loop               `yaml:"loop,omitempty"`
	Steps    []Step             `yaml:"steps"`
}

// Step is one entry of a target's sequence. Exactly one of To, Wait and
// Call is set.
type Step struct {
	To       map[string]float64 `yaml:"to,omitempty"`
	Duration Duration           `yaml:"duration,omitempty"`
	Ease     string             `yaml:"ease,omitempty"`
	Wait     *Duration          `yaml:"wait,omitempty"`
	Call     *string            `yaml:"call,omitempty"`
}

// Kind returns "to", "wait" or "call", or "" if the step sets none or
// more than one of them.
func (s Step) Kind() string {
	var kinds []string
	if s.To != nil {
		kinds = append(kinds, "to")
	}
	if s.Wait != nil {
		kinds = append(kinds, "wait")
	}
	if s.Call != nil {
		kinds = append(kinds, "call")
	}
	if len(kinds) != 1 {
		return ""
	}
	return kinds[0]
}

// Duration is a time.Duration that decodes from a Go duration string
// ("1.5s", "250ms") or a number of seconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return &errors.ParseError{Field: fmt.Sprintf("line %d", node.Line), Err: stderrors.New("duration must be a scalar")}
	}
	switch node.Tag {
	case "!!int", "!!float":
		secs, err := strconv.ParseFloat(node.Value, 64)
		if err != nil || secs < 0 || math.IsInf(secs, 0) || math.IsNaN(secs) {
			return &errors.ParseError{Field: fmt.Sprintf("line %d", node.Line), Got: node.Value, Err: stderrors.New("invalid duration")}
		}
		*d = Duration(secs * float64(time.Second))
		return nil
	}
	v, err := time.ParseDuration(strings.TrimSpace(node.Value))
	if err != nil || v < 0 {
		return &errors.ParseError{Field: fmt.Sprintf("line %d", node.Line), Got: node.Value, Err: stderrors.New("invalid duration")}
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Loop is a repeat count. It decodes from a non-negative integer or from
// true, which repeats forever.
type Loop struct {
	Count   int
	Forever bool
}

// UnmarshalYAML implements yaml.Unmarshaler. Fractional and negative
// counts are rejected with an error wrapping [errors.ErrInvalidLoop].
func (l *Loop) UnmarshalYAML(node *yaml.Node) error {
	invalid := &errors.ParseError{Field: fmt.Sprintf("line %d", node.Line), Got: node.Value, Err: errors.ErrInvalidLoop}
	if node.Kind != yaml.ScalarNode {
		invalid.Got = nil
		return invalid
	}
	switch node.Tag {
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return invalid
		}
		*l = Loop{Forever: b}
		return nil
	case "!!int":
		n, err := strconv.Atoi(node.Value)
		if err != nil || n < 0 {
			return invalid
		}
		*l = Loop{Count: n}
		return nil
	default:
		return invalid
	}
}

// MarshalYAML implements yaml.Marshaler.
func (l Loop) MarshalYAML() (any, error) {
	if l.Forever {
		return true, nil
	}
	return l.Count, nil
}

// Resolved is a validated timeline with defaults applied.
type Resolved struct {
	Path    string
	Version string
	FPS     int
	// Frame is the nominal frame duration, truncated to whole nanoseconds.
	// Use FrameTime to step without accumulating the truncation.
	Frame   time.Duration
	Max     time.Duration
	Targets []Target
}

// FrameTime returns the simulated time at the end of frame i. Frames whose
// duration is not a whole number of nanoseconds share the remainder, so
// frame FPS always ends at exactly one second.
func (r *Resolved) FrameTime(i int) time.Duration {
	return time.Duration(i) * time.Second / time.Duration(r.FPS)
}

// Load reads and decodes the timeline at path.
func Load(path string) (*Timeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("timeline %s does not exist", path)
		}
		return nil, fmt.Errorf("failed to read timeline: %w", err)
	}
	tl, err := Parse(bytes.NewReader(data))
	if err != nil {
		var pe *errors.ParseError
		if stderrors.As(err, &pe) && pe.File == "" {
			pe.File = path
		}
		return nil, err
	}
	return tl, nil
}

// Parse decodes a timeline. Unknown fields are rejected.
func Parse(r io.Reader) (*Timeline, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var tl Timeline
	if err := dec.Decode(&tl); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, &errors.ParseError{Field: "timeline", Err: stderrors.New("empty document")}
		}
		var pe *errors.ParseError
		if stderrors.As(err, &pe) {
			return nil, err
		}
		return nil, &errors.ParseError{Field: "timeline", Err: err}
	}
	return &tl, nil
}

// Resolve validates tl and fills in defaults. path is used in error
// messages only.
func Resolve(path string, tl *Timeline) (*Resolved, error) {
	fail := func(field string, got any, err error) error {
		return &errors.ParseError{File: path, Field: field, Got: got, Err: err}
	}

	version := strings.TrimSpace(tl.Version)
	if version == "" {
		version = SupportedMajor
	}
	if !semver.IsValid(version) {
		return nil, fail("version", tl.Version, stderrors.New("not a semantic version"))
	}
	if semver.Major(version) != SupportedMajor {
		return nil, fail("version", tl.Version, fmt.Errorf("unsupported major version (want %s)", SupportedMajor))
	}

	fps := tl.FPS
	if fps == 0 {
		fps = DefaultFPS
	}
	if fps < 0 || fps > MaxFPS {
		return nil, fail("fps", tl.FPS, fmt.Errorf("must be between 1 and %d", MaxFPS))
	}

	if len(tl.Targets) == 0 {
		return nil, fail("targets", nil, stderrors.New("at least one target is required"))
	}

	seen := make(map[string]bool, len(tl.Targets))
	forever := false
	for i, t := range tl.Targets {
		field := fmt.Sprintf("targets[%d]", i)
		name := strings.TrimSpace(t.Name)
		if name == "" {
			return nil, fail(field+".name", nil, stderrors.New("name is required"))
		}
		if seen[name] {
			return nil, fail(field+".name", name, stderrors.New("duplicate target name"))
		}
		seen[name] = true
		tl.Targets[i].Name = name
		forever = forever || t.Loop.Forever

		for j, s := range t.Steps {
			sf := fmt.Sprintf("%s.steps[%d]", field, j)
			switch s.Kind() {
			case "to":
				if len(s.To) == 0 {
					return nil, fail(sf+".to", nil, stderrors.New("no properties"))
				}
			case "wait", "call":
				if s.Ease != "" || s.Duration != 0 {
					return nil, fail(sf, nil, stderrors.New("ease and duration apply to to-steps only"))
				}
			default:
				return nil, fail(sf, nil, stderrors.New("step must set exactly one of to, wait, call"))
			}
		}
	}

	if forever && tl.Max <= 0 {
		return nil, fail("max", nil, fmt.Errorf("%w: looping forever requires max", errors.ErrInvalidLoop))
	}

	return &Resolved{
		Path:    path,
		Version: version,
		FPS:     fps,
		Frame:   time.Second / time.Duration(fps),
		Max:     tl.Max.Std(),
		Targets: tl.Targets,
	}, nil
}

// LoadResolved loads the timeline at path and resolves it.
func LoadResolved(path string) (*Resolved, error) {
	tl, err := Load(path)
	if err != nil {
		return nil, err
	}
	return Resolve(path, tl)
}
