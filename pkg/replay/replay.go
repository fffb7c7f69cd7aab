// Package replay drives an engine from a YAML script of recorded input frames.
//
// A script is a list of frames. Each frame holds named device events, decoded
// through the configured bindings, and UI actions. After the events of a
// frame are applied the engine steps one frame and a report line is written.
//
//	frames:
//	  - events:
//	      - name: HTC_Controller_1
//	        pose: [1,0,0,0, 0,1,0,0, 0,0,1,0, 0,0,0,1]
//	      - name: Wand_Joystick_Y_Change
//	        value: -1
//	    repeat: 5
//	  - events:
//	      - ui: select
//	        index: 2
package replay

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"holobrowse/pkg/engine"
	"holobrowse/pkg/visualization"
)

// ErrUnknownAction indicates a UI action other than next, prev or select
var ErrUnknownAction = errors.New("unknown ui action")

// UI actions accepted in scripts
const (
	ActionNext   = "next"
	ActionPrev   = "prev"
	ActionSelect = "select"
)

// Script is a recorded input session
type Script struct {
	Frames []Frame `yaml:"frames"`
}

// Frame is the input delivered between two frame steps
type Frame struct {
	Events []Step `yaml:"events"`

	// Repeat applies the frame this many times; 0 means once
	Repeat int `yaml:"repeat,omitempty"`
}

// Step is either a named device event or a UI action
type Step struct {
	Name  string    `yaml:"name,omitempty"`
	Pose  []float64 `yaml:"pose,omitempty"`
	Value float64   `yaml:"value,omitempty"`

	UI    string `yaml:"ui,omitempty"`
	Index int    `yaml:"index,omitempty"`
}

// ParseScript decodes a script. Unknown keys are rejected.
func ParseScript(r io.Reader) (*Script, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Script
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return &s, nil
		}
		return nil, fmt.Errorf("error parsing script: %w", err)
	}
	return &s, nil
}

// LoadScript reads a script file
func LoadScript(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error reading script: %w", err)
	}
	defer f.Close()

	return ParseScript(f)
}

// Option configures a Runner
type Option func(*Runner)

// WithLogger sets the logger for skipped events
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.log = l }
}

// WithOutput sets where per-frame report lines are written
func WithOutput(w io.Writer) Option {
	return func(r *Runner) { r.out = w }
}

// Strict makes unbound event names fail the run instead of being skipped
func Strict() Option {
	return func(r *Runner) { r.strict = true }
}

// Runner feeds scripts to an engine
type Runner struct {
	engine  *engine.Engine
	decoder *engine.Decoder
	log     *slog.Logger
	out     io.Writer
	strict  bool
}

// NewRunner creates a runner over e, decoding names with decoder
func NewRunner(e *engine.Engine, decoder *engine.Decoder, opts ...Option) *Runner {
	r := &Runner{
		engine:  e,
		decoder: decoder,
		log:     slog.Default(),
		out:     io.Discard,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run applies every frame of s and returns the state after each frame step
func (r *Runner) Run(s *Script) ([]engine.State, error) {
	var states []engine.State
	n := 0
	for i, fr := range s.Frames {
		times := max(fr.Repeat, 1)
		for range times {
			if err := r.apply(fr); err != nil {
				return states, fmt.Errorf("frame %d: %w", i, err)
			}
			r.engine.Frame()

			st := r.engine.State()
			states = append(states, st)
			if _, err := fmt.Fprintln(r.out, FormatState(n, r.engine.ViewerDepth(), st)); err != nil {
				return states, err
			}
			n++
		}
	}
	return states, nil
}

func (r *Runner) apply(fr Frame) error {
	for _, step := range fr.Events {
		if step.UI != "" {
			ev, err := uiEvent(step)
			if err != nil {
				return err
			}
			r.engine.Handle(ev)
			continue
		}

		events, err := r.decoder.Decode(engine.RawEvent{Name: step.Name, Pose: step.Pose, Value: step.Value})
		if errors.Is(err, engine.ErrUnknownEvent) && !r.strict {
			r.log.Warn("skipping unbound event", "name", step.Name)
			continue
		}
		if err != nil {
			return err
		}
		for _, ev := range events {
			r.engine.Handle(ev)
		}
	}
	return nil
}

func uiEvent(step Step) (engine.Event, error) {
	switch step.UI {
	case ActionNext:
		return engine.FieldNext{}, nil
	case ActionPrev:
		return engine.FieldPrev{}, nil
	case ActionSelect:
		return engine.DatasetSelected{Index: step.Index}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownAction, step.UI)
}

// FormatState renders one report line for frame n
func FormatState(n int, depth float64, st engine.State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "frame %d: dataset %d (%s) depth %f", n, st.Current, st.Label, depth)
	fmt.Fprintf(&b, " field %s=%q", st.FieldName, st.FieldValue)

	if h := st.Hover; h != nil {
		fmt.Fprintf(&b, " hover %d/%d [%s]", h.Ref.Dataset, h.Ref.Index,
			strings.Join(visualization.HoverLines(h.Panel), ", "))
	}
	switch m := st.Measurement; {
	case m.Valid:
		fmt.Fprintf(&b, " measure %s", m.Text)
	case m.Active:
		b.WriteString(" measuring")
	}
	return b.String()
}
