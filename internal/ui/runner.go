package ui

import (
	"fmt"
	"io"
	"os"
	"time"
)

// RunnerConfig describes a multi-step command
type RunnerConfig struct {
	Title     string  // e.g., "Set temperature"
	Command   string  // e.g., "cocoro temp living 25"
	Params    []Param // Shown in the header
	StepNames []string
	Output    io.Writer // Defaults to os.Stdout

	// Hints supplies troubleshooting tips for a failure
	Hints func(err error) []string
}

// Runner prints the header, streams step progress and prints the result box
type Runner struct {
	config   RunnerConfig
	progress *Progress
	output   io.Writer
	width    int
}

// NewRunner creates a runner sized to the terminal
func NewRunner(config RunnerConfig) *Runner {
	if config.Output == nil {
		config.Output = os.Stdout
	}

	width := GetTerminalWidth()
	return &Runner{
		config:   config,
		progress: NewProgress(config.StepNames...).SetWidth(width),
		output:   config.Output,
		width:    width,
	}
}

// Operation is the work done by a command. It reports progress through
// onStep and returns the details for the success box.
type Operation func(onStep StepCallback) ([]Param, error)

// Run executes op, rendering each finished step as it completes.
func (r *Runner) Run(op Operation) error {
	start := time.Now()

	header := NewHeader(r.config.Title, r.config.Command, r.config.Params...).SetWidth(r.width)
	r.println(header.Render())
	r.println("")

	details, err := op(r.onStep)
	elapsed := time.Since(start).Round(time.Millisecond)

	r.println("")
	if err != nil {
		var tips []string
		if r.config.Hints != nil {
			tips = r.config.Hints(err)
		}
		result := NewFailureResult(r.config.Title+" failed", err, tips).SetWidth(r.width)
		result.AddDetail("Duration", elapsed.String())
		r.println(result.Render())
		return err
	}

	result := NewSuccessResult(r.config.Title+" complete", details...).SetWidth(r.width)
	result.AddDetail("Duration", elapsed.String())
	r.println(result.Render())
	return nil
}

// Progress exposes the step state, mainly for tests
func (r *Runner) Progress() *Progress {
	return r.progress
}

func (r *Runner) onStep(number int, status StepStatus, message string) {
	r.progress.UpdateStep(number, status, message)
	if number < 1 || number > len(r.progress.Steps) {
		return
	}

	line := r.progress.renderStepLine(r.progress.Steps[number-1])
	switch {
	case status.done():
		r.println(line)
	case status == StepRunning:
		_, _ = fmt.Fprint(r.output, line+"\r")
	}
}

func (r *Runner) println(s string) {
	_, _ = fmt.Fprintln(r.output, s)
}
