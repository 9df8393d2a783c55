// Package ui renders the cocoro CLI's terminal output.
//
// Components are built with Lipgloss and follow a "render once and exit"
// pattern; nothing here waits for interaction except Confirm.
//
//   - Header: command banner with ordered parameters
//   - Progress: Bubbles progress bar with a step list
//   - Result: success, failure and warning boxes
//   - Panel: titled box around preformatted text
//   - Runner: header, streamed steps and result for multi-step commands
//
// Example:
//
//	runner := ui.NewRunner(ui.RunnerConfig{
//	    Title:     "Set temperature",
//	    Command:   "cocoro temp living 25",
//	    StepNames: []string{"Queue", "Submit", "Verify"},
//	})
//	err := runner.Run(func(onStep ui.StepCallback) ([]ui.Param, error) {
//	    onStep(1, ui.StepRunning, "")
//	    // ...
//	    onStep(1, ui.StepComplete, "")
//	    return nil, nil
//	})
//
// Logging is controlled by COCORO_LOG_LEVEL. When unset, zap is silent so
// the curated output stays clean.
package ui
