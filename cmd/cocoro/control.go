package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shossk/cocoro-sdk/internal/cocoro"
	"github.com/shossk/cocoro-sdk/internal/device"
	"github.com/shossk/cocoro-sdk/internal/ui"
)

// Control flags
var (
	dryRun      bool
	verifyApply bool
	safeApply   bool
	assumeYes   bool
)

// Steps of a control command
const (
	stepQueue = iota + 1
	stepSubmit
	stepVerify
	stepRollback
)

var controlStepNames = []string{"Queue", "Submit", "Verify", "Rollback"}

func init() {
	for _, c := range []*cobra.Command{
		newControlCmd(device.CommandPower, "power <device> <on|off>", "Switch a device on or off",
			`  cocoro power living on
  cocoro power bedroom off --yes`),
		newControlCmd(device.CommandMode, "mode <device> <mode>", "Set the operation mode",
			`  cocoro mode living cool
  cocoro mode bedroom pollen   # purifier modes`),
		newControlCmd(device.CommandWindspeed, "wind <device> <speed>", "Set the air conditioner wind speed",
			`  cocoro wind living auto
  cocoro wind living 5`),
		newControlCmd(device.CommandTemperature, "temp <device> <celsius>", "Set the air conditioner target temperature",
			`  cocoro temp living 25 --verify
  cocoro temp living 24 --safe`),
		newControlCmd(device.CommandHumidify, "humidify <device> <on|off>", "Switch purifier humidification",
			`  cocoro humidify bedroom on`),
	} {
		c.Flags().BoolVar(&dryRun, "dry-run", false, "Print the submission without sending it")
		c.Flags().BoolVar(&verifyApply, "verify", false, "Poll the device until the new values are reported")
		c.Flags().BoolVar(&safeApply, "safe", false, "Snapshot first and roll back if verification fails")
		c.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
		c.MarkFlagsMutuallyExclusive("verify", "safe")
		rootCmd.AddCommand(c)
	}

	rootCmd.AddCommand(rollbackCmd)
}

// newControlCmd builds a "<verb> <device> <value>" command that queues one
// command through Device.QueueCommand and submits it.
func newControlCmd(command, use, short, example string) *cobra.Command {
	return &cobra.Command{
		Use:     use,
		Short:   short,
		Example: example,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runControl(cmd, command, args[0], args[1])
		},
	}
}

func runControl(cmd *cobra.Command, command, ref, value string) error {
	s, err := openSession()
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(cmd)
	defer cancel()

	out := cmd.OutOrStdout()
	printer := ui.NewPrinter(out)

	d, err := s.findDevice(ctx, ref)
	if err != nil {
		printer.PrintError("Device not found", err, hints(err)...)
		return err
	}

	if err := d.QueueCommand(command, value); err != nil {
		d.ClearPending()
		return fmt.Errorf("%s %s: %w", command, value, err)
	}

	if dryRun {
		defer d.ClearPending()
		data, err := cocoro.MarshalSubmission(device.BuildSubmission(d))
		if err != nil {
			return err
		}
		printer.PrintPanel("Dry run: "+s.label(d), d.FormatPending()+"\n\n"+string(data))
		return nil
	}

	if warning := cocoro.WarnBeforeSubmit(d); warning != "" && !assumeYes {
		if !ui.Confirm(cmd.InOrStdin(), out, "Submit to "+s.label(d)+"?", strings.Split(warning, "\n")) {
			d.ClearPending()
			printer.Println("Cancelled")
			return nil
		}
	}

	runner := ui.NewRunner(ui.RunnerConfig{
		Title:   fmt.Sprintf("Set %s", command),
		Command: strings.Join(append([]string{"cocoro", cmd.Name(), ref}, value), " "),
		Params: []ui.Param{
			{Key: "Device", Value: s.label(d)},
			{Key: "Value", Value: value},
		},
		StepNames: controlStepNames,
		Output:    out,
		Hints:     hints,
	})

	return runner.Run(func(onStep ui.StepCallback) ([]ui.Param, error) {
		onStep(stepQueue, ui.StepComplete, fmt.Sprintf("%d update(s)", len(d.Pending())))

		switch {
		case safeApply:
			return applySafely(ctx, s, d, onStep)
		case verifyApply:
			return applyVerified(ctx, s, d, onStep)
		default:
			return apply(ctx, s, d, onStep)
		}
	})
}

func apply(ctx context.Context, s *session, d *device.Device, onStep ui.StepCallback) ([]ui.Param, error) {
	codes := pendingCodes(d)

	onStep(stepSubmit, ui.StepRunning, "")
	if err := s.client.ExecuteQueuedUpdates(ctx, d); err != nil {
		d.ClearPending()
		onStep(stepSubmit, ui.StepFailed, cocoro.GetShortErrorMessage(err))
		return nil, err
	}
	onStep(stepSubmit, ui.StepComplete, "")
	onStep(stepVerify, ui.StepSkipped, "use --verify")
	onStep(stepRollback, ui.StepSkipped, "")

	return []ui.Param{{Key: "Submitted", Value: codes}}, nil
}

func applyVerified(ctx context.Context, s *session, d *device.Device, onStep ui.StepCallback) ([]ui.Param, error) {
	codes := pendingCodes(d)

	onStep(stepSubmit, ui.StepRunning, "")
	result := s.client.SubmitAndVerify(ctx, d, cocoro.DefaultVerificationOptions())
	onStep(stepRollback, ui.StepSkipped, "use --safe")

	if !result.Success {
		if result.Attempts == 0 {
			onStep(stepSubmit, ui.StepFailed, cocoro.GetShortErrorMessage(result.Error))
		} else {
			onStep(stepSubmit, ui.StepComplete, "")
			onStep(stepVerify, ui.StepFailed, fmt.Sprintf("%d attempt(s)", result.Attempts))
		}
		return nil, result.Error
	}

	onStep(stepSubmit, ui.StepComplete, "")
	onStep(stepVerify, ui.StepComplete, verifyNote(result))
	return []ui.Param{{Key: "Submitted", Value: codes}, {Key: "Verified", Value: verifyNote(result)}}, nil
}

func applySafely(ctx context.Context, s *session, d *device.Device, onStep ui.StepCallback) ([]ui.Param, error) {
	codes := pendingCodes(d)

	onStep(stepSubmit, ui.StepRunning, "snapshot and submit")
	result := s.rollbackManager().SafeApply(ctx, d, cocoro.DefaultVerificationOptions(), "before "+codes)

	switch {
	case result.Success:
		onStep(stepSubmit, ui.StepComplete, "")
		onStep(stepVerify, ui.StepComplete, verifyNote(result.UpdateResult))
		onStep(stepRollback, ui.StepSkipped, "not needed")
		return []ui.Param{{Key: "Submitted", Value: codes}, {Key: "Verified", Value: verifyNote(result.UpdateResult)}}, nil

	case !result.RollbackAttempted:
		onStep(stepSubmit, ui.StepFailed, cocoro.GetShortErrorMessage(result.Error))
		return nil, result.Error

	default:
		onStep(stepSubmit, ui.StepComplete, "")
		onStep(stepVerify, ui.StepFailed, "")
		if result.RollbackSucceeded {
			onStep(stepRollback, ui.StepComplete, "previous status restored")
		} else {
			onStep(stepRollback, ui.StepFailed, "")
		}
		return nil, result.Error
	}
}

// rollbackCmd restores the latest snapshot of a device
var rollbackCmd = &cobra.Command{
	Use:   "rollback <device>",
	Short: "Restore a device's last snapshot",
	Long: `Restore the settings recorded before the last --safe command.

Only single and range values are restored. Composite commands are write-only
and are left alone.`,
	Example: `  cocoro rollback living`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}

		ctx, cancel := withTimeout(cmd)
		defer cancel()

		out := cmd.OutOrStdout()
		d, err := s.findDevice(ctx, args[0])
		if err != nil {
			ui.NewPrinter(out).PrintError("Device not found", err, hints(err)...)
			return err
		}

		runner := ui.NewRunner(ui.RunnerConfig{
			Title:     "Rollback",
			Command:   "cocoro rollback " + args[0],
			Params:    []ui.Param{{Key: "Device", Value: s.label(d)}},
			StepNames: []string{"Restore", "Verify"},
			Output:    out,
			Hints:     hints,
		})

		return runner.Run(func(onStep ui.StepCallback) ([]ui.Param, error) {
			onStep(1, ui.StepRunning, "")
			result := s.rollbackManager().RollbackToLatest(ctx, d)
			if !result.Success {
				if result.Attempts == 0 {
					onStep(1, ui.StepFailed, cocoro.GetShortErrorMessage(result.Error))
				} else {
					onStep(1, ui.StepComplete, "")
					onStep(2, ui.StepFailed, fmt.Sprintf("%d attempt(s)", result.Attempts))
				}
				return nil, result.Error
			}
			onStep(1, ui.StepComplete, fmt.Sprintf("%d value(s)", len(result.Expected)))
			onStep(2, ui.StepComplete, verifyNote(result))
			return []ui.Param{{Key: "Restored", Value: fmt.Sprintf("%d value(s)", len(result.Expected))}}, nil
		})
	},
}

func pendingCodes(d *device.Device) string {
	codes := d.PendingCodes()
	names := make([]string, len(codes))
	for i, c := range codes {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func verifyNote(r *cocoro.VerificationResult) string {
	if r == nil {
		return ""
	}
	note := fmt.Sprintf("%d attempt(s)", r.Attempts)
	if len(r.Skipped) > 0 {
		note += fmt.Sprintf(", %d write-only", len(r.Skipped))
	}
	return note
}
