package cocoro

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shossk/cocoro-sdk/internal/device"
	"github.com/shossk/cocoro-sdk/internal/property"
)

// VerificationOptions configures how submission verification behaves
type VerificationOptions struct {
	// MaxRetries is the maximum number of verification attempts after the first
	// Default: 3
	MaxRetries int

	// InitialDelay is the delay before the first status query, giving the
	// appliance time to act on the command
	// Default: 2s
	InitialDelay time.Duration

	// RetryDelay is the delay between retry attempts
	// Default: 2s
	RetryDelay time.Duration

	// UseExponentialBackoff doubles each retry delay up to MaxRetryDelay
	// Default: true
	UseExponentialBackoff bool

	// MaxRetryDelay is the maximum delay between retries when using exponential backoff
	// Default: 10s
	MaxRetryDelay time.Duration
}

// DefaultVerificationOptions returns sensible defaults for verification
func DefaultVerificationOptions() *VerificationOptions {
	return &VerificationOptions{
		MaxRetries:            3,
		InitialDelay:          2 * time.Second,
		RetryDelay:            2 * time.Second,
		UseExponentialBackoff: true,
		MaxRetryDelay:         10 * time.Second,
	}
}

// VerificationResult contains the results of a submission verification
type VerificationResult struct {
	// Success indicates whether every checked value matched
	Success bool

	// Attempts is the number of status queries made
	Attempts int

	// Expected lists the submitted updates
	Expected []property.Status

	// Skipped lists updates that cannot be read back. Binary commands are
	// write-only and are never compared.
	Skipped []property.StatusCode

	// Mismatches lists every value that did not match on the last attempt
	Mismatches []string

	// Error is any error that occurred during submission or verification
	Error error
}

// VerifyStatus refreshes the device until every single and range value in
// expected is reported, or the attempts run out
func (c *Client) VerifyStatus(ctx context.Context, d *device.Device, expected []property.Status, opts *VerificationOptions) *VerificationResult {
	if opts == nil {
		opts = DefaultVerificationOptions()
	}

	result := &VerificationResult{
		Expected:   expected,
		Mismatches: []string{},
	}

	checked := make([]property.Status, 0, len(expected))
	for _, s := range expected {
		if s.Kind == property.KindBinary {
			result.Skipped = append(result.Skipped, s.Code)
			continue
		}
		checked = append(checked, s)
	}
	if len(checked) == 0 {
		result.Success = true
		return result
	}

	if err := sleep(ctx, opts.InitialDelay); err != nil {
		result.Error = err
		return result
	}

	currentDelay := opts.RetryDelay

	for attempt := 0; attempt <= opts.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, currentDelay); err != nil {
				result.Error = err
				return result
			}

			if opts.UseExponentialBackoff {
				currentDelay *= 2
				if currentDelay > opts.MaxRetryDelay {
					currentDelay = opts.MaxRetryDelay
				}
			}
		}

		result.Attempts++

		if err := c.RefreshStatus(ctx, d); err != nil {
			result.Error = fmt.Errorf("attempt %d: failed to refresh status: %w", attempt+1, err)
			continue
		}

		mismatches := compareStatuses(d, checked)
		result.Mismatches = mismatches

		if len(mismatches) == 0 {
			result.Success = true
			result.Error = nil
			return result
		}

		if attempt < opts.MaxRetries {
			result.Error = fmt.Errorf("attempt %d: status mismatch (will retry)", attempt+1)
		} else {
			result.Error = fmt.Errorf("verification failed after %d attempts: %s", result.Attempts, formatMismatches(mismatches))
		}
	}

	return result
}

// SubmitAndVerify submits the device's queued updates and verifies that the
// device reports them
func (c *Client) SubmitAndVerify(ctx context.Context, d *device.Device, opts *VerificationOptions) *VerificationResult {
	expected := d.Pending()

	if err := c.ExecuteQueuedUpdates(ctx, d); err != nil {
		return &VerificationResult{
			Expected: expected,
			Error:    fmt.Errorf("submission failed: %w", err),
		}
	}

	return c.VerifyStatus(ctx, d, expected, opts)
}

// compareStatuses lists the expected values the device does not report.
// Range values compare numerically so zero padding does not matter.
func compareStatuses(d *device.Device, expected []property.Status) []string {
	var mismatches []string

	for _, want := range expected {
		got, ok := d.GetPropertyStatus(want.Code)
		if !ok {
			mismatches = append(mismatches, fmt.Sprintf("%s: expected %s, not reported", want.Code, want.Value))
			continue
		}

		switch want.Kind {
		case property.KindRange:
			wn, werr := want.Range()
			gn, gerr := got.Range()
			if werr != nil || gerr != nil || wn != gn {
				mismatches = append(mismatches, fmt.Sprintf("%s: expected %s, got %s", want.Code, want.Value, got.Value))
			}
		default:
			if got.Kind != want.Kind || got.Value != want.Value {
				mismatches = append(mismatches, fmt.Sprintf("%s: expected %s, got %s", want.Code, want.Value, got.Value))
			}
		}
	}

	return mismatches
}

// formatMismatches creates a human-readable summary of mismatches
func formatMismatches(mismatches []string) string {
	switch len(mismatches) {
	case 0:
		return "none"
	case 1:
		return mismatches[0]
	default:
		return fmt.Sprintf("%d mismatches: %s", len(mismatches), strings.Join(mismatches, "; "))
	}
}
