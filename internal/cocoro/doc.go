// Package cocoro is the HTTP transport for the vendor's appliance cloud.
//
// A Client logs in with an app secret and app key, lists the account's boxes,
// reads each appliance's property declarations and status, and submits the
// updates queued on a device.Device. Sessions are cookie based and owned by
// the client; any query made before Login logs in first, and a rejected
// session triggers one fresh login.
//
// # Usage Example
//
//	client := cocoro.NewClient(appSecret, appKey)
//
//	devices, err := client.QueryDevices(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	d := devices[0]
//	if err := d.QueuePowerOn(); err != nil {
//	    log.Fatal(err)
//	}
//
//	result := client.SubmitAndVerify(ctx, d, nil)
//	if !result.Success {
//	    log.Fatalf("Update failed: %v", result.Error)
//	}
//
// # Safe Updates
//
// RollbackManager snapshots a device's status before submitting and replays
// the snapshot's single and range values if verification fails:
//
//	rm := cocoro.NewRollbackManager(client, store)
//	res := rm.SafeApply(ctx, d, nil, "power on")
//	fmt.Println(res)
//
// # Error Handling
//
// Transport failures are *APIError values. Use IsAuthError, IsNetworkError,
// IsRetryable and friends to inspect them, and GetTroubleshootingHint for
// user-facing advice. Model errors from the device package pass through
// unchanged.
package cocoro
