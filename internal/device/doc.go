// Package device aggregates one appliance's property model, its composite
// state layouts and its pending-update queue.
//
// Reads go straight to the last fetched status list. Writes never touch that
// list: every setter builds a property.Status and queues it, keyed by status
// code, until a transport submits the queue. After submitting, callers
// re-fetch status to see the device's new values.
//
//	if err := d.QueuePowerOn(); err != nil {
//	    return err
//	}
//	if err := d.QueueTemperature(25); err != nil {
//	    return err
//	}
//	sub := device.BuildSubmission(d) // two updates, insertion order
//
// A Device is not safe for concurrent use. Callers must serialize queue and
// submission cycles per device.
package device
