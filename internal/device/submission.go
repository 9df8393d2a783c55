package device

import "github.com/shossk/cocoro-sdk/internal/property"

// Submission is the transport-independent shape of one control request:
// device identity plus the queued updates in first-queued order.
type Submission struct {
	DeviceID      int64
	BoxID         string
	EchonetNode   string
	EchonetObject string
	Status        []property.Status
}

// BuildSubmission flattens the device's pending queue. An empty queue yields
// an empty, valid submission. The queue is not cleared.
func BuildSubmission(d *Device) Submission {
	return Submission{
		DeviceID:      d.DeviceID,
		BoxID:         d.BoxID,
		EchonetNode:   d.EchonetNode,
		EchonetObject: d.EchonetObject,
		Status:        d.Pending(),
	}
}

// Empty reports whether the submission carries no updates
func (s Submission) Empty() bool {
	return len(s.Status) == 0
}

// Values maps each status code to its wire-form value
func (s Submission) Values() map[property.StatusCode]string {
	out := make(map[property.StatusCode]string, len(s.Status))
	for _, st := range s.Status {
		out[st.Code] = st.Value
	}
	return out
}
