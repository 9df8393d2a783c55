package cocoro

import (
	"encoding/json"
	"fmt"

	"github.com/shossk/cocoro-sdk/internal/device"
	"github.com/shossk/cocoro-sdk/internal/property"
)

// Box is one entry of the box info response. The vendor calls every
// registered appliance adapter a box.
type Box struct {
	BoxID       string        `json:"boxId"`
	EchonetData []EchonetData `json:"echonetData"`
}

// EchonetData describes the appliance behind a box
type EchonetData struct {
	Maker         string    `json:"maker"`
	Series        string    `json:"series,omitempty"`
	Model         string    `json:"model"`
	SerialNumber  string    `json:"serialNumber"`
	DeviceID      int64     `json:"deviceId"`
	EchonetNode   string    `json:"echonetNode"`
	EchonetObject string    `json:"echonetObject"`
	LabelData     LabelData `json:"labelData"`
}

// LabelData holds the user-assigned labels of an appliance
type LabelData struct {
	ID    int64  `json:"id,omitempty"`
	Place string `json:"place,omitempty"`
	Name  string `json:"name"`
}

// Primary returns the first appliance of the box
func (b Box) Primary() (EchonetData, bool) {
	if len(b.EchonetData) == 0 {
		return EchonetData{}, false
	}
	return b.EchonetData[0], true
}

// Info converts the box's primary appliance to device identification
func (b Box) Info() (device.Info, error) {
	e, ok := b.Primary()
	if !ok {
		return device.Info{}, NewValidationError(fmt.Sprintf("box %s carries no echonet data", b.BoxID))
	}
	return device.Info{
		Name:          e.LabelData.Name,
		DeviceID:      e.DeviceID,
		BoxID:         b.BoxID,
		EchonetNode:   e.EchonetNode,
		EchonetObject: e.EchonetObject,
		Maker:         e.Maker,
		Model:         e.Model,
		SerialNumber:  e.SerialNumber,
	}, nil
}

type boxesResponse struct {
	Box []Box `json:"box"`
}

type loginRequest struct {
	TerminalAppID string `json:"terminalAppId"`
}

// vendorError is the error body the API returns with HTTP 200
type vendorError struct {
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

type valueCode struct {
	Code string `json:"code"`
}

type singleOption struct {
	Code string `json:"code"`
	Name string `json:"name,omitempty"`
}

type rangeSpec struct {
	Min  int `json:"min"`
	Max  int `json:"max"`
	Step int `json:"step,omitempty"`
}

type binarySpec struct {
	Size int `json:"size,omitempty"`
}

// wireProperty is a property record of the device property response
type wireProperty struct {
	StatusCode  string         `json:"statusCode"`
	StatusName  string         `json:"statusName,omitempty"`
	ValueType   string         `json:"valueType"`
	Get         bool           `json:"get"`
	Set         bool           `json:"set"`
	Inf         bool           `json:"inf"`
	ValueSingle []singleOption `json:"valueSingle,omitempty"`
	ValueRange  *rangeSpec     `json:"valueRange,omitempty"`
	ValueBinary *binarySpec    `json:"valueBinary,omitempty"`
}

// wireStatus is a status record, used both in responses and in control
// requests. Exactly one value field is set, selected by ValueType.
type wireStatus struct {
	StatusCode  string     `json:"statusCode"`
	ValueType   string     `json:"valueType"`
	ValueSingle *valueCode `json:"valueSingle,omitempty"`
	ValueRange  *valueCode `json:"valueRange,omitempty"`
	ValueBinary *valueCode `json:"valueBinary,omitempty"`
}

type propertiesResponse struct {
	DeviceProperty struct {
		Property []wireProperty `json:"property"`
		Status   []wireStatus   `json:"status"`
	} `json:"deviceProperty"`
}

type controlRequest struct {
	ControlList []controlEntry `json:"controlList"`
}

type controlEntry struct {
	DeviceID      int64        `json:"deviceId"`
	EchonetNode   string       `json:"echonetNode"`
	EchonetObject string       `json:"echonetObject"`
	Status        []wireStatus `json:"status"`
}

func (w wireProperty) toProperty() (property.Property, error) {
	kind, err := property.ParseValueKind(w.ValueType)
	if err != nil {
		return property.Property{}, fmt.Errorf("property %s: %w", w.StatusCode, err)
	}

	p := property.Property{
		Code: property.StatusCode(w.StatusCode),
		Name: w.StatusName,
		Kind: kind,
		Get:  w.Get,
		Set:  w.Set,
		Inf:  w.Inf,
	}
	switch kind {
	case property.KindSingle:
		for _, opt := range w.ValueSingle {
			p.Single = append(p.Single, property.SingleOption{Code: opt.Code, Name: opt.Name})
		}
	case property.KindRange:
		if w.ValueRange != nil {
			p.Range = &property.RangeSpec{Min: w.ValueRange.Min, Max: w.ValueRange.Max, Step: w.ValueRange.Step}
		}
	case property.KindBinary:
		if w.ValueBinary != nil {
			p.Binary = &property.BinarySpec{Size: w.ValueBinary.Size}
		}
	}
	return p, nil
}

func (w wireStatus) toStatus() (property.Status, error) {
	kind, err := property.ParseValueKind(w.ValueType)
	if err != nil {
		return property.Status{}, fmt.Errorf("status %s: %w", w.StatusCode, err)
	}

	var v *valueCode
	switch kind {
	case property.KindSingle:
		v = w.ValueSingle
	case property.KindRange:
		v = w.ValueRange
	case property.KindBinary:
		v = w.ValueBinary
	}
	if v == nil {
		return property.Status{}, property.NewMalformedValueError(property.StatusCode(w.StatusCode),
			fmt.Sprintf("status carries no %s value", w.ValueType), nil)
	}

	return property.Status{Code: property.StatusCode(w.StatusCode), Kind: kind, Value: v.Code}, nil
}

func fromStatus(s property.Status) wireStatus {
	w := wireStatus{
		StatusCode: string(s.Code),
		ValueType:  s.Kind.String(),
	}
	v := &valueCode{Code: s.Value}
	switch s.Kind {
	case property.KindSingle:
		w.ValueSingle = v
	case property.KindRange:
		w.ValueRange = v
	case property.KindBinary:
		w.ValueBinary = v
	}
	return w
}

// decodeProperties converts a device property response
func decodeProperties(resp *propertiesResponse) ([]property.Property, []property.Status, error) {
	props := make([]property.Property, 0, len(resp.DeviceProperty.Property))
	for _, w := range resp.DeviceProperty.Property {
		p, err := w.toProperty()
		if err != nil {
			return nil, nil, err
		}
		props = append(props, p)
	}

	statuses := make([]property.Status, 0, len(resp.DeviceProperty.Status))
	for _, w := range resp.DeviceProperty.Status {
		s, err := w.toStatus()
		if err != nil {
			return nil, nil, err
		}
		statuses = append(statuses, s)
	}
	return props, statuses, nil
}

func newControlRequest(sub device.Submission) controlRequest {
	entry := controlEntry{
		DeviceID:      sub.DeviceID,
		EchonetNode:   sub.EchonetNode,
		EchonetObject: sub.EchonetObject,
		Status:        make([]wireStatus, len(sub.Status)),
	}
	for i, s := range sub.Status {
		entry.Status[i] = fromStatus(s)
	}
	return controlRequest{ControlList: []controlEntry{entry}}
}

// MarshalSubmission returns the control request body for a submission,
// indented for display
func MarshalSubmission(sub device.Submission) ([]byte, error) {
	return json.MarshalIndent(newControlRequest(sub), "", "  ")
}
