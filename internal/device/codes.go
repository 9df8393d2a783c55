package device

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shossk/cocoro-sdk/internal/property"
	"github.com/shossk/cocoro-sdk/internal/state"
)

// Status codes used by the typed accessors. They follow ECHONET Lite EPC
// numbering where the vendor reuses it.
const (
	CodePower             property.StatusCode = "80"
	CodeWindspeed         property.StatusCode = "A0"
	CodeOperationMode     property.StatusCode = "B0"
	CodeRoomTemperature   property.StatusCode = "BB"
	CodeStateDetail       property.StatusCode = "F1"
	CodePurifierOperation property.StatusCode = "F3"
)

// Power single values
const (
	PowerOn  = "30"
	PowerOff = "31"
)

// OperationMode is a single value of the operation mode property (B0)
type OperationMode string

const (
	ModeOther       OperationMode = "40"
	ModeAuto        OperationMode = "41"
	ModeCool        OperationMode = "42"
	ModeHeat        OperationMode = "43"
	ModeDehumidify  OperationMode = "44"
	ModeVentilation OperationMode = "45"
)

var operationModeNames = map[string]OperationMode{
	"other":       ModeOther,
	"auto":        ModeAuto,
	"cool":        ModeCool,
	"heat":        ModeHeat,
	"dehumidify":  ModeDehumidify,
	"dry":         ModeDehumidify,
	"ventilation": ModeVentilation,
	"fan":         ModeVentilation,
}

// ParseOperationMode accepts a mode name ("cool") or wire code ("42")
func ParseOperationMode(s string) (OperationMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if m, ok := operationModeNames[s]; ok {
		return m, nil
	}
	for _, m := range operationModeNames {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown operation mode %q", s)
}

// String returns the mode name
func (m OperationMode) String() string {
	switch m {
	case ModeOther:
		return "other"
	case ModeAuto:
		return "auto"
	case ModeCool:
		return "cool"
	case ModeHeat:
		return "heat"
	case ModeDehumidify:
		return "dehumidify"
	case ModeVentilation:
		return "ventilation"
	default:
		return fmt.Sprintf("mode(%s)", string(m))
	}
}

// Windspeed is a single value of the air volume property (A0).
// Levels 1-8 are encoded as 0x31-0x38.
type Windspeed string

const (
	WindspeedLevel1 Windspeed = "31"
	WindspeedLevel2 Windspeed = "32"
	WindspeedLevel3 Windspeed = "33"
	WindspeedLevel4 Windspeed = "34"
	WindspeedLevel5 Windspeed = "35"
	WindspeedLevel6 Windspeed = "36"
	WindspeedLevel7 Windspeed = "37"
	WindspeedLevel8 Windspeed = "38"
	WindspeedAuto   Windspeed = "41"
)

// ParseWindspeed accepts "auto" or a level 1-8
func ParseWindspeed(s string) (Windspeed, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "auto" {
		return WindspeedAuto, nil
	}
	level, err := strconv.Atoi(s)
	if err != nil || level < 1 || level > 8 {
		return "", fmt.Errorf("windspeed must be auto or 1-8, got %q", s)
	}
	return Windspeed(fmt.Sprintf("%X", 0x30+level)), nil
}

// Valid reports whether w is one of the defined levels
func (w Windspeed) Valid() bool {
	if w == WindspeedAuto {
		return true
	}
	return len(w) == 2 && w >= WindspeedLevel1 && w <= WindspeedLevel8
}

// String returns "auto" or the level number
func (w Windspeed) String() string {
	if w == WindspeedAuto {
		return "auto"
	}
	if w.Valid() {
		return string(w[1])
	}
	return fmt.Sprintf("windspeed(%s)", string(w))
}

var purifierModeNames = map[string]int{
	"ai_auto": state.PurifierModeAIAuto,
	"auto":    state.PurifierModeAuto,
	"pollen":  state.PurifierModePollen,
	"night":   state.PurifierModeNight,
	"realize": state.PurifierModeRealize,
	"silent":  state.PurifierModeSilent,
	"medium":  state.PurifierModeMedium,
	"high":    state.PurifierModeHigh,
}

// ParsePurifierMode maps an air purifier mode name to its command byte
func ParsePurifierMode(s string) (int, error) {
	if m, ok := purifierModeNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return m, nil
	}
	return 0, fmt.Errorf("unknown purifier mode %q", s)
}

// PurifierModeName returns the name for a purifier mode byte, or ""
func PurifierModeName(mode int) string {
	for name, m := range purifierModeNames {
		if m == mode {
			return name
		}
	}
	return ""
}

// ECHONET class group/class codes carried in the echonetObject field
const (
	classAirConditioner = "0130"
	classAirCleaner     = "0135"
)

// FamilyForObject infers the appliance family from an ECHONET object code
// such as "013001". Unknown classes return "".
func FamilyForObject(echonetObject string) string {
	obj := strings.ToUpper(strings.TrimPrefix(strings.TrimPrefix(echonetObject, "0x"), "0X"))
	switch {
	case strings.HasPrefix(obj, classAirConditioner):
		return state.FamilyAircon
	case strings.HasPrefix(obj, classAirCleaner):
		return state.FamilyPurifier
	default:
		return ""
	}
}
