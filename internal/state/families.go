package state

// Field names used by the built-in layouts
const (
	FieldTemperature = "temperature"
	FieldTarget      = "target"
	FieldCommand     = "command"
	FieldMode        = "mode"
	FieldPower       = "power"
	FieldHumidify    = "humidify"
)

// Purifier command selectors (byte 1 of the F3 code)
const (
	PurifierCommandOperation = 0x01
	PurifierCommandPower     = 0x03
	PurifierCommandHumidify  = 0x09
)

// Flag values for purifier power and humidify
const (
	FlagOff = 0x00
	FlagOn  = 0xFF
)

// Purifier operation mode codes (byte 4 of the F3 code)
const (
	PurifierModeAuto    = 0x10
	PurifierModeNight   = 0x11
	PurifierModePollen  = 0x13
	PurifierModeSilent  = 0x14
	PurifierModeMedium  = 0x15
	PurifierModeHigh    = 0x16
	PurifierModeAIAuto  = 0x20
	PurifierModeRealize = 0x40
)

// Family names for the built-in layouts
const (
	FamilyAircon   = "aircon"
	FamilyPurifier = "purifier"
)

// AirconLayout is the state detail (F1) layout observed on air conditioners.
// Only the target temperature at byte 3 is modeled.
func AirconLayout() *Layout {
	return &Layout{
		Name: FamilyAircon,
		Code: "F1",
		Size: 27,
		Fields: []Field{
			{Name: FieldTemperature, Offset: 3, Min: 0, Max: 50},
		},
	}
}

// PurifierLayout is the operation (F3) command layout observed on air
// purifiers.
func PurifierLayout() *Layout {
	return &Layout{
		Name: FamilyPurifier,
		Code: "F3",
		Size: 27,
		Fields: []Field{
			{Name: FieldTarget, Offset: 0, Max: 1},
			{Name: FieldCommand, Offset: 1, Values: []int{
				PurifierCommandOperation, PurifierCommandPower, PurifierCommandHumidify,
			}},
			{Name: FieldMode, Offset: 4, Values: []int{
				0x00,
				PurifierModeAuto, PurifierModeNight, PurifierModePollen, PurifierModeSilent,
				PurifierModeMedium, PurifierModeHigh, PurifierModeAIAuto, PurifierModeRealize,
			}},
			{Name: FieldPower, Offset: 13, Values: []int{FlagOff, FlagOn}},
			{Name: FieldHumidify, Offset: 15, Values: []int{FlagOff, FlagOn}},
		},
	}
}

// Builtin returns a fresh copy of the built-in layout for a family
func Builtin(family string) (*Layout, bool) {
	switch family {
	case FamilyAircon:
		return AirconLayout(), true
	case FamilyPurifier:
		return PurifierLayout(), true
	default:
		return nil, false
	}
}
