package vehicle

import "time"

// DistanceUnit enumerates the distance units the vendor reports.
// DistanceUnitUnknown is a deliberate sentinel: some endpoints (the
// enrollment odometer among them) omit the unit entirely, and guessing
// would silently hand consumers a wrong number.
type DistanceUnit int

const (
	DistanceUnitUnknown DistanceUnit = iota
	DistanceUnitKilometers
	DistanceUnitMiles
)

func (u DistanceUnit) String() string {
	switch u {
	case DistanceUnitKilometers:
		return "km"
	case DistanceUnitMiles:
		return "mi"
	}
	return "unknown"
}

type TemperatureUnit int

const (
	TemperatureUnitCelsius TemperatureUnit = iota
	TemperatureUnitFahrenheit
)

func (u TemperatureUnit) String() string {
	if u == TemperatureUnitFahrenheit {
		return "F"
	}
	return "C"
}

type SpeedUnit int

const (
	SpeedUnitUnknown SpeedUnit = iota
	SpeedUnitKPH
	SpeedUnitMPH
)

// Values carrying a physical unit are always (value, unit) pairs,
// never bare numbers.
type Distance struct {
	Value float64
	Unit  DistanceUnit
}

type Temperature struct {
	Value float64
	Unit  TemperatureUnit
}

type Speed struct {
	Value float64
	Unit  SpeedUnit
}

// Timestamp is a vendor-reported instant. Valid is false when the
// vendor's proprietary date string could not be parsed; Raw preserves
// the input either way so nothing is silently corrupted.
type Timestamp struct {
	Time  time.Time
	Raw   string
	Valid bool
}

// Status is the canonical, vendor-independent vehicle status. Every
// field is independently optional-safe: a vendor payload missing any
// subtree yields zero values here, never an error.
type Status struct {
	Chassis     Chassis
	Climate     Climate
	Engine      Engine
	LastUpdated Timestamp
}

type Chassis struct {
	HoodOpen  bool
	TrunkOpen bool
	Locked    bool
	Doors     Doors
	TireWarn  TireWarnings
}

// Doors reports per-door open state.
type Doors struct {
	FrontLeft  bool
	FrontRight bool
	RearLeft   bool
	RearRight  bool
}

// TireWarnings reports the tire-pressure warning lamps.
type TireWarnings struct {
	All        bool
	FrontLeft  bool
	FrontRight bool
	RearLeft   bool
	RearRight  bool
}

type Climate struct {
	Active            bool
	Defrost           bool
	SteeringWheelHeat bool
	SideMirrorHeat    bool
	RearWindowHeat    bool
	// Setpoint is nil when the vendor omitted it or reported a
	// non-numeric value such as "LO".
	Setpoint *Temperature
}

type Engine struct {
	Ignition  bool
	Accessory bool
	Charging  bool
	// Range is the remaining drive distance. EVs and PHEVs report the
	// electric range when present, combustion vehicles the
	// distance-to-empty; nil when the vendor reported neither.
	Range *Distance
	// Battery levels in percent; nil when not reported.
	BatteryLevel12V *int
	BatteryLevelHV  *int
}

type Location struct {
	Latitude  float64
	Longitude float64
	Altitude  float64
	Heading   float64
	Speed     *Speed
}

// Odometer is the vehicle's odometer reading. Unit may be
// DistanceUnitUnknown on dialects that do not disclose it.
type Odometer struct {
	Value float64
	Unit  DistanceUnit
}
