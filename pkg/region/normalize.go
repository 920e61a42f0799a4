package region

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/carlink-community/carlink/pkg/vehicle"
)

// Vendor date-time layouts, tried in order. The US cloud reports
// compact timestamps, the CA cloud spells them out.
var timeLayouts = []string{
	"20060102150405",
	"2006-01-02 15:04:05",
}

// NormalizeStatus maps a vendor status subtree to the canonical model.
// It is a pure function: absence of any nested vendor field yields
// zero values for the corresponding canonical fields, and nothing in
// the payload can make it panic. Only JSON that fails to parse at all
// is reported as an error.
func NormalizeStatus(raw json.RawMessage) (*vehicle.Status, error) {
	var tree statusTree
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, err
	}
	return tree.canonical(), nil
}

func (t *statusTree) canonical() *vehicle.Status {
	s := &vehicle.Status{
		Chassis: vehicle.Chassis{
			HoodOpen:  bool(t.HoodOpen),
			TrunkOpen: bool(t.TrunkOpen),
			Locked:    bool(t.DoorLock),
		},
		Climate: vehicle.Climate{
			Active:            bool(t.AirCtrlOn),
			Defrost:           bool(t.Defrost),
			SteeringWheelHeat: bool(t.SteerWheelHeat),
			SideMirrorHeat:    bool(t.SideMirrorHeat),
			RearWindowHeat:    bool(t.SideBackWindowHeat),
			Setpoint:          t.setpoint(),
		},
		Engine: vehicle.Engine{
			Ignition:  bool(t.Engine),
			Accessory: bool(t.Acc),
			Range:     t.driveRange(),
		},
		LastUpdated: ParseVendorTime(t.Time),
	}
	if t.DoorOpen != nil {
		s.Chassis.Doors = vehicle.Doors{
			FrontLeft:  bool(t.DoorOpen.FrontLeft),
			FrontRight: bool(t.DoorOpen.FrontRight),
			RearLeft:   bool(t.DoorOpen.BackLeft),
			RearRight:  bool(t.DoorOpen.BackRight),
		}
	}
	if t.TirePressureLamp != nil {
		s.Chassis.TireWarn = vehicle.TireWarnings{
			All:        bool(t.TirePressureLamp.All),
			FrontLeft:  bool(t.TirePressureLamp.FrontLeft),
			FrontRight: bool(t.TirePressureLamp.FrontRight),
			RearLeft:   bool(t.TirePressureLamp.RearLeft),
			RearRight:  bool(t.TirePressureLamp.RearRight),
		}
	}
	if t.Battery != nil {
		s.Engine.BatteryLevel12V = t.Battery.SoC
	}
	if t.EVStatus != nil {
		s.Engine.Charging = bool(t.EVStatus.BatteryCharge)
		s.Engine.BatteryLevelHV = t.EVStatus.BatteryStatus
	}
	return s
}

// driveRange implements the range fallback chain: the electric
// drive-distance-remaining wins when present, otherwise the combustion
// distance-to-empty, otherwise nothing.
func (t *statusTree) driveRange() *vehicle.Distance {
	if t.EVStatus != nil && len(t.EVStatus.DrvDistance) > 0 {
		if rbf := t.EVStatus.DrvDistance[0].RangeByFuel; rbf != nil && rbf.TotalAvailableRange != nil {
			return rbf.TotalAvailableRange.distance()
		}
	}
	if t.DTE != nil {
		return t.DTE.distance()
	}
	return nil
}

func (t *statusTree) setpoint() *vehicle.Temperature {
	if t.AirTemp == nil {
		return nil
	}
	value, err := strconv.ParseFloat(t.AirTemp.Value, 64)
	if err != nil {
		// "LO", "HI" and friends have no numeric rendition.
		return nil
	}
	return &vehicle.Temperature{Value: value, Unit: temperatureUnitFromCode(t.AirTemp.Unit)}
}

func (d *distanceValue) distance() *vehicle.Distance {
	return &vehicle.Distance{Value: d.Value, Unit: DistanceUnitFromCode(d.Unit)}
}

// ParseVendorTime parses the vendor's proprietary date-time string.
// Unparsable input yields an explicitly invalid Timestamp carrying the
// raw string, never a corrupted date.
func ParseVendorTime(raw string) vehicle.Timestamp {
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return vehicle.Timestamp{Time: parsed, Raw: raw, Valid: true}
		}
	}
	return vehicle.Timestamp{Raw: raw}
}

// DistanceUnitFromCode maps the vendor's integer unit codes. Codes
// outside the documented set collapse to the unknown sentinel.
func DistanceUnitFromCode(code int) vehicle.DistanceUnit {
	switch code {
	case 1:
		return vehicle.DistanceUnitKilometers
	case 3:
		return vehicle.DistanceUnitMiles
	}
	return vehicle.DistanceUnitUnknown
}

// SpeedUnitFromCode maps the vendor's integer speed-unit codes.
func SpeedUnitFromCode(code int) vehicle.SpeedUnit {
	switch code {
	case 1:
		return vehicle.SpeedUnitKPH
	case 3:
		return vehicle.SpeedUnitMPH
	}
	return vehicle.SpeedUnitUnknown
}

func temperatureUnitFromCode(code int) vehicle.TemperatureUnit {
	if code == 1 {
		return vehicle.TemperatureUnitFahrenheit
	}
	return vehicle.TemperatureUnitCelsius
}

// WireTemperatureUnit converts a canonical temperature unit to the
// vendor's integer code.
func WireTemperatureUnit(u vehicle.TemperatureUnit) int {
	if u == vehicle.TemperatureUnitFahrenheit {
		return 1
	}
	return 0
}
