package region

import (
	"bytes"
	"strconv"
)

// Flag is a vendor boolean. The cloud is inconsistent about encoding:
// depending on vehicle generation a flag arrives as true, 1, "1" or
// "true". Unmarshalling coerces every variant to a strict bool and
// treats anything unrecognized as false, because a single odd flag
// must not sink an otherwise usable status document.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	s := string(bytes.Trim(data, `"`))
	switch s {
	case "true":
		*f = true
		return nil
	case "false", "null", "":
		*f = false
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	*f = err == nil && n != 0
	return nil
}

// statusTree mirrors the vendor telemetry subtree. The populated
// subset varies by vehicle generation and powertrain, so every nested
// structure is a pointer and traversal must tolerate nils.
type statusTree struct {
	AirCtrlOn          Flag           `json:"airCtrlOn"`
	Engine             Flag           `json:"engine"`
	DoorLock           Flag           `json:"doorLock"`
	DoorOpen           *doorState     `json:"doorOpen"`
	TrunkOpen          Flag           `json:"trunkOpen"`
	HoodOpen           Flag           `json:"hoodOpen"`
	AirTemp            *tempValue     `json:"airTemp"`
	Defrost            Flag           `json:"defrost"`
	Acc                Flag           `json:"acc"`
	SteerWheelHeat     Flag           `json:"steerWheelHeat"`
	SideMirrorHeat     Flag           `json:"sideMirrorHeat"`
	SideBackWindowHeat Flag           `json:"sideBackWindowHeat"`
	TirePressureLamp   *tireLampState `json:"tirePressureLamp"`
	Battery            *batteryState  `json:"battery"`
	EVStatus           *evState       `json:"evStatus"`
	DTE                *distanceValue `json:"dte"`
	Time               string         `json:"time"`
}

type doorState struct {
	FrontLeft  Flag `json:"frontLeft"`
	FrontRight Flag `json:"frontRight"`
	BackLeft   Flag `json:"backLeft"`
	BackRight  Flag `json:"backRight"`
}

type tireLampState struct {
	All        Flag `json:"tirePressureLampAll"`
	FrontLeft  Flag `json:"tirePressureLampFL"`
	FrontRight Flag `json:"tirePressureLampFR"`
	RearLeft   Flag `json:"tirePressureLampRL"`
	RearRight  Flag `json:"tirePressureLampRR"`
}

type batteryState struct {
	SoC *int `json:"batSoc"`
}

type evState struct {
	BatteryCharge Flag            `json:"batteryCharge"`
	BatteryStatus *int            `json:"batteryStatus"`
	DrvDistance   []driveDistance `json:"drvDistance"`
}

type driveDistance struct {
	RangeByFuel *rangeByFuel `json:"rangeByFuel"`
}

type rangeByFuel struct {
	EVModeRange         *distanceValue `json:"evModeRange"`
	GasModeRange        *distanceValue `json:"gasModeRange"`
	TotalAvailableRange *distanceValue `json:"totalAvailableRange"`
}

type distanceValue struct {
	Value float64 `json:"value"`
	Unit  int     `json:"unit"`
}

// tempValue carries the climate setpoint. The value is a string on
// the wire and not always numeric ("LO", "HI").
type tempValue struct {
	Value string `json:"value"`
	Unit  int    `json:"unit"`
}
