package region

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carlink-community/carlink/pkg/vehicle"
)

func TestNormalizeEmptyPayload(t *testing.T) {
	status, err := NormalizeStatus(json.RawMessage(`{}`))
	require.NoError(t, err, "missing subtrees must not raise")
	assert.False(t, status.Chassis.Locked)
	assert.False(t, status.Chassis.TireWarn.All)
	assert.False(t, status.Climate.Active)
	assert.Nil(t, status.Climate.Setpoint)
	assert.Nil(t, status.Engine.Range)
	assert.Nil(t, status.Engine.BatteryLevel12V)
	assert.Nil(t, status.Engine.BatteryLevelHV)
	assert.False(t, status.LastUpdated.Valid)
}

func TestNormalizeFullPayload(t *testing.T) {
	payload := `{
		"airCtrlOn": 1,
		"engine": true,
		"doorLock": "1",
		"doorOpen": {"frontLeft": 0, "frontRight": 1, "backLeft": 0, "backRight": 0},
		"trunkOpen": false,
		"hoodOpen": 0,
		"airTemp": {"value": "72", "unit": 1},
		"defrost": "true",
		"acc": 1,
		"steerWheelHeat": 1,
		"sideBackWindowHeat": 0,
		"tirePressureLamp": {"tirePressureLampAll": 1, "tirePressureLampFL": 1},
		"battery": {"batSoc": 87},
		"evStatus": {
			"batteryCharge": 1,
			"batteryStatus": 64,
			"drvDistance": [{"rangeByFuel": {"totalAvailableRange": {"value": 120, "unit": 1}}}]
		},
		"dte": {"value": 300, "unit": 1},
		"time": "20240301154500"
	}`
	status, err := NormalizeStatus(json.RawMessage(payload))
	require.NoError(t, err)

	assert.True(t, status.Climate.Active)
	assert.True(t, status.Climate.Defrost)
	assert.True(t, status.Climate.SteeringWheelHeat)
	assert.False(t, status.Climate.RearWindowHeat)
	require.NotNil(t, status.Climate.Setpoint)
	assert.Equal(t, vehicle.Temperature{Value: 72, Unit: vehicle.TemperatureUnitFahrenheit}, *status.Climate.Setpoint)

	assert.True(t, status.Chassis.Locked)
	assert.True(t, status.Chassis.Doors.FrontRight)
	assert.False(t, status.Chassis.Doors.FrontLeft)
	assert.True(t, status.Chassis.TireWarn.All)
	assert.True(t, status.Chassis.TireWarn.FrontLeft)
	assert.False(t, status.Chassis.TireWarn.RearRight)

	assert.True(t, status.Engine.Ignition)
	assert.True(t, status.Engine.Accessory)
	assert.True(t, status.Engine.Charging)
	require.NotNil(t, status.Engine.BatteryLevel12V)
	assert.Equal(t, 87, *status.Engine.BatteryLevel12V)
	require.NotNil(t, status.Engine.BatteryLevelHV)
	assert.Equal(t, 64, *status.Engine.BatteryLevelHV)

	require.True(t, status.LastUpdated.Valid)
	assert.Equal(t, time.Date(2024, 3, 1, 15, 45, 0, 0, time.UTC), status.LastUpdated.Time)
}

func TestRangeFallbackPrefersElectric(t *testing.T) {
	payload := `{
		"evStatus": {"drvDistance": [{"rangeByFuel": {"totalAvailableRange": {"value": 120, "unit": 1}}}]},
		"dte": {"value": 300, "unit": 1}
	}`
	status, err := NormalizeStatus(json.RawMessage(payload))
	require.NoError(t, err)
	require.NotNil(t, status.Engine.Range)
	assert.Equal(t, 120.0, status.Engine.Range.Value)
	assert.Equal(t, vehicle.DistanceUnitKilometers, status.Engine.Range.Unit)
}

func TestRangeFallbackCombustionOnly(t *testing.T) {
	status, err := NormalizeStatus(json.RawMessage(`{"dte": {"value": 300, "unit": 3}}`))
	require.NoError(t, err)
	require.NotNil(t, status.Engine.Range)
	assert.Equal(t, 300.0, status.Engine.Range.Value)
	assert.Equal(t, vehicle.DistanceUnitMiles, status.Engine.Range.Unit)
}

func TestRangeAbsentWhenNeitherReported(t *testing.T) {
	status, err := NormalizeStatus(json.RawMessage(`{"engine": 1}`))
	require.NoError(t, err)
	assert.Nil(t, status.Engine.Range)
}

func TestFlagCoercion(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{`true`, true},
		{`false`, false},
		{`1`, true},
		{`0`, false},
		{`"1"`, true},
		{`"0"`, false},
		{`"true"`, true},
		{`"false"`, false},
		{`2`, true},
		{`null`, false},
		{`"garbage"`, false},
	}
	for _, tc := range tests {
		var f Flag
		require.NoError(t, json.Unmarshal([]byte(tc.in), &f), "input %s", tc.in)
		assert.Equal(t, tc.want, bool(f), "input %s", tc.in)
	}
}

func TestParseVendorTime(t *testing.T) {
	ts := ParseVendorTime("2024-03-01 15:45:00")
	require.True(t, ts.Valid)
	assert.Equal(t, time.Date(2024, 3, 1, 15, 45, 0, 0, time.UTC), ts.Time)

	ts = ParseVendorTime("not a date")
	assert.False(t, ts.Valid)
	assert.Equal(t, "not a date", ts.Raw)
	assert.True(t, ts.Time.IsZero())
}

func TestSetpointNonNumeric(t *testing.T) {
	status, err := NormalizeStatus(json.RawMessage(`{"airTemp": {"value": "LO", "unit": 0}}`))
	require.NoError(t, err)
	assert.Nil(t, status.Climate.Setpoint)
}
