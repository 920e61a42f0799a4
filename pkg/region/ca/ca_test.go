package ca_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carlink-community/carlink/pkg/protocol"
	"github.com/carlink-community/carlink/pkg/region/ca"
	"github.com/carlink-community/carlink/pkg/session"
	"github.com/carlink-community/carlink/pkg/vehicle"
)

const (
	testVIN = "KMHL14JA5MA654321"
	baseURL = "https://mybluelink.ca"
)

func testVehicle() *ca.Vehicle {
	return ca.New(
		vehicle.Config{VIN: testVIN, RegistrationID: "reg-ca", Generation: "2", BrandIndicator: "H"},
		session.UserConfig{Username: "driver@example.com", PIN: "4321"},
		session.Static{Token: "tok"},
	)
}

func registerPinResponder(t *testing.T) *int {
	t.Helper()
	calls := 0
	httpmock.RegisterResponder(http.MethodPost, baseURL+"/tods/api/vrfypin",
		func(r *http.Request) (*http.Response, error) {
			calls++
			body, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{"pin": "4321"}`, string(body))
			return httpmock.NewStringResponse(http.StatusOK, `{"result": {"pAuth": "pre-auth-token"}}`), nil
		})
	return &calls
}

func TestLockRunsPinVerificationFirst(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	pinCalls := registerPinResponder(t)
	var gotPAuth string
	httpmock.RegisterResponder(http.MethodPost, baseURL+"/tods/api/drlck",
		func(r *http.Request) (*http.Response, error) {
			assert.Equal(t, 1, *pinCalls, "the PIN must be verified before the command is sent")
			gotPAuth = r.Header.Get("pAuth")
			return httpmock.NewStringResponse(http.StatusOK, `{}`), nil
		})

	msg, err := testVehicle().Lock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ca.MsgLockSuccess, msg)
	assert.Equal(t, "pre-auth-token", gotPAuth)
}

func TestUnlockRejectedReturnsFailureString(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	registerPinResponder(t)
	httpmock.RegisterResponder(http.MethodPost, baseURL+"/tods/api/drulck",
		httpmock.NewStringResponder(http.StatusForbidden, ""))

	msg, err := testVehicle().Unlock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ca.MsgCommandFailed, msg)
}

func TestPinRejectionStopsCommand(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodPost, baseURL+"/tods/api/vrfypin",
		httpmock.NewStringResponder(http.StatusUnauthorized, ""))

	_, err := testVehicle().Lock(context.Background())
	var rerr *protocol.RejectionError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "verifyPin", rerr.Op)
	info := httpmock.GetCallCountInfo()
	assert.Zero(t, info["POST "+baseURL+"/tods/api/drlck"], "a failed PIN check must not send the command")
}

func TestStatusSelectsEndpointByRefresh(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	cached := `{"result": {"status": {"doorLock": "1", "time": "2024-03-01 15:45:00"}}}`
	httpmock.RegisterResponder(http.MethodPost, baseURL+"/tods/api/lstvhclsts",
		httpmock.NewStringResponder(http.StatusOK, cached))
	httpmock.RegisterResponder(http.MethodPost, baseURL+"/tods/api/rltmvhclsts",
		httpmock.NewStringResponder(http.StatusOK, cached))

	v := testVehicle()
	result, err := v.Status(context.Background(), vehicle.StatusOptions{Parsed: true})
	require.NoError(t, err)
	require.NotNil(t, result.Parsed)
	assert.True(t, result.Parsed.Chassis.Locked)
	assert.True(t, result.Parsed.LastUpdated.Valid)

	_, err = v.Status(context.Background(), vehicle.StatusOptions{Refresh: true})
	require.NoError(t, err)

	info := httpmock.GetCallCountInfo()
	assert.Equal(t, 1, info["POST "+baseURL+"/tods/api/lstvhclsts"])
	assert.Equal(t, 1, info["POST "+baseURL+"/tods/api/rltmvhclsts"])
}

func TestStartSendsHvacInfo(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	registerPinResponder(t)
	var gotBody map[string]interface{}
	httpmock.RegisterResponder(http.MethodPost, baseURL+"/tods/api/evc/rfon",
		func(r *http.Request) (*http.Response, error) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			return httpmock.NewStringResponse(http.StatusOK, ""), nil
		})

	msg, err := testVehicle().Start(context.Background(), vehicle.StartOptions{Climate: true})
	require.NoError(t, err)
	assert.Equal(t, ca.MsgStartSuccess, msg)

	hvac := gotBody["hvacInfo"].(map[string]interface{})
	assert.Equal(t, float64(1), hvac["airCtrl"])
	assert.Equal(t, false, hvac["defrost"])
	airTemp := hvac["airTemp"].(map[string]interface{})
	assert.Equal(t, "70", airTemp["value"])
	assert.Equal(t, "4321", gotBody["pin"])
}

func TestStopRaisesOnRejection(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	registerPinResponder(t)
	httpmock.RegisterResponder(http.MethodPost, baseURL+"/tods/api/evc/rfoff",
		httpmock.NewStringResponder(http.StatusInternalServerError, ""))

	_, err := testVehicle().Stop(context.Background())
	var rerr *protocol.RejectionError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "stop", rerr.Op)
}

func TestChargeControlNotImplemented(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	v := testVehicle()
	_, err := v.StartCharge(context.Background())
	var nerr *protocol.NotImplementedError
	require.ErrorAs(t, err, &nerr)

	_, err = v.StopCharge(context.Background())
	require.ErrorAs(t, err, &nerr)

	assert.Equal(t, 0, httpmock.GetTotalCallCount())
}

func TestOdometerReportsKilometers(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodPost, baseURL+"/tods/api/sltvhcl",
		httpmock.NewStringResponder(http.StatusOK, `{"result": {"vehicle": {"odometer": 68421.2}}}`))

	v := testVehicle()
	odo, err := v.Odometer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 68421.2, odo.Value)
	assert.Equal(t, vehicle.DistanceUnitKilometers, odo.Unit)
	assert.Equal(t, odo, v.LastOdometer)
}

func TestLocationViaPreAuth(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	registerPinResponder(t)
	httpmock.RegisterResponder(http.MethodPost, baseURL+"/tods/api/fndmcr",
		httpmock.NewStringResponder(http.StatusOK, `{"result": {"lat": 45.5, "lon": -73.6, "head": 90}}`))

	loc, err := testVehicle().Location(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 45.5, loc.Latitude)
	assert.Equal(t, -73.6, loc.Longitude)
	assert.Nil(t, loc.Speed)
}
