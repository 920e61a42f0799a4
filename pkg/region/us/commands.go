package us

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/carlink-community/carlink/internal/dispatcher"
	"github.com/carlink-community/carlink/pkg/protocol"
	"github.com/carlink-community/carlink/pkg/region"
	"github.com/carlink-community/carlink/pkg/vehicle"
)

// Result strings for commands that report vendor rejection through
// their return value. The strings are part of the compatibility
// contract with existing callers; success and failure are decided
// from the HTTP status code alone, never from the response body.
const (
	MsgLockSuccess        = "Lock successful"
	MsgUnlockSuccess      = "Unlock successful"
	MsgStartSuccess       = "Vehicle started"
	MsgStopSuccess        = "Vehicle stopped"
	MsgChargeStartSuccess = "Charge started"
	MsgChargeStopSuccess  = "Charge stopped"
	MsgCommandFailed      = "Something went wrong!"
	MsgStartFailed        = "Failed to start vehicle"
)

// Lock reports vendor rejection as MsgCommandFailed with a nil error.
// Only transport failures surface as errors.
func (v *Vehicle) Lock(ctx context.Context) (string, error) {
	return v.toggleDoorLocks(ctx, pathLock, MsgLockSuccess)
}

// Unlock follows the same convention as Lock.
func (v *Vehicle) Unlock(ctx context.Context) (string, error) {
	return v.toggleDoorLocks(ctx, pathUnlock, MsgUnlockSuccess)
}

func (v *Vehicle) toggleDoorLocks(ctx context.Context, path, success string) (string, error) {
	headers := v.defaultHeaders()
	headers["Content-Type"] = "application/x-www-form-urlencoded"

	form := url.Values{}
	form.Set("userName", v.user.Username)
	form.Set("vin", v.config.VIN)

	env, err := v.dsp.Dispatch(ctx, dispatcher.Request{
		Method:  http.MethodPost,
		Path:    path,
		Headers: headers,
		Body:    []byte(form.Encode()),
	})
	if err != nil {
		return "", err
	}
	if env.StatusCode == http.StatusOK {
		return success, nil
	}
	return MsgCommandFailed, nil
}

// startBody is the dialect's remote-start payload. Booleans destined
// for numeric vendor fields travel as 0/1; the temperature value is a
// string on the wire.
type startBody struct {
	Ims                int         `json:"Ims"`
	AirCtrl            int         `json:"airCtrl"`
	AirTemp            airTempBody `json:"airTemp"`
	Defrost            bool        `json:"defrost"`
	Heating1           int         `json:"heating1"`
	IgniOnDuration     int         `json:"igniOnDuration"`
	SeatHeaterVentInfo interface{} `json:"seatHeaterVentInfo"`
	Username           string      `json:"username"`
	VIN                string      `json:"vin"`
}

type airTempBody struct {
	Unit  int    `json:"unit"`
	Value string `json:"value"`
}

func (v *Vehicle) buildStartBody(opts vehicle.StartOptions) startBody {
	opts = opts.WithDefaults()
	return startBody{
		AirCtrl: boolToInt(opts.Climate),
		AirTemp: airTempBody{
			Unit:  region.WireTemperatureUnit(opts.Temperature.Unit),
			Value: strconv.FormatFloat(opts.Temperature.Value, 'f', -1, 64),
		},
		Defrost:        opts.Defrost,
		Heating1:       boolToInt(opts.Heating),
		IgniOnDuration: int(opts.IgnitionDuration / time.Minute),
		Username:       v.user.Username,
		VIN:            v.config.VIN,
	}
}

// Start reports vendor rejection as MsgStartFailed with a nil error.
func (v *Vehicle) Start(ctx context.Context, opts vehicle.StartOptions) (string, error) {
	body, err := json.Marshal(v.buildStartBody(opts))
	if err != nil {
		return "", err
	}

	headers := v.defaultHeaders()
	headers["Content-Type"] = "application/json"
	headers["offset"] = startOffset

	env, err := v.dsp.Dispatch(ctx, dispatcher.Request{
		Method:  http.MethodPost,
		Path:    pathStart,
		Headers: headers,
		Body:    body,
	})
	if err != nil {
		return "", err
	}
	if env.StatusCode == http.StatusOK {
		return MsgStartSuccess, nil
	}
	return MsgStartFailed, nil
}

// Stop, unlike Start, reports vendor rejection as an error. The
// asymmetry is part of the compatibility contract; callers must
// handle both conventions.
func (v *Vehicle) Stop(ctx context.Context) (string, error) {
	headers := v.defaultHeaders()
	headers["Content-Type"] = "application/json"

	env, err := v.dsp.Dispatch(ctx, dispatcher.Request{
		Method:  http.MethodPost,
		Path:    pathStop,
		Headers: headers,
	})
	if err != nil {
		return "", err
	}
	if env.StatusCode != http.StatusOK {
		return "", &protocol.RejectionError{Op: "stop", StatusCode: env.StatusCode, Body: string(env.Body)}
	}
	return MsgStopSuccess, nil
}

// StartCharge follows the value-reporting convention of Lock.
func (v *Vehicle) StartCharge(ctx context.Context) (string, error) {
	return v.toggleCharge(ctx, pathStartCharge, MsgChargeStartSuccess)
}

// StopCharge follows the value-reporting convention of Lock.
func (v *Vehicle) StopCharge(ctx context.Context) (string, error) {
	return v.toggleCharge(ctx, pathStopCharge, MsgChargeStopSuccess)
}

func (v *Vehicle) toggleCharge(ctx context.Context, path, success string) (string, error) {
	headers := v.defaultHeaders()
	headers["Content-Type"] = "application/json"

	env, err := v.dsp.Dispatch(ctx, dispatcher.Request{
		Method:  http.MethodPost,
		Path:    path,
		Headers: headers,
	})
	if err != nil {
		return "", err
	}
	if env.StatusCode == http.StatusOK {
		return success, nil
	}
	return MsgCommandFailed, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
