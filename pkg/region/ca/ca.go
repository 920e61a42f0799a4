// Package ca implements the capability contract against the Canada
// cloud dialect: JSON bodies, and a PIN-verification round-trip that
// mints a short-lived pre-authorization token for protected commands.
package ca

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/carlink-community/carlink/internal/dispatcher"
	"github.com/carlink-community/carlink/pkg/protocol"
	"github.com/carlink-community/carlink/pkg/region"
	"github.com/carlink-community/carlink/pkg/session"
	"github.com/carlink-community/carlink/pkg/vehicle"
)

const (
	pathStatus       = "/tods/api/lstvhclsts"
	pathStatusLatest = "/tods/api/rltmvhclsts"
	pathLock         = "/tods/api/drlck"
	pathUnlock       = "/tods/api/drulck"
	pathStart        = "/tods/api/evc/rfon"
	pathStop         = "/tods/api/evc/rfoff"
	pathLocate       = "/tods/api/fndmcr"
	pathVehicleInfo  = "/tods/api/sltvhcl"
	pathVerifyPin    = "/tods/api/vrfypin"
)

// preAuthHeader carries the token minted by the PIN verification.
const preAuthHeader = "pAuth"

// Result strings, same conventions as the US dialect.
const (
	MsgLockSuccess   = "Lock successful"
	MsgUnlockSuccess = "Unlock successful"
	MsgStartSuccess  = "Vehicle started"
	MsgStopSuccess   = "Vehicle stopped"
	MsgCommandFailed = "Something went wrong!"
	MsgStartFailed   = "Failed to start vehicle"
)

// Vehicle is the Canada adapter.
type Vehicle struct {
	config vehicle.Config
	user   session.UserConfig
	env    region.Environment
	dsp    *dispatcher.Dispatcher

	// Last successful reads, overwritten wholesale; not synchronized,
	// last write wins.
	LastStatus   *vehicle.Status
	LastOdometer *vehicle.Odometer
}

var _ vehicle.Vehicle = (*Vehicle)(nil)

func New(config vehicle.Config, user session.UserConfig, provider session.Provider) *Vehicle {
	return NewWithEnvironment(region.CAProduction, config, user, provider)
}

func NewWithEnvironment(env region.Environment, config vehicle.Config, user session.UserConfig, provider session.Provider) *Vehicle {
	return &Vehicle{
		config: config,
		user:   user,
		env:    env,
		dsp: &dispatcher.Dispatcher{
			Env:        env,
			Provider:   provider,
			AuthHeader: "accessToken",
		},
	}
}

func (v *Vehicle) VIN() string { return v.config.VIN }

func (v *Vehicle) defaultHeaders() map[string]string {
	return map[string]string{
		"client_id":    v.env.ClientID,
		"Host":         v.env.Host,
		"from":         "SPA",
		"language":     "1",
		"offset":       utcOffsetHours(),
		"Content-Type": "application/json",
	}
}

// utcOffsetHours reports the local UTC offset the way the mobile app
// does.
func utcOffsetHours() string {
	_, seconds := time.Now().Zone()
	return strconv.Itoa(seconds / 3600)
}

// verifyPin trades the service PIN for a pre-authorization token. The
// token is requested fresh before every protected command; the dialect
// expires them quickly and reuse is not worth the bookkeeping.
func (v *Vehicle) verifyPin(ctx context.Context) (string, error) {
	body, err := json.Marshal(map[string]string{"pin": v.user.PIN})
	if err != nil {
		return "", err
	}
	env, err := v.dsp.Dispatch(ctx, dispatcher.Request{
		Method:  http.MethodPost,
		Path:    pathVerifyPin,
		Headers: v.defaultHeaders(),
		Body:    body,
	})
	if err != nil {
		return "", err
	}
	if env.StatusCode != http.StatusOK {
		return "", &protocol.RejectionError{Op: "verifyPin", StatusCode: env.StatusCode, Body: string(env.Body)}
	}
	var payload struct {
		Result struct {
			PAuth string `json:"pAuth"`
		} `json:"result"`
	}
	if err := json.Unmarshal(env.Body, &payload); err != nil {
		return "", &protocol.DecodeError{Op: "verifyPin", Err: err}
	}
	if payload.Result.PAuth == "" {
		return "", &protocol.DecodeError{Op: "verifyPin", Err: fmt.Errorf("response carries no pAuth token")}
	}
	return payload.Result.PAuth, nil
}

func (v *Vehicle) Status(ctx context.Context, opts vehicle.StatusOptions) (*vehicle.StatusResult, error) {
	path := pathStatus
	if opts.Refresh {
		path = pathStatusLatest
	}
	env, err := v.dsp.Dispatch(ctx, dispatcher.Request{
		Method:  http.MethodPost,
		Path:    path,
		Headers: v.defaultHeaders(),
	})
	if err != nil {
		return nil, err
	}
	if env.StatusCode != http.StatusOK {
		return nil, &protocol.RejectionError{Op: "status", StatusCode: env.StatusCode, Body: string(env.Body)}
	}

	var payload struct {
		Result struct {
			Status json.RawMessage `json:"status"`
		} `json:"result"`
	}
	if err := json.Unmarshal(env.Body, &payload); err != nil {
		return nil, &protocol.DecodeError{Op: "status", Err: err}
	}
	if len(payload.Result.Status) == 0 {
		return nil, &protocol.DecodeError{Op: "status", Err: fmt.Errorf("response carries no status subtree")}
	}

	result := &vehicle.StatusResult{Raw: payload.Result.Status}
	if opts.Parsed {
		parsed, err := region.NormalizeStatus(payload.Result.Status)
		if err != nil {
			return nil, &protocol.DecodeError{Op: "status", Err: err}
		}
		result.Parsed = parsed
		v.LastStatus = parsed
	}
	return result, nil
}

// FullStatus exists only in the EU dialect.
func (v *Vehicle) FullStatus(context.Context, vehicle.StatusOptions) (json.RawMessage, error) {
	return nil, &protocol.NotImplementedError{Op: "fullStatus", Region: v.env.Name}
}

func (v *Vehicle) Location(ctx context.Context) (*vehicle.Location, error) {
	env, err := v.preAuthorized(ctx, pathLocate, nil)
	if err != nil {
		return nil, err
	}
	if env.StatusCode != http.StatusOK {
		return nil, &protocol.RejectionError{Op: "location", StatusCode: env.StatusCode, Body: string(env.Body)}
	}

	var payload struct {
		Result struct {
			Lat   float64 `json:"lat"`
			Lon   float64 `json:"lon"`
			Alt   float64 `json:"alt"`
			Head  float64 `json:"head"`
			Speed *struct {
				Value float64 `json:"value"`
				Unit  int     `json:"unit"`
			} `json:"speed"`
		} `json:"result"`
	}
	if err := json.Unmarshal(env.Body, &payload); err != nil {
		return nil, &protocol.DecodeError{Op: "location", Err: err}
	}
	loc := &vehicle.Location{
		Latitude:  payload.Result.Lat,
		Longitude: payload.Result.Lon,
		Altitude:  payload.Result.Alt,
		Heading:   payload.Result.Head,
	}
	if payload.Result.Speed != nil {
		loc.Speed = &vehicle.Speed{
			Value: payload.Result.Speed.Value,
			Unit:  region.SpeedUnitFromCode(payload.Result.Speed.Unit),
		}
	}
	return loc, nil
}

// Odometer reads the vehicle-information document. This dialect does
// disclose the unit: the reading is in kilometers.
func (v *Vehicle) Odometer(ctx context.Context) (*vehicle.Odometer, error) {
	env, err := v.dsp.Dispatch(ctx, dispatcher.Request{
		Method:  http.MethodPost,
		Path:    pathVehicleInfo,
		Headers: v.defaultHeaders(),
	})
	if err != nil {
		return nil, err
	}
	if env.StatusCode != http.StatusOK {
		return nil, &protocol.RejectionError{Op: "odometer", StatusCode: env.StatusCode, Body: string(env.Body)}
	}
	var payload struct {
		Result struct {
			Vehicle struct {
				Odometer float64 `json:"odometer"`
			} `json:"vehicle"`
		} `json:"result"`
	}
	if err := json.Unmarshal(env.Body, &payload); err != nil {
		return nil, &protocol.DecodeError{Op: "odometer", Err: err}
	}
	odo := &vehicle.Odometer{Value: payload.Result.Vehicle.Odometer, Unit: vehicle.DistanceUnitKilometers}
	v.LastOdometer = odo
	return odo, nil
}

// Lock reports vendor rejection as MsgCommandFailed with a nil error,
// matching the US dialect's convention.
func (v *Vehicle) Lock(ctx context.Context) (string, error) {
	return v.toggleDoorLocks(ctx, pathLock, MsgLockSuccess)
}

func (v *Vehicle) Unlock(ctx context.Context) (string, error) {
	return v.toggleDoorLocks(ctx, pathUnlock, MsgUnlockSuccess)
}

func (v *Vehicle) toggleDoorLocks(ctx context.Context, path, success string) (string, error) {
	env, err := v.preAuthorized(ctx, path, map[string]interface{}{"pin": v.user.PIN})
	if err != nil {
		return "", err
	}
	if env.StatusCode == http.StatusOK {
		return success, nil
	}
	return MsgCommandFailed, nil
}

type hvacInfo struct {
	AirCtrl  int        `json:"airCtrl"`
	AirTemp  caTempBody `json:"airTemp"`
	Defrost  bool       `json:"defrost"`
	Heating1 int        `json:"heating1"`
}

type caTempBody struct {
	Value        string `json:"value"`
	Unit         int    `json:"unit"`
	HvacTempType int    `json:"hvacTempType"`
}

func buildHvacInfo(opts vehicle.StartOptions) hvacInfo {
	opts = opts.WithDefaults()
	airCtrl := 0
	if opts.Climate {
		airCtrl = 1
	}
	heating := 0
	if opts.Heating {
		heating = 1
	}
	return hvacInfo{
		AirCtrl: airCtrl,
		AirTemp: caTempBody{
			Value:        strconv.FormatFloat(opts.Temperature.Value, 'f', -1, 64),
			Unit:         region.WireTemperatureUnit(opts.Temperature.Unit),
			HvacTempType: 1,
		},
		Defrost:  opts.Defrost,
		Heating1: heating,
	}
}

// Start reports vendor rejection as MsgStartFailed with a nil error.
func (v *Vehicle) Start(ctx context.Context, opts vehicle.StartOptions) (string, error) {
	env, err := v.preAuthorized(ctx, pathStart, map[string]interface{}{
		"hvacInfo": buildHvacInfo(opts),
		"pin":      v.user.PIN,
	})
	if err != nil {
		return "", err
	}
	if env.StatusCode == http.StatusOK {
		return MsgStartSuccess, nil
	}
	return MsgStartFailed, nil
}

// Stop raises on vendor rejection; see the capability contract for
// the asymmetry.
func (v *Vehicle) Stop(ctx context.Context) (string, error) {
	env, err := v.preAuthorized(ctx, pathStop, map[string]interface{}{"pin": v.user.PIN})
	if err != nil {
		return "", err
	}
	if env.StatusCode != http.StatusOK {
		return "", &protocol.RejectionError{Op: "stop", StatusCode: env.StatusCode, Body: string(env.Body)}
	}
	return MsgStopSuccess, nil
}

// The Canada dialect has no remote charge control.
func (v *Vehicle) StartCharge(context.Context) (string, error) {
	return "", &protocol.NotImplementedError{Op: "startCharge", Region: v.env.Name}
}

func (v *Vehicle) StopCharge(context.Context) (string, error) {
	return "", &protocol.NotImplementedError{Op: "stopCharge", Region: v.env.Name}
}

// preAuthorized verifies the PIN and then sends the command with the
// minted pre-authorization token attached.
func (v *Vehicle) preAuthorized(ctx context.Context, path string, body map[string]interface{}) (*dispatcher.Envelope, error) {
	token, err := v.verifyPin(ctx)
	if err != nil {
		return nil, err
	}
	var encoded []byte
	if body != nil {
		if encoded, err = json.Marshal(body); err != nil {
			return nil, err
		}
	}
	headers := v.defaultHeaders()
	headers[preAuthHeader] = token
	return v.dsp.Dispatch(ctx, dispatcher.Request{
		Method:  http.MethodPost,
		Path:    path,
		Headers: headers,
		Body:    encoded,
	})
}
