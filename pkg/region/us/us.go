// Package us implements the capability contract against the North
// America cloud dialect: header-heavy requests, form-encoded door
// commands and an enrollment document standing in for an odometer
// endpoint.
package us

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/carlink-community/carlink/internal/dispatcher"
	"github.com/carlink-community/carlink/pkg/protocol"
	"github.com/carlink-community/carlink/pkg/region"
	"github.com/carlink-community/carlink/pkg/session"
	"github.com/carlink-community/carlink/pkg/vehicle"
)

// Fixed path table for the dialect.
const (
	pathStatus      = "/ac/v2/rcs/rvs/vehicleStatus"
	pathLocation    = "/ac/v2/rcs/rfc/findMyCar"
	pathLock        = "/ac/v2/rcs/rdo/off"
	pathUnlock      = "/ac/v2/rcs/rdo/on"
	pathStart       = "/ac/v2/rcs/rsc/start"
	pathStop        = "/ac/v2/rcs/rsc/stop"
	pathStartCharge = "/ac/v2/evc/charge"
	pathStopCharge  = "/ac/v2/evc/cancel"
	pathEnrollment  = "/ac/v2/enrollment/details/"
)

const userAgent = "okhttp/3.12.0"

// The cloud rejects requests whose UTC offset header it dislikes. The
// mobile app sends -5 everywhere except remote start, which sends -4;
// preserved verbatim as a vendor quirk.
const (
	defaultOffset = "-5"
	startOffset   = "-4"
)

// Vehicle is the North America adapter. Construct one per registered
// vehicle; the region is fixed at registration time and never
// re-resolved per call.
type Vehicle struct {
	config vehicle.Config
	user   session.UserConfig
	env    region.Environment
	dsp    *dispatcher.Dispatcher

	// Last successful reads, overwritten wholesale on each call.
	// Deliberately unsynchronized: under concurrent writers the last
	// write wins and no consistent-snapshot guarantee is made.
	LastStatus   *vehicle.Status
	LastOdometer *vehicle.Odometer
}

var _ vehicle.Vehicle = (*Vehicle)(nil)

func New(config vehicle.Config, user session.UserConfig, provider session.Provider) *Vehicle {
	return NewWithEnvironment(region.USProduction, config, user, provider)
}

// NewWithEnvironment is for staging endpoints and tests.
func NewWithEnvironment(env region.Environment, config vehicle.Config, user session.UserConfig, provider session.Provider) *Vehicle {
	return &Vehicle{
		config: config,
		user:   user,
		env:    env,
		dsp: &dispatcher.Dispatcher{
			Env:        env,
			Provider:   provider,
			AuthHeader: "access_token",
		},
	}
}

func (v *Vehicle) VIN() string { return v.config.VIN }

// defaultHeaders reproduces the dialect's required header set
// verbatim; the cloud rejects requests missing any of them. The
// access token is stamped by the dispatcher.
func (v *Vehicle) defaultHeaders() map[string]string {
	return map[string]string{
		"client_id":          v.env.ClientID,
		"Host":               v.env.Host,
		"User-Agent":         userAgent,
		"registrationId":     v.config.RegistrationID,
		"gen":                v.config.Generation,
		"username":           v.user.Username,
		"vin":                v.config.VIN,
		"APPCLOUD-VIN":       v.config.VIN,
		"Language":           "0",
		"to":                 "ISS",
		"encryptFlag":        "false",
		"from":               "SPA",
		"brandIndicator":     v.config.BrandIndicator,
		"bluelinkservicepin": v.user.PIN,
		"offset":             defaultOffset,
	}
}

func (v *Vehicle) Status(ctx context.Context, opts vehicle.StatusOptions) (*vehicle.StatusResult, error) {
	headers := v.defaultHeaders()
	// REFRESH selects a live vehicle poll over vendor-cached telemetry.
	headers["REFRESH"] = strconv.FormatBool(opts.Refresh)

	env, err := v.dsp.Dispatch(ctx, dispatcher.Request{
		Method:  http.MethodGet,
		Path:    pathStatus,
		Headers: headers,
	})
	if err != nil {
		return nil, err
	}
	if env.StatusCode != http.StatusOK {
		return nil, &protocol.RejectionError{Op: "status", StatusCode: env.StatusCode, Body: string(env.Body)}
	}

	var payload struct {
		VehicleStatus json.RawMessage `json:"vehicleStatus"`
	}
	if err := json.Unmarshal(env.Body, &payload); err != nil {
		return nil, &protocol.DecodeError{Op: "status", Err: err}
	}
	if len(payload.VehicleStatus) == 0 {
		return nil, &protocol.DecodeError{Op: "status", Err: fmt.Errorf("response carries no vehicleStatus subtree")}
	}

	result := &vehicle.StatusResult{Raw: payload.VehicleStatus}
	if opts.Parsed {
		parsed, err := region.NormalizeStatus(payload.VehicleStatus)
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
	env, err := v.dsp.Dispatch(ctx, dispatcher.Request{
		Method:  http.MethodGet,
		Path:    pathLocation,
		Headers: v.defaultHeaders(),
	})
	if err != nil {
		return nil, err
	}
	if env.StatusCode != http.StatusOK {
		return nil, &protocol.RejectionError{Op: "location", StatusCode: env.StatusCode, Body: string(env.Body)}
	}

	var payload struct {
		Coord struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
			Alt float64 `json:"alt"`
		} `json:"coord"`
		Head  float64 `json:"head"`
		Speed *struct {
			Value float64 `json:"value"`
			Unit  int     `json:"unit"`
		} `json:"speed"`
	}
	if err := json.Unmarshal(env.Body, &payload); err != nil {
		return nil, &protocol.DecodeError{Op: "location", Err: err}
	}

	loc := &vehicle.Location{
		Latitude:  payload.Coord.Lat,
		Longitude: payload.Coord.Lon,
		Altitude:  payload.Coord.Alt,
		Heading:   payload.Head,
	}
	if payload.Speed != nil {
		loc.Speed = &vehicle.Speed{Value: payload.Speed.Value, Unit: region.SpeedUnitFromCode(payload.Speed.Unit)}
	}
	return loc, nil
}

// Odometer reads the account's enrollment document and correlates the
// entry whose VIN exactly matches this vehicle's. The document does
// not disclose the odometer unit, hence the unknown-unit sentinel.
func (v *Vehicle) Odometer(ctx context.Context) (*vehicle.Odometer, error) {
	env, err := v.dsp.Dispatch(ctx, dispatcher.Request{
		Method:  http.MethodGet,
		Path:    pathEnrollment + v.user.Username,
		Headers: v.defaultHeaders(),
	})
	if err != nil {
		return nil, err
	}
	if env.StatusCode != http.StatusOK {
		return nil, &protocol.RejectionError{Op: "odometer", StatusCode: env.StatusCode, Body: string(env.Body)}
	}

	var payload struct {
		EnrolledVehicleDetails []struct {
			VehicleDetails struct {
				VIN      string `json:"vin"`
				Odometer string `json:"odometer"`
			} `json:"vehicleDetails"`
		} `json:"enrolledVehicleDetails"`
	}
	if err := json.Unmarshal(env.Body, &payload); err != nil {
		return nil, &protocol.DecodeError{Op: "odometer", Err: err}
	}

	for _, entry := range payload.EnrolledVehicleDetails {
		if entry.VehicleDetails.VIN != v.config.VIN {
			continue
		}
		value, err := strconv.ParseFloat(entry.VehicleDetails.Odometer, 64)
		if err != nil {
			return nil, &protocol.DecodeError{Op: "odometer", Err: fmt.Errorf("odometer %q is not numeric: %w", entry.VehicleDetails.Odometer, err)}
		}
		odo := &vehicle.Odometer{Value: value, Unit: vehicle.DistanceUnitUnknown}
		v.LastOdometer = odo
		return odo, nil
	}
	return nil, &protocol.DecodeError{Op: "odometer", Err: fmt.Errorf("vin %s not found among enrolled vehicles", v.config.VIN)}
}
