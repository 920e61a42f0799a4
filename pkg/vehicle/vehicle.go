// Package vehicle defines the capability contract implemented by
// every region adapter, together with the canonical, vendor-neutral
// telemetry model. Region packages translate these operations into
// their cloud's wire dialect; callers program against this package
// only.
package vehicle

import (
	"context"
	"encoding/json"
)

// Config identifies one registered vehicle. Populated once when the
// vehicle is registered with the account and read-only afterwards.
type Config struct {
	RegistrationID string
	VIN            string
	Generation     string
	BrandIndicator string
	// VehicleID is the vendor-side identifier, distinct from the VIN.
	VehicleID string
}

// Vehicle is the uniform operation set offered by every region
// adapter. An adapter that cannot support an operation returns
// *protocol.NotImplementedError without performing any network I/O;
// silent no-ops are forbidden.
//
// Result reporting is deliberately asymmetric to stay compatible with
// the vendor apps: Lock, Unlock, Start, StartCharge and StopCharge
// report vendor rejection through a literal failure string with a nil
// error, while Stop reports it through a *protocol.RejectionError.
// Transport failures always surface as errors.
type Vehicle interface {
	VIN() string

	// Status returns the vehicle's telemetry. StatusOptions select a
	// live vehicle poll versus vendor-cached data, and the canonical
	// model versus the vendor's raw payload.
	Status(ctx context.Context, opts StatusOptions) (*StatusResult, error)

	// FullStatus returns the vendor's extended status document on
	// dialects that have one.
	FullStatus(ctx context.Context, opts StatusOptions) (json.RawMessage, error)

	Location(ctx context.Context) (*Location, error)
	Odometer(ctx context.Context) (*Odometer, error)

	Start(ctx context.Context, opts StartOptions) (string, error)
	Stop(ctx context.Context) (string, error)
	Lock(ctx context.Context) (string, error)
	Unlock(ctx context.Context) (string, error)
	StartCharge(ctx context.Context) (string, error)
	StopCharge(ctx context.Context) (string, error)
}

// StatusOptions control a single Status or FullStatus call. The
// normalized-versus-raw decision is made per call by the caller, not
// negotiated by vehicle capability.
type StatusOptions struct {
	// Refresh asks the vendor to poll the vehicle instead of serving
	// its cached telemetry. Polling is slow and wakes vehicle hardware.
	Refresh bool

	// Parsed selects the canonical model. When false the vendor
	// payload is passed through verbatim.
	Parsed bool
}

// StatusResult carries one status read. Raw always holds the vendor
// subtree as received; Parsed is populated only when
// StatusOptions.Parsed was set.
type StatusResult struct {
	Parsed *Status
	Raw    json.RawMessage
}
