package vehicle

import "time"

// DefaultIgnitionDuration is how long a remotely started engine stays
// on when the caller does not override it.
const DefaultIgnitionDuration = 10 * time.Minute

// DefaultSetpoint matches the vendor app's default climate target.
func DefaultSetpoint() Temperature {
	return Temperature{Value: 70, Unit: TemperatureUnitFahrenheit}
}

// StartOptions configure a remote engine start. The zero value starts
// the engine with climate control, defrost and element heating off,
// the default setpoint and the default ignition duration.
type StartOptions struct {
	// Climate turns on climate control.
	Climate bool
	// Defrost turns on windshield defrost.
	Defrost bool
	// Heating turns on the heated steering wheel, side mirrors and
	// rear window.
	Heating bool
	// IgnitionDuration is how long the engine stays on; zero selects
	// DefaultIgnitionDuration.
	IgnitionDuration time.Duration
	// Temperature is the climate setpoint; nil selects
	// DefaultSetpoint. A caller-supplied value replaces the default
	// pair wholesale.
	Temperature *Temperature
}

// WithDefaults returns a copy of o with unset fields replaced by the
// documented defaults. Replacement is shallow: each field the caller
// supplied wins in full, everything else comes from the defaults.
func (o StartOptions) WithDefaults() StartOptions {
	if o.IgnitionDuration == 0 {
		o.IgnitionDuration = DefaultIgnitionDuration
	}
	if o.Temperature == nil {
		setpoint := DefaultSetpoint()
		o.Temperature = &setpoint
	}
	return o
}
