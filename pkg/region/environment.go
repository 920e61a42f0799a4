// Package region holds the static per-region endpoint configuration
// and the status normalizer shared by the dialect adapters. Both
// regional clouds front the same vendor telemetry schema, so the
// normalizer lives here rather than in each adapter.
package region

// Environment is the static configuration of one regional cloud.
// Created once and read-only afterwards.
type Environment struct {
	Name     string
	BaseURL  string
	ClientID string
	Host     string
}

// Production environments. The client ids are app-level constants
// baked into the vendor's mobile applications, not per-user secrets.
var (
	USProduction = Environment{
		Name:     "us",
		BaseURL:  "https://api.telematics.hyundaiusa.com",
		ClientID: "m66129Bb-em93-SPAHYN-bZ91-am4540zp19920",
		Host:     "api.telematics.hyundaiusa.com",
	}

	CAProduction = Environment{
		Name:     "ca",
		BaseURL:  "https://mybluelink.ca",
		ClientID: "HATAHSPACA0232141ED9722C67715A0B",
		Host:     "mybluelink.ca",
	}
)
