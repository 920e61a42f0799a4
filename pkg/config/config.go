// Package config loads the account file consumed by the command-line
// tool. The library itself never reads files; callers embedding the
// library construct vehicle.Config and session.UserConfig however
// they like.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/carlink-community/carlink/pkg/session"
	"github.com/carlink-community/carlink/pkg/vehicle"
)

// Account is the on-disk account description.
type Account struct {
	Region   string    `yaml:"region" validate:"required,oneof=us ca"`
	Username string    `yaml:"username" validate:"required,email"`
	PIN      string    `yaml:"pin" validate:"required,numeric"`
	Vehicles []Vehicle `yaml:"vehicles" validate:"required,min=1,dive"`
}

// Vehicle is one registered vehicle in the account file.
type Vehicle struct {
	VIN            string `yaml:"vin" validate:"required,len=17"`
	RegistrationID string `yaml:"registration_id" validate:"required"`
	Generation     string `yaml:"generation" validate:"required"`
	BrandIndicator string `yaml:"brand_indicator" validate:"required,oneof=H K"`
	VehicleID      string `yaml:"vehicle_id"`
}

// Load reads and validates an account file.
func Load(path string) (*Account, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading account file: %w", err)
	}
	var account Account
	if err := yaml.Unmarshal(data, &account); err != nil {
		return nil, fmt.Errorf("parsing account file %s: %w", path, err)
	}
	if err := validator.New().Struct(&account); err != nil {
		return nil, fmt.Errorf("validating account file %s: %w", path, err)
	}
	return &account, nil
}

// User returns the account identity for request headers.
func (a *Account) User() session.UserConfig {
	return session.UserConfig{Username: a.Username, PIN: a.PIN}
}

// Vehicle finds the entry with the given VIN; with an empty VIN and
// exactly one registered vehicle, that vehicle is returned.
func (a *Account) Vehicle(vin string) (*Vehicle, error) {
	if vin == "" {
		if len(a.Vehicles) == 1 {
			return &a.Vehicles[0], nil
		}
		return nil, fmt.Errorf("account has %d vehicles; select one with --vin", len(a.Vehicles))
	}
	for i := range a.Vehicles {
		if a.Vehicles[i].VIN == vin {
			return &a.Vehicles[i], nil
		}
	}
	return nil, fmt.Errorf("vin %s is not registered in the account file", vin)
}

// Config converts the file entry to the library's vehicle identity.
func (v *Vehicle) Config() vehicle.Config {
	return vehicle.Config{
		RegistrationID: v.RegistrationID,
		VIN:            v.VIN,
		Generation:     v.Generation,
		BrandIndicator: v.BrandIndicator,
		VehicleID:      v.VehicleID,
	}
}
