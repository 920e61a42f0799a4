package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validAccount = `
region: us
username: driver@example.com
pin: "1234"
vehicles:
  - vin: KMHL14JA5MA123456
    registration_id: reg-1
    generation: "2"
    brand_indicator: H
    vehicle_id: veh-1
  - vin: KMHL14JA5MA654321
    registration_id: reg-2
    generation: "2"
    brand_indicator: K
`

func writeAccount(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "account.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadValidAccount(t *testing.T) {
	account, err := Load(writeAccount(t, validAccount))
	require.NoError(t, err)
	assert.Equal(t, "us", account.Region)
	assert.Equal(t, "driver@example.com", account.User().Username)
	assert.Equal(t, "1234", account.User().PIN)
	require.Len(t, account.Vehicles, 2)

	entry, err := account.Vehicle("KMHL14JA5MA654321")
	require.NoError(t, err)
	assert.Equal(t, "reg-2", entry.RegistrationID)
	assert.Equal(t, "K", entry.Config().BrandIndicator)
}

func TestVehicleSelection(t *testing.T) {
	account, err := Load(writeAccount(t, validAccount))
	require.NoError(t, err)

	_, err = account.Vehicle("")
	assert.Error(t, err, "ambiguous selection must be rejected")

	_, err = account.Vehicle("KMHL14JA5MA000000")
	assert.Error(t, err)
}

func TestLoadRejectsBadVIN(t *testing.T) {
	bad := `
region: us
username: driver@example.com
pin: "1234"
vehicles:
  - vin: TOOSHORT
    registration_id: reg-1
    generation: "2"
    brand_indicator: H
`
	_, err := Load(writeAccount(t, bad))
	assert.Error(t, err)
}

func TestLoadRejectsUnknownRegion(t *testing.T) {
	bad := `
region: mars
username: driver@example.com
pin: "1234"
vehicles:
  - vin: KMHL14JA5MA123456
    registration_id: reg-1
    generation: "2"
    brand_indicator: H
`
	_, err := Load(writeAccount(t, bad))
	assert.Error(t, err)
}
