package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/carlink-community/carlink/internal/log"
	"github.com/carlink-community/carlink/pkg/config"
	"github.com/carlink-community/carlink/pkg/region/ca"
	"github.com/carlink-community/carlink/pkg/region/us"
	"github.com/carlink-community/carlink/pkg/session"
	"github.com/carlink-community/carlink/pkg/vehicle"
)

const tokenEnvVar = "CARLINK_ACCESS_TOKEN"

var (
	configPath string
	vinFlag    string
	logLevel   string

	startClimate  bool
	startDefrost  bool
	startHeating  bool
	statusRefresh bool
	statusRaw     bool
)

var rootCmd = &cobra.Command{
	Use:   "carlink-control",
	Short: "Query and command telematics-enabled vehicles",
	Long: `carlink-control talks to the regional vendor clouds on behalf of the
vehicles registered in an account file. The access token is read from
the ` + tokenEnvVar + ` environment variable; the login flow that
produces it is not part of this tool.`,
	SilenceUsage: true,
	PersistentPreRunE: func(*cobra.Command, []string) error {
		level, err := log.LevelFromName(logLevel)
		if err != nil {
			return err
		}
		log.SetLevel(level)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "account.yaml", "path of the account file")
	rootCmd.PersistentFlags().StringVar(&vinFlag, "vin", "", "VIN of the vehicle to address")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warning or error")

	statusCmd.Flags().BoolVar(&statusRefresh, "refresh", false, "poll the vehicle instead of using vendor-cached telemetry")
	statusCmd.Flags().BoolVar(&statusRaw, "raw", false, "print the vendor payload instead of the canonical model")

	startCmd.Flags().BoolVar(&startClimate, "climate", false, "turn on climate control")
	startCmd.Flags().BoolVar(&startDefrost, "defrost", false, "turn on windshield defrost")
	startCmd.Flags().BoolVar(&startHeating, "heating", false, "turn on element heating")

	rootCmd.AddCommand(statusCmd, locationCmd, odometerCmd, lockCmd, unlockCmd,
		startCmd, stopCmd, startChargeCmd, stopChargeCmd)
}

// selectVehicle builds the region adapter for the addressed vehicle.
// The region is resolved once here, not per call.
func selectVehicle() (vehicle.Vehicle, error) {
	token := os.Getenv(tokenEnvVar)
	if token == "" {
		return nil, fmt.Errorf("%s is not set", tokenEnvVar)
	}
	account, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	entry, err := account.Vehicle(vinFlag)
	if err != nil {
		return nil, err
	}
	provider := session.Static{Token: token}
	switch account.Region {
	case "us":
		return us.New(entry.Config(), account.User(), provider), nil
	case "ca":
		return ca.New(entry.Config(), account.User(), provider), nil
	}
	return nil, fmt.Errorf("unsupported region %q", account.Region)
}

func run(action func(context.Context, vehicle.Vehicle) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		car, err := selectVehicle()
		if err != nil {
			return err
		}
		return action(cmd.Context(), car)
	}
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Fetch vehicle status",
	RunE: run(func(ctx context.Context, car vehicle.Vehicle) error {
		result, err := car.Status(ctx, vehicle.StatusOptions{Refresh: statusRefresh, Parsed: !statusRaw})
		if err != nil {
			return err
		}
		if statusRaw {
			return printJSON(json.RawMessage(result.Raw))
		}
		return printJSON(result.Parsed)
	}),
}

var locationCmd = &cobra.Command{
	Use:   "location",
	Short: "Fetch the vehicle's position",
	RunE: run(func(ctx context.Context, car vehicle.Vehicle) error {
		loc, err := car.Location(ctx)
		if err != nil {
			return err
		}
		return printJSON(loc)
	}),
}

var odometerCmd = &cobra.Command{
	Use:   "odometer",
	Short: "Fetch the odometer reading",
	RunE: run(func(ctx context.Context, car vehicle.Vehicle) error {
		odo, err := car.Odometer(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%.1f %s\n", odo.Value, odo.Unit)
		return nil
	}),
}

var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Lock the doors",
	RunE: run(func(ctx context.Context, car vehicle.Vehicle) error {
		return printResult(car.Lock(ctx))
	}),
}

var unlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Unlock the doors",
	RunE: run(func(ctx context.Context, car vehicle.Vehicle) error {
		return printResult(car.Unlock(ctx))
	}),
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the engine remotely",
	RunE: run(func(ctx context.Context, car vehicle.Vehicle) error {
		msg, err := car.Start(ctx, vehicle.StartOptions{
			Climate: startClimate,
			Defrost: startDefrost,
			Heating: startHeating,
		})
		return printResult(msg, err)
	}),
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop a remotely started engine",
	RunE: run(func(ctx context.Context, car vehicle.Vehicle) error {
		return printResult(car.Stop(ctx))
	}),
}

var startChargeCmd = &cobra.Command{
	Use:   "start-charge",
	Short: "Start charging",
	RunE: run(func(ctx context.Context, car vehicle.Vehicle) error {
		return printResult(car.StartCharge(ctx))
	}),
}

var stopChargeCmd = &cobra.Command{
	Use:   "stop-charge",
	Short: "Stop charging",
	RunE: run(func(ctx context.Context, car vehicle.Vehicle) error {
		return printResult(car.StopCharge(ctx))
	}),
}

func printResult(msg string, err error) error {
	if err != nil {
		return err
	}
	fmt.Println(msg)
	return nil
}
