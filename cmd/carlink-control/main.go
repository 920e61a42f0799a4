// carlink-control sends commands to a telematics-enabled vehicle from
// the command line. It expects an account file describing the
// registered vehicles and an access token in CARLINK_ACCESS_TOKEN;
// obtaining the token is up to the user's auth flow.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
