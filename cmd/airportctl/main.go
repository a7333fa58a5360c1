// Command airportctl loads a scenario and runs AI scripts against its
// airports.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
