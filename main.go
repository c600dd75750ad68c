// Package main is the entry point for sensorctl, a terminal client for the
// sensor data API.
package main

import (
	"sensorctl/cli/cmd"
)

func main() {
	cmd.Execute()
}
