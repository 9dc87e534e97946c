package main

import (
	"reef-installer/cmd" // CLI commands and execution logic
)

// main is the program entry point.
// It delegates to cmd.Execute() which parses the command line, runs the
// install pipeline and exits with its status.
//
// reef-installer performs an unattended installation of the Digital Reef
// appliance on a Linux host:
//   - Validates that required tools, the installer binary and the license are present
//   - Stops services that conflict with the bundled ones (httpd, postgresql)
//   - Copies the license file into the installation tree
//   - Removes artifacts of previous installations so reruns start clean
//   - Detects the host IPv4 address and passes it to the installer in silent mode
//   - Reads the hardware host id and prints the connection URL together with a
//     QR code that carries a license request e-mail
//
// Error handling strategy:
//   - Each step either succeeds, warns and lets the run continue, or fails the run
//   - A failing installer makes the process exit with the installer's own exit code
//   - Interrupts cancel the running command and exit with status 130
func main() {
	cmd.Execute()
}
