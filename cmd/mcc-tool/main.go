// Command mcc-tool inspects the station's messaging core artifacts.
//
// Usage:
//
//	mcc-tool <command> [flags]
//
// Commands:
//
//	log view     View an event log in human-readable format
//	log export   Export an event log to JSONL or CSV
//	log filter   Filter an event log into a new file
//	log stats    Show statistics about an event log
//	names        Encode and decode session, device and channel names
//	errors       List the error taxonomy
//	catalog      List and check the configured protocol catalog
//
// Examples:
//
//	# View failed commands of one request
//	mcc-tool log view --category error --request 42 events.cbor
//
//	# Generate a session name
//	mcc-tool names encode session --info flight-7
//
//	# Check configured firmware against protocol constraints
//	mcc-tool --config station.yaml catalog check
package main

import (
	"os"

	"github.com/mcc-station/mcc-go/cmd/mcc-tool/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
