// Package catalog keeps the protocol and firmware descriptions that
// commands are validated against before routing.
//
// Firmware versions are semantic versions; a protocol may constrain the
// versions it accepts:
//
//	cat := catalog.New()
//	cat.RegisterProtocol(catalog.ProtocolDescription{
//	    ID: mavlink, Name: "mavlink", Firmware: ">= 1.4, < 2",
//	})
//	cat.RegisterFirmware(catalog.FirmwareDescription{
//	    ID: fw, Protocol: mavlink, Version: "1.5.2",
//	})
//	err := cat.CheckFirmware(fw) // nil, or FIRMWARE_INCOMPATIBLE
//
// All failures are *wire.Error values from the error taxonomy.
package catalog
