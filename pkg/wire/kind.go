package wire

import "fmt"

// Kind identifies an error condition reported by the messaging core.
// Codes are stable on the wire; new kinds are appended before kindCount.
type Kind uint8

const (
	// Connectivity.
	KindCoreDisconnected Kind = iota
	KindCantCancel
	KindCanceled

	// Command outcome.
	KindCmdUnknownTrait
	KindCmdUnknown
	KindCmdIncorrect
	KindCmdFailed
	KindCmdOtherOngoing

	// Group membership.
	KindGroupUnknown
	KindGroupWithoutLeader
	KindGroupLeaderUnknown
	KindGroupNotSet
	KindGroupUnreachable

	// Channels.
	KindChannelUnknown
	KindChannelClosed
	KindChannelError
	KindChannelCantShare

	// Registration.
	KindDeviceUnregistered
	KindDeviceUnknown
	KindDeviceUiUnknown
	KindDeviceInactive
	KindNoChannelAvailable
	KindTimeout
	KindCantRegister
	KindCantUpdate
	KindCantUnRegister
	KindCantJoin
	KindCantBeNull
	KindNotFound
	KindCantGet
	KindInconsistentData
	KindNotImplemented

	// Domain lookups.
	KindProtocolUnknown
	KindProtocolsShouldBeSame
	KindRadarUnknown
	KindFirmwareUnknown
	KindFirmwareIncompatible
	KindFirmwareChanged
	KindCantOpen
	KindUnknownError
	KindTmSessionUnknown
	KindRouteUnknown
	KindRouteBusy
	KindFileBusy
	KindNotAFile

	kindCount
)

type kindInfo struct {
	name        string
	description string
}

// kindTable is indexed by Kind. A missing entry leaves an empty name,
// which verifyKinds rejects at startup.
var kindTable = [kindCount]kindInfo{
	KindCoreDisconnected:      {"CORE_DISCONNECTED", "no connection to core"},
	KindCantCancel:            {"CANT_CANCEL", "cancellation impossible"},
	KindCanceled:              {"CANCELED", "canceled"},
	KindCmdUnknownTrait:       {"CMD_UNKNOWN_TRAIT", "unknown component"},
	KindCmdUnknown:            {"CMD_UNKNOWN", "unknown command"},
	KindCmdIncorrect:          {"CMD_INCORRECT", "incorrect command"},
	KindCmdFailed:             {"CMD_FAILED", "execution failed"},
	KindCmdOtherOngoing:       {"CMD_OTHER_ONGOING", "another command is executing"},
	KindGroupUnknown:          {"GROUP_UNKNOWN", "group unknown"},
	KindGroupWithoutLeader:    {"GROUP_WITHOUT_LEADER", "group has no leader"},
	KindGroupLeaderUnknown:    {"GROUP_LEADER_UNKNOWN", "group leader unknown"},
	KindGroupNotSet:           {"GROUP_NOT_SET", "group not set"},
	KindGroupUnreachable:      {"GROUP_UNREACHABLE", "group unreachable"},
	KindChannelUnknown:        {"CHANNEL_UNKNOWN", "unknown channel"},
	KindChannelClosed:         {"CHANNEL_CLOSED", "channel closed"},
	KindChannelError:          {"CHANNEL_ERROR", "channel error"},
	KindChannelCantShare:      {"CHANNEL_CANT_SHARE", "channel cannot be shared between devices"},
	KindDeviceUnregistered:    {"DEVICE_UNREGISTERED", "device unregistered"},
	KindDeviceUnknown:         {"DEVICE_UNKNOWN", "unknown device"},
	KindDeviceUiUnknown:       {"DEVICE_UI_UNKNOWN", "unknown device interface"},
	KindDeviceInactive:        {"DEVICE_INACTIVE", "device inactive"},
	KindNoChannelAvailable:    {"NO_CHANNEL_AVAILABLE", "no channels available"},
	KindTimeout:               {"TIMEOUT", "timeout"},
	KindCantRegister:          {"CANT_REGISTER", "registration failed"},
	KindCantUpdate:            {"CANT_UPDATE", "update failed"},
	KindCantUnRegister:        {"CANT_UNREGISTER", "removal failed"},
	KindCantJoin:              {"CANT_JOIN", "objects could not be linked"},
	KindCantBeNull:            {"CANT_BE_NULL", "must not be empty"},
	KindNotFound:              {"NOT_FOUND", "not found"},
	KindCantGet:               {"CANT_GET", "data could not be retrieved"},
	KindInconsistentData:      {"INCONSISTENT_DATA", "inconsistent data"},
	KindNotImplemented:        {"NOT_IMPLEMENTED", "not implemented"},
	KindProtocolUnknown:       {"PROTOCOL_UNKNOWN", "unknown protocol"},
	KindProtocolsShouldBeSame: {"PROTOCOLS_SHOULD_BE_SAME", "protocols must match"},
	KindRadarUnknown:          {"RADAR_UNKNOWN", "unknown radar"},
	KindFirmwareUnknown:       {"FIRMWARE_UNKNOWN", "unknown firmware"},
	KindFirmwareIncompatible:  {"FIRMWARE_INCOMPATIBLE", "incompatible firmware"},
	KindFirmwareChanged:       {"FIRMWARE_CHANGED", "firmware changed"},
	KindCantOpen:              {"CANT_OPEN", "could not open"},
	KindUnknownError:          {"UNKNOWN_ERROR", "unknown error"},
	KindTmSessionUnknown:      {"TM_SESSION_UNKNOWN", "unknown telemetry session"},
	KindRouteUnknown:          {"ROUTE_UNKNOWN", "unknown route"},
	KindRouteBusy:             {"ROUTE_BUSY", "another route operation in progress"},
	KindFileBusy:              {"FILE_BUSY", "file busy"},
	KindNotAFile:              {"NOT_A_FILE", "not a file"},
}

func init() {
	if err := verifyKinds(); err != nil {
		panic(err)
	}
}

// verifyKinds checks that every kind has a unique, non-empty name.
func verifyKinds() error {
	seen := make(map[string]Kind, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		info := kindTable[k]
		if info.name == "" || info.description == "" {
			return fmt.Errorf("wire: error kind %d has no rendering", k)
		}
		if prev, dup := seen[info.name]; dup {
			return fmt.Errorf("wire: error kinds %d and %d share name %q", prev, k, info.name)
		}
		seen[info.name] = k
	}
	return nil
}

// String returns the kind name.
func (k Kind) String() string {
	if !k.IsValid() {
		return "UNKNOWN"
	}
	return kindTable[k].name
}

// Description returns a human-readable description of the kind.
func (k Kind) Description() string {
	if !k.IsValid() {
		return "error"
	}
	return kindTable[k].description
}

// IsValid returns true if the kind is one of the enumerated values.
func (k Kind) IsValid() bool {
	return k < kindCount
}

// Kinds returns all enumerated kinds in code order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// ParseKind returns the kind with the given name.
func ParseKind(name string) (Kind, bool) {
	for k := Kind(0); k < kindCount; k++ {
		if kindTable[k].name == name {
			return k, true
		}
	}
	return 0, false
}
