package deck

import "strings"

// OperationStatus identifies what a nest is currently doing. Idle is both the
// initial and the terminal state of every operation cycle.
type OperationStatus string

const (
	StatusIdle       OperationStatus = "idle"
	StatusAspirating OperationStatus = "aspirating"
	StatusDispensing OperationStatus = "dispensing"
	StatusMixing     OperationStatus = "mixing"
	StatusWashing    OperationStatus = "washing"
	StatusMoving     OperationStatus = "moving"
	StatusPicking    OperationStatus = "picking"
	StatusPlacing    OperationStatus = "placing"
	StatusPumping    OperationStatus = "pumping"
	StatusError      OperationStatus = "error"
)

// LabwareType identifies the kind of consumable sitting at a nest.
type LabwareType string

const (
	LabwareMicroplate96  LabwareType = "microplate_96"
	LabwareMicroplate384 LabwareType = "microplate_384"
	LabwareDeepwell96    LabwareType = "deepwell_96"
	LabwareReservoir     LabwareType = "reservoir"
	LabwareTipRack       LabwareType = "tip_rack"
	LabwareEmpty         LabwareType = "empty"
	LabwareUnknown       LabwareType = "unknown"
)

var operationStatuses = map[string]OperationStatus{
	string(StatusIdle):       StatusIdle,
	string(StatusAspirating): StatusAspirating,
	string(StatusDispensing): StatusDispensing,
	string(StatusMixing):     StatusMixing,
	string(StatusWashing):    StatusWashing,
	string(StatusMoving):     StatusMoving,
	string(StatusPicking):    StatusPicking,
	string(StatusPlacing):    StatusPlacing,
	string(StatusPumping):    StatusPumping,
	string(StatusError):      StatusError,
}

var labwareTypes = map[string]LabwareType{
	string(LabwareMicroplate96):  LabwareMicroplate96,
	string(LabwareMicroplate384): LabwareMicroplate384,
	string(LabwareDeepwell96):    LabwareDeepwell96,
	string(LabwareReservoir):     LabwareReservoir,
	string(LabwareTipRack):       LabwareTipRack,
	string(LabwareEmpty):         LabwareEmpty,
	string(LabwareUnknown):       LabwareUnknown,
}

// ParseOperationStatus resolves a free-text operation label case-insensitively.
// Unrecognized labels are rejected; the caller decides whether that is fatal.
func ParseOperationStatus(label string) (OperationStatus, bool) {
	status, ok := operationStatuses[strings.ToLower(strings.TrimSpace(label))]
	return status, ok
}

// ParseLabwareType resolves a free-text labware label case-insensitively.
// Unrecognized labels degrade to LabwareUnknown with ok=false so callers can log
// the downgrade without treating it as an error.
func ParseLabwareType(label string) (LabwareType, bool) {
	lt, ok := labwareTypes[strings.ToLower(strings.TrimSpace(label))]
	if !ok {
		return LabwareUnknown, false
	}
	return lt, true
}
