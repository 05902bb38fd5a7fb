package deck

import "time"

// NestView is a deep copy of one nest's full state.
type NestView struct {
	NestID           int             `json:"nest_id"`
	LabwareType      LabwareType     `json:"labware_type"`
	LabwareName      string          `json:"labware_name,omitempty"`
	Volume           VolumeInfo      `json:"volume_info"`
	Tips             TipInfo         `json:"tip_info"`
	OperationStatus  OperationStatus `json:"operation_status"`
	OperationDetails map[string]any  `json:"operation_details"`
	StartTime        *time.Time      `json:"start_time,omitempty"`
	Progress         float64         `json:"progress"`
	CustomProperties map[string]any  `json:"custom_properties,omitempty"`
	LastAccessed     *time.Time      `json:"last_accessed,omitempty"`
}

// NestSummary is the condensed per-nest line used in deck summaries.
type NestSummary struct {
	NestID          int             `json:"nest_id"`
	LabwareType     LabwareType     `json:"labware_type"`
	LabwareName     string          `json:"labware_name,omitempty"`
	OperationStatus OperationStatus `json:"operation_status"`
	CurrentVolume   float64         `json:"current_volume"`
	TipsLoaded      bool            `json:"tips_loaded"`
	LastAccessed    *time.Time      `json:"last_accessed"`
}

// ActiveOperation describes one in-flight operation.
type ActiveOperation struct {
	NestID    int             `json:"nest_id"`
	Operation OperationStatus `json:"operation"`
	Details   map[string]any  `json:"details"`
	Progress  float64         `json:"progress"`
	StartTime *time.Time      `json:"start_time"`
}

// LabwareNest describes one occupied nest.
type LabwareNest struct {
	NestID      int         `json:"nest_id"`
	LabwareType LabwareType `json:"labware_type"`
	LabwareName string      `json:"labware_name,omitempty"`
}

// DeckInfo carries the deck-wide counters.
type DeckInfo struct {
	NumNests             int       `json:"num_nests"`
	InitializationTime   time.Time `json:"initialization_time"`
	GlobalOperationCount int       `json:"global_operation_count"`
	ErrorCount           int       `json:"error_count"`
	LastError            string    `json:"last_error,omitempty"`
}

// DeckSummary is the aggregate snapshot handed to display collaborators.
type DeckSummary struct {
	DeckInfo         DeckInfo            `json:"deck_info"`
	ActiveOperations int                 `json:"active_operations"`
	NestsWithLabware int                 `json:"nests_with_labware"`
	NestsWithTips    int                 `json:"nests_with_tips"`
	Nests            map[int]NestSummary `json:"nests"`
}

// ExportedState wraps a summary for serialization by persistence collaborators.
// Building it has no side effects; writing it anywhere is the caller's concern.
type ExportedState struct {
	DeckState DeckSummary `json:"deck_state"`
	Timestamp time.Time   `json:"timestamp"`
	Version   string      `json:"version"`
}

// ExportVersion tags exported snapshots.
const ExportVersion = "1.0"
