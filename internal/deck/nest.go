package deck

import (
	"log"
	"time"
)

// VolumeInfo tracks liquid moved through a nest by the pipette head. The
// accumulator follows the pipette, not the well: aspirating raises
// CurrentVolume, dispensing lowers it, and no floor is enforced, so a nest
// that only ever receives liquid reports a negative value.
type VolumeInfo struct {
	CurrentVolume       float64 `json:"current_volume"`
	AspiratedVolume     float64 `json:"aspirated_volume"`
	DispensedVolume     float64 `json:"dispensed_volume"`
	LastOperationVolume float64 `json:"last_operation_volume"`
	TotalAspirated      float64 `json:"total_aspirated"`
	TotalDispensed      float64 `json:"total_dispensed"`
}

func (v *VolumeInfo) reset() {
	*v = VolumeInfo{}
}

// TipInfo tracks the tip-loading status of a nest. TipType is sticky: it
// survives a tips-off so the last known tip kind stays visible until a reset.
type TipInfo struct {
	TipsLoaded       bool    `json:"tips_loaded"`
	TipType          string  `json:"tip_type,omitempty"`
	TipVolume        float64 `json:"tip_volume,omitempty"`
	TipCount         int     `json:"tip_count"`
	LastTipOperation string  `json:"last_tip_operation,omitempty"`
}

func (t *TipInfo) reset() {
	*t = TipInfo{}
}

// OperationInfo tracks the operation currently in flight at a nest.
type OperationInfo struct {
	Status    OperationStatus
	Details   map[string]any
	StartTime time.Time // zero while idle
	Progress  float64   // 0-100
}

func newOperationInfo() OperationInfo {
	return OperationInfo{Status: StatusIdle, Details: make(map[string]any)}
}

func (o *OperationInfo) start(status OperationStatus, details map[string]any) {
	o.Status = status
	o.Details = make(map[string]any, len(details))
	for k, v := range details {
		o.Details[k] = v
	}
	o.StartTime = time.Now()
	o.Progress = 0
}

func (o *OperationInfo) complete() {
	o.Status = StatusIdle
	o.Details = make(map[string]any)
	o.StartTime = time.Time{}
	o.Progress = 100
}

func (o *OperationInfo) updateProgress(progress float64) {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	o.Progress = progress
}

// Nest is one addressable position on the deck. It is created once at
// DeckState construction, never destroyed, and only mutated while the owning
// DeckState holds its lock.
type Nest struct {
	ID               int
	LabwareType      LabwareType
	LabwareName      string
	Volume           VolumeInfo
	Tips             TipInfo
	Operation        OperationInfo
	CustomProperties map[string]any
	LastAccessed     time.Time
}

func newNest(id int) *Nest {
	return &Nest{
		ID:               id,
		LabwareType:      LabwareEmpty,
		Operation:        newOperationInfo(),
		CustomProperties: make(map[string]any),
	}
}

func (n *Nest) setLabware(lt LabwareType, name string) {
	n.LabwareType = lt
	n.LabwareName = name
	n.LastAccessed = time.Now()
	log.Printf("Nest %d: set labware to %s", n.ID, lt)
}

func (n *Nest) startOperation(status OperationStatus, details map[string]any) {
	n.Operation.start(status, details)
	n.LastAccessed = time.Now()
	log.Printf("Nest %d: started %s operation", n.ID, status)
}

func (n *Nest) completeOperation() {
	finished := n.Operation.Status
	n.Operation.complete()
	n.LastAccessed = time.Now()
	log.Printf("Nest %d: completed %s operation", n.ID, finished)
}

func (n *Nest) updateVolume(aspirated, dispensed float64) {
	n.Volume.AspiratedVolume += aspirated
	n.Volume.DispensedVolume += dispensed
	n.Volume.TotalAspirated += aspirated
	n.Volume.TotalDispensed += dispensed
	n.Volume.CurrentVolume += aspirated - dispensed
	n.Volume.LastOperationVolume = max(aspirated, dispensed)
	n.LastAccessed = time.Now()
}

func (n *Nest) updateTips(tipsOn bool, tipType string, tipCount int) {
	n.Tips.TipsLoaded = tipsOn
	if tipType != "" {
		n.Tips.TipType = tipType
	}
	if tipCount > 0 {
		n.Tips.TipCount = tipCount
	}
	if tipsOn {
		n.Tips.LastTipOperation = "tips_on"
	} else {
		n.Tips.LastTipOperation = "tips_off"
	}
	n.LastAccessed = time.Now()
}

func (n *Nest) reset() {
	n.LabwareType = LabwareEmpty
	n.LabwareName = ""
	n.Volume.reset()
	n.Tips.reset()
	n.Operation.complete()
	n.CustomProperties = make(map[string]any)
	n.LastAccessed = time.Now()
}

// view builds a deep copy safe to hand out after the lock is released.
func (n *Nest) view() *NestView {
	details := make(map[string]any, len(n.Operation.Details))
	for k, v := range n.Operation.Details {
		details[k] = v
	}
	props := make(map[string]any, len(n.CustomProperties))
	for k, v := range n.CustomProperties {
		props[k] = v
	}
	return &NestView{
		NestID:           n.ID,
		LabwareType:      n.LabwareType,
		LabwareName:      n.LabwareName,
		Volume:           n.Volume,
		Tips:             n.Tips,
		OperationStatus:  n.Operation.Status,
		OperationDetails: details,
		StartTime:        timePtr(n.Operation.StartTime),
		Progress:         n.Operation.Progress,
		CustomProperties: props,
		LastAccessed:     timePtr(n.LastAccessed),
	}
}

func (n *Nest) summary() NestSummary {
	return NestSummary{
		NestID:          n.ID,
		LabwareType:     n.LabwareType,
		LabwareName:     n.LabwareName,
		OperationStatus: n.Operation.Status,
		CurrentVolume:   n.Volume.CurrentVolume,
		TipsLoaded:      n.Tips.TipsLoaded,
		LastAccessed:    timePtr(n.LastAccessed),
	}
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	c := t
	return &c
}
