package model

import "time"

// LabwareEntry describes one labware definition in the catalog. The fields
// mirror the vendor's shared labware database; only the subset the deck and
// the gripper planner actually consume is kept.
type LabwareEntry struct {
	Name                   string `gorm:"primaryKey;size:128" json:"name"`
	Description            string `gorm:"size:256" json:"description"`
	ManufacturerPartNumber string `gorm:"size:128" json:"manufacturer_part_number"`

	// 1=plate, 6=tip box, 7=lid
	BaseClass     int `gorm:"not null;default:1" json:"base_class"`
	NumberOfWells int `gorm:"not null;default:96" json:"number_of_wells"`

	// Tip handling
	TipCapacity         float64 `json:"tip_capacity"`
	DisposableTipLength float64 `json:"disposable_tip_length"`
	ZTipAttachOffset    float64 `json:"z_tip_attach_offset"`

	// Robot handling
	RobotGripperOffset float64 `json:"robot_gripper_offset"`
	RobotHandlingSpeed int     `json:"robot_handling_speed"`
	CanHaveLid         bool    `json:"can_have_lid"`
	CanBeSealed        bool    `json:"can_be_sealed"`
	UseVacuumClamp     bool    `json:"use_vacuum_clamp"`

	// Physical dimensions
	Thickness         float64 `json:"thickness"`
	StackingThickness float64 `json:"stacking_thickness"`
	WellDepth         float64 `json:"well_depth"`
	WellDiameter      float64 `json:"well_diameter"`
	WellTipVolume     float64 `json:"well_tip_volume"`
	XWellToWell       float64 `gorm:"default:9" json:"x_well_to_well"`
	YWellToWell       float64 `gorm:"default:9" json:"y_well_to_well"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Labware base classes as stored by the vendor database.
const (
	BaseClassPlate  = 1
	BaseClassTipBox = 6
	BaseClassLid    = 7
)
