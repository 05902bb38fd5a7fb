package store

import "bravo-deck-backend/internal/model"

// DefaultTemplates returns the canned labware definitions seeded into an
// empty catalog: the standard plates, a deepwell block, a reservoir, and a
// tip box. Geometry values follow ANSI/SLAS plate dimensions.
func DefaultTemplates() []model.LabwareEntry {
	return []model.LabwareEntry{
		{
			Name:          "96 Well Microplate",
			Description:   "Standard 96-well flat bottom microplate",
			BaseClass:     model.BaseClassPlate,
			NumberOfWells: 96,
			Thickness:     14.4,
			WellDepth:     10.9,
			WellDiameter:  6.96,
			WellTipVolume: 360,
			XWellToWell:   9,
			YWellToWell:   9,
			CanHaveLid:    true,
			CanBeSealed:   true,
		},
		{
			Name:          "384 Well Microplate",
			Description:   "Standard 384-well microplate",
			BaseClass:     model.BaseClassPlate,
			NumberOfWells: 384,
			Thickness:     14.4,
			WellDepth:     11.5,
			WellDiameter:  3.7,
			WellTipVolume: 112,
			XWellToWell:   4.5,
			YWellToWell:   4.5,
			CanHaveLid:    true,
			CanBeSealed:   true,
		},
		{
			Name:          "96 Deep Well Plate",
			Description:   "96-well deep well block, 2 mL",
			BaseClass:     model.BaseClassPlate,
			NumberOfWells: 96,
			Thickness:     44,
			WellDepth:     41.3,
			WellDiameter:  8.2,
			WellTipVolume: 2000,
			XWellToWell:   9,
			YWellToWell:   9,
			CanBeSealed:   true,
		},
		{
			Name:          "Single Well Reservoir",
			Description:   "One-compartment reagent reservoir, 290 mL",
			BaseClass:     model.BaseClassPlate,
			NumberOfWells: 1,
			Thickness:     44,
			WellDepth:     39,
			WellTipVolume: 290000,
		},
		{
			Name:                "96 Tip Box 200uL",
			Description:         "96-position disposable tip box, 200 uL tips",
			BaseClass:           model.BaseClassTipBox,
			NumberOfWells:       96,
			TipCapacity:         200,
			DisposableTipLength: 38.2,
			ZTipAttachOffset:    -1,
			Thickness:           50,
			XWellToWell:         9,
			YWellToWell:         9,
		},
	}
}
