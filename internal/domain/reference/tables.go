package reference

// Glasgow Coma Scale bands shared by PRISM-3 and SOFA.
var GCSSevere = Bands{
	{Below, 6, 4},
	{AtMost, 9, 3},
	{AtMost, 12, 2},
	{AtMost, 14, 1},
}

// Platelet bands (x10^3/uL) shared by SOFA and pSOFA.
var PlateletsSOFA = Bands{
	{Below, 20, 4},
	{Below, 50, 3},
	{Below, 100, 2},
	{Below, 150, 1},
}

// ---- PRISM-3 ----

type prismVitals struct {
	sbp Bands
	hr  Bands
}

const prismTachycardia = 205

var prismVitalsByGroup = map[PrismGroup]prismVitals{
	PrismNeonate: {
		sbp: Bands{{Below, 40, 7}, {Below, 55, 3}, {Above, 130, 3}},
		hr:  Bands{{Below, 90, 4}, {Above, prismTachycardia, 4}},
	},
	PrismInfant: {
		sbp: Bands{{Below, 45, 7}, {Below, 65, 3}, {Above, 150, 3}},
		hr:  Bands{{Below, 80, 4}, {Above, prismTachycardia, 4}},
	},
	PrismChild: {
		sbp: Bands{{Below, 55, 7}, {Below, 75, 3}, {Above, 170, 3}},
		hr:  Bands{{Below, 70, 4}, {Above, prismTachycardia, 4}},
	},
	PrismAdolescent: {
		sbp: Bands{{Below, 65, 7}, {Below, 85, 3}, {Above, 190, 3}},
		hr:  Bands{{Below, 55, 4}, {Above, prismTachycardia, 4}},
	},
}

// PrismSystolicBP returns the systolic pressure bands for a PRISM-3 age group.
func PrismSystolicBP(g PrismGroup) Bands { return prismVitalsByGroup[g].sbp }

// PrismHeartRate returns the heart rate bands for a PRISM-3 age group.
func PrismHeartRate(g PrismGroup) Bands { return prismVitalsByGroup[g].hr }

// PrismCreatinine returns creatinine (mg/dL) bands for a PRISM-3 age group.
func PrismCreatinine(g PrismGroup) Bands {
	if g == PrismInfant {
		return Bands{{Above, 0.9, 2}}
	}
	return Bands{{Above, 1.59, 2}}
}

// PRISM-3 fixed bands.
var (
	PrismTemperature = Bands{{Below, 33, 3}, {Above, 40, 3}}
	PrismPH          = Bands{{Below, 7.0, 6}, {Below, 7.28, 2}, {Above, 7.55, 2}}
	PrismTotalCO2    = Bands{{Below, 5, 6}, {Below, 16, 2}, {Above, 34, 2}}
	PrismPaO2        = Bands{{Below, 42, 6}, {Below, 50, 3}}
	PrismPCO2        = Bands{{Above, 75, 3}}
	PrismGlucose     = Bands{{Above, 22.2, 4}, {Below, 2.2, 4}} // mmol/L
	PrismPotassium   = Bands{{Above, 7.8, 3}, {Below, 2.5, 3}}
	PrismUrea        = Bands{{Above, 14.3, 3}} // mmol/L
	PrismWBC         = Bands{{Below, 3, 4}}
	PrismPT          = Bands{{Above, 22, 3}}
	PrismPTT         = Bands{{Above, 57, 3}}
	PrismPlatelets   = Bands{{Below, 50, 4}, {Below, 100, 2}}
)

// ---- PELOD-2 ----

// PELOD-2 fixed bands.
var (
	PelodGCS          = Bands{{Below, 5, 10}, {AtMost, 8, 4}, {AtMost, 11, 1}}
	PelodLactate      = Bands{{AtLeast, 11, 6}, {AtLeast, 5, 4}, {AtLeast, 2, 1}}
	PelodPaO2FiO2     = Bands{{Below, 60, 6}, {Below, 100, 3}, {Below, 200, 1}}
	PelodPaCO2        = Bands{{Above, 90, 3}, {Above, 75, 1}}
	PelodWBC          = Bands{{Below, 2, 3}}
	PelodPlatelets    = Bands{{Below, 50, 3}, {Below, 100, 1}}
	pelodMAPByStage   = [stageCount]float64{46, 55, 60, 62, 65, 67}
	pelodCreatByStage = [stageCount][2]float64{
		{0.8, 1.3},
		{0.3, 0.7},
		{0.4, 1.0},
		{0.6, 1.5},
		{0.8, 2.0},
		{1.2, 3.0},
	}
)

// PelodMAPThreshold is the hypotension cut-off (mmHg) PELOD-2 and SOFA use.
func PelodMAPThreshold(s Stage) float64 { return pelodMAPByStage[s] }

// PelodCreatinine returns creatinine (mg/dL) bands for a stage.
func PelodCreatinine(s Stage) Bands {
	c := pelodCreatByStage[s]
	return Bands{{AtLeast, c[1], 5}, {AtLeast, c[0], 2}}
}

// ---- pSOFA ----

var (
	psofaMAPByStage   = [stageCount]float64{46, 55, 58, 60, 62, 65}
	psofaCreatByStage = [stageCount]float64{1.2, 0.8, 0.8, 0.8, 1.0, 1.2}
)

// pSOFA fixed bands.
var (
	PSofaOxygenation = Bands{{Below, 100, 4}, {Below, 200, 3}, {Below, 300, 2}, {Below, 400, 1}}
	PSofaBilirubin   = Bands{{AtLeast, 12, 4}, {AtLeast, 6, 3}, {AtLeast, 2, 2}, {AtLeast, 1.2, 1}} // mg/dL
	PSofaGCS         = Bands{{Below, 3, 4}, {Below, 6, 3}, {Below, 10, 2}, {Below, 13, 1}}
)

// PSofaMAPThreshold is the pSOFA hypotension cut-off (mmHg).
func PSofaMAPThreshold(s Stage) float64 { return psofaMAPByStage[s] }

// PSofaCreatinine grades creatinine as multiples of the stage reference.
func PSofaCreatinine(s Stage) Bands {
	ref := psofaCreatByStage[s]
	return Bands{
		{AtLeast, ref * 3, 4},
		{AtLeast, ref * 2, 3},
		{AtLeast, ref * 1.5, 2},
		{AtLeast, ref, 1},
	}
}

// ---- SOFA (pediatric adaptation) ----

// SOFA fixed bands.
var (
	SofaOxygenationVentilated = Bands{{Below, 100, 4}, {Below, 200, 3}, {Below, 300, 2}, {Below, 400, 1}}
	// Without ventilatory support the respiratory score is capped at 2.
	SofaOxygenationUnsupported = Bands{{Below, 300, 2}, {Below, 400, 1}}
	SofaBilirubin              = Bands{{AtLeast, 204, 4}, {AtLeast, 102, 3}, {AtLeast, 33, 2}, {AtLeast, 20, 1}} // umol/L
	SofaUrineOutput            = Bands{{Below, 200, 4}, {Below, 500, 3}}                                      // mL/day
	sofaCreatByStage           = [stageCount][4]float64{
		{1.0, 1.2, 2.5, 4.0},
		{0.5, 1.0, 1.7, 2.5},
		{0.6, 1.1, 1.8, 3.0},
		{0.8, 1.2, 2.0, 3.5},
		{1.0, 1.5, 2.2, 4.0},
		{1.2, 2.0, 3.5, 5.0},
	}
)

// SofaCreatinine returns creatinine (mg/dL) bands for a stage.
func SofaCreatinine(s Stage) Bands {
	c := sofaCreatByStage[s]
	return Bands{{AtLeast, c[3], 4}, {AtLeast, c[2], 3}, {AtLeast, c[1], 2}, {AtLeast, c[0], 1}}
}

// ---- Phoenix ----

var phoenixMAPByStage = [stageCount]float64{30, 39, 44, 47, 55, 60}

// Phoenix fixed bands.
var (
	PhoenixInvasive    = Bands{{Below, 100, 3}, {Below, 200, 2}, {Below, 300, 1}}
	PhoenixNonInvasive = Bands{{Below, 200, 2}, {Below, 300, 1}}
	PhoenixUnsupported = Bands{{Below, 300, 1}}
	PhoenixVasoactive  = Bands{{AtLeast, 2, 2}, {AtLeast, 1, 1}}
	PhoenixLactate     = Bands{{Above, 10.9, 2}, {AtLeast, 5, 1}}
)

// PhoenixMAPThreshold is the Phoenix hypotension cut-off (mmHg).
func PhoenixMAPThreshold(s Stage) float64 { return phoenixMAPByStage[s] }
