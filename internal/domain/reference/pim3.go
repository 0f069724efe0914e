package reference

// PIM-3 model coefficients.
const (
	Pim3Intercept           = -3.8233
	Pim3CardiacArrestBP     = 3.8233 // systolic pressure recorded as 0
	Pim3UnmeasurableBP      = 0.9763 // shock with immeasurable pressure, recorded as < 0
	Pim3PupilsBothFixed     = 3.0042
	Pim3PupilsOneFixed      = 1.5023
	Pim3OxygenationFactor   = 0.2888 // x (FiO2 * 100 / PaO2)
	Pim3BaseExcessFactor    = 0.104  // x |base excess|
	Pim3Ventilation         = 0.8233
	Pim3ElectiveAdmission   = -0.9186
	Pim3RecoveryFromSurgery = -0.4214
	Pim3CardiacBypass       = -1.2246
)

// Pim3HighRisk holds the additive coefficient per high-risk diagnosis.
var Pim3HighRisk = map[string]float64{
	"cardiac_arrest":                          1.3352,
	"severe_combined_immune_deficiency":       1.6524,
	"leukemia_lymphoma_after_first_induction": 1.5573,
	"liver_failure":                           1.3622,
	"neurodegenerative_disorder":              2.0986,
	"necrotizing_enterocolitis":               1.5164,
	"spontaneous_cerebral_hemorrhage":         2.3195,
	"cardiomyopathy_myocarditis":              1.1246,
	"hypoplastic_left_heart_syndrome":         1.4376,
	"hiv_infection":                           1.3579,
	"icd_or_pacemaker_during_admission":       1.6138,
	"liver_transplant":                        1.4214,
	"bone_marrow_transplant_recipient":        1.2943,
}

// Pim3LowRisk holds the subtracted coefficient per low-risk diagnosis.
var Pim3LowRisk = map[string]float64{
	"asthma":                  1.5164,
	"bronchiolitis":           1.2578,
	"croup":                   1.9684,
	"obstructive_sleep_apnea": 1.4214,
	"diabetic_ketoacidosis":   1.1246,
	"seizure_disorder":        1.0725,
}
