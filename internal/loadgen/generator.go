package loadgen

import (
	"crypto/rand"
	"math"
	"math/big"

	"github.com/google/uuid"

	"github.com/okian/pediscore/internal/domain/model"
	"github.com/okian/pediscore/internal/domain/types"
)

// Generation ranges.
const (
	maxAgeMonths    = 216
	comfortMin      = 1
	comfortMax      = 5
	sospdItemChance = 4 // one in four
)

var comfortItems = []string{
	"alertness", "calmness", "respiratoryResponse", "movement", "muscleTone", "facialTension",
}

var sospdItems = []string{
	"anxiety", "agitation", "hallucinations", "inconsolableCrying", "alteredConsciousness",
	"tremors", "motorRestlessness", "sleepDisturbance", "irritability", "sweating",
	"grimacing", "increasedMuscleTension", "startleResponse", "poorEyeContact",
	"disorientation", "incoherentSpeech", "withdrawal",
}

// generators produce valid input for the score types the load tool cycles
// through.
var generators = []struct {
	scoreType types.ScoreType
	input     func() map[string]any
}{
	{types.PRISM3, prismInput},
	{types.COMFORTB, comfortInput},
	{types.SOSPD, sospdInput},
}

// randInt returns a uniform integer in [lo, hi].
func randInt(lo, hi int) int {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(hi-lo+1)))
	return lo + int(n.Int64())
}

// randFloat returns a value in [lo, hi] with one decimal.
func randFloat(lo, hi float64) float64 {
	tenths := randInt(int(math.Round(lo*10)), int(math.Round(hi*10)))
	return float64(tenths) / 10
}

func prismInput() map[string]any {
	return map[string]any{
		"gcs":         randInt(3, 15),
		"systolicBP":  randInt(40, 140),
		"heartRate":   randInt(60, 220),
		"temperature": randFloat(33, 41),
		"pH":          randFloat(6.9, 7.6),
	}
}

func comfortInput() map[string]any {
	in := make(map[string]any, len(comfortItems))
	for _, item := range comfortItems {
		in[item] = randInt(comfortMin, comfortMax)
	}
	return in
}

func sospdInput() map[string]any {
	in := make(map[string]any, len(sospdItems))
	for _, item := range sospdItems {
		in[item] = randInt(1, sospdItemChance) == 1
	}
	return in
}

// generatePlans builds one plan per patient. Each patient gets a fixed age
// and a rotation of score types starting at a random offset.
func generatePlans(cfg *Config, stats *Stats) []Plan {
	plans := make([]Plan, cfg.Patients)
	for p := range plans {
		age := float64(randInt(0, maxAgeMonths))
		offset := randInt(0, len(generators)-1)
		plan := Plan{
			PatientID: "patient-" + uuid.NewString(),
			Requests:  make([]model.ScoreRequest, cfg.AssessmentsPerPatient),
		}
		for i := range plan.Requests {
			g := generators[(offset+i)%len(generators)]
			plan.Requests[i] = model.ScoreRequest{
				RequestID: uuid.NewString(),
				PatientID: plan.PatientID,
				ScoreType: g.scoreType,
				Input:     g.input(),
				Patient:   types.PatientContext{AgeInMonths: &age},
			}
		}
		plans[p] = plan
		stats.Generated += len(plan.Requests)
	}
	return plans
}
