package scoring

import (
	"github.com/okian/pediscore/internal/domain/reference"
	"github.com/okian/pediscore/internal/domain/types"
)

const sospdDeliriumThreshold = 4

// Delirium types.
const (
	deliriumNone        = "None"
	deliriumHyperactive = "Hyperactive"
	deliriumHypoactive  = "Hypoactive"
	deliriumMixed       = "Mixed"
	deliriumUnspecified = "Unspecified"
)

var sospdItems = []struct{ name, label string }{
	{"anxiety", "Anxiety"},
	{"agitation", "Agitation"},
	{"hallucinations", "Hallucinations"},
	{"inconsolableCrying", "Inconsolable crying"},
	{"alteredConsciousness", "Altered consciousness"},
	{"tremors", "Tremors"},
	{"motorRestlessness", "Motor restlessness"},
	{"sleepDisturbance", "Sleep disturbance"},
	{"irritability", "Irritability"},
	{"sweating", "Sweating"},
	{"grimacing", "Grimacing"},
	{"increasedMuscleTension", "Increased muscle tension"},
	{"startleResponse", "Startle response"},
	{"poorEyeContact", "Poor eye contact"},
	{"disorientation", "Disorientation"},
	{"incoherentSpeech", "Incoherent speech"},
	{"withdrawal", "Withdrawal"},
}

var (
	hyperactiveSigns = []string{"agitation", "anxiety", "motorRestlessness", "irritability"}
	hypoactiveSigns  = []string{"alteredConsciousness", "poorEyeContact", "withdrawal"}
)

var deliriumAdvice = map[string]string{
	deliriumNone:        "No delirium detected.",
	deliriumHyperactive: "Hyperactive delirium detected. Consider calming interventions.",
	deliriumHypoactive:  "Hypoactive delirium detected. Monitor for worsening symptoms.",
	deliriumMixed:       "Mixed delirium detected. Requires comprehensive management.",
	deliriumUnspecified: "Delirium detected without a predominant hyperactive or hypoactive pattern. Reassess and monitor.",
}

var sospdSchema = func() Schema {
	s := Schema{Type: types.SOSPD, Name: types.SOSPD.DisplayName()}
	for _, item := range sospdItems {
		s.Fields = append(s.Fields, flag(item.name, item.label))
	}
	return s
}()

type sospdScorer struct{}

func (sospdScorer) Type() types.ScoreType { return types.SOSPD }
func (sospdScorer) Schema() Schema        { return sospdSchema }

func (sospdScorer) Score(rec Record, _ reference.Age) (Assessment, error) {
	subs := make(types.SubScores, 0, len(sospdItems))
	for _, item := range sospdItems {
		points := 0
		if rec.Flag(item.name) {
			points = 1
		}
		subs = append(subs, domain(item.name, points, 1))
	}

	present := subs.Total() >= sospdDeliriumThreshold
	kind := deliriumNone
	if present {
		hyper, hypo := anyFlag(rec, hyperactiveSigns), anyFlag(rec, hypoactiveSigns)
		switch {
		case hyper && hypo:
			kind = deliriumMixed
		case hyper:
			kind = deliriumHyperactive
		case hypo:
			kind = deliriumHypoactive
		default:
			kind = deliriumUnspecified
		}
	}

	return Assessment{
		SubScores:       subs,
		DeliriumPresent: ptr(present),
		DeliriumType:    kind,
		Interpretation:  deliriumAdvice[kind],
	}, nil
}

func anyFlag(rec Record, names []string) bool {
	for _, n := range names {
		if rec.Flag(n) {
			return true
		}
	}
	return false
}
