package scoring

import (
	"errors"
	"fmt"
	"math"

	"github.com/okian/pediscore/internal/domain/reference"
	"github.com/okian/pediscore/internal/domain/types"
)

// Engine validates input, runs the selected scorer and formats the outcome.
// It holds only immutable tables and is safe for concurrent use.
type Engine struct {
	scorers    map[types.ScoreType]Scorer
	order      []types.ScoreType
	defaultAge float64
}

// New creates an engine with every bundled scorer registered.
func New(opts ...Option) *Engine {
	e := &Engine{
		scorers:    make(map[types.ScoreType]Scorer),
		defaultAge: reference.DefaultAgeMonths,
	}
	for _, s := range Builtin() {
		e.register(s)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) register(s Scorer) {
	if _, ok := e.scorers[s.Type()]; !ok {
		e.order = append(e.order, s.Type())
	}
	e.scorers[s.Type()] = s
}

// Types lists the registered score types in registration order.
func (e *Engine) Types() []types.ScoreType {
	out := make([]types.ScoreType, len(e.order))
	copy(out, e.order)
	return out
}

// Schemas returns the schema of every registered scorer.
func (e *Engine) Schemas() []Schema {
	out := make([]Schema, 0, len(e.order))
	for _, t := range e.order {
		out = append(out, e.scorers[t].Schema())
	}
	return out
}

// Schema returns the schema for one score type.
func (e *Engine) Schema(t types.ScoreType) (Schema, error) {
	s, err := e.scorer(t)
	if err != nil {
		return Schema{}, err
	}
	return s.Schema(), nil
}

func (e *Engine) scorer(t types.ScoreType) (Scorer, error) {
	canonical, ok := types.ParseScoreType(string(t))
	if !ok {
		canonical = t
	}
	s, ok := e.scorers[canonical]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScoreType, t)
	}
	return s, nil
}

// Compute scores raw input for patient pc. It never panics and never returns
// an error: failures come back as a Result with Error and ErrorKind set.
func (e *Engine) Compute(t types.ScoreType, raw RawInput, pc types.PatientContext) (res types.Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Failure(t, fmt.Errorf("%w: %v", ErrComputation, r))
		}
	}()

	s, err := e.scorer(t)
	if err != nil {
		return Failure(t, err)
	}
	t = s.Type()

	pc, verr := liftPatient(raw, pc)
	age, ageNotes, ageErr := e.resolveAge(pc)
	verr.merge(ageErr)

	rec, err := s.Schema().Normalize(raw)
	var fieldErr *ValidationError
	if errors.As(err, &fieldErr) {
		merged := &ValidationError{}
		merged.merge(fieldErr)
		merged.merge(verr)
		verr = merged
	} else if err != nil {
		return Failure(t, err)
	}
	if !verr.empty() {
		return Failure(t, verr)
	}

	a, err := s.Score(rec, age)
	if err != nil {
		return Failure(t, err)
	}
	return format(t, a, age, rec.Notes(), ageNotes)
}

func format(t types.ScoreType, a Assessment, age reference.Age, fieldNotes, ageNotes []string) types.Result {
	subs := make(types.SubScores, len(a.SubScores))
	for i, d := range a.SubScores {
		d.Points = max(0, d.Points)
		if d.Max > 0 {
			d.Points = min(d.Points, d.Max)
		}
		subs[i] = d
	}

	if a.Logit != nil {
		if err := finite("logit", *a.Logit); err != nil {
			return Failure(t, err)
		}
	}
	if a.MortalityRisk != nil {
		if err := finite("mortality risk", *a.MortalityRisk); err != nil {
			return Failure(t, err)
		}
		clamped := math.Max(0, math.Min(100, *a.MortalityRisk))
		a.MortalityRisk = &clamped
	}

	// Age assumptions are repeated in the interpretation text.
	interpretation := a.Interpretation
	for _, n := range ageNotes {
		interpretation += " Caveat: " + n
	}

	var caveats []string
	caveats = append(caveats, ageNotes...)
	caveats = append(caveats, fieldNotes...)
	caveats = append(caveats, a.Caveats...)

	return types.Result{
		ScoreType:              t,
		SubScores:              subs,
		TotalScore:             subs.Total(),
		MortalityRisk:          a.MortalityRisk,
		MortalityRiskText:      a.MortalityRiskText,
		Logit:                  a.Logit,
		RiskCategory:           a.RiskCategory,
		SeverityCategory:       a.SeverityCategory,
		SedationLevel:          a.SedationLevel,
		DeliriumPresent:        a.DeliriumPresent,
		DeliriumType:           a.DeliriumType,
		SepsisStatus:           a.SepsisStatus,
		ClinicalInterpretation: interpretation,
		AgeCategory:            reference.Category(age.Months),
		Caveats:                caveats,
	}
}

// Failure folds an error into a result carrying only the error fields.
func Failure(t types.ScoreType, err error) types.Result {
	r := types.Result{ScoreType: t, Error: err.Error()}
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		r.ErrorKind = types.KindValidation
		r.MissingFields = verr.Fields()
	case errors.Is(err, ErrUnknownScoreType):
		r.ErrorKind = types.KindUnknownScoreType
	default:
		r.ErrorKind = types.KindComputation
	}
	return r
}
