package types

import "encoding/json"

type resultFields Result

type failedResult struct {
	ScoreType     ScoreType `json:"scoreType" yaml:"scoreType"`
	Error         string    `json:"error" yaml:"error"`
	ErrorKind     ErrorKind `json:"errorKind,omitempty" yaml:"errorKind,omitempty"`
	MissingFields []string  `json:"missingFields,omitempty" yaml:"missingFields,omitempty"`
}

func (r Result) failed() failedResult {
	return failedResult{
		ScoreType:     r.ScoreType,
		Error:         r.Error,
		ErrorKind:     r.ErrorKind,
		MissingFields: r.MissingFields,
	}
}

// MarshalJSON drops every computed field from a failed result.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Failed() {
		return json.Marshal(r.failed())
	}
	return json.Marshal(resultFields(r))
}

// MarshalYAML mirrors MarshalJSON.
func (r Result) MarshalYAML() (interface{}, error) {
	if r.Failed() {
		return r.failed(), nil
	}
	return resultFields(r), nil
}
