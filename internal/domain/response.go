package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"slices"
)

// Response is a user's current answer to one question. Single selections and
// free text use Value; multi-select uses Values (non-nil, possibly empty).
// On the wire it is either a JSON string or a JSON array of strings.
type Response struct {
	Value  string
	Values []string
}

// Answers maps question ids to responses. Unanswered questions are absent.
type Answers map[string]Response

// Choice is the response for single-choice and true/false questions.
func Choice(optionID string) Response {
	return Response{Value: optionID}
}

// Choices is the response for multi-select questions.
func Choices(optionIDs ...string) Response {
	return Response{Values: append([]string{}, optionIDs...)}
}

// Text is the response for fill-in-the-blank and short-answer questions.
func Text(s string) Response {
	return Response{Value: s}
}

// IsMulti reports whether the response carries a set of values.
func (r Response) IsMulti() bool {
	return r.Values != nil
}

// Has reports whether id is part of the response.
func (r Response) Has(id string) bool {
	if r.IsMulti() {
		return slices.Contains(r.Values, id)
	}
	return r.Value == id
}

// Toggle adds id to a multi-select response, or removes it if present.
func (r Response) Toggle(id string) Response {
	if i := slices.Index(r.Values, id); i >= 0 {
		out := make([]string, 0, len(r.Values)-1)
		out = append(out, r.Values[:i]...)
		return Response{Values: append(out, r.Values[i+1:]...)}
	}
	out := make([]string, 0, len(r.Values)+1)
	out = append(out, r.Values...)
	return Response{Values: append(out, id)}
}

// Clone returns a deep copy of the response.
func (r Response) Clone() Response {
	if r.Values == nil {
		return Response{Value: r.Value}
	}
	return Response{Values: append([]string{}, r.Values...)}
}

// Clone returns a deep copy; snapshots never share slices with live state.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for id, r := range a {
		out[id] = r.Clone()
	}
	return out
}

func (r Response) MarshalJSON() ([]byte, error) {
	if r.IsMulti() {
		return json.Marshal(r.Values)
	}
	return json.Marshal(r.Value)
}

func (r *Response) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return errors.New("empty response")
	}
	switch data[0] {
	case '[':
		values := []string{}
		if err := json.Unmarshal(data, &values); err != nil {
			return err
		}
		*r = Response{Values: values}
	case 'n':
		*r = Response{}
	default:
		var value string
		if err := json.Unmarshal(data, &value); err != nil {
			return err
		}
		*r = Response{Value: value}
	}
	return nil
}
