// Package engine decides which intake question to ask next and turns a
// finished answer set into risk scores and recommendations. It performs no
// I/O and holds no state between calls
package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// ErrMalformedAnswer is returned by DecodeAnswer when the raw value cannot be
// represented as any answer variant
var ErrMalformedAnswer = errors.New("malformed answer value")

// AnswerValue is one of Text, Number, Choice or MultiChoice
type AnswerValue interface {
	answerValue()
}

// Text is a free-form answer
type Text string

// Number is a numeric answer, usually on a 1-10 scale
type Number float64

// Choice is the selected option of a single-choice question
type Choice string

// MultiChoice holds the selected options of a multiple-choice question
type MultiChoice []string

func (Text) answerValue()        {}
func (Number) answerValue()      {}
func (Choice) answerValue()      {}
func (MultiChoice) answerValue() {}

// AnswerSet maps question id to the answer given so far
type AnswerSet map[string]AnswerValue

// IsEmpty reports whether v counts as "not answered"
func IsEmpty(v AnswerValue) bool {
	switch a := v.(type) {
	case Text:
		return a == ""
	case Choice:
		return a == ""
	case MultiChoice:
		return len(a) == 0
	case Number:
		return false
	default:
		return true
	}
}

// Answered reports whether the question has a non-empty answer
func (s AnswerSet) Answered(id string) bool {
	v, ok := s[id]
	return ok && !IsEmpty(v)
}

// With returns a copy of s with id set to v. s is left untouched
func (s AnswerSet) With(id string, v AnswerValue) AnswerSet {
	out := make(AnswerSet, len(s)+1)
	for k, a := range s {
		out[k] = a
	}
	out[id] = v
	return out
}

// Native converts the set into plain JSON-friendly values
func (s AnswerSet) Native() map[string]any {
	out := make(map[string]any, len(s))
	for id, v := range s {
		out[id] = NativeValue(v)
	}
	return out
}

// NativeValue returns v as a string, float64 or []string
func NativeValue(v AnswerValue) any {
	switch a := v.(type) {
	case Text:
		return string(a)
	case Choice:
		return string(a)
	case Number:
		return float64(a)
	case MultiChoice:
		return []string(a)
	default:
		return nil
	}
}

// Stringify renders an answer the way visibility rules compare it:
// numbers without trailing zeros, lists joined by commas
func Stringify(v AnswerValue) string {
	switch a := v.(type) {
	case Text:
		return string(a)
	case Choice:
		return string(a)
	case Number:
		return strconv.FormatFloat(float64(a), 'f', -1, 64)
	case MultiChoice:
		return strings.Join(a, ",")
	default:
		return ""
	}
}

// DecodeAnswer converts a raw JSON value into the variant that fits q.
// JSON null decodes to a nil value, which counts as unanswered
func DecodeAnswer(q Question, raw json.RawMessage) (AnswerValue, error) {
	var x any
	if err := json.Unmarshal(raw, &x); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedAnswer, err)
	}
	v, err := fromNative(x)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return coerce(q.Type, v), nil
}

func fromNative(x any) (AnswerValue, error) {
	switch t := x.(type) {
	case nil:
		return nil, nil
	case string:
		return Text(t), nil
	case float64:
		return Number(t), nil
	case bool:
		return Text(strconv.FormatBool(t)), nil
	case []any:
		out := make(MultiChoice, 0, len(t))
		for _, e := range t {
			switch e.(type) {
			case map[string]any, []any:
				return nil, fmt.Errorf("%w: nested value in list", ErrMalformedAnswer)
			}
			out = append(out, valueString(e))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unsupported shape %T", ErrMalformedAnswer, x)
	}
}

func coerce(t QuestionType, v AnswerValue) AnswerValue {
	switch t {
	case TypeNumber:
		if s, ok := v.(Text); ok {
			if f, err := strconv.ParseFloat(strings.TrimSpace(string(s)), 64); err == nil {
				return Number(f)
			}
		}
	case TypeSingle:
		switch a := v.(type) {
		case Text:
			return Choice(a)
		case Number:
			return Choice(Stringify(a))
		}
	case TypeMultiple:
		switch a := v.(type) {
		case Text:
			if a == "" {
				return MultiChoice{}
			}
			return MultiChoice{string(a)}
		case Number:
			return MultiChoice{Stringify(a)}
		}
	}
	return v
}

// valueString renders a rule-side value (string, number, bool) for
// comparison against Stringify output
func valueString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// valueList returns the elements of v when v is any kind of slice. Rule
// values decoded from BSON or YAML arrive as different slice types
func valueList(v any) ([]string, bool) {
	if v == nil {
		return nil, false
	}
	if s, ok := v.([]string); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]string, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out = append(out, valueString(rv.Index(i).Interface()))
	}
	return out, true
}
