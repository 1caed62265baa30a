package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

type AnswerKind int

const (
	NullAnswer AnswerKind = iota
	TextAnswer
	ListAnswer
	NumberAnswer
)

// Answer is a submitted value: null, a string, a list of strings (multi
// select) or a number.
type Answer struct {
	kind   AnswerKind
	text   string
	list   []string
	number float64
}

func Text(s string) Answer { return Answer{kind: TextAnswer, text: s} }
func List(s ...string) Answer { return Answer{kind: ListAnswer, list: s} }
func Number(n float64) Answer { return Answer{kind: NumberAnswer, number: n} }
func (a Answer) Kind() AnswerKind { return a.kind }
func (a Answer) IsList() bool { return a.kind == ListAnswer }
func (a Answer) Values() []string { return a.list }

// IsEmpty reports whether the answer counts as not given: null, an empty
// string or an empty list.
func (a Answer) IsEmpty() bool {
	switch a.kind {
	case TextAnswer:
		return a.text == ""
	case ListAnswer:
		return len(a.list) == 0
	case NumberAnswer:
		return false
	}
	return true
}

// String returns the scalar value as text. Lists and null give "".
func (a Answer) String() string {
	switch a.kind {
	case TextAnswer:
		return a.text
	case NumberAnswer:
		return formatNumber(a.number)
	}
	return ""
}

func (a Answer) MarshalJSON() ([]byte, error) {
	switch a.kind {
	case TextAnswer:
		return json.Marshal(a.text)
	case ListAnswer:
		if a.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(a.list)
	case NumberAnswer:
		return json.Marshal(a.number)
	}
	return []byte("null"), nil
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}

	switch v := v.(type) {
	case nil:
		*a = Answer{}
	case string:
		*a = Text(v)
	case json.Number:
		n, err := v.Float64()
		if err != nil {
			return err
		}
		*a = Number(n)
	case []any:
		list := make([]string, 0, len(v))
		for _, item := range v {
			switch item := item.(type) {
			case string:
				list = append(list, item)
			case json.Number:
				n, err := item.Float64()
				if err != nil {
					return err
				}
				list = append(list, formatNumber(n))
			default:
				return fmt.Errorf("unsupported list element %v", item)
			}
		}
		*a = List(list...)
	default:
		return fmt.Errorf("unsupported answer %s", data)
	}
	return nil
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
