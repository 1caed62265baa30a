package model

import (
	"encoding/json"
	"fmt"
	"strconv"
)

type FormSettings struct {
	Theme         *Theme `json:"theme,omitempty"`
	CollectEmail  bool   `json:"collectEmail,omitempty"`
	RequiresLogin bool   `json:"requiresLogin,omitempty"`
}

type Theme struct {
	Primary    string `json:"primary,omitempty"`
	Background string `json:"background,omitempty"`
	Font       string `json:"font,omitempty"`
}

type QuestionMetadata struct {
	CorrectAnswer AnswerKey `json:"correctAnswer,omitempty"`
	HasLogic      bool      `json:"hasLogic,omitempty"`
}

// AnswerKey is the expected answer of a quiz question. It is written by the
// builder either as a string or as a number.
type AnswerKey string

func (k *AnswerKey) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v := v.(type) {
	case nil:
		*k = ""
	case string:
		*k = AnswerKey(v)
	case float64:
		*k = AnswerKey(strconv.FormatFloat(v, 'f', -1, 64))
	default:
		return fmt.Errorf("correctAnswer: unsupported value %s", data)
	}
	return nil
}
