package server

import (
	"github.com/nektos/coerce/pkg/coerce"
	"github.com/nektos/coerce/pkg/exprparser"
	"github.com/nektos/coerce/pkg/value"
)

type EvalRequest struct {
	Expr string `json:"expr"`
}

type ConvertRequest struct {
	Expr string `json:"expr"`
	To   string `json:"to"`
	Hint string `json:"hint"`
}

type EqualsRequest struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// Result describes an evaluated value, or the error that replaced it
type Result struct {
	Expr      string `json:"expr"`
	Repr      string `json:"repr,omitempty"`
	Kind      string `json:"kind,omitempty"`
	Type      string `json:"type,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorName string `json:"errorName,omitempty"`
}

// NewResult describes the outcome of evaluating expr
func NewResult(expr string, v value.Value, err error) *Result {
	if err != nil {
		return &Result{
			Expr:      expr,
			Error:     err.Error(),
			ErrorName: exprparser.ErrorName(err),
		}
	}
	return &Result{
		Expr: expr,
		Repr: coerce.Inspect(v),
		Kind: v.Kind().String(),
		Type: coerce.TypeOf(v),
	}
}

type EqualsResult struct {
	Left          string `json:"left"`
	Right         string `json:"right"`
	Strict        bool   `json:"strict"`
	Abstract      bool   `json:"abstract"`
	SameValue     bool   `json:"sameValue"`
	SameValueZero bool   `json:"sameValueZero"`
}
