package service

import (
	"github.com/go-playground/validator/v10"
)

// NewBoardValidator returns a validator aware of the weekday tag (one of the
// configured day labels). Times are checked by checkTimeRange.
func NewBoardValidator(days []string) *validator.Validate {
	v := validator.New()
	RegisterBoardRules(v, days)
	return v
}

// RegisterBoardRules adds the board tags to an existing validator.
func RegisterBoardRules(v *validator.Validate, days []string) {
	labels := make(map[string]struct{}, len(days))
	for _, d := range days {
		labels[d] = struct{}{}
	}
	_ = v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		_, ok := labels[fl.Field().String()]
		return ok
	})
}

func dayIndex(days []string, label string) int {
	for i, d := range days {
		if d == label {
			return i
		}
	}
	return -1
}
