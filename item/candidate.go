package item

import (
	"errors"
	"math"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Candidate is the unvalidated payload of a create request. Fields are left untyped
// so a wrong JSON type is reported against the offending field instead of failing the
// whole decode.
type Candidate struct {
	Name     any `json:"name"`
	Category any `json:"category"`
	Price    any `json:"price"`
}

var (
	errBlank = errors.New("is required and must be a non-empty string")
	errPrice = errors.New("is required and must be a positive number")
)

// Validate checks the candidate and returns an *InputError naming each failing field.
func (c Candidate) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required.Error(errBlank.Error()), validation.By(nonBlankString(errBlank))),
		validation.Field(&c.Category, validation.Required.Error(errBlank.Error()), validation.By(nonBlankString(errBlank))),
		validation.Field(&c.Price, validation.Required.Error(errPrice.Error()), validation.By(positiveFinite)),
	)
	if err != nil {
		return newInputError(err)
	}
	return nil
}

// Build validates the candidate and returns the normalized item without an id.
func (c Candidate) Build() (Item, error) {
	if err := c.Validate(); err != nil {
		return Item{}, err
	}
	return Item{
		Name:     strings.TrimSpace(c.Name.(string)),
		Category: strings.TrimSpace(c.Category.(string)),
		Price:    c.Price.(float64),
	}, nil
}

func nonBlankString(failure error) validation.RuleFunc {
	return func(value any) error {
		s, ok := value.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return failure
		}
		return nil
	}
}

func positiveFinite(value any) error {
	p, ok := value.(float64)
	if !ok || p <= 0 || math.IsNaN(p) || math.IsInf(p, 0) {
		return errPrice
	}
	return nil
}
