// Package validation holds field predicates and input schema checks for requests.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"grimoire/internal/models"
)

// namePattern counts runes, so accented letters occupy one position.
var namePattern = regexp.MustCompile(`^[a-zA-ZáéíóúÁÉÍÓÚüÜñÑ]{1,20}$`)

const (
	minAge          = 1
	maxAge          = 99
	maxStatusLength = 50
)

// ValidName reports whether value is 1-20 Latin or Spanish diacritic letters.
func ValidName(value string) bool {
	return namePattern.MatchString(value)
}

// ValidateNameFields reports whether both the name and last name are acceptable.
func ValidateNameFields(name, lastName string) bool {
	return ValidName(name) && ValidName(lastName)
}

// ValidAffinity reports whether value is one of the affinity labels.
func ValidAffinity(value string) bool {
	_, ok := models.ParseAffinity(value)
	return ok
}

// ValidStatus reports whether value is one of the request status labels.
func ValidStatus(value string) bool {
	_, ok := models.ParseRequestStatus(value)
	return ok
}

// CreateInput is the payload accepted when creating a request.
type CreateInput struct {
	Name           string `json:"name"`
	LastName       string `json:"last_name"`
	Identification string `json:"identification"`
	Age            int    `json:"age"`
	Affinity       string `json:"affinity"`
}

// Validate applies the schema constraints. Name content and affinity membership
// are checked by the request service, not here.
func (in CreateInput) Validate() error {
	switch {
	case in.Name == "":
		return requiredError("name")
	case in.LastName == "":
		return requiredError("last_name")
	case in.Affinity == "":
		return requiredError("affinity")
	}
	return validateAge(in.Age)
}

// UpdateInput is a partial payload; nil fields are left untouched.
type UpdateInput struct {
	Name           *string `json:"name"`
	LastName       *string `json:"last_name"`
	Identification *string `json:"identification"`
	Age            *int    `json:"age"`
	Affinity       *string `json:"affinity"`
}

// Validate applies the schema constraints to the fields that are present.
func (in UpdateInput) Validate() error {
	if in.Name != nil && *in.Name == "" {
		return requiredError("name")
	}
	if in.LastName != nil && *in.LastName == "" {
		return requiredError("last_name")
	}
	if in.Affinity != nil && *in.Affinity == "" {
		return requiredError("affinity")
	}
	if in.Age != nil {
		return validateAge(*in.Age)
	}
	return nil
}

// Empty reports whether no field is set.
func (in UpdateInput) Empty() bool {
	return in.Name == nil && in.LastName == nil && in.Identification == nil &&
		in.Age == nil && in.Affinity == nil
}

// StatusInput is the payload of a status transition.
type StatusInput struct {
	Status string `json:"status"`
}

// Validate checks the status label length. Membership is checked by the service.
func (in StatusInput) Validate() error {
	n := utf8.RuneCountInString(in.Status)
	if n < 1 || n > maxStatusLength {
		return models.NewSchemaError(fmt.Sprintf("status must be between 1 and %d characters", maxStatusLength))
	}
	return nil
}

func validateAge(age int) error {
	if age < minAge || age > maxAge {
		return models.NewSchemaError(fmt.Sprintf("age must be between %d and %d", minAge, maxAge))
	}
	return nil
}

func requiredError(field string) error {
	return models.NewSchemaError(strings.TrimSpace(field) + " is required")
}
