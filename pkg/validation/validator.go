package validation

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// MinM is the smallest out-degree the engine will accept; below this
	// the graph degenerates into a near-linear chain and loses its
	// navigability guarantees.
	MinM = 2

	// MaxBatchSize bounds a single AddItems call to keep progress
	// reporting and arena growth well-behaved.
	MaxBatchSize = 1_000_000
)

func init() {
	validate = validator.New()
}

// ParametersRequest mirrors the externally supplied HNSW build parameters so
// they can be validated with struct tags before a graph is constructed.
type ParametersRequest struct {
	M                   int     `validate:"required,gte=2"`
	LevelLambda         float64 `validate:"gt=0"`
	ConstructionPruning int     `validate:"required,gte=1"`
	MinNN               int     `validate:"gte=0"`
	InitialItemsSize    int     `validate:"gte=0"`
}

// ValidateParameters validates a set of HNSW build parameters.
func ValidateParameters(req *ParametersRequest) error {
	if req == nil {
		return errors.New("parameters cannot be nil")
	}

	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}

	if req.M < MinM {
		return fmt.Errorf("M: must be at least %d, got %d", MinM, req.M)
	}

	return nil
}

// ValidateBatchSize validates the size of an AddItems batch.
func ValidateBatchSize(size int) error {
	if size < 0 {
		return fmt.Errorf("batch size must be non-negative, got %d", size)
	}
	if size > MaxBatchSize {
		return fmt.Errorf("batch size must not exceed %d, got %d", MaxBatchSize, size)
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	// Return the first validation error in a user-friendly format
	for _, e := range validationErrs {
		field := e.Field()
		tag := e.Tag()
		param := e.Param()

		switch tag {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "gte":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "gt":
			return fmt.Errorf("%s: must be greater than %s", field, param)
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, tag)
		}
	}

	return err
}
