package transforms

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/docpost/internal/foundation/errors"
)

// ValidationResult holds the results of chain validation.
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// AddError adds an error to the validation result.
func (vr *ValidationResult) AddError(format string, args ...any) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, fmt.Sprintf(format, args...))
}

// AddWarning adds a warning to the validation result.
func (vr *ValidationResult) AddWarning(format string, args ...any) {
	vr.Warnings = append(vr.Warnings, fmt.Sprintf(format, args...))
}

// Err converts an invalid result into a classified validation error.
func (vr *ValidationResult) Err() error {
	if vr.Valid {
		return nil
	}
	return errors.ValidationError("invalid transform chain").
		WithContext("problems", strings.Join(vr.Errors, "; ")).
		Build()
}

// Validate checks a transform set for:
//   - duplicate or empty names
//   - invalid stages
//   - dependencies on transforms that are not in the set
//   - dependencies that point the wrong way across stages (they could never hold)
//   - cycles
//
// A misordered chain is rejected here rather than producing pages where one
// transform silently misses the elements another one should have created.
func Validate(transforms []Transformer) *ValidationResult {
	result := &ValidationResult{Valid: true}
	if len(transforms) == 0 {
		result.AddWarning("no transforms configured")
		return result
	}

	byName := make(map[string]Transformer, len(transforms))
	for _, t := range transforms {
		name := t.Name()
		if name == "" {
			result.AddError("transform with empty name in stage %q", t.Stage())
			continue
		}
		if _, dup := byName[name]; dup {
			result.AddError("duplicate transformer name: %q", name)
			continue
		}
		byName[name] = t
	}

	for _, t := range transforms {
		name := t.Name()
		stage := t.Stage()
		if !IsValidStage(stage) {
			result.AddError("transform %q has invalid stage %q", name, stage)
			continue
		}
		deps := t.Dependencies()

		for _, dep := range deps.MustRunAfter {
			other, ok := byName[dep]
			if !ok {
				result.AddError("transform %q depends on missing transform %q (MustRunAfter)", name, dep)
				continue
			}
			if StageIndex(other.Stage()) > StageIndex(stage) {
				result.AddError("transform %q (stage %s) must run after %q which runs in later stage %s",
					name, stage, dep, other.Stage())
			}
		}

		for _, after := range deps.MustRunBefore {
			other, ok := byName[after]
			if !ok {
				result.AddError("transform %q requires missing transform %q to run after it (MustRunBefore)", name, after)
				continue
			}
			if StageIndex(other.Stage()) < StageIndex(stage) {
				result.AddError("transform %q (stage %s) must run before %q which runs in earlier stage %s",
					name, stage, after, other.Stage())
			}
		}
	}

	if !result.Valid {
		return result
	}

	if _, err := order(transforms); err != nil {
		result.AddError("%v", err)
	}
	return result
}

// Resolve validates transforms and returns them in execution order: stages in
// StageOrder, dependencies within a stage, ties by name.
func Resolve(transforms []Transformer) ([]Transformer, error) {
	if vr := Validate(transforms); !vr.Valid {
		return nil, vr.Err()
	}
	return order(transforms)
}
