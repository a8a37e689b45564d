package budget

import (
	"errors"
	"fmt"

	"github.com/clbench/exemplar-planner/internal/convnet"
)

// ErrConfiguration reports an invalid or unsupported experiment configuration.
type ErrConfiguration struct {
	error
	Field string
}

func NewErrConfiguration(field, format string, args ...any) *ErrConfiguration {
	return &ErrConfiguration{
		error: fmt.Errorf("invalid %s: %s", field, fmt.Sprintf(format, args...)),
		Field: field,
	}
}

// ErrLookup reports a dataset, backbone or curve point outside the parameter tables.
type ErrLookup struct {
	error
}

func NewErrUnknownDataset(dataset string) *ErrLookup {
	return &ErrLookup{fmt.Errorf("no backbone parameters for dataset %q", dataset)}
}

func NewErrPointOutOfRange(dataset string, point, max int) *ErrLookup {
	return &ErrLookup{fmt.Errorf("curve point %d out of range for %s: must be 1-%d", point, dataset, max)}
}

func NewErrNotDecomposable(backbone string) *ErrLookup {
	return &ErrLookup{fmt.Errorf("convnet %q has no generalized/specialized decomposition", backbone)}
}

func NewErrDecomposed(backbone string) *ErrLookup {
	return &ErrLookup{fmt.Errorf("convnet %q is decomposed, expected a single backbone", backbone)}
}

// ErrPolicyViolation reports a model that the protocol does not allow.
type ErrPolicyViolation struct {
	error
	Model    string
	Protocol string
}

func NewErrPolicyViolation(model Model, protocol Protocol, reason string) *ErrPolicyViolation {
	return &ErrPolicyViolation{
		error:    fmt.Errorf("%s under %s protocol: %s", model, protocol, reason),
		Model:    model.String(),
		Protocol: protocol.String(),
	}
}

// ErrDataConsistency reports a parameter delta with the wrong sign. It means the parameter
// tables and the accounting disagree, and no result can be trusted.
type ErrDataConsistency struct {
	error
	Delta     int64
	Reference int64
	Candidate int64
}

func NewErrDataConsistency(reference, candidate int64) *ErrDataConsistency {
	delta := reference - candidate
	return &ErrDataConsistency{
		error:     fmt.Errorf("parameter delta %d is not positive (reference %d, candidate %d)", delta, reference, candidate),
		Delta:     delta,
		Reference: reference,
		Candidate: candidate,
	}
}

func IsConfiguration(err error) bool {
	var e *ErrConfiguration
	return errors.As(err, &e)
}

// IsLookup also matches unknown convnet errors coming from the convnet registry.
func IsLookup(err error) bool {
	var e *ErrLookup
	return errors.As(err, &e) || errors.Is(err, convnet.ErrUnknownConvnet)
}

func IsPolicyViolation(err error) bool {
	var e *ErrPolicyViolation
	return errors.As(err, &e)
}

func IsDataConsistency(err error) bool {
	var e *ErrDataConsistency
	return errors.As(err, &e)
}
