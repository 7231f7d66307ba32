package verifier

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/yourorg/zkauction/pkg/curve"
)

var (
	ErrMalformedPoint  = errors.New("verifier: malformed point")
	ErrInputCount      = errors.New("verifier: len(inputs)+1 != len(vk.IC)")
	ErrInputOutOfField = errors.New("verifier: input value is not in the scalar field")
	ErrEmptyIC         = errors.New("verifier: verification key has no IC points")
	ErrNilProof        = errors.New("verifier: nil proof or verification key")
)

// VerifyingKey is the fixed Groth16 key of one circuit. IC is gamma_abc:
// IC[0] is the constant term, IC[i+1] weighs public input i.
type VerifyingKey struct {
	Alpha curve.G1
	Beta  curve.G2
	Gamma curve.G2
	Delta curve.G2
	IC    []curve.G1
}

// NumPublic is the number of public inputs the key accepts.
func (vk *VerifyingKey) NumPublic() int { return len(vk.IC) - 1 }

// Validate checks every point of the key.
func (vk *VerifyingKey) Validate() error {
	if len(vk.IC) == 0 {
		return ErrEmptyIC
	}
	if err := checkG1("vk.alpha", vk.Alpha); err != nil {
		return err
	}
	if err := checkG2("vk.beta", vk.Beta); err != nil {
		return err
	}
	if err := checkG2("vk.gamma", vk.Gamma); err != nil {
		return err
	}
	if err := checkG2("vk.delta", vk.Delta); err != nil {
		return err
	}
	for i, p := range vk.IC {
		if err := checkG1(fmt.Sprintf("vk.IC[%d]", i), p); err != nil {
			return err
		}
	}
	return nil
}

// Proof is a Groth16 proof (A, B, C).
type Proof struct {
	A curve.G1
	B curve.G2
	C curve.G1
}

// Validate checks the three proof points.
func (p *Proof) Validate() error {
	if err := checkG1("proof.A", p.A); err != nil {
		return err
	}
	if err := checkG2("proof.B", p.B); err != nil {
		return err
	}
	return checkG1("proof.C", p.C)
}

// PointError reports a point that is not a valid group element. It matches
// ErrMalformedPoint under errors.Is and unwraps to the curve error.
type PointError struct {
	Point string
	Err   error
}

func (e *PointError) Error() string {
	return fmt.Sprintf("verifier: malformed point %s: %v", e.Point, e.Err)
}

func (e *PointError) Unwrap() error { return e.Err }

func (e *PointError) Is(target error) bool { return target == ErrMalformedPoint }

func checkG1(name string, p curve.G1) error {
	if err := p.Validate(); err != nil {
		return &PointError{Point: name, Err: err}
	}
	return nil
}

func checkG2(name string, q curve.G2) error {
	if err := q.Validate(); err != nil {
		return &PointError{Point: name, Err: err}
	}
	return nil
}
