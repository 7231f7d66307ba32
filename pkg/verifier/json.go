package verifier

import (
	"encoding/json"
	"math/big"
	"os"

	"github.com/pkg/errors"

	"github.com/yourorg/zkauction/pkg/curve"
)

// vkJSON is the snarkjs verification_key.json layout.
type vkJSON struct {
	Protocol string     `json:"protocol"`
	Curve    string     `json:"curve"`
	NPublic  int        `json:"nPublic"`
	Alpha    []string   `json:"vk_alpha_1"`
	Beta     [][]string `json:"vk_beta_2"`
	Gamma    [][]string `json:"vk_gamma_2"`
	Delta    [][]string `json:"vk_delta_2"`
	IC       [][]string `json:"IC"`
}

// proofJSON is the snarkjs proof.json layout.
type proofJSON struct {
	A        []string   `json:"pi_a"`
	B        [][]string `json:"pi_b"`
	C        []string   `json:"pi_c"`
	Protocol string     `json:"protocol"`
	Curve    string     `json:"curve"`
}

const (
	protocolName = "groth16"
	curveName    = "bn128"
)

func checkHeader(protocol, c string) error {
	if protocol != "" && protocol != protocolName {
		return errors.Errorf("verifier: %s protocol is not supported", protocol)
	}
	switch c {
	case "", curveName, "bn254":
		return nil
	}
	return errors.Errorf("verifier: curve %s is not supported", c)
}

func (vk *VerifyingKey) MarshalJSON() ([]byte, error) {
	out := vkJSON{
		Protocol: protocolName,
		Curve:    curveName,
		NPublic:  vk.NumPublic(),
		Alpha:    encodeG1(vk.Alpha),
		Beta:     encodeG2(vk.Beta),
		Gamma:    encodeG2(vk.Gamma),
		Delta:    encodeG2(vk.Delta),
	}
	for _, p := range vk.IC {
		out.IC = append(out.IC, encodeG1(p))
	}
	return json.Marshal(out)
}

func (vk *VerifyingKey) UnmarshalJSON(data []byte) error {
	var in vkJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if err := checkHeader(in.Protocol, in.Curve); err != nil {
		return err
	}
	var (
		k   VerifyingKey
		err error
	)
	if k.Alpha, err = decodeG1(in.Alpha); err != nil {
		return errors.Wrap(err, "vk_alpha_1")
	}
	if k.Beta, err = decodeG2(in.Beta); err != nil {
		return errors.Wrap(err, "vk_beta_2")
	}
	if k.Gamma, err = decodeG2(in.Gamma); err != nil {
		return errors.Wrap(err, "vk_gamma_2")
	}
	if k.Delta, err = decodeG2(in.Delta); err != nil {
		return errors.Wrap(err, "vk_delta_2")
	}
	for i, s := range in.IC {
		p, err := decodeG1(s)
		if err != nil {
			return errors.Wrapf(err, "IC[%d]", i)
		}
		k.IC = append(k.IC, p)
	}
	if in.NPublic != 0 && in.NPublic != k.NumPublic() {
		return errors.Errorf("verifier: nPublic %d does not match %d IC points", in.NPublic, len(k.IC))
	}
	*vk = k
	return nil
}

func (p *Proof) MarshalJSON() ([]byte, error) {
	return json.Marshal(proofJSON{
		A:        encodeG1(p.A),
		B:        encodeG2(p.B),
		C:        encodeG1(p.C),
		Protocol: protocolName,
		Curve:    curveName,
	})
}

func (p *Proof) UnmarshalJSON(data []byte) error {
	var in proofJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if err := checkHeader(in.Protocol, in.Curve); err != nil {
		return err
	}
	var (
		out Proof
		err error
	)
	if out.A, err = decodeG1(in.A); err != nil {
		return errors.Wrap(err, "pi_a")
	}
	if out.B, err = decodeG2(in.B); err != nil {
		return errors.Wrap(err, "pi_b")
	}
	if out.C, err = decodeG1(in.C); err != nil {
		return errors.Wrap(err, "pi_c")
	}
	*p = out
	return nil
}

// ParseVerifyingKey decodes a JSON key and validates all of its points.
func ParseVerifyingKey(data []byte) (*VerifyingKey, error) {
	var vk VerifyingKey
	if err := json.Unmarshal(data, &vk); err != nil {
		return nil, err
	}
	if err := vk.Validate(); err != nil {
		return nil, err
	}
	return &vk, nil
}

// LoadVerifyingKey reads and validates a JSON key file.
func LoadVerifyingKey(path string) (*VerifyingKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read verification key")
	}
	return ParseVerifyingKey(data)
}

// ParseProof decodes a JSON proof. Points are validated by Verify.
func ParseProof(data []byte) (*Proof, error) {
	var p Proof
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadProof reads a JSON proof file.
func LoadProof(path string) (*Proof, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read proof")
	}
	return ParseProof(data)
}

// WriteJSON writes v indented to path.
func WriteJSON(path string, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// Signals encodes public inputs as decimal strings, the snarkjs public.json
// layout.
func Signals(inputs []*big.Int) []string {
	out := make([]string, len(inputs))
	for i, in := range inputs {
		out[i] = in.String()
	}
	return out
}

// ParseSignals decodes decimal or hex public inputs.
func ParseSignals(s []string) ([]*big.Int, error) {
	out := make([]*big.Int, len(s))
	for i, v := range s {
		n, err := curve.ParseScalar(v)
		if err != nil {
			return nil, errors.Wrapf(err, "signal %d", i)
		}
		out[i] = n
	}
	return out, nil
}

func encodeG1(p curve.G1) []string {
	if p.IsInfinity() {
		return []string{"0", "1", "0"}
	}
	return []string{p.X.String(), p.Y.String(), "1"}
}

func encodeG2(q curve.G2) [][]string {
	if q.IsInfinity() {
		return [][]string{{"0", "0"}, {"1", "0"}, {"0", "0"}}
	}
	return [][]string{
		{q.X[0].String(), q.X[1].String()},
		{q.Y[0].String(), q.Y[1].String()},
		{"1", "0"},
	}
}

func parseAll(s []string) ([]*big.Int, error) {
	out := make([]*big.Int, len(s))
	for i, v := range s {
		n, err := curve.ParseScalar(v)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

// decodeG1 accepts [x, y] or projective [x, y, z] with z = 1, or z = 0 for
// the identity.
func decodeG1(s []string) (curve.G1, error) {
	if len(s) != 2 && len(s) != 3 {
		return curve.G1{}, errors.Errorf("verifier: G1 point needs 2 or 3 coordinates, got %d", len(s))
	}
	c, err := parseAll(s)
	if err != nil {
		return curve.G1{}, err
	}
	if len(c) == 3 {
		switch z := c[2]; {
		case z.Sign() == 0:
			return curve.G1Infinity(), nil
		case z.Cmp(big.NewInt(1)) != 0:
			return curve.G1{}, errors.Errorf("verifier: G1 point is not affine (z = %s)", z)
		}
	}
	return curve.G1{X: c[0], Y: c[1]}, nil
}

// decodeG2 accepts [[x0,x1],[y0,y1]] or with a trailing z of [1,0] or [0,0].
func decodeG2(s [][]string) (curve.G2, error) {
	if len(s) != 2 && len(s) != 3 {
		return curve.G2{}, errors.Errorf("verifier: G2 point needs 2 or 3 coordinates, got %d", len(s))
	}
	var c [3][2]*big.Int
	for i, pair := range s {
		if len(pair) != 2 {
			return curve.G2{}, errors.Errorf("verifier: G2 coordinate %d needs 2 limbs, got %d", i, len(pair))
		}
		v, err := parseAll(pair)
		if err != nil {
			return curve.G2{}, err
		}
		c[i] = [2]*big.Int{v[0], v[1]}
	}
	if len(s) == 3 {
		z0, z1 := c[2][0], c[2][1]
		switch {
		case z1.Sign() == 0 && z0.Sign() == 0:
			return curve.G2Infinity(), nil
		case z1.Sign() != 0 || z0.Cmp(big.NewInt(1)) != 0:
			return curve.G2{}, errors.New("verifier: G2 point is not affine")
		}
	}
	return curve.G2{X: c[0], Y: c[1]}, nil
}
