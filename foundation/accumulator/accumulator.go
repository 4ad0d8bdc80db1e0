// Package accumulator provides an RSA accumulator: a constant-size
// cryptographic commitment to a set of elements that supports batched
// membership proofs, additions, and witness-based deletions. The group is
// the multiplicative group modulo a fixed RSA-2048 modulus, which is of
// unknown order as long as nobody factors the modulus.
package accumulator

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
)

// ErrBadWitness is returned when a membership witness supplied for a
// deletion does not verify against the current accumulator value.
var ErrBadWitness = errors.New("witness does not verify against accumulator")

// Hashable represents the behavior concrete data must exhibit to be
// committed to by an accumulator.
type Hashable interface {
	Hash() []byte
}

// =============================================================================

// Accumulator represents a commitment to a set of elements of some type T
// that exhibits the behavior defined by the Hashable constraint. The zero
// value is not usable; start from Empty.
type Accumulator[T Hashable] struct {
	value *big.Int
}

// Empty constructs an accumulator committing to the empty set.
func Empty[T Hashable]() Accumulator[T] {
	return Accumulator[T]{value: new(big.Int).Set(generator)}
}

// AddWithProof returns a new accumulator committing to the receiver's set
// plus the specified elements, along with a proof usable to verify
// membership of those elements against the new accumulator. The receiver
// is unchanged.
func (a Accumulator[T]) AddWithProof(elems []T) (Accumulator[T], MembershipProof[T]) {
	x := productOfPrimes(elems)
	v := new(big.Int).Exp(a.value, x, modulus)

	return Accumulator[T]{value: v}, MembershipProof[T]{Witness: Witness[T]{Acc: a}}
}

// DeleteWithProof returns a new accumulator committing to the receiver's
// set minus the specified elements, given a current membership witness for
// each. It fails with ErrBadWitness if any witness does not verify against
// the receiver. The returned proof verifies membership of the deleted
// elements against the receiver (the pre-deletion accumulator), and its
// embedded witness is the post-deletion accumulator itself. The receiver
// is unchanged.
func (a Accumulator[T]) DeleteWithProof(elems []ElemWitness[T]) (Accumulator[T], MembershipProof[T], error) {
	cur := a.value
	curExp := big.NewInt(1)

	for _, ew := range elems {
		p := hashToPrime(ew.Elem)

		if new(big.Int).Exp(ew.Witness.Acc.value, p, modulus).Cmp(a.value) != 0 {
			return Accumulator[T]{}, MembershipProof[T]{}, fmt.Errorf("element %v: %w", ew.Elem, ErrBadWitness)
		}

		// Fold this witness into the aggregate with Shamir's trick, so the
		// aggregate is an exponent-(curExp*p) root of the accumulator.
		agg, err := shamirTrick(cur, ew.Witness.Acc.value, curExp, p)
		if err != nil {
			return Accumulator[T]{}, MembershipProof[T]{}, fmt.Errorf("element %v: %w", ew.Elem, err)
		}

		cur = agg
		curExp = new(big.Int).Mul(curExp, p)
	}

	after := Accumulator[T]{value: cur}
	return after, MembershipProof[T]{Witness: Witness[T]{Acc: after}}, nil
}

// VerifyMembershipBatch checks that all the specified elements are attested
// present by the proof against the receiver.
func (a Accumulator[T]) VerifyMembershipBatch(elems []T, proof MembershipProof[T]) bool {
	x := productOfPrimes(elems)
	return new(big.Int).Exp(proof.Witness.Acc.value, x, modulus).Cmp(a.value) == 0
}

// Equal reports whether two accumulators commit to the same group value.
func (a Accumulator[T]) Equal(other Accumulator[T]) bool {
	if a.value == nil || other.value == nil {
		return a.value == other.value
	}
	return a.value.Cmp(other.value) == 0
}

// String implements the fmt.Stringer interface for logging. Only a prefix
// of the group value is shown.
func (a Accumulator[T]) String() string {
	if a.value == nil {
		return "acc(nil)"
	}

	s := a.value.Text(16)
	if len(s) > 16 {
		s = s[:16]
	}
	return "acc(" + s + ")"
}

// MarshalJSON implements the json.Marshaler interface by encoding the group
// value as a hex string.
func (a Accumulator[T]) MarshalJSON() ([]byte, error) {
	if a.value == nil {
		return json.Marshal("")
	}
	return json.Marshal(hex.EncodeToString(a.value.Bytes()))
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (a *Accumulator[T]) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		a.value = nil
		return nil
	}

	b, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("decoding accumulator value: %w", err)
	}

	a.value = new(big.Int).SetBytes(b)
	return nil
}

// =============================================================================

// MembershipProof attests that a batch of elements is present in the
// accumulator it was produced against.
type MembershipProof[T Hashable] struct {
	Witness Witness[T] `json:"witness"`
}

// ElemWitness pairs an element with a membership witness for it.
type ElemWitness[T Hashable] struct {
	Elem    T          `json:"elem"`
	Witness Witness[T] `json:"witness"`
}

// =============================================================================

// shamirTrick combines an exponent-x root and an exponent-y root of the
// same group value into an exponent-(x*y) root. x and y must be coprime.
func shamirTrick(rootX, rootY, x, y *big.Int) (*big.Int, error) {
	gcd := new(big.Int)
	a := new(big.Int)
	b := new(big.Int)
	gcd.GCD(a, b, x, y)

	if gcd.Cmp(one) != 0 {
		return nil, fmt.Errorf("exponents are not coprime: %w", ErrBadWitness)
	}

	// rootX^b * rootY^a, with a*x + b*y = 1.
	rb, err := expSigned(rootX, b)
	if err != nil {
		return nil, err
	}
	ra, err := expSigned(rootY, a)
	if err != nil {
		return nil, err
	}

	v := new(big.Int).Mul(rb, ra)
	return v.Mod(v, modulus), nil
}

// expSigned raises base to a possibly negative exponent in the group.
func expSigned(base, exp *big.Int) (*big.Int, error) {
	if exp.Sign() >= 0 {
		return new(big.Int).Exp(base, exp, modulus), nil
	}

	inv := new(big.Int).ModInverse(base, modulus)
	if inv == nil {
		return nil, errors.New("group element is not invertible")
	}

	return new(big.Int).Exp(inv, new(big.Int).Neg(exp), modulus), nil
}
