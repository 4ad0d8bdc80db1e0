package accumulator

import (
	"fmt"
	"math/big"
)

// Witness is the data needed to prove a single element's membership in an
// accumulator: an exponent root of the accumulator value.
type Witness[T Hashable] struct {
	Acc Accumulator[T] `json:"acc"`
}

// Verify checks that the witness attests membership of the specified
// element in the specified accumulator.
func (w Witness[T]) Verify(elem T, acc Accumulator[T]) bool {
	p := hashToPrime(elem)
	return new(big.Int).Exp(w.Acc.value, p, modulus).Cmp(acc.value) == 0
}

// MoveAfterAdd returns the witness updated for an accumulator that has had
// the specified elements added since the witness was produced.
func (w Witness[T]) MoveAfterAdd(added []T) Witness[T] {
	x := productOfPrimes(added)
	v := new(big.Int).Exp(w.Acc.value, x, modulus)

	return Witness[T]{Acc: Accumulator[T]{value: v}}
}

// MoveAfterDelete returns the witness for elem updated for the accumulator
// that resulted from deleting the specified elements. It fails if elem is
// itself among the deleted elements.
func (w Witness[T]) MoveAfterDelete(elem T, after Accumulator[T], deleted []T) (Witness[T], error) {
	if len(deleted) == 0 {
		return w, nil
	}

	p := hashToPrime(elem)
	d := productOfPrimes(deleted)

	gcd := new(big.Int)
	a := new(big.Int)
	b := new(big.Int)
	gcd.GCD(a, b, p, d)

	if gcd.Cmp(one) != 0 {
		return Witness[T]{}, fmt.Errorf("element %v was deleted, witness can't be updated", elem)
	}

	// With a*p + b*d = 1: (after^a * w^b)^p == after.
	va, err := expSigned(after.value, a)
	if err != nil {
		return Witness[T]{}, err
	}
	vb, err := expSigned(w.Acc.value, b)
	if err != nil {
		return Witness[T]{}, err
	}

	v := new(big.Int).Mul(va, vb)
	v.Mod(v, modulus)

	return Witness[T]{Acc: Accumulator[T]{value: v}}, nil
}

// MemberWitnesses computes a membership witness for each of the specified
// elements, relative to the accumulator that results from adding all of
// them to base.
func MemberWitnesses[T Hashable](base Accumulator[T], added []T) []Witness[T] {
	total := productOfPrimes(added)

	witnesses := make([]Witness[T], len(added))
	for i, elem := range added {
		// The exponent for this element's witness is the product of every
		// other element's prime, which divides the total exactly.
		x := new(big.Int).Quo(total, hashToPrime(elem))
		v := new(big.Int).Exp(base.value, x, modulus)
		witnesses[i] = Witness[T]{Acc: Accumulator[T]{value: v}}
	}

	return witnesses
}
