package accumulator_test

import (
	"testing"

	"github.com/accumlabs/ledgersim/foundation/accumulator"
	"github.com/stretchr/testify/require"
)

type elem string

func (e elem) Hash() []byte {
	return []byte(e)
}

func pair(e elem, w accumulator.Witness[elem]) accumulator.ElemWitness[elem] {
	return accumulator.ElemWitness[elem]{Elem: e, Witness: w}
}

func TestAddVerify(t *testing.T) {
	base := accumulator.Empty[elem]()
	elems := []elem{"a", "b", "c"}

	acc, proof := base.AddWithProof(elems)
	require.True(t, acc.VerifyMembershipBatch(elems, proof))
	require.False(t, base.Equal(acc))

	// The proof must not attest elements that were never added.
	require.False(t, acc.VerifyMembershipBatch([]elem{"a", "z"}, proof))

	// Adding nothing is the identity.
	same, emptyProof := acc.AddWithProof(nil)
	require.True(t, same.Equal(acc))
	require.True(t, same.VerifyMembershipBatch(nil, emptyProof))
}

func TestDeleteWithProof(t *testing.T) {
	base := accumulator.Empty[elem]()
	elems := []elem{"a", "b", "c"}

	acc, _ := base.AddWithProof(elems)
	witnesses := accumulator.MemberWitnesses(base, elems)
	for i, e := range elems {
		require.True(t, witnesses[i].Verify(e, acc))
	}

	after, proof, err := acc.DeleteWithProof([]accumulator.ElemWitness[elem]{
		pair("a", witnesses[0]),
		pair("b", witnesses[1]),
	})
	require.NoError(t, err)

	// The deletion proof verifies against the pre-deletion accumulator and
	// embeds the post-deletion accumulator as its witness.
	require.True(t, acc.VerifyMembershipBatch([]elem{"a", "b"}, proof))
	require.True(t, proof.Witness.Acc.Equal(after))

	// Only "c" remains, so adding "a" and "b" back recreates the original.
	redo, _ := after.AddWithProof([]elem{"a", "b"})
	require.True(t, redo.Equal(acc))
}

func TestDeleteStaleWitness(t *testing.T) {
	base := accumulator.Empty[elem]()

	acc1, _ := base.AddWithProof([]elem{"a"})
	stale := accumulator.MemberWitnesses(base, []elem{"a"})[0]

	// Advance the accumulator without updating the witness.
	acc2, _ := acc1.AddWithProof([]elem{"b"})

	_, _, err := acc2.DeleteWithProof([]accumulator.ElemWitness[elem]{pair("a", stale)})
	require.ErrorIs(t, err, accumulator.ErrBadWitness)
}

func TestWitnessMoveAfterAdd(t *testing.T) {
	base := accumulator.Empty[elem]()
	acc1, _ := base.AddWithProof([]elem{"a"})
	w := accumulator.MemberWitnesses(base, []elem{"a"})[0]

	added := []elem{"b", "c"}
	acc2, _ := acc1.AddWithProof(added)

	moved := w.MoveAfterAdd(added)
	require.True(t, moved.Verify("a", acc2))
	require.False(t, w.Verify("a", acc2))
}

func TestWitnessMoveAfterDelete(t *testing.T) {
	base := accumulator.Empty[elem]()
	elems := []elem{"a", "b", "c"}
	acc, _ := base.AddWithProof(elems)
	witnesses := accumulator.MemberWitnesses(base, elems)

	after, _, err := acc.DeleteWithProof([]accumulator.ElemWitness[elem]{pair("b", witnesses[1])})
	require.NoError(t, err)

	moved, err := witnesses[0].MoveAfterDelete("a", after, []elem{"b"})
	require.NoError(t, err)
	require.True(t, moved.Verify("a", after))

	// A witness can't be moved over its own deletion.
	_, err = witnesses[1].MoveAfterDelete("b", after, []elem{"b"})
	require.Error(t, err)
}
