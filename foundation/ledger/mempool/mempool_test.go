package mempool_test

import (
	"testing"

	"github.com/accumlabs/ledgersim/foundation/ledger/database"
	"github.com/accumlabs/ledgersim/foundation/ledger/mempool"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func TestDedup(t *testing.T) {
	t.Log("Given the need to validate the pool holds no duplicate transactions.")
	{
		t.Logf("\tTest 0:\tWhen submitting unique and duplicate transactions.")
		{
			mp := mempool.New()

			txs := []database.Transaction{
				database.NewTransaction([]database.Utxo{database.NewUtxo(1)}, nil),
				database.NewTransaction([]database.Utxo{database.NewUtxo(1)}, nil),
				database.NewTransaction([]database.Utxo{database.NewUtxo(2)}, nil),
			}

			for _, tx := range txs {
				if !mp.Upsert(tx) {
					t.Fatalf("\t%s\tTest 0:\tShould be able to add a unique transaction.", failed)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould be able to add unique transactions.", success)

			for _, tx := range txs {
				if mp.Upsert(tx) {
					t.Fatalf("\t%s\tTest 0:\tShould not store a duplicate transaction.", failed)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould not store duplicate transactions.", success)

			if mp.Count() != len(txs) {
				t.Fatalf("\t%s\tTest 0:\tShould have %d transactions in the pool, got %d.", failed, len(txs), mp.Count())
			}
			t.Logf("\t%s\tTest 0:\tShould have %d transactions in the pool.", success, len(txs))
		}
	}
}

func TestOrderAndTruncate(t *testing.T) {
	t.Log("Given the need to validate pool ordering and truncation.")
	{
		t.Logf("\tTest 0:\tWhen submitting transactions in a known order.")
		{
			mp := mempool.New()

			txs := []database.Transaction{
				database.NewTransaction([]database.Utxo{database.NewUtxo(1)}, nil),
				database.NewTransaction([]database.Utxo{database.NewUtxo(2)}, nil),
				database.NewTransaction([]database.Utxo{database.NewUtxo(3)}, nil),
			}

			for _, tx := range txs {
				mp.Upsert(tx)
			}

			cpy := mp.Copy()
			if len(cpy) != len(txs) {
				t.Fatalf("\t%s\tTest 0:\tShould get back %d transactions, got %d.", failed, len(txs), len(cpy))
			}
			for i, tx := range cpy {
				if !tx.Equal(txs[i]) {
					t.Fatalf("\t%s\tTest 0:\tShould get back transactions in first submission order.", failed)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould get back transactions in first submission order.", success)

			mp.Truncate()
			if mp.Count() != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould be able to truncate the pool.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to truncate the pool.", success)
		}
	}
}
