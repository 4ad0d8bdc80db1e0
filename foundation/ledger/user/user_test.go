package user_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/accumlabs/ledgersim/foundation/broadcast"
	"github.com/accumlabs/ledgersim/foundation/ledger/bridge"
	"github.com/accumlabs/ledgersim/foundation/ledger/database"
	"github.com/accumlabs/ledgersim/foundation/ledger/genesis"
	"github.com/accumlabs/ledgersim/foundation/ledger/state"
	"github.com/accumlabs/ledgersim/foundation/ledger/user"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func TestRoundTrip(t *testing.T) {
	t.Log("Given the need to validate a user's full spend round.")
	{
		t.Logf("\tTest 0:\tWhen spending a seed output through a bridge and miner.")
		{
			gen := genesis.Create([]database.UserID{7})

			blocks := broadcast.NewTopic[database.Block]()
			requests := broadcast.NewTopic[bridge.WitnessRequest]()
			responses := broadcast.NewTopic[bridge.WitnessResponse]()
			updates := broadcast.NewTopic[bridge.UserUpdate]()
			txs := broadcast.NewTopic[database.Transaction]()

			b := bridge.Run(bridge.Config{
				AccumStart:  gen.Accum,
				Users:       []database.UserID{7},
				Witnesses:   gen.Witnesses,
				BlockSub:    blocks.Subscribe("bridge"),
				RequestSub:  requests.Subscribe("bridge"),
				ResponsePub: responses,
				UpdatePub:   updates,
			})
			defer b.Shutdown()

			miner := state.New(state.Config{AccumStart: gen.Accum})
			txSub := txs.Subscribe("miner")

			u := user.New(user.Config{
				ID:          7,
				InitUtxos:   gen.Utxos,
				RequestPub:  requests,
				ResponseSub: responses.Subscribe("user-7"),
				UpdateSub:   updates.Subscribe("user-7"),
				TxPub:       txs,
				MaxRetries:  5,
				RetryBase:   100 * time.Millisecond,
			})

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			done := make(chan error, 1)
			go func() {
				done <- u.Run(ctx)
			}()

			recvTx := func() database.Transaction {
				select {
				case tx := <-txSub:
					return tx
				case <-time.After(5 * time.Second):
					t.Fatalf("\t%s\tTest 0:\tShould receive a transaction from the user.", failed)
					return database.Transaction{}
				}
			}

			// Play the mining side for the first round.
			tx := recvTx()
			if len(tx.Spent) != 1 || tx.Spent[0].Elem.ID != gen.Utxos[0].ID {
				t.Fatalf("\t%s\tTest 0:\tShould spend the seed output.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould spend the seed output.", success)

			if len(tx.Created) < 1 || len(tx.Created) > 2 {
				t.Fatalf("\t%s\tTest 0:\tShould create one or two outputs, got %d.", failed, len(tx.Created))
			}
			t.Logf("\t%s\tTest 0:\tShould create one or two outputs.", success)

			miner.SubmitTransaction(tx)
			block, err := miner.ForgeBlock()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to forge the user's transaction: %s", failed, err)
			}
			if err := miner.ValidateBlock(block); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to validate the block: %s", failed, err)
			}
			blocks.Send(block)

			// A second transaction proves the update was applied and a new
			// round started from the refreshed output set.
			tx2 := recvTx()
			spent2 := tx2.Spent[0].Elem
			var fromCreated bool
			for _, utxo := range tx.Created {
				if utxo.ID == spent2.ID {
					fromCreated = true
				}
			}
			if !fromCreated {
				t.Fatalf("\t%s\tTest 0:\tShould spend an output created in the first round.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould spend an output created in the first round.", success)

			cancel()
			if err := <-done; err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould stop cleanly on cancel: %s", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould stop cleanly on cancel.", success)

			// The seed is gone and the first round's outputs are held.
			if u.Holds(gen.Utxos[0].ID) {
				t.Fatalf("\t%s\tTest 0:\tShould no longer hold the spent seed output.", failed)
			}
			for _, utxo := range tx.Created {
				if !u.Holds(utxo.ID) {
					t.Fatalf("\t%s\tTest 0:\tShould hold every output created in the first round.", failed)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould hold exactly the outputs created in the first round.", success)
		}
	}
}

func TestRetriesExhausted(t *testing.T) {
	t.Log("Given the need to validate the witness retry loop is bounded.")
	{
		t.Logf("\tTest 0:\tWhen no responder answers witness requests.")
		{
			requests := broadcast.NewTopic[bridge.WitnessRequest]()
			responses := broadcast.NewTopic[bridge.WitnessResponse]()
			updates := broadcast.NewTopic[bridge.UserUpdate]()
			txs := broadcast.NewTopic[database.Transaction]()

			u := user.New(user.Config{
				ID:          1,
				InitUtxos:   []database.Utxo{database.NewUtxo(1)},
				RequestPub:  requests,
				ResponseSub: responses.Subscribe("user-1"),
				UpdateSub:   updates.Subscribe("user-1"),
				TxPub:       txs,
				MaxRetries:  2,
				RetryBase:   10 * time.Millisecond,
			})

			err := u.Run(context.Background())
			if !errors.Is(err, user.ErrRetriesExhausted) {
				t.Fatalf("\t%s\tTest 0:\tShould fail with retries exhausted, got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould fail with retries exhausted.", success)
		}
	}
}
