package worker_test

import (
	"context"
	"testing"
	"time"

	"github.com/accumlabs/ledgersim/foundation/broadcast"
	"github.com/accumlabs/ledgersim/foundation/ledger/bridge"
	"github.com/accumlabs/ledgersim/foundation/ledger/database"
	"github.com/accumlabs/ledgersim/foundation/ledger/genesis"
	"github.com/accumlabs/ledgersim/foundation/ledger/state"
	"github.com/accumlabs/ledgersim/foundation/ledger/user"
	"github.com/accumlabs/ledgersim/foundation/ledger/worker"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

// TestMinersConverge runs a leader and a follower against a bridge and one
// live user and waits for both miners to accept the same chain.
func TestMinersConverge(t *testing.T) {
	t.Log("Given the need to validate miners converge through forged blocks.")
	{
		t.Logf("\tTest 0:\tWhen running a leader, a follower, a bridge and a user.")
		{
			gen := genesis.Create([]database.UserID{1})

			txs := broadcast.NewTopic[database.Transaction]()
			blocks := broadcast.NewTopic[database.Block]()
			requests := broadcast.NewTopic[bridge.WitnessRequest]()
			responses := broadcast.NewTopic[bridge.WitnessResponse]()
			updates := broadcast.NewTopic[bridge.UserUpdate]()

			leader := state.New(state.Config{AccumStart: gen.Accum})
			follower := state.New(state.Config{AccumStart: gen.Accum})

			wLeader := worker.Run(worker.Config{
				State:         leader,
				Leader:        true,
				BlockInterval: 50 * time.Millisecond,
				TxSub:         txs.Subscribe("miner-0"),
				BlockSub:      blocks.Subscribe("miner-0"),
				BlockPub:      blocks,
			})
			defer wLeader.Shutdown()

			wFollower := worker.Run(worker.Config{
				State:    follower,
				TxSub:    txs.Subscribe("miner-1"),
				BlockSub: blocks.Subscribe("miner-1"),
				BlockPub: blocks,
			})
			defer wFollower.Shutdown()

			b := bridge.Run(bridge.Config{
				AccumStart:  gen.Accum,
				Users:       []database.UserID{1},
				Witnesses:   gen.Witnesses,
				BlockSub:    blocks.Subscribe("bridge"),
				RequestSub:  requests.Subscribe("bridge"),
				ResponsePub: responses,
				UpdatePub:   updates,
			})
			defer b.Shutdown()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			u := user.New(user.Config{
				ID:          1,
				InitUtxos:   gen.Utxos,
				RequestPub:  requests,
				ResponseSub: responses.Subscribe("user-1"),
				UpdateSub:   updates.Subscribe("user-1"),
				TxPub:       txs,
				MaxRetries:  10,
				RetryBase:   50 * time.Millisecond,
			})

			userDone := make(chan error, 1)
			go func() {
				userDone <- u.Run(ctx)
			}()

			// Wait for at least two blocks on both miners.
			deadline := time.After(10 * time.Second)
			for follower.LatestHeight() < 2 || leader.LatestHeight() < 2 {
				select {
				case <-deadline:
					t.Fatalf("\t%s\tTest 0:\tShould reach height 2 on both miners: leader %d, follower %d.", failed, leader.LatestHeight(), follower.LatestHeight())
				case <-time.After(25 * time.Millisecond):
				}
			}
			t.Logf("\t%s\tTest 0:\tShould reach height 2 on both miners.", success)

			cancel()
			if err := <-userDone; err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould stop the user cleanly: %s", failed, err)
			}

			// A block can still be in flight right after cancelling; wait
			// for the miners to settle on the same height.
			deadline = time.After(5 * time.Second)
			for leader.LatestHeight() != follower.LatestHeight() {
				select {
				case <-deadline:
					t.Fatalf("\t%s\tTest 0:\tShould settle on equal heights, leader %d follower %d.", failed, leader.LatestHeight(), follower.LatestHeight())
				case <-time.After(25 * time.Millisecond):
				}
			}
			t.Logf("\t%s\tTest 0:\tShould settle on equal heights.", success)

			if !leader.Accumulator().Equal(follower.Accumulator()) {
				t.Fatalf("\t%s\tTest 0:\tShould hold equal accumulator snapshots.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould hold equal accumulator snapshots.", success)
		}
	}
}
