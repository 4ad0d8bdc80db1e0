package events_test

import (
	"testing"

	"github.com/accumlabs/ledgersim/foundation/events"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func TestParse(t *testing.T) {
	t.Log("Given the need to turn component reports into typed events.")
	{
		t.Logf("\tTest 0:\tWhen parsing a report with a source prefix.")
		{
			evt := events.Parse("user 1: issued tx")

			if evt.Source != "user 1" {
				t.Fatalf("\t%s\tTest 0:\tShould extract the source, got %q.", failed, evt.Source)
			}
			if evt.Message != "issued tx" {
				t.Fatalf("\t%s\tTest 0:\tShould extract the message, got %q.", failed, evt.Message)
			}
			if evt.Time.IsZero() {
				t.Fatalf("\t%s\tTest 0:\tShould stamp the event time.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould split source and message.", success)
		}

		t.Logf("\tTest 1:\tWhen parsing a report without a source prefix.")
		{
			evt := events.Parse("plain message")

			if evt.Source != "sim" {
				t.Fatalf("\t%s\tTest 1:\tShould fall back to the sim source, got %q.", failed, evt.Source)
			}
			if evt.Message != "plain message" {
				t.Fatalf("\t%s\tTest 1:\tShould keep the full message, got %q.", failed, evt.Message)
			}
			t.Logf("\t%s\tTest 1:\tShould fall back to the sim source.", success)
		}
	}
}

func TestFanOut(t *testing.T) {
	t.Log("Given the need to deliver events to every registered viewer.")
	{
		t.Logf("\tTest 0:\tWhen sending with two viewers registered.")
		{
			evts := events.New()
			defer evts.Shutdown()

			a := evts.Acquire("viewer-a")
			b := evts.Acquire("viewer-b")

			evts.Send(events.Event{Source: "state", Message: "accepted block 1"})

			for name, ch := range map[string]chan events.Event{"a": a, "b": b} {
				select {
				case evt := <-ch:
					if evt.Source != "state" {
						t.Fatalf("\t%s\tTest 0:\tShould deliver the source to viewer %s, got %q.", failed, name, evt.Source)
					}
					if evt.Time.IsZero() {
						t.Fatalf("\t%s\tTest 0:\tShould stamp an unset time on delivery to viewer %s.", failed, name)
					}
				default:
					t.Fatalf("\t%s\tTest 0:\tShould have an event buffered for viewer %s.", failed, name)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould deliver a stamped event to every viewer.", success)

			if err := evts.Release("viewer-a"); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould release viewer a: %s.", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould release a registered viewer.", success)
		}
	}
}
