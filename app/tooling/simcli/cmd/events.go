package cmd

import (
	"fmt"
	"log"
	"strings"

	"github.com/accumlabs/ledgersim/foundation/events"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Stream the simulation's event feed.",
	Run:   eventsRun,
}

func init() {
	rootCmd.AddCommand(eventsCmd)
}

func eventsRun(cmd *cobra.Command, args []string) {
	wsURL := strings.Replace(url, "http", "ws", 1) + "/v1/events"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	for {
		var evt events.Event
		if err := conn.ReadJSON(&evt); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%s [%s] %s\n", evt.Time.Format("15:04:05.000"), evt.Source, evt.Message)
	}
}
