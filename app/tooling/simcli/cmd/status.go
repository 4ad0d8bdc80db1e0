package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/spf13/cobra"
)

type minerStatus struct {
	Miner       int    `json:"miner"`
	Height      uint64 `json:"height"`
	Mempool     int    `json:"mempool"`
	Accumulator string `json:"accumulator"`
}

type statusResponse struct {
	Miners []minerStatus `json:"miners"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the height and pool size of every miner.",
	Run:   statusRun,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func statusRun(cmd *cobra.Command, args []string) {
	resp, err := http.Get(fmt.Sprintf("%s/v1/node/status", url))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	var status statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		log.Fatal(err)
	}

	for _, m := range status.Miners {
		fmt.Printf("miner %d: height %d, mempool %d, %s\n", m.Miner, m.Height, m.Mempool, m.Accumulator)
	}
}
