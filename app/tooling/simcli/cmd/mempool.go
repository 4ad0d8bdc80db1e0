package cmd

import (
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/spf13/cobra"
)

var mempoolCmd = &cobra.Command{
	Use:   "mempool",
	Short: "Print the uncommitted transactions.",
	Run:   mempoolRun,
}

var accumCmd = &cobra.Command{
	Use:   "accumulator",
	Short: "Print the current accumulator snapshot.",
	Run:   accumRun,
}

func init() {
	rootCmd.AddCommand(mempoolCmd)
	rootCmd.AddCommand(accumCmd)
}

func mempoolRun(cmd *cobra.Command, args []string) {
	get("/v1/tx/uncommitted/list")
}

func accumRun(cmd *cobra.Command, args []string) {
	get("/v1/accumulator")
}

func get(path string) {
	resp, err := http.Get(url + path)
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(string(body))
}
