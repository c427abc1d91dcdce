package main

import (
	"fmt"
	"os"

	"github.com/theapemachine/qexp/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Printf("There was an exception. %v\n", err)
		os.Exit(1)
	}
}
