package main

import (
	"context"
	"fmt"
	"os"

	"azoom-rental-backend/internal/cli"
)

func main() {
	if err := cli.NewRootCommand(cli.LoadApp).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
