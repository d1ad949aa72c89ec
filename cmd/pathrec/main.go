// Command pathrec inspects computation graphs and runs simulated
// architecture searches over them, reporting how often each node lies on
// a live path to the output.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "pathrec:", err)
		stop()
		os.Exit(1)
	}
}
