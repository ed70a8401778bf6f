// SPDX-License-Identifier: MIT

// Command gramfit fits weighted least-squares and ridge models on CSV data
// with the block Gram/Cholesky pipeline.
//
//	gramfit fit  --data d.csv --response y --numeric x1,x2 --categorical g
//	gramfit gram --data d.csv --response y --numeric x1,x2 --categorical g
package main

import (
	"context"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
