package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/duynhne/loaner-service/internal/cli"
	"github.com/duynhne/loaner-service/internal/client"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			fmt.Fprintln(os.Stderr, "\nOperation cancelled")
			os.Exit(130)
		}

		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		switch {
		case errors.Is(err, cli.ErrNotSignedIn), errors.Is(err, client.ErrUnauthorized):
			os.Exit(3)
		case errors.Is(err, cli.ErrNotPermitted), errors.Is(err, client.ErrForbidden):
			os.Exit(4)
		default:
			os.Exit(1)
		}
	}
}
