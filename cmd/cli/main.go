package main

import (
	"context"
	"fmt"
	"os"

	"github.com/de-tools/pos-atlas/pkg/runtime/terminal"
	"github.com/rs/zerolog"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(zerolog.WarnLevel).
		With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	cli := terminal.NewCLI(terminal.Options{
		Envs:   terminal.NewEnv,
		Output: os.Stdout,
	})

	if err := cli.ExecuteContext(ctx, os.Args[1:]...); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
