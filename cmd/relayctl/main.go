package main

import (
	"fmt"
	"os"

	"github.com/architeacher/svc-message-relay/internal/cli"
	"github.com/architeacher/svc-message-relay/internal/config"
	"github.com/architeacher/svc-message-relay/internal/runtime"
)

func main() {
	version := config.ServiceVersion
	if version == "" {
		version = "dev"
	}

	if err := cli.NewRootCommand(version, runtime.NewPublisher().Publish).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
