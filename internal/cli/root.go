package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/architeacher/svc-message-relay/internal/domain"
	"github.com/architeacher/svc-message-relay/internal/usecases/commands"
)

// PublishFunc injects a single message and reports where it went.
type PublishFunc func(ctx context.Context, cmd commands.PublishMessageCommand) (*domain.PublishResult, error)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Quiet bool
}

// NewRootCommand creates the root command of the relay operator CLI.
func NewRootCommand(version string, publish PublishFunc) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "relayctl",
		Short: "Operate the message relay",
		Long: `relayctl talks to the brokers the relay consumes from.
Broker and topology settings are read from the same environment as the relay.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Quiet, "quiet", "q", false, "print only the transaction id")

	cmd.AddCommand(NewPublishCommand(opts, publish))

	return cmd
}
