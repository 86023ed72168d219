package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/architeacher/svc-message-relay/internal/domain"
	"github.com/architeacher/svc-message-relay/internal/usecases/commands"
)

// PublishOptions holds flags for the publish command.
type PublishOptions struct {
	*RootOptions
	Body        string
	MessageType string
	TxID        string
	RoutingKey  string
}

// NewPublishCommand creates the publish command.
func NewPublishCommand(rootOpts *RootOptions, publish PublishFunc) *cobra.Command {
	opts := &PublishOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a message onto the consumed exchange",
		Long: `Publish a JSON message onto the exchange the relay consumes from.

The body is read from --body, or from stdin when --body is not given. The
message is validated the same way the relay validates it on arrival.

Example:
  relayctl publish --type order.created --body '{"id":42}'
  echo '{"type":"order.cancelled","id":42}' | relayctl publish --tx-id 7f1c`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPublish(cmd, opts, publish)
		},
	}

	cmd.Flags().StringVarP(&opts.Body, "body", "b", "", "message body as JSON")
	cmd.Flags().StringVarP(&opts.MessageType, "type", "t", "", "set the type field of the body")
	cmd.Flags().StringVar(&opts.TxID, "tx-id", "", "transaction id, generated when empty")
	cmd.Flags().StringVarP(&opts.RoutingKey, "routing-key", "k", "", "routing key, defaults to the message type")

	return cmd
}

func runPublish(cmd *cobra.Command, opts *PublishOptions, publish PublishFunc) error {
	body := opts.Body

	if !cmd.Flags().Changed("body") {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read body from stdin: %w", err)
		}

		body = string(raw)
	}

	if messageType := strings.TrimSpace(opts.MessageType); messageType != "" {
		typed, err := domain.WithMessageType(body, domain.MessageType(messageType))
		if err != nil {
			return fmt.Errorf("invalid --body: %w", err)
		}

		body = typed
	}

	result, err := publish(cmd.Context(), commands.PublishMessageCommand{
		Body:       body,
		TxID:       opts.TxID,
		RoutingKey: opts.RoutingKey,
	})
	if err != nil {
		return err
	}

	if opts.Quiet {
		fmt.Fprintln(cmd.OutOrStdout(), result.TxID)

		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "published message %s\n", result.MessageID)
	fmt.Fprintf(cmd.OutOrStdout(), "  tx_id:       %s\n", result.TxID)
	fmt.Fprintf(cmd.OutOrStdout(), "  routing_key: %s\n", result.RoutingKey)

	return nil
}
