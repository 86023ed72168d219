// Package queue provides a reliability layer over a RabbitMQ broker: a
// consumer lifecycle that survives broker and network failures, a disposition
// policy that turns every delivery into exactly one ack, nack or reject, and a
// publisher that fails over across several broker endpoints.
//
// # Overview
//
// The package is built around three components:
//
//   - ConnectionManager owns one connection and one channel against one of
//     several endpoints. It rotates round-robin through the endpoints on
//     connect, declares exchange, queue and binding in order, consumes with a
//     prefetch of one and reconnects after unexpected closures.
//   - Consumer applies the disposition policy to each delivery and delegates
//     the business logic to a Processor.
//   - FailoverPublisher publishes persistent messages to a Queue or Exchange
//     target, optionally in confirm mode, and folds every failure into a
//     PublishMessageError.
//
// # Basic Usage
//
// Consuming messages:
//
//	manager, err := queue.NewConnectionManager(urls, queue.Topology{
//		Exchange:     "relay.events",
//		ExchangeType: "topic",
//		Queue:        "relay.input",
//		BindingKey:   "order.*",
//		Durable:      true,
//	}, queue.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//
//	quarantine, err := queue.NewFailoverPublisher(urls,
//		queue.NewQueueTarget("relay.quarantine"),
//		queue.WithConfirmDelivery(true),
//	)
//	if err != nil {
//		return err
//	}
//
//	processor := queue.ProcessorFunc(func(ctx context.Context, body, txID string) error {
//		if !valid(body) {
//			return queue.BadMessage(errInvalid)
//		}
//
//		return nil
//	})
//
//	consumer, err := queue.NewConsumer(manager, quarantine, processor)
//	if err != nil {
//		return err
//	}
//
//	return manager.Run(ctx, consumer.HandleDelivery)
//
// # Disposition Policy
//
// For every delivery the Consumer, in order:
//
//  1. rejects without requeue when the x-delivery-count header is missing,
//  2. rejects without requeue when tx_id is missing and WithRequireTxID is on,
//  3. calls the Processor with the UTF-8 body and tx_id,
//  4. acks on success,
//  5. on ErrQuarantinable publishes the body to the quarantine sink and rejects
//     without requeue, or rejects with requeue when that publish fails,
//  6. on ErrBadMessage rejects without requeue,
//  7. on ErrRetryable nacks,
//  8. on any other error nacks.
//
// # Connection Lifecycle
//
// The ConnectionManager state moves NEW, CONNECTING, OPEN, CHANNEL_OPEN,
// CONSUMING. An unexpected closure returns to CONNECTING after a fixed delay
// (WithReconnectDelay); failed connect attempts back off with an escalating
// delay (WithConnectBackoff). Stop cancels the consumer, waits for the
// in-flight delivery and closes channel and connection, ending in CLOSED.
//
// # Logging Integration
//
// The package defines a minimal Logger interface. NewLoggerAdapter wraps a
// zerolog.Logger; without a logger nothing is logged.
package queue
