// Package messaging is a broker-agnostic publish/consume client.
//
// NATS, NSQ, Kafka and Google Pub/Sub are supported behind the Messaging
// interface and selected by driver name with NewFromDriver. Consumers block
// until their context is done; with auto-ack enabled a nil handler error acks
// the message and a non-nil error nacks it where the broker supports that.
package messaging
