// Package audit implements async dispatch of security events.
//
// # Components
//
//   - [Sink] — interface for event consumers (channel, JSON writer, zap, no-op).
//   - [Dispatcher] — buffered async relay with drop-if-full / block-if-full semantics.
//   - [Event] — structured security record with timestamp, type, account, IP, metadata.
//
// # Architecture boundaries
//
// This package owns event buffering and sink delivery. It does NOT decide
// which events to emit — that responsibility belongs to the Engine flows.
//
// # What this package must NOT do
//
//   - Filter or suppress events based on business logic.
//   - Carry plaintext passwords or token material in any field.
//   - Import authcore or any sibling internal package.
package audit
