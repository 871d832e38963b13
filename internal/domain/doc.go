// Package domain defines the core domain types and interfaces.
//
// This package contains the chat-platform and sheet-provider contracts plus
// the tagged error kinds shared by every hunt component. No implementation
// code - just contracts. Prevents circular imports by keeping interfaces on
// the consumer side.
package domain
