// Package driving provides interfaces for presentation layers (primary/inbound ports).
package driving
