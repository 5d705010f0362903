// Package delivery defines the contract for inbound transport servers.
package delivery

import "context"

// Delivery is a long-running server surface. Serve blocks until the server
// stops; shutdown is driven through the fx lifecycle.
type Delivery interface {
	Serve(ctx context.Context) error
}
