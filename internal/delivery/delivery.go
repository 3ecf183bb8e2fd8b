// Package delivery holds the transports that expose the application.
package delivery

import "context"

// Delivery is a long-running transport started by the fx app.
type Delivery interface {
	Serve(ctx context.Context) error
}
