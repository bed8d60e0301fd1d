package disc

import "context"

// InsertHandler is called for each disc insertion on the watched device.
// Calls are serialized with event delivery.
type InsertHandler func(ctx context.Context, device string) error
