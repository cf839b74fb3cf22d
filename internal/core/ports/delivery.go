package ports

import "context"

// DeliveryService hands confirmation tokens to an out-of-process transport.
type DeliveryService interface {
	SendConfirmation(ctx context.Context, address, token string) error
}
