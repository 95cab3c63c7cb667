package gateway

import "context"

// Gateway defines a common interface for all payment providers
type Gateway interface {
	Initiate(ctx context.Context, req InitiateRequest) (InitiateResponse, error)
	Verify(ctx context.Context, req VerifyRequest) (VerifyResponse, error)
}
