package domain

import "context"

// ServicePort is the interface implemented by the assets service
type ServicePort interface {
	Prepare(ctx context.Context, in PrepareInput) (PrepareOutput, error)
	Register(ctx context.Context, in RegisterInput) (RegistrationView, error)
	Verify(ctx context.Context, in VerifyInput) (VerifyOutput, error)
	Registration(id string) (RegistrationView, error)
}
