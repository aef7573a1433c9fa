package domain

import (
	"context"

	hf "ablo/internal/adapters/inference/huggingface"
)

// ServicePort is the interface implemented by the images service
type ServicePort interface {
	Generate(ctx context.Context, in GenerateInput) (GenerateOutput, error)
}

// InferencePort is the slice of the inference client the service needs
type InferencePort interface {
	Generate(ctx context.Context, p hf.GenerateParams) (hf.Image, error)
	Model() string
}
