// Package domain holds image generation DTOs and ports
package domain

// GenerateInput is the generation request
type GenerateInput struct {
	Prompt         string `json:"prompt"          validate:"required,max=1000"`
	NegativePrompt string `json:"negative_prompt" validate:"omitempty,max=500"`
	Width          int    `json:"width"           validate:"omitempty,min=64,max=1024"`
	Height         int    `json:"height"          validate:"omitempty,min=64,max=1024"`
	Model          string `json:"model"           validate:"omitempty,max=200"`
	Format         string `json:"format"          validate:"omitempty,oneof=jpeg png"`
}

// GenerateOutput carries the generated image inline as base64
type GenerateOutput struct {
	Image    string `json:"image"`
	MimeType string `json:"mime_type"`
	Model    string `json:"model"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}
