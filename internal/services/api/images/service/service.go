// Package service contains the image generation workflow
package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/jpeg"
	"image/png"

	hf "ablo/internal/adapters/inference/huggingface"
	perr "ablo/internal/platform/errors"
	"ablo/internal/platform/logger"
	"ablo/internal/services/api/images/domain"
)

const dimensionDefault = 512

// Service is the public service port
type Service interface{ domain.ServicePort }

// Svc implements the service port
type Svc struct {
	inference domain.InferencePort
	log       logger.Logger
}

// New constructs the service
func New(inference domain.InferencePort) *Svc {
	if inference == nil {
		panic("images.Service requires a non nil InferencePort")
	}
	return &Svc{
		inference: inference,
		log:       *logger.Named("images"),
	}
}

// Generate runs one inference call and returns the image base64-encoded.
// When the caller asked for a specific format the provider output is
// re-encoded as needed; MimeType reports the delivered encoding
func (s *Svc) Generate(ctx context.Context, in domain.GenerateInput) (domain.GenerateOutput, error) {
	width := in.Width
	if width == 0 {
		width = dimensionDefault
	}
	height := in.Height
	if height == 0 {
		height = dimensionDefault
	}

	img, err := s.inference.Generate(ctx, hf.GenerateParams{
		Prompt:         in.Prompt,
		NegativePrompt: in.NegativePrompt,
		Width:          width,
		Height:         height,
		Model:          in.Model,
	})
	if err != nil {
		return domain.GenerateOutput{}, err
	}

	img, err = convertFormat(img, in.Format)
	if err != nil {
		return domain.GenerateOutput{}, err
	}

	model := in.Model
	if model == "" {
		model = s.inference.Model()
	}
	s.log.Debug().
		Str("model", model).
		Int("bytes", len(img.Bytes)).
		Str("mime_type", img.MimeType).
		Msg("image generated")

	return domain.GenerateOutput{
		Image:    base64.StdEncoding.EncodeToString(img.Bytes),
		MimeType: img.MimeType,
		Model:    model,
		Width:    width,
		Height:   height,
	}, nil
}

// jpegQuality applies when re-encoding provider output to jpeg
const jpegQuality = 90

// convertFormat re-encodes the provider image when the caller asked for a
// specific format; no-op when the provider already delivered it
func convertFormat(img hf.Image, format string) (hf.Image, error) {
	var wantMime string
	switch format {
	case "":
		return img, nil
	case "jpeg":
		wantMime = "image/jpeg"
	case "png":
		wantMime = "image/png"
	}
	if img.MimeType == wantMime {
		return img, nil
	}

	decoded, _, err := image.Decode(bytes.NewReader(img.Bytes))
	if err != nil {
		return hf.Image{}, perr.Wrapf(err, perr.ErrorCodeUpstream, "images: provider returned undecodable %s content", img.MimeType)
	}

	var buf bytes.Buffer
	switch format {
	case "jpeg":
		err = jpeg.Encode(&buf, decoded, &jpeg.Options{Quality: jpegQuality})
	case "png":
		err = png.Encode(&buf, decoded)
	}
	if err != nil {
		return hf.Image{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "images: %s encode failed", format)
	}
	return hf.Image{Bytes: buf.Bytes(), MimeType: wantMime}, nil
}
