// Package metadata builds asset metadata documents for generated images.
// Construction is pure: no I/O, and identical inputs produce identical output.
package metadata

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TitleMaxRunes is the display-truncation threshold for the title field.
// The verbatim prompt is always preserved in the Prompt attribute and the
// description regardless of truncation.
const TitleMaxRunes = 50

// generatorName tags metadata documents with their producing application
const generatorName = "Ablo Image Generator"

// Attribute is a single trait on an asset metadata document
type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

// AssetMetadata is the document stored alongside a registered image.
// Field set and values are deterministic for a given BuildInput.
type AssetMetadata struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Image       string      `json:"image"`
	MediaHash   string      `json:"media_hash,omitempty"`
	Attributes  []Attribute `json:"attributes"`
}

// BuildInput carries everything the builder needs
type BuildInput struct {
	ImageCID  string
	MediaHash string
	Prompt    string
	Style     string
	Model     string
	Creator   string
}

// Build constructs an AssetMetadata from in. Attributes appear in a fixed
// order: Prompt, Style, Model, Creator (when set), Generator.
func Build(in BuildInput) AssetMetadata {
	// a cases.Caser is stateful and not safe for concurrent use, so each
	// call gets its own; registrations build metadata concurrently
	titleCaser := cases.Title(language.English)

	style := in.Style
	if style == "" {
		style = "Default"
	}

	desc := fmt.Sprintf("AI generated image with prompt: %s", in.Prompt)
	if in.Style != "" {
		desc += fmt.Sprintf(" in style: %s", in.Style)
	}

	attrs := []Attribute{
		{TraitType: "Prompt", Value: in.Prompt},
		{TraitType: "Style", Value: titleCaser.String(style)},
	}
	if in.Model != "" {
		attrs = append(attrs, Attribute{TraitType: "Model", Value: in.Model})
	}
	if in.Creator != "" {
		attrs = append(attrs, Attribute{TraitType: "Creator", Value: in.Creator})
	}
	attrs = append(attrs, Attribute{TraitType: "Generator", Value: generatorName})

	return AssetMetadata{
		Name:        "AI Generated Art: " + truncate(in.Prompt, TitleMaxRunes),
		Description: desc,
		Image:       "ipfs://" + in.ImageCID,
		MediaHash:   in.MediaHash,
		Attributes:  attrs,
	}
}

// truncate cuts s to max runes with an ellipsis; shorter strings pass through verbatim
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
