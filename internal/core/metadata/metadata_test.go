package metadata

import (
	"reflect"
	"strings"
	"sync"
	"testing"
)

func TestBuildIsPure(t *testing.T) {
	in := BuildInput{
		ImageCID:  "bafyimagecid",
		MediaHash: "0xabc",
		Prompt:    "a cat wearing a hat",
		Style:     "watercolor",
		Model:     "flux",
		Creator:   "0xCAFE",
	}
	a := Build(in)
	b := Build(in)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("Build is not deterministic:\n%+v\n%+v", a, b)
	}
}

func TestBuildBasicFields(t *testing.T) {
	out := Build(BuildInput{
		ImageCID: "bafyimagecid",
		Prompt:   "a cat wearing a hat",
		Style:    "watercolor",
	})

	if out.Name != "AI Generated Art: a cat wearing a hat" {
		t.Fatalf("Name = %q", out.Name)
	}
	if out.Image != "ipfs://bafyimagecid" {
		t.Fatalf("Image = %q", out.Image)
	}
	if want := "AI generated image with prompt: a cat wearing a hat in style: watercolor"; out.Description != want {
		t.Fatalf("Description = %q, want %q", out.Description, want)
	}
}

func TestBuildTruncatesTitleOnly(t *testing.T) {
	prompt := strings.Repeat("x", TitleMaxRunes+10)
	out := Build(BuildInput{ImageCID: "cid", Prompt: prompt})

	wantName := "AI Generated Art: " + strings.Repeat("x", TitleMaxRunes) + "..."
	if out.Name != wantName {
		t.Fatalf("Name = %q, want %q", out.Name, wantName)
	}

	// the verbatim prompt survives in both the attribute and the description
	if got := attrValue(t, out, "Prompt"); got != prompt {
		t.Fatalf("Prompt attribute = %q, want verbatim prompt", got)
	}
	if !strings.Contains(out.Description, prompt) {
		t.Fatalf("Description lost the verbatim prompt: %q", out.Description)
	}
}

func TestBuildShortTitleHasNoEllipsis(t *testing.T) {
	prompt := strings.Repeat("y", TitleMaxRunes)
	out := Build(BuildInput{ImageCID: "cid", Prompt: prompt})
	if strings.HasSuffix(out.Name, "...") {
		t.Fatalf("exact-length prompt was truncated: %q", out.Name)
	}
}

func TestBuildTruncatesByRunesNotBytes(t *testing.T) {
	prompt := strings.Repeat("é", TitleMaxRunes+1)
	out := Build(BuildInput{ImageCID: "cid", Prompt: prompt})
	wantName := "AI Generated Art: " + strings.Repeat("é", TitleMaxRunes) + "..."
	if out.Name != wantName {
		t.Fatalf("Name = %q, want %q", out.Name, wantName)
	}
}

func TestBuildStyleAttribute(t *testing.T) {
	out := Build(BuildInput{ImageCID: "cid", Prompt: "p", Style: "comic book"})
	if got := attrValue(t, out, "Style"); got != "Comic Book" {
		t.Fatalf("Style attribute = %q, want %q", got, "Comic Book")
	}

	out = Build(BuildInput{ImageCID: "cid", Prompt: "p"})
	if got := attrValue(t, out, "Style"); got != "Default" {
		t.Fatalf("empty style attribute = %q, want Default", got)
	}
	if strings.Contains(out.Description, "in style") {
		t.Fatalf("empty style leaked into description: %q", out.Description)
	}
}

func TestBuildAttributeOrder(t *testing.T) {
	out := Build(BuildInput{
		ImageCID: "cid",
		Prompt:   "p",
		Style:    "pixel",
		Model:    "flux",
		Creator:  "0xCAFE",
	})

	var got []string
	for _, a := range out.Attributes {
		got = append(got, a.TraitType)
	}
	want := []string{"Prompt", "Style", "Model", "Creator", "Generator"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("attribute order = %v, want %v", got, want)
	}

	// optional traits drop out without disturbing the rest
	out = Build(BuildInput{ImageCID: "cid", Prompt: "p"})
	got = nil
	for _, a := range out.Attributes {
		got = append(got, a.TraitType)
	}
	want = []string{"Prompt", "Style", "Generator"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("attribute order = %v, want %v", got, want)
	}
}

func attrValue(t *testing.T, m AssetMetadata, trait string) string {
	t.Helper()
	for _, a := range m.Attributes {
		if a.TraitType == trait {
			return a.Value
		}
	}
	t.Fatalf("attribute %q not present", trait)
	return ""
}

func TestBuildConcurrent(t *testing.T) {
	in := BuildInput{
		ImageCID: "bafyimagecid",
		Prompt:   "a cat wearing a hat",
		Style:    "comic book",
	}
	want := Build(in)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				if got := Build(in); !reflect.DeepEqual(got, want) {
					t.Errorf("concurrent Build diverged:\n%+v\n%+v", got, want)
					return
				}
			}
		}()
	}
	wg.Wait()
}
