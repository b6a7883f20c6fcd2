package social_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"mediastudio/internal/apiclient"
	"mediastudio/internal/services"
	"mediastudio/internal/social"
)

func writeBrand(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("write brand: %v", err)
	}
}

func TestLoadBrandsReadsYAML(t *testing.T) {
	dir := t.TempDir()
	writeBrand(t, dir, "zeta.yaml", "id: zeta\nname: Zeta Labs\ntone: playful\nkeywords: [ai, security]\nplatforms: [instagram, tiktok]\n")
	writeBrand(t, dir, "acme.yml", "name: Acme\nplatforms: [linkedin]\n")
	writeBrand(t, dir, "notes.txt", "ignored")

	brands, err := social.LoadBrands(dir)
	if err != nil {
		t.Fatalf("LoadBrands returned error: %v", err)
	}
	if len(brands) != 2 {
		t.Fatalf("expected 2 brands, got %d", len(brands))
	}
	if brands[0].ID != "acme" {
		t.Fatalf("expected id derived from filename, got %q", brands[0].ID)
	}
	zeta, err := social.FindBrand(brands, "zeta")
	if err != nil {
		t.Fatalf("FindBrand returned error: %v", err)
	}
	if zeta.Tone != "playful" || len(zeta.Keywords) != 2 || len(zeta.Platforms) != 2 {
		t.Fatalf("unexpected brand %+v", zeta)
	}
	if _, err := social.FindBrand(brands, "missing"); !errors.Is(err, social.ErrBrandNotFound) {
		t.Fatalf("expected ErrBrandNotFound, got %v", err)
	}
}

func TestLoadBrandsMissingDirIsEmpty(t *testing.T) {
	brands, err := social.LoadBrands(filepath.Join(t.TempDir(), "none"))
	if err != nil || len(brands) != 0 {
		t.Fatalf("expected no brands and no error, got %v %v", brands, err)
	}
}

func TestLoadBrandsRejectsDuplicates(t *testing.T) {
	dir := t.TempDir()
	writeBrand(t, dir, "a.yaml", "id: same\n")
	writeBrand(t, dir, "b.yaml", "id: same\n")
	if _, err := social.LoadBrands(dir); err == nil {
		t.Fatal("expected duplicate id error")
	}
}

type fakeClient struct {
	calls []apiclient.ContentRequest
	env   apiclient.Envelope[apiclient.ContentResponse]
}

func (f *fakeClient) GenerateContent(_ context.Context, req apiclient.ContentRequest) apiclient.Envelope[apiclient.ContentResponse] {
	f.calls = append(f.calls, req)
	return f.env
}

func TestGenerateValidatesBeforeCalling(t *testing.T) {
	client := &fakeClient{}
	gen := social.NewGenerator(client, "", nil)
	brand := social.Brand{ID: "acme"}

	if _, err := gen.Generate(context.Background(), brand, "  "); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for empty topic, got %v", err)
	}
	if _, err := gen.Generate(context.Background(), social.Brand{}, "ai"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for missing brand, got %v", err)
	}
	if len(client.calls) != 0 {
		t.Fatalf("expected no calls, got %d", len(client.calls))
	}
}

func TestGenerateSendsBrandPlatformsAndGoal(t *testing.T) {
	client := &fakeClient{env: apiclient.Envelope[apiclient.ContentResponse]{
		Success: true,
		Data: &apiclient.ContentResponse{Status: "success", ContentPackage: apiclient.ContentPackage{
			Topic: "ai",
			Platforms: map[string]apiclient.PlatformContent{
				"tiktok":    {Caption: "b"},
				"instagram": {Caption: "a"},
			},
		}},
	}}
	gen := social.NewGenerator(client, "", nil)
	pkg, err := gen.Generate(context.Background(), social.Brand{ID: "acme", Platforms: []string{"instagram", "tiktok"}}, " ai ")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	req := client.calls[0]
	if req.CampaignGoal != "engagement" || req.Topic != "ai" || req.BrandID != "acme" || len(req.Platforms) != 2 {
		t.Fatalf("unexpected request %+v", req)
	}
	names := social.PlatformNames(pkg)
	if names[0] != "instagram" || names[1] != "tiktok" {
		t.Fatalf("unexpected platform order %v", names)
	}
}

func TestGenerateSurfacesFailure(t *testing.T) {
	client := &fakeClient{env: apiclient.Envelope[apiclient.ContentResponse]{
		Error: "client error: 422 Unprocessable Entity",
		Err:   services.Wrap(services.ErrClient, "apiclient", "generate content", "rejected", nil),
	}}
	_, err := social.NewGenerator(client, "awareness", nil).Generate(context.Background(), social.Brand{ID: "acme"}, "ai", "linkedin")
	if !errors.Is(err, services.ErrClient) {
		t.Fatalf("expected client error, got %v", err)
	}
	if client.calls[0].CampaignGoal != "awareness" || client.calls[0].Platforms[0] != "linkedin" {
		t.Fatalf("unexpected request %+v", client.calls[0])
	}
}
