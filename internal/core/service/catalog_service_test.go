package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/chaeso/delivery-api/internal/core/domain"
	"github.com/chaeso/delivery-api/internal/core/ports"
)

type stubPhotoStore struct {
	keys   []string
	bodies []string
	err    error
}

func (s *stubPhotoStore) Put(_ context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	b, _ := io.ReadAll(body)
	s.keys = append(s.keys, key)
	s.bodies = append(s.bodies, string(b))
	return "https://cdn.example.com/" + key, nil
}

func newCatalog(photos ports.PhotoStore) (*CatalogService, stubProductRepo) {
	repo := stubProductRepo{newMemStore()}
	return NewCatalogService(repo, photos, discardLogger), repo
}

func productInput(name string) ports.CreateProductInput {
	return ports.CreateProductInput{Name: name, Value: decimal.RequireFromString("19.90"), WeightKg: "0.5"}
}

func TestCatalogService_CreateProduct_Success(t *testing.T) {
	svc, repo := newCatalog(nil)

	p, err := svc.CreateProduct(context.Background(), productInput("  Pizza  "))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "Pizza" {
		t.Errorf("expected trimmed name, got %q", p.Name)
	}
	if !p.Value.Equal(decimal.RequireFromString("19.9")) {
		t.Errorf("unexpected value %s", p.Value)
	}
	if len(repo.products) != 1 {
		t.Fatalf("expected 1 stored product, got %d", len(repo.products))
	}
}

func TestCatalogService_CreateProduct_DuplicateNameIsValidationError(t *testing.T) {
	svc, repo := newCatalog(nil)

	if _, err := svc.CreateProduct(context.Background(), productInput("Pizza")); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	_, err := svc.CreateProduct(context.Background(), productInput("Pizza"))

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := verr.Fields["name"]; !ok {
		t.Errorf("validation error must name the field, got %v", verr.Fields)
	}
	if !errors.Is(err, domain.ErrDuplicateProductName) {
		t.Errorf("expected ErrDuplicateProductName in chain")
	}
	if len(repo.products) != 1 {
		t.Fatalf("expected exactly one product, got %d", len(repo.products))
	}
}

// racingProductRepo reports the name as free but loses the insert to the
// unique index, as a concurrent request would.
type racingProductRepo struct{ stubProductRepo }

func (r racingProductRepo) FindByName(context.Context, string) (*domain.Product, error) {
	return nil, domain.ErrProductNotFound
}

func TestCatalogService_CreateProduct_LostRaceIsValidationError(t *testing.T) {
	repo := racingProductRepo{stubProductRepo{newMemStore()}}
	svc := NewCatalogService(repo, nil, discardLogger)

	_, _ = svc.CreateProduct(context.Background(), productInput("Pizza"))
	_, err := svc.CreateProduct(context.Background(), productInput("Pizza"))

	var verr *domain.ValidationError
	if !errors.As(err, &verr) || !errors.Is(err, domain.ErrDuplicateProductName) {
		t.Fatalf("expected duplicate-name ValidationError, got %v", err)
	}
}

func TestCatalogService_CreateProduct_NameValidation(t *testing.T) {
	svc, _ := newCatalog(nil)

	for _, name := range []string{"", "   ", strings.Repeat("x", 101)} {
		var verr *domain.ValidationError
		if _, err := svc.CreateProduct(context.Background(), productInput(name)); !errors.As(err, &verr) {
			t.Errorf("name %q: expected ValidationError, got %v", name, err)
		}
	}
}

func TestCatalogService_CreateProduct_ValueAndWeightValidation(t *testing.T) {
	svc, _ := newCatalog(nil)

	tests := []struct {
		name  string
		value string
		field string
	}{
		{"negative", "-1", "value"},
		{"three decimals", "19.999", "value"},
		{"too large", "100000000", "value"},
	}
	for _, tt := range tests {
		in := productInput("Item " + tt.name)
		in.Value = decimal.RequireFromString(tt.value)

		var verr *domain.ValidationError
		_, err := svc.CreateProduct(context.Background(), in)
		if !errors.As(err, &verr) {
			t.Errorf("%s: expected ValidationError, got %v", tt.name, err)
			continue
		}
		if _, ok := verr.Fields[tt.field]; !ok {
			t.Errorf("%s: expected field %q, got %v", tt.name, tt.field, verr.Fields)
		}
	}

	noWeight := productInput("Weightless")
	noWeight.WeightKg = " "
	var verr *domain.ValidationError
	if _, err := svc.CreateProduct(context.Background(), noWeight); !errors.As(err, &verr) {
		t.Errorf("blank weight: expected ValidationError, got %v", err)
	}
}

func TestCatalogService_UpdateProduct_RenameOntoExistingName(t *testing.T) {
	svc, _ := newCatalog(nil)
	_, _ = svc.CreateProduct(context.Background(), productInput("Pizza"))
	burger, _ := svc.CreateProduct(context.Background(), productInput("Burger"))

	_, err := svc.UpdateProduct(context.Background(), ports.UpdateProductInput{ID: burger.ID, Name: strPtr("Pizza")})
	if !errors.Is(err, domain.ErrDuplicateProductName) {
		t.Fatalf("expected duplicate name error, got %v", err)
	}
}

func TestCatalogService_UpdateProduct_KeepOwnName(t *testing.T) {
	svc, _ := newCatalog(nil)
	p, _ := svc.CreateProduct(context.Background(), productInput("Pizza"))
	value := decimal.RequireFromString("25.5")

	updated, err := svc.UpdateProduct(context.Background(), ports.UpdateProductInput{ID: p.ID, Name: strPtr("Pizza"), Value: &value})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated.Value.Equal(value) {
		t.Fatalf("expected value %s, got %s", value, updated.Value)
	}
}

func TestCatalogService_DeleteProduct_NotFound(t *testing.T) {
	svc, _ := newCatalog(nil)

	if err := svc.DeleteProduct(context.Background(), 42); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Photos
// ---------------------------------------------------------------------------

func TestCatalogService_AttachPhoto_StoresURL(t *testing.T) {
	photos := &stubPhotoStore{}
	svc, repo := newCatalog(photos)
	p, _ := svc.CreateProduct(context.Background(), productInput("Pizza"))

	updated, err := svc.AttachPhoto(context.Background(), p.ID, ports.PhotoUpload{
		Filename:    "pizza.JPG",
		ContentType: "image/jpeg",
		Size:        4,
		Body:        strings.NewReader("jpeg"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(photos.keys) != 1 || !strings.HasSuffix(photos.keys[0], ".jpg") {
		t.Fatalf("unexpected object keys: %v", photos.keys)
	}
	if photos.bodies[0] != "jpeg" {
		t.Errorf("body not forwarded: %q", photos.bodies[0])
	}
	if updated.Photo != "https://cdn.example.com/"+photos.keys[0] || repo.products[p.ID].Photo != updated.Photo {
		t.Errorf("photo URL not persisted: %q", updated.Photo)
	}
}

func TestCatalogService_AttachPhoto_Disabled(t *testing.T) {
	svc, _ := newCatalog(nil)
	p, _ := svc.CreateProduct(context.Background(), productInput("Pizza"))

	_, err := svc.AttachPhoto(context.Background(), p.ID, ports.PhotoUpload{ContentType: "image/png", Body: strings.NewReader("x")})
	if !errors.Is(err, domain.ErrPhotoStorageDisabled) {
		t.Fatalf("expected ErrPhotoStorageDisabled, got %v", err)
	}
}

func TestCatalogService_AttachPhoto_RejectsNonImage(t *testing.T) {
	svc, _ := newCatalog(&stubPhotoStore{})
	p, _ := svc.CreateProduct(context.Background(), productInput("Pizza"))

	_, err := svc.AttachPhoto(context.Background(), p.ID, ports.PhotoUpload{ContentType: "text/plain", Body: strings.NewReader("x")})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
