// Package social generates multi-platform posts for a brand profile.
package social

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Brand is a content profile loaded from a YAML file.
type Brand struct {
	ID        string   `yaml:"id"`
	Name      string   `yaml:"name"`
	Keywords  []string `yaml:"keywords"`
	Tone      string   `yaml:"tone"`
	Platforms []string `yaml:"platforms"`
}

// ErrBrandNotFound is returned by FindBrand for an unknown id.
var ErrBrandNotFound = errors.New("brand not found")

// LoadBrandFile reads a single brand profile.
func LoadBrandFile(path string) (Brand, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Brand{}, fmt.Errorf("read brand %s: %w", path, err)
	}
	var brand Brand
	if err := yaml.Unmarshal(data, &brand); err != nil {
		return Brand{}, fmt.Errorf("parse brand %s: %w", path, err)
	}
	brand.ID = strings.TrimSpace(brand.ID)
	if brand.ID == "" {
		brand.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if strings.TrimSpace(brand.Name) == "" {
		brand.Name = brand.ID
	}
	return brand, nil
}

// LoadBrands reads every *.yaml and *.yml file in dir, sorted by id. A missing
// directory yields no brands.
func LoadBrands(dir string) ([]Brand, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read brands dir: %w", err)
	}
	var brands []Brand
	seen := map[string]string{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".yaml", ".yml":
		default:
			continue
		}
		path := filepath.Join(dir, entry.Name())
		brand, err := LoadBrandFile(path)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[brand.ID]; ok {
			return nil, fmt.Errorf("brand %q defined in both %s and %s", brand.ID, prev, path)
		}
		seen[brand.ID] = path
		brands = append(brands, brand)
	}
	sort.Slice(brands, func(i, j int) bool { return brands[i].ID < brands[j].ID })
	return brands, nil
}

// FindBrand returns the brand with the given id.
func FindBrand(brands []Brand, id string) (Brand, error) {
	id = strings.TrimSpace(id)
	for _, brand := range brands {
		if brand.ID == id {
			return brand, nil
		}
	}
	return Brand{}, fmt.Errorf("%w: %q", ErrBrandNotFound, id)
}
