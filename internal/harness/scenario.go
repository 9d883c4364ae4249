package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted sequence of store operations followed by
// expectations on the resulting state.
type Scenario struct {
	// Name uniquely identifies this scenario. Also names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Steps run in order against a fresh in-memory store.
	Steps []Step `yaml:"steps"`

	// Expect is checked once every step has run.
	Expect Expectations `yaml:"expect"`
}

// Step is a single operation. Exactly one of AddProduct or AddMovement is set.
type Step struct {
	AddProduct  *AddProductStep  `yaml:"add_product,omitempty"`
	AddMovement *AddMovementStep `yaml:"add_movement,omitempty"`

	// ExpectError is the outcome the step must fail with: a validation
	// code (E001-E005), "duplicate_product" or "product_not_found".
	// Empty means the step must succeed.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// AddProductStep declares a product.
type AddProductStep struct {
	Name     string `yaml:"name"`
	Quantity string `yaml:"quantity"`
}

// AddMovementStep records a movement. The product is referenced by the
// name it was added under, or by a raw id to exercise unknown products.
type AddMovementStep struct {
	Product   string `yaml:"product,omitempty"`
	ProductID int64  `yaml:"product_id,omitempty"`
	Type      string `yaml:"type,omitempty"` // IN or OUT, default OUT
	Quantity  string `yaml:"quantity"`
}

// Expectations validate the final state. Every section is optional.
type Expectations struct {
	// Products lists every product name in ListProducts order.
	Products []string `yaml:"products,omitempty"`

	// Inventory lists every GetInventory line in order. Each entry is a
	// subset match over name, quantity, declared_quantity, total_out and
	// remaining; remaining: null means "not numeric".
	Inventory []map[string]any `yaml:"inventory,omitempty"`

	// Remaining maps product names to their RemainingForProduct value.
	Remaining map[string]any `yaml:"remaining,omitempty"`

	// Movements is the expected total number of movement rows.
	Movements *int `yaml:"movements,omitempty"`
}

// Step outcome names besides validation codes.
const (
	OutcomeOK               = "ok"
	OutcomeDuplicateProduct = "duplicate_product"
	OutcomeProductNotFound  = "product_not_found"
)

// inventoryFields are the keys an inventory expectation may use.
var inventoryFields = map[string]bool{
	"name":              true,
	"quantity":          true,
	"declared_quantity": true,
	"total_out":         true,
	"remaining":         true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "step:" vs "steps:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// FindScenarios returns the .yaml and .yml files under dir, in lexical
// order. A non-empty filter is a glob matched against the file name
// without its extension.
func FindScenarios(dir, filter string) ([]string, error) {
	if filter != "" {
		if _, err := filepath.Match(filter, ""); err != nil {
			return nil, fmt.Errorf("invalid filter pattern: %w", err)
		}
	}

	files := []string{}
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			if matched, _ := filepath.Match(filter, name); !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("find scenarios in %s: %w", dir, err)
	}

	return files, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if strings.ContainsAny(s.Name, `/\`) {
		return fmt.Errorf("name %q must not contain path separators", s.Name)
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}

	for i, line := range s.Expect.Inventory {
		for key := range line {
			if !inventoryFields[key] {
				return fmt.Errorf("expect.inventory[%d]: unknown field %q", i, key)
			}
		}
	}

	if s.Expect.Movements != nil && *s.Expect.Movements < 0 {
		return fmt.Errorf("expect.movements must be non-negative")
	}

	return nil
}

// validateStep validates a single step.
func validateStep(index int, step Step) error {
	switch {
	case step.AddProduct == nil && step.AddMovement == nil:
		return fmt.Errorf("steps[%d]: one of add_product or add_movement is required", index)
	case step.AddProduct != nil && step.AddMovement != nil:
		return fmt.Errorf("steps[%d]: add_product and add_movement are mutually exclusive", index)
	}

	if m := step.AddMovement; m != nil {
		if (m.Product == "") == (m.ProductID == 0) {
			return fmt.Errorf("steps[%d].add_movement: exactly one of product or product_id is required", index)
		}
	}

	return nil
}
