// Package seed provides the fixed collections the stores start from.
package seed

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/Skotchmaster/storefront/internal/models"
)

//go:embed seed.yaml
var raw []byte

type Data struct {
	Admins     []models.AdminUser  `yaml:"admins"`
	Customers  []models.Customer   `yaml:"customers"`
	Categories []models.Category   `yaml:"categories"`
	Reviews    []models.Review     `yaml:"reviews"`
	Products   []models.Product    `yaml:"products"`
	Orders     []models.Order      `yaml:"orders"`
	Sales      []models.SalesPoint `yaml:"sales"`
}

// Load parses the embedded seed and attaches reviews to their products.
// Every call returns independent collections.
func Load() (Data, error) {
	return Parse(raw)
}

func Parse(b []byte) (Data, error) {
	var d Data
	if err := yaml.Unmarshal(b, &d); err != nil {
		return Data{}, fmt.Errorf("parse seed: %w", err)
	}

	byProduct := make(map[string][]models.Review, len(d.Products))
	for _, r := range d.Reviews {
		byProduct[r.ProductID] = append(byProduct[r.ProductID], r)
	}
	for i := range d.Products {
		reviews := byProduct[d.Products[i].ID]
		if reviews == nil {
			reviews = []models.Review{}
		}
		d.Products[i].Reviews = reviews
	}
	return d, nil
}

func MustLoad() Data {
	d, err := Load()
	if err != nil {
		panic(err)
	}
	return d
}
