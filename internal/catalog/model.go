package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Good is a catalog entry served by the upstream catalog. Prices are whole currency units.
type Good struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Price          int64  `json:"price"`
	IsArenda       bool   `json:"is_arenda"`
	DeliveryPrice  int64  `json:"delivery_price"`
	ArendaContract int64  `json:"arenda_contract"`
	Description    string `json:"description,omitempty"`
	Unit           string `json:"unit,omitempty"`
	Photo          string `json:"photo,omitempty"`
	City           City   `json:"city"`
	DeliveryTerms  string `json:"delivery_terms,omitempty"`
	ArendaTerms    string `json:"arenda_terms,omitempty"`
}

type Category struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Photo        string `json:"photo"`
	RequiresCity bool   `json:"requires_city"`
}

// City is a warehouse city. The upstream sends it as an object, a bare name or a bare id.
type City struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (c City) String() string {
	if c.Name != "" {
		return c.Name
	}
	if c.ID != 0 {
		return strconv.FormatInt(c.ID, 10)
	}
	return ""
}

func (c *City) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = City{}
		return nil
	}

	switch data[0] {
	case '"':
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return fmt.Errorf("failed to decode city name: %w", err)
		}
		*c = City{Name: name}
		return nil
	case '{':
		type plain City
		var p plain
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("failed to decode city object: %w", err)
		}
		*c = City(p)
		return nil
	default:
		id, err := strconv.ParseInt(string(data), 10, 64)
		if err != nil {
			return fmt.Errorf("unsupported city value %s: %w", data, err)
		}
		*c = City{ID: id}
		return nil
	}
}
