package models

import (
	"encoding/json"
	"fmt"
)

type CategoryType string

const (
	CategoryDentition CategoryType = "DENTITION"
	CategoryAgeGroup  CategoryType = "AGE_GROUP"
	CategoryClass     CategoryType = "CLASS"
)

// categoryValues is the closed taxonomy. A Category outside it cannot be built via NewCategory
// or decoded from JSON.
var categoryValues = map[CategoryType][]string{
	CategoryDentition: {"MILK", "TWO", "FOUR", "SIX"},
	CategoryAgeGroup:  {"SUB_JUNIOR", "JUNIOR", "SENIOR"},
	CategoryClass:     {"GENERAL", "NEW", "OLD"},
}

// Category партиционирует ранжирование. Сравнимая структура, используется как ключ map.
type Category struct {
	Type  CategoryType `json:"type"`
	Value string       `json:"value"`
}

func NewCategory(categoryType CategoryType, value string) (Category, error) {
	values, ok := categoryValues[categoryType]
	if !ok {
		return Category{}, fmt.Errorf("unknown category type %q", categoryType)
	}
	for _, v := range values {
		if v == value {
			return Category{Type: categoryType, Value: value}, nil
		}
	}
	return Category{}, fmt.Errorf("value %q is not valid for category type %s", value, categoryType)
}

func (c Category) IsZero() bool {
	return c.Type == "" && c.Value == ""
}

// Key is the stable ordering key used by leaderboards, e.g. "AGE_GROUP:JUNIOR".
func (c Category) Key() string {
	return string(c.Type) + ":" + c.Value
}

func (c Category) String() string {
	return c.Key()
}

func (c *Category) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type  CategoryType `json:"type"`
		Value string       `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := NewCategory(raw.Type, raw.Value)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
