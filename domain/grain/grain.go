package grain

import (
	"fmt"
	"strings"

	lo "github.com/samber/lo"
)

// Grain is one of the commodities published in the weekly report.
type Grain string

const (
	Wheat      Grain = "Wheat"
	Barley     Grain = "Barley"
	Corn       Grain = "Corn"
	Oat        Grain = "Oat"
	Rye        Grain = "Rye"
	Canola     Grain = "Canola"
	Soybeans   Grain = "Soybeans"
	AmberDurum Grain = "Amber Durum"
)

// Item is the measure reported for a grain.
type Item string

const (
	Domestic           Item = "Domestic"
	ProducerDeliveries Item = "Producer Deliveries"
	Exports            Item = "Exports"
	ProducerShipments  Item = "Producer Shipments"
)

// Grains lists the selectable commodities in display order.
var Grains = []Grain{Wheat, Barley, Corn, Oat, Rye, Canola, Soybeans, AmberDurum}

// Items lists the selectable measures in display order.
var Items = []Item{Domestic, ProducerDeliveries, Exports, ProducerShipments}

// Observation is one row of the weekly report: the cumulative value of a
// grain/item for a crop year as of a grain week.
type Observation struct {
	Grain     string  `json:"grain"`
	Item      string  `json:"item"`
	CropYear  int     `json:"crop_year"`
	GrainWeek int     `json:"grain_week"`
	Value     float64 `json:"value"`
}

// Selection is the (grain, item) pair a report is built for.
type Selection struct {
	Grain Grain `json:"grain"`
	Item  Item  `json:"item"`
}

func (s Selection) String() string { return fmt.Sprintf("%s/%s", s.Grain, s.Item) }

// Matches reports whether the observation belongs to the selection.
func (s Selection) Matches(o Observation) bool {
	return o.Grain == string(s.Grain) && o.Item == string(s.Item)
}

// ParseGrain resolves a grain name case-insensitively.
func ParseGrain(s string) (Grain, error) {
	if g, ok := lo.Find(Grains, func(g Grain) bool { return equalFoldTrim(string(g), s) }); ok {
		return g, nil
	}
	return "", fmt.Errorf("unknown grain %q", s)
}

// ParseItem resolves an item name case-insensitively.
func ParseItem(s string) (Item, error) {
	if it, ok := lo.Find(Items, func(it Item) bool { return equalFoldTrim(string(it), s) }); ok {
		return it, nil
	}
	return "", fmt.Errorf("unknown item %q", s)
}

// ParseSelection resolves both halves of a selection.
func ParseSelection(grainName, itemName string) (Selection, error) {
	g, err := ParseGrain(grainName)
	if err != nil {
		return Selection{}, err
	}
	it, err := ParseItem(itemName)
	if err != nil {
		return Selection{}, err
	}
	return Selection{Grain: g, Item: it}, nil
}

func equalFoldTrim(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
