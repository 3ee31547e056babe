package config

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/arbor/internal/attr"
)

var ErrUnknownPreset = errors.New("config: unknown preset")

// Preset is a named attribute table.
type Preset struct {
	Name        string
	Description string
	Table       attr.Table
}

var Presets = map[string]Preset{
	"classic": {
		Name:        "classic",
		Description: "the stock table",
		Table:       attr.DefaultTable(),
	},
	"willow": {
		Name:        "willow",
		Description: "long trunk, wide drooping fan",
		Table: attr.Table{
			attr.Length:     {Initial: 80, VaryBy: 10, Min: attr.Bound(50), Max: attr.Bound(110)},
			attr.Divergence: {Initial: 55, VaryBy: 20, Min: attr.Bound(35), Max: attr.Bound(80)},
			attr.Reduction:  {Initial: 0.7, VaryBy: 0.1, Min: attr.Bound(0.6), Max: attr.Bound(0.78)},
			attr.LineWidth:  {Initial: 4, VaryBy: 0},
			attr.Branchings: {Initial: 4, VaryBy: 2, Min: attr.Bound(3), Max: attr.Bound(8), Round: true},
		},
	},
	"shrub": {
		Name:        "shrub",
		Description: "short and bushy",
		Table: attr.Table{
			attr.Length:     {Initial: 35, VaryBy: 8, Min: attr.Bound(20), Max: attr.Bound(50)},
			attr.Divergence: {Initial: 45, VaryBy: 25, Min: attr.Bound(20), Max: attr.Bound(70)},
			attr.Reduction:  {Initial: 0.72, VaryBy: 0.1, Min: attr.Bound(0.6), Max: attr.Bound(0.8)},
			attr.LineWidth:  {Initial: 5, VaryBy: 0},
			attr.Branchings: {Initial: 5, VaryBy: 1, Min: attr.Bound(3), Max: attr.Bound(7), Round: true},
		},
	},
	"conifer": {
		Name:        "conifer",
		Description: "narrow and tall",
		Table: attr.Table{
			attr.Length:     {Initial: 90, VaryBy: 10, Min: attr.Bound(60), Max: attr.Bound(110)},
			attr.Divergence: {Initial: 15, VaryBy: 8, Min: attr.Bound(5), Max: attr.Bound(25)},
			attr.Reduction:  {Initial: 0.68, VaryBy: 0.08, Min: attr.Bound(0.55), Max: attr.Bound(0.75)},
			attr.LineWidth:  {Initial: 6, VaryBy: 0},
			attr.Branchings: {Initial: 5, VaryBy: 1, Min: attr.Bound(4), Max: attr.Bound(8), Round: true},
		},
	},
	"bonsai": {
		Name:        "bonsai",
		Description: "small with few generations",
		Table: attr.Table{
			attr.Length:     {Initial: 40, VaryBy: 5, Min: attr.Bound(30), Max: attr.Bound(50)},
			attr.Divergence: {Initial: 40, VaryBy: 15, Min: attr.Bound(25), Max: attr.Bound(60)},
			attr.Reduction:  {Initial: 0.6, VaryBy: 0.05, Min: attr.Bound(0.5), Max: attr.Bound(0.65)},
			attr.LineWidth:  {Initial: 8, VaryBy: 0},
			attr.Branchings: {Initial: 3, VaryBy: 1, Min: attr.Bound(2), Max: attr.Bound(4), Round: true},
		},
	},
}

// GetPreset returns the named preset. An unknown name gets the closest
// known name as a hint.
func GetPreset(name string) (Preset, error) {
	p, ok := Presets[name]
	if !ok {
		if s := attr.Suggest(name, ListPresets()); s != "" {
			return Preset{}, fmt.Errorf("%w: %q (did you mean %q?)", ErrUnknownPreset, name, s)
		}
		return Preset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return p, nil
}

// ListPresets returns the preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
