package geo

import (
	"errors"
	"sort"
	"strings"
)

var ErrUnknownBuilding = errors.New("unknown building")

// BuildingTable is a read-only mapping of building names to their reference coordinate.
type BuildingTable struct {
	coords map[string]Coordinate
}

// NewBuildingTable copies `buildings` into a new BuildingTable; later changes to the map are not seen.
func NewBuildingTable(buildings map[string]Coordinate) *BuildingTable {
	coords := make(map[string]Coordinate, len(buildings))
	for name, c := range buildings {
		coords[strings.TrimSpace(name)] = c
	}
	return &BuildingTable{coords: coords}
}

// Lookup returns the reference coordinate of the named building or ErrUnknownBuilding.
// Names are matched exactly, ignoring surrounding whitespace.
func (bt *BuildingTable) Lookup(name string) (Coordinate, error) {
	if c, ok := bt.coords[strings.TrimSpace(name)]; ok {
		return c, nil
	}
	return Coordinate{}, ErrUnknownBuilding
}

// Names returns the sorted building names.
func (bt *BuildingTable) Names() []string {
	names := make([]string, 0, len(bt.coords))
	for name := range bt.coords {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (bt *BuildingTable) Len() int { return len(bt.coords) }

// CampusBuildings returns the default set of check-in locations (approximate building centers).
func CampusBuildings() map[string]Coordinate {
	return map[string]Coordinate{
		"Gates":       {40.44361511780627, -79.94447839755829},
		"Wean":        {40.442741984780234, -79.94574936521462},
		"Newell":      {40.44343619117864, -79.9456159806902},
		"Tepper":      {40.445123938296916, -79.94528688421317},
		"CFA":         {40.44160102767352, -79.94291396863714},
		"Purnell":     {40.4435767517987, -79.94352475320801},
		"Miller":      {40.44389802861458, -79.94329803911742},
		"Margaret":    {40.442146764785406, -79.94153828941452},
		"Mellon":      {40.446180208306394, -79.95112186641965},
		"Doherty":     {40.442501207155246, -79.94458888238812},
		"Scaife":      {40.44184968597645, -79.94733101135822},
		"Hamerschlag": {40.44244579336064, -79.94691902436426},
		"Porter":      {40.441716595669135, -79.9460103801308},
		"Scott":       {40.44302566337631, -79.94679875360116},
		"Baker":       {40.44151334119467, -79.94499873220663},
		"Posner":      {40.4410693526565, -79.9422943907734},
		"Hamburg":     {40.44423347564315, -79.94556537945613},
	}
}
