// Package reference holds injectable lookup data: the officer directory and
// the jurisdiction geocoding table used by dashboards.
package reference

import (
	"sort"
	"strings"

	"grievance-service/internal/model"
)

type Officer struct {
	Name       string `json:"name" mapstructure:"name"`
	City       string `json:"city" mapstructure:"city"`
	State      string `json:"state" mapstructure:"state"`
	Department string `json:"department" mapstructure:"department"`
}

type CityCenter struct {
	City  string  `json:"city" mapstructure:"city"`
	State string  `json:"state" mapstructure:"state"`
	Lat   float64 `json:"lat" mapstructure:"lat"`
	Lng   float64 `json:"lng" mapstructure:"lng"`
}

type Directory struct {
	officers []Officer
	byName   map[string]Officer
	centers  map[string]CityCenter
}

func NewDirectory(officers []Officer, centers []CityCenter) *Directory {
	d := &Directory{
		officers: append([]Officer(nil), officers...),
		byName:   make(map[string]Officer, len(officers)),
		centers:  make(map[string]CityCenter, len(centers)),
	}
	sort.SliceStable(d.officers, func(i, j int) bool { return d.officers[i].Name < d.officers[j].Name })
	for _, o := range officers {
		d.byName[strings.ToLower(o.Name)] = o
	}
	for _, c := range centers {
		d.centers[strings.ToLower(c.City)] = c
	}
	return d
}

// Empty reports whether no officers are configured, in which case
// assignment is not checked against the directory.
func (d *Directory) Empty() bool {
	return d == nil || len(d.officers) == 0
}

// Officer looks up an officer by case-insensitive name.
func (d *Directory) Officer(name string) (Officer, bool) {
	if d == nil {
		return Officer{}, false
	}
	o, ok := d.byName[strings.ToLower(strings.TrimSpace(name))]
	return o, ok
}

// OfficersFor lists officers visible to a viewer: officers see their city,
// admins their state.
func (d *Directory) OfficersFor(v model.Viewer) []Officer {
	out := []Officer{}
	if d == nil {
		return out
	}
	for _, o := range d.officers {
		switch v.Role {
		case model.RoleOfficer:
			if v.Jurisdiction.City != "" && o.City == v.Jurisdiction.City {
				out = append(out, o)
			}
		case model.RoleAdmin:
			if v.Jurisdiction.State != "" && o.State == v.Jurisdiction.State {
				out = append(out, o)
			}
		}
	}
	return out
}

// Center returns the geocoded center of a city, if known.
func (d *Directory) Center(city string) (*model.GeoPoint, bool) {
	if d == nil {
		return nil, false
	}
	c, ok := d.centers[strings.ToLower(city)]
	if !ok {
		return nil, false
	}
	return &model.GeoPoint{Lat: c.Lat, Lng: c.Lng}, true
}
