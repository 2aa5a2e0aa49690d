package model

import "fmt"

const (
	FieldStates = "states"
	FieldCities = "cities"
)

// ExcludeOptions controls which nested arrays are left out of a country
// document. The zero value includes everything.
type ExcludeOptions struct {
	ExcludeStates bool `json:"exclude_states"`
	ExcludeCities bool `json:"exclude_cities"`
}

// ForCollection returns the options used by multi-result queries, which
// never carry cities regardless of what the caller asked for.
func (o ExcludeOptions) ForCollection() ExcludeOptions {
	o.ExcludeCities = true
	return o
}

// ResolveProjection lists the top-level fields to omit for the given options.
func ResolveProjection(o ExcludeOptions) []string {
	var omit []string
	if o.ExcludeStates {
		omit = append(omit, FieldStates)
	}
	if o.ExcludeCities {
		omit = append(omit, FieldCities)
	}
	return omit
}

// LookupField is the closed set of country attributes a lookup may target.
type LookupField int

const (
	FieldName LookupField = iota + 1
	FieldCapital
	FieldRegion
	FieldSubregion
)

var lookupFieldKeys = map[LookupField]string{
	FieldName:      "name",
	FieldCapital:   "capital",
	FieldRegion:    "region",
	FieldSubregion: "subregion",
}

// Key returns the document key the field is stored under.
func (f LookupField) Key() string {
	return lookupFieldKeys[f]
}

func (f LookupField) Valid() bool {
	_, ok := lookupFieldKeys[f]
	return ok
}

func (f LookupField) String() string {
	if k, ok := lookupFieldKeys[f]; ok {
		return k
	}
	return fmt.Sprintf("LookupField(%d)", int(f))
}

// ParseLookupField maps a document key back to its LookupField.
func ParseLookupField(key string) (LookupField, bool) {
	for f, k := range lookupFieldKeys {
		if k == key {
			return f, true
		}
	}
	return 0, false
}

// IndexedLookupFields lists every field that needs a single-field index.
func IndexedLookupFields() []string {
	return []string{
		FieldName.Key(),
		FieldCapital.Key(),
		FieldRegion.Key(),
		FieldSubregion.Key(),
	}
}
