package main

// Stat names one of the six base stats shown on a detail page.
type Stat string

const (
	StatHP             Stat = "HP"
	StatAttack         Stat = "Attack"
	StatDefense        Stat = "Defense"
	StatSpecialAttack  Stat = "SpecialAttack"
	StatSpecialDefense Stat = "SpecialDefense"
	StatSpeed          Stat = "Speed"
)

// Stats lists the base stats in the order the site displays them.
var Stats = []Stat{StatHP, StatAttack, StatDefense, StatSpecialAttack, StatSpecialDefense, StatSpeed}

// EntityReference is one unique entity from the listing page. Identity is URL.
type EntityReference struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// EntityRecord is the normalised content of one detail page.
// Pointer fields are nil when the page omits the value or it failed to parse.
type EntityRecord struct {
	Name              string       `json:"name"`
	URL               string       `json:"url"`
	CatalogNumber     string       `json:"catalog_number"`
	PrimaryType       string       `json:"primary_type"`
	SecondaryType     *string      `json:"secondary_type,omitempty"`
	Species           *string      `json:"species,omitempty"`
	HeightMeters      *float64     `json:"height_meters,omitempty"`
	WeightKilograms   *float64     `json:"weight_kg,omitempty"`
	GenderRatioMale   *float64     `json:"male,omitempty"`
	GenderRatioFemale *float64     `json:"female,omitempty"`
	IsGenderless      bool         `json:"is_genderless"`
	Stats             map[Stat]int `json:"stats"`
	StatTotal         *int         `json:"total,omitempty"`
}

// HasAllStats reports whether all six base stats were extracted.
func (r *EntityRecord) HasAllStats() bool {
	for _, s := range Stats {
		if _, ok := r.Stats[s]; !ok {
			return false
		}
	}
	return true
}

// StatSum adds up the extracted base stats.
func (r *EntityRecord) StatSum() int {
	sum := 0
	for _, v := range r.Stats {
		sum += v
	}
	return sum
}

// Outcome is the per-entity result of the collection loop: either a record
// (possibly with field problems) or the reason the entity was skipped.
// ImageURL is the artwork found on the fetched page, if any.
type Outcome struct {
	Reference EntityReference
	Record    *EntityRecord
	Problems  []*ExtractionError
	Err       error
	ImageURL  string
}

// Skipped reports whether the entity produced no record.
func (o Outcome) Skipped() bool { return o.Record == nil }
