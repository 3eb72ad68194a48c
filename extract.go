package main

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Column/field names used for problem reports and the CSV header.
const (
	FieldCatalogNumber = "pokedex_num"
	FieldType          = "type"
	FieldSpecies       = "species"
	FieldHeight        = "height_meters"
	FieldWeight        = "weight_kg"
	FieldGender        = "gender"
	FieldTotal         = "total"
)

// genderTolerance absorbs the site's one-decimal rounding of ratios.
const genderTolerance = 0.5

var (
	errUnknownValue   = errors.New("value not known")
	errTypeCount      = errors.New("expected one or two types")
	errNoNumber       = errors.New("no numeric value")
	errNegativeStat   = errors.New("negative stat")
	errDuplicateRatio = errors.New("ratio listed twice")
	errRatioSum       = errors.New("ratios do not add up to 100")
	errTotalMismatch  = errors.New("displayed total differs from sum of stats")

	heightPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*m\b`)
	weightPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*kg\b`)
	ratioPattern  = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%\s*(female|male)`)
)

// fieldRule binds a row label to the field it fills.
type fieldRule struct {
	field string
	parse func(rec *EntityRecord, cell *goquery.Selection) error
}

// statFieldNames are the column names of the six base stats.
var statFieldNames = map[Stat]string{
	StatHP:             "hp",
	StatAttack:         "attack",
	StatDefense:        "defense",
	StatSpecialAttack:  "sp_atk",
	StatSpecialDefense: "sp_def",
	StatSpeed:          "speed",
}

// vitalsRules maps the normalised row header of a vitals table to its parser.
// Rows are matched by label so a missing row never shifts another field.
var vitalsRules = map[string]fieldRule{
	"National №": {FieldCatalogNumber, parseCatalogNumber},
	"Type":       {FieldType, parseTypes},
	"Species":    {FieldSpecies, parseSpecies},
	"Height":     {FieldHeight, parseHeight},
	"Weight":     {FieldWeight, parseWeight},
	"Gender":     {FieldGender, parseGender},
	"HP":         statRule(StatHP),
	"Attack":     statRule(StatAttack),
	"Defense":    statRule(StatDefense),
	"Sp. Atk":    statRule(StatSpecialAttack),
	"Sp. Def":    statRule(StatSpecialDefense),
	"Speed":      statRule(StatSpeed),
	"Total":      {FieldTotal, parseTotal},
}

// expectedFields are reported as missing when no row carried them.
// The total is left out because it can be computed.
var expectedFields = []string{
	FieldCatalogNumber, FieldType, FieldSpecies, FieldHeight, FieldWeight, FieldGender,
	"hp", "attack", "defense", "sp_atk", "sp_def", "speed",
}

// ExtractRecord reads one detail page into a record. Field-level failures are
// returned as problems and leave the field unset; the returned error is only
// non-nil when the page carries no recognisable data at all.
func ExtractRecord(page *goquery.Selection, ref EntityReference) (*EntityRecord, []*ExtractionError, error) {
	scope := page.Find("div.sv-tabs-panel").First()
	if scope.Length() == 0 {
		scope = page
	}

	rec := &EntityRecord{
		Name:  ref.Name,
		URL:   ref.URL,
		Stats: make(map[Stat]int, len(Stats)),
	}

	var problems []*ExtractionError
	seen := make(map[string]bool)
	present := make(map[string]bool)

	scope.Find("table.vitals-table tr").Each(func(_ int, row *goquery.Selection) {
		label := normalizeText(row.ChildrenFiltered("th").First().Text())
		rule, ok := vitalsRules[label]
		if !ok || seen[label] {
			return
		}
		seen[label] = true
		present[rule.field] = true

		cell := row.ChildrenFiltered("td").First()
		if err := rule.parse(rec, cell); err != nil {
			problems = append(problems, &ExtractionError{
				URL:   ref.URL,
				Field: rule.field,
				Value: normalizeText(cell.Text()),
				Err:   err,
			})
		}
	})

	if len(seen) == 0 {
		return nil, nil, &ExtractionError{URL: ref.URL, Err: ErrNoPokedexData}
	}

	for _, field := range expectedFields {
		if !present[field] {
			problems = append(problems, &ExtractionError{URL: ref.URL, Field: field, Err: ErrFieldMissing})
		}
	}

	if p := settleTotal(rec); p != nil {
		p.URL = ref.URL
		problems = append(problems, p)
	}

	return rec, problems, nil
}

// settleTotal fills a missing total from the stats and keeps the total equal
// to the stat sum whenever all six stats are known.
func settleTotal(rec *EntityRecord) *ExtractionError {
	if !rec.HasAllStats() {
		return nil
	}
	sum := rec.StatSum()
	if rec.StatTotal == nil {
		rec.StatTotal = &sum
		return nil
	}
	if *rec.StatTotal == sum {
		return nil
	}
	shown := *rec.StatTotal
	rec.StatTotal = &sum
	return &ExtractionError{Field: FieldTotal, Value: strconv.Itoa(shown), Err: errTotalMismatch}
}

// normalizeText trims and collapses whitespace runs. strings.Fields also
// splits on the non-breaking spaces the site puts between value and unit.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func isUnknown(s string) bool {
	return s == "" || s == "—" || s == "-" || s == "?" || strings.EqualFold(s, "unknown")
}

func parseCatalogNumber(rec *EntityRecord, cell *goquery.Selection) error {
	text := normalizeText(cell.Text())
	if isUnknown(text) {
		return errUnknownValue
	}
	rec.CatalogNumber = text
	return nil
}

func parseTypes(rec *EntityRecord, cell *goquery.Selection) error {
	var types []string
	cell.Find("a").Each(func(_ int, a *goquery.Selection) {
		if t := normalizeText(a.Text()); t != "" {
			types = append(types, t)
		}
	})
	if len(types) == 0 {
		for _, t := range strings.Fields(normalizeText(cell.Text())) {
			if !isUnknown(t) {
				types = append(types, t)
			}
		}
	}
	if len(types) == 0 || len(types) > 2 {
		return fmt.Errorf("%w: got %d", errTypeCount, len(types))
	}

	rec.PrimaryType = types[0]
	if len(types) == 2 {
		secondary := types[1]
		rec.SecondaryType = &secondary
	}
	return nil
}

func parseSpecies(rec *EntityRecord, cell *goquery.Selection) error {
	text := normalizeText(cell.Text())
	if isUnknown(text) {
		return errUnknownValue
	}
	rec.Species = &text
	return nil
}

func parseHeight(rec *EntityRecord, cell *goquery.Selection) error {
	v, err := parseMeasure(heightPattern, cell.Text())
	if err != nil {
		return err
	}
	rec.HeightMeters = &v
	return nil
}

func parseWeight(rec *EntityRecord, cell *goquery.Selection) error {
	v, err := parseMeasure(weightPattern, cell.Text())
	if err != nil {
		return err
	}
	rec.WeightKilograms = &v
	return nil
}

// parseMeasure pulls the number in front of the site's metric unit and drops
// the unit and the imperial conversion in brackets.
func parseMeasure(pattern *regexp.Regexp, raw string) (float64, error) {
	text := strings.ReplaceAll(normalizeText(raw), ",", "")
	if isUnknown(text) {
		return 0, errUnknownValue
	}
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return 0, errNoNumber
	}
	return strconv.ParseFloat(m[1], 64)
}

// parseGender handles "Genderless" and labelled percentage pairs such as
// "87.5% male, 12.5% female" in either order. A single labelled value implies
// its complement.
func parseGender(rec *EntityRecord, cell *goquery.Selection) error {
	text := strings.ToLower(normalizeText(cell.Text()))
	if strings.Contains(text, "genderless") {
		rec.IsGenderless = true
		return nil
	}
	if isUnknown(text) {
		return errUnknownValue
	}

	var male, female *float64
	for _, m := range ratioPattern.FindAllStringSubmatch(text, -1) {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return err
		}
		slot := &male
		if m[2] == "female" {
			slot = &female
		}
		if *slot != nil {
			return fmt.Errorf("%w: %s", errDuplicateRatio, m[2])
		}
		*slot = &v
	}

	switch {
	case male == nil && female == nil:
		return errNoNumber
	case male == nil:
		v := 100 - *female
		male = &v
	case female == nil:
		v := 100 - *male
		female = &v
	}
	if math.Abs(*male+*female-100) > genderTolerance {
		return errRatioSum
	}

	rec.GenderRatioMale = male
	rec.GenderRatioFemale = female
	return nil
}

func parseCount(cell *goquery.Selection) (int, error) {
	text := normalizeText(cell.Text())
	if isUnknown(text) {
		return 0, errUnknownValue
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errNegativeStat
	}
	return n, nil
}

func statRule(s Stat) fieldRule {
	return fieldRule{
		field: statFieldNames[s],
		parse: func(rec *EntityRecord, cell *goquery.Selection) error {
			n, err := parseCount(cell)
			if err != nil {
				return err
			}
			rec.Stats[s] = n
			return nil
		},
	}
}

func parseTotal(rec *EntityRecord, cell *goquery.Selection) error {
	n, err := parseCount(cell)
	if err != nil {
		return err
	}
	rec.StatTotal = &n
	return nil
}
