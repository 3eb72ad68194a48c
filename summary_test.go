package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintSummary(t *testing.T) {
	t.Parallel()

	snap := RunSnapshot{
		RunID:     "summary-run",
		Total:     4,
		Processed: 4,
		Skipped: []SkippedEntity{{
			Reference: EntityReference{Name: "Missingno", URL: "https://pokemondb.net/pokedex/missingno"},
			Reason:    "fetch https://pokemondb.net/pokedex/missingno: status 404: Not Found",
		}},
		FieldProblems: map[string]int{FieldSpecies: 1},
	}

	var buf bytes.Buffer
	PrintSummary(&buf, snap, &Dataset{Records: sampleRecords()})
	out := buf.String()

	assert.Contains(t, strings.ToLower(out), "summary-run")
	assert.Contains(t, out, "Missingno")
	assert.Contains(t, out, "Problems: species")
	assert.Contains(t, out, "Grass/Poison")
	assert.Contains(t, out, "Electric")
	assert.NotContains(t, out, "No Pokémon were collected")
}

func TestPrintSummary_EmptyDataset(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	PrintSummary(&buf, RunSnapshot{RunID: "empty"}, &Dataset{})

	assert.Contains(t, buf.String(), "No Pokémon were collected")
}

func TestPrintSummary_Images(t *testing.T) {
	t.Parallel()

	snap := RunSnapshot{
		RunID:          "images",
		Total:          3,
		Processed:      3,
		ImagesSaved:    1,
		ImagesExisting: 1,
		ImageFailures: []SkippedEntity{{
			Reference: EntityReference{Name: "Mewtwo", URL: "https://pokemondb.net/pokedex/mewtwo"},
			Reason:    "status 404",
		}},
	}

	var buf bytes.Buffer
	PrintSummary(&buf, snap, &Dataset{Records: sampleRecords()})
	out := buf.String()

	assert.Contains(t, out, "Images saved")
	assert.Contains(t, out, "Images already present")
	assert.Contains(t, out, "Mewtwo")
}
