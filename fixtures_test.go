package main

import (
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func vitalsRow(label, cell string) string {
	return fmt.Sprintf("<tr><th>%s</th><td>%s</td></tr>", label, cell)
}

func statRow(label string, value int) string {
	return fmt.Sprintf(
		`<tr><th>%s</th><td class="cell-num">%d</td><td class="cell-barchart"><div class="barchart-bar"></div></td><td class="cell-num">1</td><td class="cell-num">999</td></tr>`,
		label, value,
	)
}

func typeCell(types ...string) string {
	var b strings.Builder
	for _, t := range types {
		fmt.Fprintf(&b, `<a class="type-icon type-%s" href="/type/%s">%s</a> `, strings.ToLower(t), strings.ToLower(t), t)
	}
	return b.String()
}

// pokedexTable, breedingTable and statsTable mirror the three vitals tables
// of a detail page's first tab panel.
func pokedexTable(rows ...string) string {
	return `<h2>Pokédex data</h2><table class="vitals-table"><tbody>` + strings.Join(rows, "") + `</tbody></table>`
}

func breedingTable(gender string) string {
	return `<h2>Breeding</h2><table class="vitals-table"><tbody>` +
		vitalsRow("Egg Groups", `<a href="/egg-group/monster">Monster</a>`) +
		vitalsRow("Gender", gender) +
		vitalsRow("Egg cycles", "20") +
		`</tbody></table>`
}

func statsTable(stats [6]int, total string) string {
	labels := []string{"HP", "Attack", "Defense", "Sp. Atk", "Sp. Def", "Speed"}
	var b strings.Builder
	b.WriteString(`<h2>Base stats</h2><table class="vitals-table"><tbody>`)
	for i, l := range labels {
		b.WriteString(statRow(l, stats[i]))
	}
	b.WriteString(`</tbody>`)
	if total != "" {
		fmt.Fprintf(&b, `<tfoot><tr><th>Total</th><td class="cell-total"><b>%s</b></td><th class="cell-total">Min</th><th class="cell-total">Max</th></tr></tfoot>`, total)
	}
	b.WriteString(`</table>`)
	return b.String()
}

func detailPage(name string, panels ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<!DOCTYPE html><html><head><title>%s</title></head><body><main><h1>%s</h1><div class="sv-tabs-panel-list">`, name, name)
	for i, p := range panels {
		class := "sv-tabs-panel"
		if i == 0 {
			class += " active"
		}
		fmt.Fprintf(&b, `<div class="%s" id="tab-basic-%d">%s</div>`, class, i+1, p)
	}
	b.WriteString(`</div></main></body></html>`)
	return b.String()
}

const (
	bulbasaurGender = `<span class="text-blue">87.5% male</span>, <span class="text-pink">12.5% female</span>`
)

func bulbasaurPanel() string {
	return pokedexTable(
		vitalsRow("National №", "<strong>0001</strong>"),
		vitalsRow("Type", typeCell("Grass", "Poison")),
		vitalsRow("Species", "Seed Pokémon"),
		vitalsRow("Height", "0.7&nbsp;m (2′04″)"),
		vitalsRow("Weight", "6.9&nbsp;kg (15.2&nbsp;lbs)"),
		vitalsRow("Abilities", `<span class="text-muted">1. <a href="/ability/overgrow">Overgrow</a></span>`),
		vitalsRow("Local №", "0001 <small class=\"text-muted\">(Red/Blue/Yellow)</small>"),
	) + breedingTable(bulbasaurGender) + statsTable([6]int{45, 49, 49, 65, 65, 45}, "318")
}

func bulbasaurPage() string {
	return detailPage("Bulbasaur", bulbasaurPanel())
}

func pikachuPanel() string {
	return pokedexTable(
		vitalsRow("National №", "<strong>0025</strong>"),
		vitalsRow("Type", typeCell("Electric")),
		vitalsRow("Species", "Mouse Pokémon"),
		vitalsRow("Height", "0.4&nbsp;m (1′04″)"),
		vitalsRow("Weight", "6.0&nbsp;kg (13.2&nbsp;lbs)"),
	) + breedingTable(`<span class="text-blue">50% male</span>, <span class="text-pink">50% female</span>`) +
		statsTable([6]int{35, 55, 40, 50, 50, 90}, "320")
}

func pikachuPage() string {
	return detailPage("Pikachu", pikachuPanel())
}

func listingPage(anchors ...RawAnchor) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><body><table id="pokedex"><tbody>`)
	for _, a := range anchors {
		fmt.Fprintf(&b, `<tr><td class="cell-num">1</td><td class="cell-name"><a class="ent-name" href="%s" title="View Pokedex for %s">%s</a></td></tr>`, a.Href, a.Name, a.Name)
	}
	b.WriteString(`</tbody></table></body></html>`)
	return b.String()
}

func parseHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func ptr[T any](v T) *T {
	return &v
}
