package league

import (
	"sort"
	"strings"
)

const syntheticDivisionPrefix = "solo:"

// ResolveDivisions groups the given franchises by division. A franchise
// with no mapping, or mapped to a division the league never declared, is
// placed alone in a synthetic division. Output is sorted by division id
// with sorted members, so seeding never depends on map order.
func (d DivisionMap) ResolveDivisions(franchises []string) ([]Division, []Warning) {
	byID := make(map[string]*Division)
	var warnings []Warning

	for _, fid := range franchises {
		divID, ok := d.ByFranchise[fid]
		known := ok && divID != ""
		if known && len(d.Names) > 0 {
			_, known = d.Names[divID]
		}
		if !known {
			warnings = append(warnings, Warning{
				Kind:        WarnUnknownDivision,
				FranchiseID: fid,
				Detail:      "division " + quoteOrNone(divID) + " not declared; using single-member division",
			})
			divID = syntheticDivisionPrefix + fid
		}

		div, ok := byID[divID]
		if !ok {
			name := d.Names[divID]
			if name == "" {
				name = divID
			}
			div = &Division{ID: divID, Name: name}
			byID[divID] = div
		}
		div.Members = append(div.Members, fid)
	}

	out := make([]Division, 0, len(byID))
	for _, div := range byID {
		sort.Strings(div.Members)
		out = append(out, *div)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, warnings
}

func (d Division) isSynthetic() bool {
	return strings.HasPrefix(d.ID, syntheticDivisionPrefix)
}

// SameDivision is true only for two franchises mapped to the same declared division.
func (d DivisionMap) SameDivision(a, b string) bool {
	da, ok := d.ByFranchise[a]
	if !ok || da == "" {
		return false
	}
	return d.ByFranchise[b] == da
}

func quoteOrNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return `"` + s + `"`
}
