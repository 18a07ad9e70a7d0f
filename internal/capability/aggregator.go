// Package capability merges federated gateway capability maps into the
// single map the aggregate service advertises (C8).
package capability

import "github.com/toolmesh/gatefed/internal/gateway"

func baseline() map[string]any {
	return map[string]any{
		"prompts":   map[string]any{"listChanged": true},
		"resources": map[string]any{"subscribe": true, "listChanged": true},
		"tools":     map[string]any{"listChanged": true},
		"logging":   map[string]any{},
	}
}

// Aggregate returns the baseline capability map shallow-merged with every
// active gateway's capability map, in the order given. Unknown top-level
// keys are adopted as-is; for a known key whose value is itself a mapping,
// the aggregate's sub-map is updated key-by-key, last write wins.
func Aggregate(gateways []gateway.Gateway) map[string]any {
	agg := baseline()

	for _, g := range gateways {
		if !g.Status.Enabled {
			continue
		}
		for key, value := range g.Capabilities {
			sub, valueIsMap := value.(map[string]any)
			existing, keyIsKnown := agg[key]
			existingSub, existingIsMap := existing.(map[string]any)

			if keyIsKnown && existingIsMap && valueIsMap {
				for fk, fv := range sub {
					existingSub[fk] = fv
				}
				continue
			}
			agg[key] = value
		}
	}

	return agg
}
