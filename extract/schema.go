package extract

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// SchemaTypes collects the schema.org @type values declared in JSON-LD
// script blocks, in document order. Each block contributes its own @type
// and the @type of every @graph member. Blocks that fail to parse are
// skipped. Array-valued @type entries are flattened and a top-level array
// is treated as a list of blocks.
func SchemaTypes(doc *goquery.Document) []string {
	types := []string{}
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var raw any
		if err := json.Unmarshal([]byte(strings.TrimSpace(s.Text())), &raw); err != nil {
			return
		}
		types = appendBlockTypes(types, raw)
	})
	return types
}

func appendBlockTypes(types []string, raw any) []string {
	switch v := raw.(type) {
	case []any:
		for _, item := range v {
			types = appendBlockTypes(types, item)
		}
	case map[string]any:
		types = appendTypeValue(types, v["@type"])
		if graph, ok := v["@graph"].([]any); ok {
			for _, item := range graph {
				if node, ok := item.(map[string]any); ok {
					types = appendTypeValue(types, node["@type"])
				}
			}
		}
	}
	return types
}

func appendTypeValue(types []string, v any) []string {
	switch t := v.(type) {
	case string:
		if t != "" {
			types = append(types, t)
		}
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && s != "" {
				types = append(types, s)
			}
		}
	}
	return types
}
