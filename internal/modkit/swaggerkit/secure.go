package swaggerkit

import (
	"sort"
	"strings"
	"sync"
)

var (
	secMu    sync.Mutex
	secPaths = map[string]map[string]struct{}{}
)

// MarkSecurePath records that method+path sits behind bearer auth so the
// served swagger doc can attach the security requirement to the operation
func MarkSecurePath(path, method string) {
	p := normalizeSecurePath(path)
	m := strings.ToLower(strings.TrimSpace(method))
	if p == "" || m == "" {
		return
	}
	secMu.Lock()
	defer secMu.Unlock()
	if secPaths[p] == nil {
		secPaths[p] = map[string]struct{}{}
	}
	secPaths[p][m] = struct{}{}
}

// SecurePaths returns the recorded path to methods map, methods sorted
func SecurePaths() map[string][]string {
	secMu.Lock()
	defer secMu.Unlock()
	out := make(map[string][]string, len(secPaths))
	for p, ms := range secPaths {
		list := make([]string, 0, len(ms))
		for m := range ms {
			list = append(list, m)
		}
		sort.Strings(list)
		out[p] = list
	}
	return out
}

// ResetSecurePaths clears the registry between tests
func ResetSecurePaths() {
	secMu.Lock()
	defer secMu.Unlock()
	secPaths = map[string]map[string]struct{}{}
}

// normalizeSecurePath forces a leading slash and strips trailing slashes
// so "/accounts/" from a router mount and "/accounts" from swag agree
func normalizeSecurePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	for len(p) > 1 && strings.HasSuffix(p, "/") {
		p = p[:len(p)-1]
	}
	return p
}

// applySecurity injects a bearer scheme and tags every recorded operation
// chi style params already match the {name} form swag emits
func applySecurity(spec map[string]any) {
	marked := SecurePaths()
	if len(marked) == 0 {
		return
	}

	comps, ok := spec["components"].(map[string]any)
	if !ok {
		comps = map[string]any{}
		spec["components"] = comps
	}
	schemes, ok := comps["securitySchemes"].(map[string]any)
	if !ok {
		schemes = map[string]any{}
		comps["securitySchemes"] = schemes
	}
	if _, ok := schemes["bearerAuth"]; !ok {
		schemes["bearerAuth"] = map[string]any{
			"type":   "http",
			"scheme": "bearer",
		}
	}

	paths, ok := spec["paths"].(map[string]any)
	if !ok {
		return
	}
	for p, methods := range marked {
		node, ok := paths[p].(map[string]any)
		if !ok {
			continue
		}
		for _, m := range methods {
			op, ok := node[m].(map[string]any)
			if !ok {
				continue
			}
			if _, exists := op["security"]; exists {
				continue
			}
			op["security"] = []any{
				map[string]any{"bearerAuth": []any{}},
			}
		}
	}
}
