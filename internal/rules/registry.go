package rules

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	registry = make(map[string]Rule)
	mu       sync.RWMutex
)

func Register(r Rule) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := registry[r.ID()]; exists {
		panic(fmt.Sprintf("rule %s already registered", r.ID()))
	}
	// Wrap the rule with WaiverWrapper to provide automatic waiver support
	registry[r.ID()] = &WaiverWrapper{Rule: r}
}

// List returns all registered rules in catalog order (sorted by rule ID).
// This ordering is part of the output contract: results are emitted in it.
func List() []Rule {
	mu.RLock()
	defer mu.RUnlock()
	var rules []Rule
	for _, r := range registry {
		rules = append(rules, r)
	}
	sort.Slice(rules, func(i, j int) bool {
		return rules[i].ID() < rules[j].ID()
	})
	return rules
}

func Resolve(selector string) ([]Rule, error) {
	mu.RLock()
	defer mu.RUnlock()

	if selector == "" {
		return List(), nil
	}

	// Selectors are comma-separated rule IDs.
	ids := strings.Split(selector, ",")
	var selected []Rule
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if r, ok := registry[id]; ok {
			selected = append(selected, r)
		} else {
			return nil, fmt.Errorf("rule not found: %s", id)
		}
	}
	return selected, nil
}
