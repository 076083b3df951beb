// Package catalog holds the read-only item catalog used by every optimization run.
package catalog

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/rsned/crafting-optimizer/pkg/crafting"
)

// IssueKind classifies a non-fatal catalog problem found at load time.
type IssueKind string

const (
	IssueUnknownReference IssueKind = "unknown_reference"
	IssueInvalidQuantity  IssueKind = "invalid_quantity"
	IssueCycle            IssueKind = "cycle"
)

// Issue is a load-time warning. The catalog is still usable.
type Issue struct {
	Kind   IssueKind
	ItemID string
	Detail string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s: %s", i.Kind, i.ItemID, i.Detail)
}

// Catalog is an immutable, validated mapping of item ID to item.
// It is safe for concurrent use.
type Catalog struct {
	items        map[string]crafting.Item
	ids          []string
	known        map[string]struct{}
	materials    []string
	depth        map[string]int
	displayNames map[string]string
	usedIn       map[string][]string
}

// New validates items and builds a catalog.
// Duplicate or empty IDs and negative prices are errors; everything else is
// reported as an Issue.
func New(items []crafting.Item) (*Catalog, []Issue, error) {
	c := &Catalog{
		items:        make(map[string]crafting.Item, len(items)),
		known:        make(map[string]struct{}),
		depth:        make(map[string]int),
		displayNames: make(map[string]string),
		usedIn:       make(map[string][]string),
	}
	groups := make(map[string]string, len(items))
	var issues []Issue

	for _, it := range items {
		if it.ID == "" {
			return nil, nil, errors.New("item ID cannot be empty")
		}
		if prev, exists := groups[it.ID]; exists {
			return nil, nil, fmt.Errorf("duplicate item ID %q (groups %q and %q)", it.ID, prev, it.Group)
		}
		if it.SellPrice < 0 || math.IsNaN(it.SellPrice) || math.IsInf(it.SellPrice, 0) {
			return nil, nil, fmt.Errorf("item %q: invalid sell price %v", it.ID, it.SellPrice)
		}
		groups[it.ID] = it.Group

		reqs, reqIssues := normalizeRequirements(it)
		issues = append(issues, reqIssues...)
		it.Requirements = reqs

		c.items[it.ID] = it
		c.ids = append(c.ids, it.ID)
	}
	sort.Strings(c.ids)

	// Known materials are catalog items plus anything a recipe refers to.
	for _, id := range c.ids {
		c.known[id] = struct{}{}
		for _, req := range c.items[id].Requirements {
			c.usedIn[req.ItemID] = append(c.usedIn[req.ItemID], id)
			if _, ok := c.items[req.ItemID]; !ok {
				issues = append(issues, Issue{
					Kind:   IssueUnknownReference,
					ItemID: id,
					Detail: fmt.Sprintf("requires unknown item %q, treated as raw material", req.ItemID),
				})
			}
			c.known[req.ItemID] = struct{}{}
		}
	}
	for id := range c.known {
		c.materials = append(c.materials, id)
	}
	sort.Strings(c.materials)

	issues = append(issues, c.detectCycles()...)

	caser := cases.Title(language.English)
	for _, id := range c.materials {
		c.displayNames[id] = caser.String(strings.ReplaceAll(id, "_", " "))
		c.depth[id], _ = c.computeDepth(id, make(map[string]bool))
	}

	return c, issues, nil
}

// normalizeRequirements sorts requirements, merges duplicates, and drops
// non-positive quantities.
func normalizeRequirements(it crafting.Item) ([]crafting.Requirement, []Issue) {
	if len(it.Requirements) == 0 {
		return nil, nil
	}
	var issues []Issue
	merged := make(map[string]int, len(it.Requirements))
	for _, req := range it.Requirements {
		if req.ItemID == "" {
			issues = append(issues, Issue{Kind: IssueInvalidQuantity, ItemID: it.ID, Detail: "requirement with empty item ID dropped"})
			continue
		}
		if req.Quantity <= 0 {
			issues = append(issues, Issue{
				Kind:   IssueInvalidQuantity,
				ItemID: it.ID,
				Detail: fmt.Sprintf("requirement %q has quantity %d, dropped", req.ItemID, req.Quantity),
			})
			continue
		}
		merged[req.ItemID] += req.Quantity
	}

	reqs := make([]crafting.Requirement, 0, len(merged))
	for id, qty := range merged {
		reqs = append(reqs, crafting.Requirement{ItemID: id, Quantity: qty})
	}
	sort.Slice(reqs, func(i, j int) bool {
		return reqs[i].ItemID < reqs[j].ItemID
	})
	if len(reqs) == 0 {
		return nil, issues
	}
	return reqs, issues
}

// detectCycles walks every item depth-first and reports each item that
// closes a dependency cycle.
func (c *Catalog) detectCycles() []Issue {
	var issues []Issue
	visited := make(map[string]bool)
	pathStack := make(map[string]bool)
	reported := make(map[string]bool)

	var dfs func(id string, path []string)
	dfs = func(id string, path []string) {
		if pathStack[id] {
			if !reported[id] {
				reported[id] = true
				issues = append(issues, Issue{
					Kind:   IssueCycle,
					ItemID: id,
					Detail: "circular dependency: " + strings.Join(append(path, id), " -> "),
				})
			}
			return
		}
		if visited[id] {
			return
		}
		visited[id] = true
		pathStack[id] = true
		for _, req := range c.items[id].Requirements {
			dfs(req.ItemID, append(path, id))
		}
		delete(pathStack, id)
	}

	for _, id := range c.ids {
		dfs(id, nil)
	}
	return issues
}

// computeDepth memoizes into c.depth. A result that was cut short by a cycle
// depends on the walk that produced it, so it is not stored.
func (c *Catalog) computeDepth(id string, onPath map[string]bool) (int, bool) {
	if d, ok := c.depth[id]; ok {
		return d, false
	}
	if onPath[id] {
		return 0, true
	}
	it, ok := c.items[id]
	if !ok || it.IsRaw() {
		return 0, false
	}
	onPath[id] = true
	defer delete(onPath, id)

	maxDepth, cut := 0, false
	for _, req := range it.Requirements {
		d, subCut := c.computeDepth(req.ItemID, onPath)
		cut = cut || subCut
		if d+1 > maxDepth {
			maxDepth = d + 1
		}
	}
	if !cut {
		c.depth[id] = maxDepth
	}
	return maxDepth, cut
}

// Item returns the catalog entry for id.
func (c *Catalog) Item(id string) (crafting.Item, bool) {
	it, ok := c.items[id]
	return it, ok
}

// IDs returns all catalog item IDs, sorted.
func (c *Catalog) IDs() []string {
	return c.ids
}

// Len returns the number of catalog items.
func (c *Catalog) Len() int {
	return len(c.ids)
}

// IsKnown reports whether id is a catalog item or is referenced by one.
func (c *Catalog) IsKnown(id string) bool {
	_, ok := c.known[id]
	return ok
}

// KnownMaterials returns every known material ID, sorted.
func (c *Catalog) KnownMaterials() []string {
	return c.materials
}

// Price returns the sell price of id, 0 for unknown items.
func (c *Catalog) Price(id string) float64 {
	return c.items[id].SellPrice
}

// Depth returns the length of the longest requirement path below id.
// Raw and unknown items have depth 0.
func (c *Catalog) Depth(id string) int {
	return c.depth[id]
}

// UsedIn returns the IDs of items that require id, sorted.
func (c *Catalog) UsedIn(id string) []string {
	return c.usedIn[id]
}

// DisplayName turns an item ID such as "copper_ore" into "Copper Ore".
func (c *Catalog) DisplayName(id string) string {
	if name, ok := c.displayNames[id]; ok {
		return name
	}
	return DisplayName(id)
}

// DisplayName formats an arbitrary item ID for display.
func DisplayName(id string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(id, "_", " "))
}
