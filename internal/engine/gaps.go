package engine

import (
	"context"
	"fmt"
)

// GapDetector cross-references context fields against expected artifacts.
// Detection is independent of the prerequisite outcomes: a gap is the
// retrospective-facing signal and exists even where the matching
// prerequisite already failed.
type GapDetector struct {
	patterns PatternCatalog
	agents   AgentCatalog
}

// NewGapDetector creates a detector over the given catalogs. Either catalog
// may be nil, in which case its lookups are skipped.
func NewGapDetector(patterns PatternCatalog, agents AgentCatalog) *GapDetector {
	return &GapDetector{patterns: patterns, agents: agents}
}

// Detect returns the gaps found for the given workflow type and context,
// deduplicated by description.
func (d *GapDetector) Detect(_ context.Context, t WorkflowType, wctx *Context) []Gap {
	var gaps []Gap

	if d.patterns != nil {
		for _, ref := range wctx.PatternRefs {
			if ref == "" || d.patterns.Exists(ref) {
				continue
			}
			gaps = append(gaps, Gap{
				Type:        GapPattern,
				Description: fmt.Sprintf("pattern %q is referenced but not in the pattern library", ref),
				Impact:      ImpactSuboptimal,
			})
		}
	}

	if d.agents != nil && wctx.AgentID != "" && !d.agents.Exists(wctx.AgentID) {
		gaps = append(gaps, Gap{
			Type:        GapAgent,
			Description: fmt.Sprintf("agent %q is assigned but has no definition", wctx.AgentID),
			Impact:      ImpactBlocking,
		})
	}

	switch t {
	case WorkflowCode:
		if !wctx.TestFilesExist {
			gaps = append(gaps, Gap{
				Type:        GapTest,
				Description: "no test files exist for this task",
				Impact:      ImpactBlocking,
			})
		}
	case WorkflowDocs:
		if wctx.Reusability == "high" && !wctx.PatternTemplateExists {
			gaps = append(gaps, Gap{
				Type:        GapDocumentation,
				Description: "reusability is high but no pattern template exists",
				Impact:      ImpactSuboptimal,
			})
		}
	case WorkflowSprint:
		if !wctx.WorkspaceAnalyzed {
			gaps = append(gaps, Gap{
				Type:        GapSkill,
				Description: "workspace has not been analyzed",
				Impact:      ImpactBlocking,
			})
		}
	}

	return dedupeGaps(gaps)
}

// dedupeGaps removes duplicate descriptions, preserving first-seen order.
func dedupeGaps(gaps []Gap) []Gap {
	seen := make(map[string]struct{}, len(gaps))
	out := gaps[:0]
	for _, g := range gaps {
		if _, ok := seen[g.Description]; ok {
			continue
		}
		seen[g.Description] = struct{}{}
		out = append(out, g)
	}
	return out
}

// mergeGapDescriptions combines detector gaps with scorer-reported gap
// strings into a single deduplicated list.
func mergeGapDescriptions(detected []Gap, reported []string) []string {
	seen := make(map[string]struct{}, len(detected)+len(reported))
	out := make([]string, 0, len(detected)+len(reported))
	for _, g := range detected {
		if _, ok := seen[g.Description]; ok {
			continue
		}
		seen[g.Description] = struct{}{}
		out = append(out, g.Description)
	}
	for _, desc := range reported {
		if desc == "" {
			continue
		}
		if _, ok := seen[desc]; ok {
			continue
		}
		seen[desc] = struct{}{}
		out = append(out, desc)
	}
	return out
}
