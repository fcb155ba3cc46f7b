package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGapDetector_UnresolvedPatternRefs(t *testing.T) {
	d := NewGapDetector(fakeCatalog{"singleton": true}, fakeCatalog{})

	gaps := d.Detect(context.Background(), WorkflowGit, &Context{
		PatternRefs: []string{"singleton", "event-bus", "event-bus"},
	})

	require.Len(t, gaps, 1, "known patterns and duplicates drop out")
	assert.Equal(t, GapPattern, gaps[0].Type)
	assert.Equal(t, ImpactSuboptimal, gaps[0].Impact)
	assert.Contains(t, gaps[0].Description, "event-bus")
}

func TestGapDetector_UnknownAgent(t *testing.T) {
	d := NewGapDetector(fakeCatalog{}, fakeCatalog{"backend-dev": true})

	gaps := d.Detect(context.Background(), WorkflowGit, &Context{AgentID: "ml-engineer"})

	require.Len(t, gaps, 1)
	assert.Equal(t, GapAgent, gaps[0].Type)
	assert.Equal(t, ImpactBlocking, gaps[0].Impact)
}

func TestGapDetector_KnownAgentClean(t *testing.T) {
	d := NewGapDetector(fakeCatalog{}, fakeCatalog{"backend-dev": true})

	gaps := d.Detect(context.Background(), WorkflowGit, &Context{AgentID: "backend-dev"})

	assert.Empty(t, gaps)
}

func TestGapDetector_TypeSpecificRules(t *testing.T) {
	d := NewGapDetector(nil, nil)

	tests := []struct {
		name     string
		typ      WorkflowType
		wctx     *Context
		wantType GapType
		wantNone bool
	}{
		{
			name:     "code without tests",
			typ:      WorkflowCode,
			wctx:     &Context{TestFilesExist: false},
			wantType: GapTest,
		},
		{
			name:     "code with tests",
			typ:      WorkflowCode,
			wctx:     &Context{TestFilesExist: true},
			wantNone: true,
		},
		{
			name:     "docs high reusability without template",
			typ:      WorkflowDocs,
			wctx:     &Context{Reusability: "high"},
			wantType: GapDocumentation,
		},
		{
			name:     "docs low reusability without template",
			typ:      WorkflowDocs,
			wctx:     &Context{Reusability: "low"},
			wantNone: true,
		},
		{
			name:     "sprint without workspace analysis",
			typ:      WorkflowSprint,
			wctx:     &Context{},
			wantType: GapSkill,
		},
		{
			name:     "sprint analyzed",
			typ:      WorkflowSprint,
			wctx:     &Context{WorkspaceAnalyzed: true},
			wantNone: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gaps := d.Detect(context.Background(), tt.typ, tt.wctx)
			if tt.wantNone {
				assert.Empty(t, gaps)
				return
			}
			require.Len(t, gaps, 1)
			assert.Equal(t, tt.wantType, gaps[0].Type)
		})
	}
}

func TestMergeGapDescriptions(t *testing.T) {
	detected := []Gap{
		{Description: "missing tests"},
		{Description: "unknown pattern"},
	}
	reported := []string{"unknown pattern", "", "vague acceptance criteria"}

	merged := mergeGapDescriptions(detected, reported)

	assert.Equal(t, []string{"missing tests", "unknown pattern", "vague acceptance criteria"}, merged)
}
