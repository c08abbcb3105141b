package tools

import "fmt"

// NewDefaultRegistry builds a registry holding the five built-in tools.
func NewDefaultRegistry(tc *ToolContext) (*Registry, error) {
	r := NewRegistry(tc)

	descriptors := []Descriptor{
		SearchChunksDescriptor(),
		GetExcerptDescriptor(),
		ListFilesDescriptor(),
		GraphNeighborsDescriptor(),
		GetRepoSummaryDescriptor(),
	}

	for _, d := range descriptors {
		if err := r.Register(d); err != nil {
			return nil, fmt.Errorf("tools: register default tools: %w", err)
		}
	}
	return r, nil
}
