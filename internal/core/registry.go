package core

import (
	"fmt"
	"sort"
	"sync"
)

// AnalyzerInfo describes a registered analyzer.
type AnalyzerInfo struct {
	Type       FileType
	Label      string   // Upper-case display name used in progress and summaries
	Extensions []string // Lower-case, with leading dot
	// StrictUTF8 makes invalid UTF-8 a decode failure instead of being replaced.
	StrictUTF8 bool
}

// AnalyzerDefinition pairs an analyzer's parse and summarize steps.
// Both functions must be pure: no shared state, no I/O.
type AnalyzerDefinition struct {
	Info      AnalyzerInfo
	Parse     func(content string, limits Limits) (any, error)
	Summarize func(facts any) string
}

var (
	registry   = make(map[FileType]AnalyzerDefinition)
	registryMu sync.RWMutex
)

// Register adds an analyzer definition to the registry.
// Panics if an analyzer for the same type is already registered.
func Register(def AnalyzerDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if def.Parse == nil || def.Summarize == nil {
		panic(fmt.Sprintf("analyzer %s: Parse and Summarize are required", def.Info.Type))
	}
	if _, exists := registry[def.Info.Type]; exists {
		panic(fmt.Sprintf("analyzer already registered: %s", def.Info.Type))
	}
	if def.Info.Label == "" {
		def.Info.Label = string(def.Info.Type)
	}
	if len(def.Info.Extensions) == 0 {
		def.Info.Extensions = []string{"." + string(def.Info.Type)}
	}

	registry[def.Info.Type] = def
}

// Lookup returns the analyzer for a file type.
func Lookup(ft FileType) (AnalyzerDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[ft]
	return def, ok
}

// lookupExtension finds the analyzer claiming a lower-case extension.
func lookupExtension(ext string) (AnalyzerDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	for _, def := range registry {
		for _, e := range def.Info.Extensions {
			if e == ext {
				return def, true
			}
		}
	}
	return AnalyzerDefinition{}, false
}

// All returns all registered analyzers sorted by type.
func All() []AnalyzerDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]AnalyzerDefinition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Info.Type < result[j].Info.Type
	})

	return result
}

// AnalyzerCount returns the number of registered analyzers.
func AnalyzerCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered analyzers.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[FileType]AnalyzerDefinition)
}
