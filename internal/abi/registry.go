// Package abi serves the contract ABIs used by the benchmark suites. The
// definitions are embedded at build time and parsed once on startup.
package abi

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
)

//go:embed abis/*.json
var abiFiles embed.FS

// Entry is one registered contract ABI together with its parsed form.
type Entry struct {
	Name    string
	Raw     json.RawMessage
	Parsed  ethabi.ABI
	Methods []string
	Events  []string
}

// Registry holds the embedded contract ABIs, keyed by contract name.
type Registry struct {
	entries map[string]*Entry
}

// NewRegistry loads and parses every embedded ABI definition.
func NewRegistry() (*Registry, error) {
	files, err := abiFiles.ReadDir("abis")
	if err != nil {
		return nil, fmt.Errorf("failed to list embedded abis: %w", err)
	}

	reg := &Registry{entries: make(map[string]*Entry, len(files))}
	for _, f := range files {
		name := strings.TrimSuffix(f.Name(), ".json")

		raw, err := abiFiles.ReadFile("abis/" + f.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read abi %s: %w", name, err)
		}

		parsed, err := ethabi.JSON(strings.NewReader(string(raw)))
		if err != nil {
			return nil, fmt.Errorf("failed to parse abi %s: %w", name, err)
		}

		entry := &Entry{
			Name:   name,
			Raw:    json.RawMessage(raw),
			Parsed: parsed,
		}
		for method := range parsed.Methods {
			entry.Methods = append(entry.Methods, method)
		}
		for event := range parsed.Events {
			entry.Events = append(entry.Events, event)
		}
		sort.Strings(entry.Methods)
		sort.Strings(entry.Events)

		reg.entries[name] = entry
	}

	return reg, nil
}

// Names returns the registered contract names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the entry for a contract name.
func (r *Registry) Get(name string) (*Entry, bool) {
	entry, ok := r.entries[strings.ToLower(name)]
	return entry, ok
}

// MethodID returns the 4-byte selector of a method as a hex string.
func (r *Registry) MethodID(contract, method string) (string, error) {
	entry, ok := r.Get(contract)
	if !ok {
		return "", fmt.Errorf("unknown contract abi: %s", contract)
	}
	m, ok := entry.Parsed.Methods[method]
	if !ok {
		return "", fmt.Errorf("contract %s has no method %s", contract, method)
	}
	return fmt.Sprintf("0x%x", m.ID), nil
}
