// Package report owns the analyzer's output artifacts: per-extension finding
// files and the batch summary table the stats tooling consumes.
package report

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Danger is one source-to-sink flow the analyzer could not rule out.
type Danger struct {
	ID          string   `json:"id"`
	Source      string   `json:"source"`
	Sink        string   `json:"sink"`
	File        string   `json:"file"`
	Line        int      `json:"line"`
	Exploitable bool     `json:"exploitable"`
	Flow        []string `json:"flow,omitempty"`
}

// ChainPair cross-references an exfiltration danger with an infiltration
// danger tainted by the same source: a candidate full attack chain, where the
// same data both reaches a privileged sink and leaves the extension.
type ChainPair struct {
	ExfiltrationID string `json:"exfiltration_id"`
	InfiltrationID string `json:"infiltration_id"`
}

// Findings is the per-extension finding file: dangers split by direction.
// Exfiltration dangers leak privileged data out; infiltration dangers let
// attacker-controlled data reach a privileged sink.
type Findings struct {
	Extension           string      `json:"extension"`
	ExfiltrationDangers []Danger    `json:"exfiltration_dangers"`
	InfiltrationDangers []Danger    `json:"infiltration_dangers"`
	ChainPairs          []ChainPair `json:"chain_pairs,omitempty"`
}

// Vulnerable reports whether the extension has any danger at all; "no
// vulnerabilities" means both lists are empty.
func (f *Findings) Vulnerable() bool {
	return len(f.ExfiltrationDangers) > 0 || len(f.InfiltrationDangers) > 0
}

// WriteFindings encodes a finding file to path.
func WriteFindings(path string, f *Findings) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encode findings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write findings: %w", err)
	}
	return nil
}

// ReadFindings decodes a finding file from path.
func ReadFindings(path string) (*Findings, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read findings: %w", err)
	}
	var f Findings
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode findings: %w", err)
	}
	return &f, nil
}
