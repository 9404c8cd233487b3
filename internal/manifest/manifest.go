// Package manifest reads the subset of extension manifest metadata the
// analyzer needs: script lists, injection match patterns, and a display
// name. Missing fields resolve to empty defaults, never errors.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// i18nPrefix marks localized placeholder values, which carry no usable text.
const i18nPrefix = "__MSG_"

// ContentScript is one content_scripts entry.
type ContentScript struct {
	Matches []string `json:"matches"`
	JS      []string `json:"js"`
}

// Background describes the extension's background context across manifest
// versions: script list or page (v2), service worker (v3).
type Background struct {
	Scripts       []string `json:"scripts"`
	Page          string   `json:"page"`
	ServiceWorker string   `json:"service_worker"`
}

type action struct {
	DefaultTitle string `json:"default_title"`
}

// Manifest is the parsed manifest.json.
type Manifest struct {
	Name            string          `json:"name"`
	Version         string          `json:"version"`
	ManifestVersion int             `json:"manifest_version"`
	Action          *action         `json:"action"`
	BrowserAction   *action         `json:"browser_action"`
	ContentScripts  []ContentScript `json:"content_scripts"`
	Background      *Background     `json:"background"`
	Permissions     []string        `json:"permissions"`
}

// Load reads and parses dir/manifest.json.
func Load(dir string) (*Manifest, error) {
	raw, err := os.ReadFile(filepath.Join(dir, "manifest.json"))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(raw)
}

// Parse decodes a raw manifest.
func Parse(raw []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &m, nil
}

// DisplayName resolves a human-readable extension name through the fallback
// chain name -> action title -> browser_action title -> empty. Localized
// placeholders (__MSG_*) are treated as absent.
func (m *Manifest) DisplayName() string {
	if usable(m.Name) {
		return m.Name
	}
	if m.Action != nil && usable(m.Action.DefaultTitle) {
		return m.Action.DefaultTitle
	}
	if m.BrowserAction != nil && usable(m.BrowserAction.DefaultTitle) {
		return m.BrowserAction.DefaultTitle
	}
	return ""
}

func usable(v string) bool {
	return v != "" && !strings.HasPrefix(v, i18nPrefix)
}

// InjectionPatterns returns every content-script match pattern in manifest
// order, duplicates included.
func (m *Manifest) InjectionPatterns() []string {
	var patterns []string
	for _, cs := range m.ContentScripts {
		patterns = append(patterns, cs.Matches...)
	}
	return patterns
}

// ContentScriptFiles returns every content-script JS path in manifest order.
func (m *Manifest) ContentScriptFiles() []string {
	var files []string
	for _, cs := range m.ContentScripts {
		files = append(files, cs.JS...)
	}
	return files
}

// BackgroundScriptFiles returns the background script paths, covering both
// manifest v2 script lists and v3 service workers.
func (m *Manifest) BackgroundScriptFiles() []string {
	if m.Background == nil {
		return nil
	}
	files := append([]string(nil), m.Background.Scripts...)
	if m.Background.ServiceWorker != "" {
		files = append(files, m.Background.ServiceWorker)
	}
	return files
}
