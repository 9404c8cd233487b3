package report

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindingsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ext.json")
	want := &Findings{
		Extension: "Sample Extension",
		ExfiltrationDangers: []Danger{{
			ID:          "d-1",
			Source:      "message",
			Sink:        "fetch",
			File:        "content.js",
			Line:        12,
			Exploitable: true,
			Flow:        []string{"Identifier message (content.js:3)", "CallExpression fetch (content.js:12)"},
		}},
		InfiltrationDangers: []Danger{{
			ID:     "d-2",
			Source: "data",
			Sink:   "document.body.innerHTML",
			File:   "content.js",
			Line:   20,
		}},
	}

	require.NoError(t, WriteFindings(path, want))
	got, err := ReadFindings(path)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(want, got))
}

func TestReadFindingsErrors(t *testing.T) {
	_, err := ReadFindings(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestVulnerable(t *testing.T) {
	assert.False(t, (&Findings{Extension: "clean"}).Vulnerable())
	assert.True(t, (&Findings{ExfiltrationDangers: []Danger{{ID: "d"}}}).Vulnerable())
	assert.True(t, (&Findings{InfiltrationDangers: []Danger{{ID: "d"}}}).Vulnerable())
}
