package suite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderScript(t *testing.T) {
	tests := []struct {
		name     string
		scenario Scenario
		want     string
		wantErr  string
	}{
		{
			name:     "plain text passes through",
			scenario: Scenario{Name: "plain", Script: "For the url http://a.example\nthen pass this test"},
			want:     "For the url http://a.example\nthen pass this test",
		},
		{
			name: "scenario vars override suite vars",
			scenario: Scenario{
				Name:      "vars",
				Script:    "For the url {{ .vars.url }}",
				Vars:      map[string]interface{}{"url": "http://scenario.example"},
				SuiteVars: map[string]interface{}{"url": "http://suite.example"},
			},
			want: "For the url http://scenario.example",
		},
		{
			name:     "sprig functions",
			scenario: Scenario{Name: "sprig", Script: `{{ "checkout" | upper }} {{ default "x" .vars.missing }}`, Vars: map[string]interface{}{"missing": ""}},
			want:     "CHECKOUT x",
		},
		{
			name:     "scenario and suite names",
			scenario: Scenario{Name: "login", Suite: "accounts", Script: "{{ .suite }}/{{ .scenario }}"},
			want:     "accounts/login",
		},
		{
			name:     "undefined variable",
			scenario: Scenario{Name: "undefined", Script: "{{ .vars.nope }}"},
			wantErr:  "failed to render script",
		},
		{
			name:     "bad template",
			scenario: Scenario{Name: "bad", Script: "{{ .vars.url "},
			wantErr:  "failed to parse script template",
		},
		{
			name:     "missing script file",
			scenario: Scenario{Name: "file", ScriptFile: "nope.pbehave", BaseDir: t.TempDir()},
			wantErr:  "failed to read script file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RenderScript(tt.scenario)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderScriptFile(t *testing.T) {
	s, err := LoadSuiteFile(filepath.Join("testdata", "suites", "shop.yaml"))
	require.NoError(t, err)

	got, err := RenderScript(s.Scenarios[1])
	require.NoError(t, err)
	assert.Equal(t, "For the url http://shop.example/cart\nthen the page should contain \"cart\"\n", got)
}
