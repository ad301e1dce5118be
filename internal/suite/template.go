package suite

import (
	"bytes"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// RenderScript returns the scenario's script with template variables
// resolved. Scripts see {{ .vars.name }}, {{ .scenario }} and {{ .suite }},
// plus the sprig function library. A reference to an undefined variable is
// an error.
func RenderScript(sc Scenario) (string, error) {
	raw := sc.Script
	if sc.ScriptFile != "" {
		path := sc.ScriptFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(sc.BaseDir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read script file: %w", err)
		}
		raw = string(data)
	}

	vars := make(map[string]interface{}, len(sc.SuiteVars)+len(sc.Vars))
	maps.Copy(vars, sc.SuiteVars)
	maps.Copy(vars, sc.Vars)

	tmpl, err := template.New(sc.Name).
		Funcs(sprig.TxtFuncMap()).
		Option("missingkey=error").
		Parse(raw)
	if err != nil {
		return "", fmt.Errorf("failed to parse script template: %w", err)
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, map[string]interface{}{
		"vars":     vars,
		"scenario": sc.Name,
		"suite":    sc.Suite,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render script: %w", err)
	}
	return buf.String(), nil
}
