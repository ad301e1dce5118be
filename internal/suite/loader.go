package suite

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"testafy/pkg/logging"
)

// LoadScenarios loads every scenario from a suite file, or from all YAML
// files below a directory, in lexical file order.
func LoadScenarios(path string) ([]Scenario, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("suite path does not exist: %s", path)
		}
		return nil, fmt.Errorf("failed to stat suite path: %w", err)
	}

	var files []string
	if info.IsDir() {
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && isYAMLFile(p) {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk directory %s: %w", path, err)
		}
	} else {
		files = []string{path}
	}

	var scenarios []Scenario
	seen := make(map[string]string)
	for _, f := range files {
		s, err := LoadSuiteFile(f)
		if err != nil {
			return nil, err
		}
		for _, sc := range s.Scenarios {
			if prev, dup := seen[sc.Name]; dup {
				return nil, fmt.Errorf("duplicate scenario name %q in %s (first defined in %s)", sc.Name, f, prev)
			}
			seen[sc.Name] = f
			scenarios = append(scenarios, sc)
		}
	}

	logging.Debug("Suite", "Loaded %d scenarios from %d files under %s", len(scenarios), len(files), path)
	return scenarios, nil
}

// LoadSuiteFile parses and validates one suite file.
func LoadSuiteFile(filePath string) (Suite, error) {
	var s Suite

	content, err := os.ReadFile(filePath)
	if err != nil {
		return s, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}
	if err := yaml.Unmarshal(content, &s); err != nil {
		return s, fmt.Errorf("failed to parse YAML in %s: %w", filePath, err)
	}

	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	}
	s.Path = filePath

	baseDir := filepath.Dir(filePath)
	for i := range s.Scenarios {
		sc := &s.Scenarios[i]
		sc.Suite = s.Name
		sc.BaseDir = baseDir
		sc.SuiteVars = s.Vars
		if err := validateScenario(*sc); err != nil {
			return s, fmt.Errorf("invalid scenario %d in %s: %w", i+1, filePath, err)
		}
	}
	return s, nil
}

func validateScenario(sc Scenario) error {
	if strings.TrimSpace(sc.Name) == "" {
		return fmt.Errorf("scenario name is required")
	}
	if sc.Script == "" && sc.ScriptFile == "" {
		return fmt.Errorf("scenario %s: one of script or script_file is required", sc.Name)
	}
	if sc.Script != "" && sc.ScriptFile != "" {
		return fmt.Errorf("scenario %s: script and script_file are mutually exclusive", sc.Name)
	}
	if sc.Timeout < 0 {
		return fmt.Errorf("scenario %s: timeout must not be negative", sc.Name)
	}
	for field, v := range map[string]*int{"passed_min": sc.Expect.PassedMin, "failed_max": sc.Expect.FailedMax, "planned": sc.Expect.Planned} {
		if v != nil && *v < 0 {
			return fmt.Errorf("scenario %s: expect.%s must not be negative", sc.Name, field)
		}
	}
	return nil
}

// FilterScenarios applies the name and tag filters of config.
func FilterScenarios(scenarios []Scenario, config Configuration) []Scenario {
	var filtered []Scenario
	for _, sc := range scenarios {
		if config.Scenario != "" && sc.Name != config.Scenario {
			continue
		}
		if len(config.Tags) > 0 && !slices.ContainsFunc(sc.Tags, func(tag string) bool {
			return slices.Contains(config.Tags, tag)
		}) {
			continue
		}
		filtered = append(filtered, sc)
	}
	return filtered
}

func isYAMLFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
