// Package fieldmap holds the instance-specific Testmo field value mappings:
// the numeric IDs behind custom dropdown fields, states, templates and tag
// taxonomies. The built-in defaults match a typical instance; deployments
// override them with a YAML file.
package fieldmap

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Mappings maps human-readable field values to the numeric IDs the Testmo
// API expects. The JSON field names mirror the Testmo case fields they
// configure.
type Mappings struct {
	ProjectID           map[string]int64    `yaml:"project_id" json:"project_id"`
	CustomPriority      map[string]int64    `yaml:"custom_priority" json:"custom_priority"`
	CustomType          map[string]int64    `yaml:"custom_type" json:"custom_type"`
	CustomCreator       map[string]int64    `yaml:"custom_creator" json:"custom_creator"`
	Configurations      map[string]int64    `yaml:"configurations" json:"configurations"`
	TemplateID          map[string]int64    `yaml:"template_id" json:"template_id"`
	StateID             map[string]int64    `yaml:"state_id" json:"state_id"`
	StatusID            map[string]int64    `yaml:"status_id" json:"status_id"`
	ResultStatusID      map[string]int64    `yaml:"result_status_id" json:"result_status_id"`
	AutomationRunStatus map[string]int64    `yaml:"automation_run_status" json:"automation_run_status"`
	IssuesTagsConfigs   map[string]int64    `yaml:"custom_issues_tags_and_configurations_added" json:"custom_issues_tags_and_configurations_added"`
	Tags                map[string][]string `yaml:"tags" json:"tags"`
	Defaults            map[string]int64    `yaml:"defaults" json:"defaults"`
}

// Default returns the built-in mappings. Every call returns fresh maps.
func Default() Mappings {
	return Mappings{
		ProjectID: map[string]int64{
			"example-project": 2,
			"playground":      6,
		},
		CustomPriority: map[string]int64{
			"Critical": 52,
			"High":     1,
			"Medium":   2,
			"Low":      3,
		},
		CustomType: map[string]int64{
			"Performance":   57,
			"Functional":    59,
			"Usability":     53,
			"Acceptance":    64,
			"Compatibility": 61,
			"Security":      55,
			"Other":         58,
		},
		CustomCreator: map[string]int64{
			"AI Generated": 51,
		},
		Configurations: map[string]int64{
			"Admin Portal":  4,
			"IOS & Android": 5,
			"Insti Web":     10,
		},
		TemplateID: map[string]int64{
			"BDD/Gherkin": 4,
			"Steps Table": 1,
		},
		StateID: map[string]int64{
			"Draft":      1,
			"Review":     2,
			"Approved":   3,
			"Active":     4,
			"Deprecated": 5,
		},
		StatusID: map[string]int64{
			"Incomplete": 1,
			"Complete":   2,
		},
		ResultStatusID: map[string]int64{
			"Untested": 1,
			"Passed":   2,
			"Failed":   3,
			"Retest":   4,
			"Blocked":  5,
			"Skipped":  6,
		},
		AutomationRunStatus: map[string]int64{
			"Success": 2,
			"Failure": 3,
			"Running": 4,
		},
		IssuesTagsConfigs: map[string]int64{
			"Yes": 66,
			"No":  67,
		},
		Tags: map[string][]string{
			"domain": {
				"assets-crypto",
				"assets-noncrypto",
				"services-usergrowth",
				"services-platform",
				"wealth-hnwi",
			},
			"tier-type": {"ui-verification", "e2e", "negative"},
			"scope":     {"regression", "smoke", "sanity"},
			"risk":      {"risk-financial", "risk-security", "risk-compliance"},
		},
		Defaults: map[string]int64{
			"template_id":     4,
			"state_id":        1,
			"status_id":       2,
			"custom_priority": 2,
			"custom_type":     59,
			"custom_creator":  51,
			"custom_issues_tags_and_configurations_added": 66,
		},
	}
}

// Load reads a YAML mappings file and overlays it on the defaults. Entries
// present in the file replace or extend the corresponding default map;
// sections the file omits keep their defaults.
func Load(path string) (Mappings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Mappings{}, fmt.Errorf("field mappings file not found: %s", path)
		}
		return Mappings{}, fmt.Errorf("failed to read field mappings file: %w", err)
	}

	// Unmarshal into pre-populated maps so file entries merge with defaults.
	mappings := Default()
	if err := yaml.Unmarshal(data, &mappings); err != nil {
		return Mappings{}, fmt.Errorf("invalid YAML syntax in field mappings file: %w", err)
	}
	return mappings, nil
}
