package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	cdx "github.com/CycloneDX/cyclonedx-go"

	"github.com/idlab-discover/carbonscope-cli/internal/apperr"
)

// ReadBOM decodes an AIBOM file. The encoding follows the extension: .xml
// is XML, anything else JSON.
func ReadBOM(path string) (*cdx.BOM, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fileFmt := cdx.BOMFileFormatJSON
	if strings.EqualFold(filepath.Ext(path), ".xml") {
		fileFmt = cdx.BOMFileFormatXML
	}
	bom := new(cdx.BOM)
	if err := cdx.NewBOMDecoder(f, fileFmt).Decode(bom); err != nil {
		return nil, apperr.Userf("%s is not a CycloneDX document: %v", path, err)
	}
	return bom, nil
}

// field is one carbon fact a model component should carry.
type field struct {
	name     string
	weight   float64
	required bool
	present  func(c cdx.Component) bool
}

func hasProperty(name string) func(cdx.Component) bool {
	return func(c cdx.Component) bool {
		return property(c, name) != ""
	}
}

var checkedFields = []field{
	{"training_co2_kg", 3, true, hasProperty("training_co2_kg")},
	{"parameters_billions", 2, true, hasProperty("parameters_billions")},
	{"carbon_score", 2, true, hasProperty("carbon_score")},
	{"carbon_category", 1, true, hasProperty("carbon_category")},
	{"cloud_provider", 1, false, hasProperty("cloud_provider")},
	{"training_energy_mwh", 1, false, hasProperty("training_energy_mwh")},
	{"water_use_million_liters", 0.5, false, hasProperty("water_use_million_liters")},
	{"architecture_family", 0.5, false, func(c cdx.Component) bool {
		return c.ModelCard != nil && c.ModelCard.ModelParameters != nil && c.ModelCard.ModelParameters.ArchitectureFamily != ""
	}},
	{"overall_score", 1, false, func(c cdx.Component) bool {
		if c.ModelCard == nil || c.ModelCard.QuantitativeAnalysis == nil || c.ModelCard.QuantitativeAnalysis.PerformanceMetrics == nil {
			return false
		}
		for _, m := range *c.ModelCard.QuantitativeAnalysis.PerformanceMetrics {
			if m.Type == "overall_score" && m.Value != "" {
				return true
			}
		}
		return false
	}},
}

// property returns the value of the carbonscope-prefixed property name.
func property(c cdx.Component, name string) string {
	if c.Properties == nil {
		return ""
	}
	for _, p := range *c.Properties {
		if p.Name == PropertyPrefix+name {
			return strings.TrimSpace(p.Value)
		}
	}
	return ""
}

// ModelReport is the carbon completeness of one model component.
type ModelReport struct {
	Ref   string
	Name  string
	Score float64 // 0..1

	Passed int
	Total  int

	MissingRequired []string
	MissingOptional []string
}

// CheckReport summarises an AIBOM.
type CheckReport struct {
	Models []ModelReport
	// Score is the mean model score.
	Score float64
	// Valid is false when any model lacks a required field.
	Valid bool
}

// Check scores every machine-learning-model component of bom on the carbon
// facts it carries. Required facts weigh more; a missing one invalidates
// the document.
func Check(bom *cdx.BOM) (CheckReport, error) {
	if bom == nil || bom.Components == nil {
		return CheckReport{}, apperr.User("the AIBOM has no components")
	}
	rep := CheckReport{Valid: true}
	var sum float64
	for _, c := range *bom.Components {
		if c.Type != cdx.ComponentTypeMachineLearningModel {
			continue
		}
		mr := checkComponent(c)
		if len(mr.MissingRequired) > 0 {
			rep.Valid = false
		}
		sum += mr.Score
		rep.Models = append(rep.Models, mr)
	}
	if len(rep.Models) == 0 {
		return rep, apperr.User("the AIBOM has no machine-learning-model components")
	}
	rep.Score = sum / float64(len(rep.Models))
	return rep, nil
}

func checkComponent(c cdx.Component) ModelReport {
	mr := ModelReport{Ref: c.BOMRef, Name: c.Name}
	var earned, max float64
	for _, f := range checkedFields {
		mr.Total++
		max += f.weight
		if f.present(c) {
			mr.Passed++
			earned += f.weight
			continue
		}
		if f.required {
			mr.MissingRequired = append(mr.MissingRequired, f.name)
		} else {
			mr.MissingOptional = append(mr.MissingOptional, f.name)
		}
	}
	if max > 0 {
		mr.Score = earned / max
	}
	return mr
}

// Summary is a one-line verdict for command output.
func (r CheckReport) Summary() string {
	status := "PASSED"
	if !r.Valid {
		status = "FAILED"
	}
	return fmt.Sprintf("Validation: %s | Models: %d | Score: %.1f%%", status, len(r.Models), r.Score*100)
}
