package export

import (
	"io"
	"strings"
	"time"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/google/uuid"
)

const (
	ToolVendor = "idlab-discover"
	ToolName   = "carbonscope"

	// PropertyPrefix namespaces the carbon properties on each component.
	PropertyPrefix = "carbonscope:"
)

// BuildBOM describes rows as a CycloneDX AIBOM: one machine-learning-model
// component per row under an application component for the catalog itself.
func BuildBOM(rows []Row, toolVersion string) *cdx.BOM {
	bom := cdx.NewBOM()
	bom.SerialNumber = "urn:uuid:" + uuid.NewString()
	bom.Metadata = &cdx.Metadata{
		Timestamp: time.Now().Format(time.RFC3339),
		Component: &cdx.Component{
			Type:   cdx.ComponentTypeApplication,
			BOMRef: "carbonscope-catalog",
			Name:   "carbonscope-catalog",
		},
	}
	addTool(bom, toolVersion)

	comps := make([]cdx.Component, 0, len(rows))
	refs := make([]string, 0, len(rows))
	for _, r := range rows {
		c := modelComponent(r)
		comps = append(comps, c)
		refs = append(refs, c.BOMRef)
	}
	bom.Components = &comps
	bom.Dependencies = &[]cdx.Dependency{{Ref: "carbonscope-catalog", Dependencies: &refs}}
	return bom
}

func addTool(bom *cdx.BOM, version string) {
	if version == "" {
		version = "devel"
	}
	bom.Metadata.Tools = &cdx.ToolsChoice{
		Components: &[]cdx.Component{{
			Type:         cdx.ComponentTypeApplication,
			Manufacturer: &cdx.OrganizationalEntity{Name: ToolVendor},
			Name:         ToolName,
			Version:      version,
		}},
	}
}

func modelComponent(r Row) cdx.Component {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		name = "model"
	}
	ref := "model-" + r.ID
	if r.ID == "" {
		ref = "model-" + name
	}

	params := &cdx.MLModelParameters{
		Task:               r.ModelType,
		ArchitectureFamily: r.Architecture,
	}
	metrics := []cdx.MLPerformanceMetric{
		{Type: "overall_score", Value: formatFloat(r.OverallScore)},
	}
	for _, m := range []struct {
		name string
		v    *float64
	}{
		{"mmlu_score", r.MMLUScore},
		{"bbh_score", r.BBHScore},
		{"math_score", r.MathScore},
	} {
		if m.v != nil {
			metrics = append(metrics, cdx.MLPerformanceMetric{Type: m.name, Value: formatFloat(*m.v)})
		}
	}

	return cdx.Component{
		Type:   cdx.ComponentTypeMachineLearningModel,
		BOMRef: ref,
		Name:   name,
		ModelCard: &cdx.MLModelCard{
			ModelParameters:      params,
			QuantitativeAnalysis: &cdx.MLQuantitativeAnalysis{PerformanceMetrics: &metrics},
		},
		Properties: modelProperties(r),
	}
}

func modelProperties(r Row) *[]cdx.Property {
	props := []cdx.Property{}
	add := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		props = append(props, cdx.Property{Name: PropertyPrefix + name, Value: value})
	}
	add("parameters_billions", formatFloat(r.ParametersBillions))
	add("training_co2_kg", formatFloat(r.TrainingCO2Kg))
	add("cloud_provider", r.Cloud())
	if r.TrainingEnergyMWh != nil {
		add("training_energy_mwh", formatFloat(*r.TrainingEnergyMWh))
	}
	if r.WaterUseMillionLiters != nil {
		add("water_use_million_liters", formatFloat(*r.WaterUseMillionLiters))
	}
	if r.CarbonScore != nil {
		add("carbon_score", formatFloat(*r.CarbonScore))
	}
	add("carbon_category", r.Category)
	add("date_submitted", r.DateSubmitted)
	return &props
}

func writeCycloneDX(w io.Writer, rows []Row, opts Options) error {
	fileFmt := cdx.BOMFileFormatJSON
	if opts.Format == FormatCycloneDXXML {
		fileFmt = cdx.BOMFileFormatXML
	}
	enc := cdx.NewBOMEncoder(w, fileFmt)
	enc.SetPretty(true)

	bom := BuildBOM(rows, opts.ToolVersion)
	if opts.SpecVersion == "" {
		return enc.Encode(bom)
	}
	sv, ok := ParseSpecVersion(opts.SpecVersion)
	if !ok {
		return errUnsupportedSpec(opts.SpecVersion)
	}
	return enc.EncodeVersion(bom, sv)
}

// ParseSpecVersion parses a CycloneDX spec version string.
func ParseSpecVersion(s string) (cdx.SpecVersion, bool) {
	switch strings.TrimSpace(s) {
	case "1.0":
		return cdx.SpecVersion1_0, true
	case "1.1":
		return cdx.SpecVersion1_1, true
	case "1.2":
		return cdx.SpecVersion1_2, true
	case "1.3":
		return cdx.SpecVersion1_3, true
	case "1.4":
		return cdx.SpecVersion1_4, true
	case "1.5":
		return cdx.SpecVersion1_5, true
	case "1.6":
		return cdx.SpecVersion1_6, true
	default:
		return cdx.SpecVersion1_6, false
	}
}
