package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/google/go-cmp/cmp"
	"go.yaml.in/yaml/v3"

	"github.com/idlab-discover/carbonscope-cli/internal/apperr"
	"github.com/idlab-discover/carbonscope-cli/internal/catalog"
)

func fixtureRows() []Row {
	return Rows(catalog.DummyModels(), catalog.DummyScores())
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatAuto, "JSON": FormatJSON, " csv ": FormatCSV, "cyclonedx-xml": FormatCycloneDXXML} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("pdf"); !apperr.IsUser(err) {
		t.Fatalf("expected user error, got %v", err)
	}
}

func TestResolve(t *testing.T) {
	tcs := []struct {
		path string
		want Format
	}{
		{"out.json", FormatJSON},
		{"out.YAML", FormatYAML},
		{"out.yml", FormatYAML},
		{"dir/out.csv", FormatCSV},
		{"aibom.cdx.json", FormatCycloneDX},
		{"aibom.xml", FormatCycloneDXXML},
		{"noext", FormatJSON},
	}
	for _, tc := range tcs {
		got, err := Resolve(FormatAuto, tc.path)
		if err != nil || got != tc.want {
			t.Errorf("Resolve(auto, %q) = %q, %v; want %q", tc.path, got, err, tc.want)
		}
	}
	if got, _ := Resolve(FormatCSV, "out.json"); got != FormatCSV {
		t.Errorf("explicit format must win, got %q", got)
	}
	if _, err := Resolve(FormatAuto, "out.pdf"); !apperr.IsUser(err) {
		t.Errorf("expected user error for unknown extension, got %v", err)
	}
}

func TestRows_JoinsScores(t *testing.T) {
	rows := Rows(catalog.DummyModels(), []catalog.CarbonScore{{ModelID: "3", CarbonScore: 75, Category: "B"}})
	if len(rows) != 8 {
		t.Fatalf("expected every model, got %d", len(rows))
	}
	for _, r := range rows {
		if r.ID == "3" {
			if r.CarbonScore == nil || *r.CarbonScore != 75 || r.Category != "B" {
				t.Fatalf("score not joined: %+v", r)
			}
			continue
		}
		if r.CarbonScore != nil || r.Category != "" {
			t.Fatalf("unscored model %s got rating %+v", r.ID, r)
		}
	}
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, fixtureRows()[:2], Options{Format: FormatJSON}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	var got []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got[0]["model_name"] != "GPT-4" || got[0]["carbon_category"] != "A+" || got[0]["carbon_score"] != 95.0 {
		t.Fatalf("unexpected row %v", got[0])
	}
}

func TestWrite_YAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, fixtureRows()[:1], Options{Format: FormatYAML}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	var got []map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got[0]["model_name"] != "GPT-4" || got[0]["carbon_category"] != "A+" {
		t.Fatalf("model fields must be inlined, got %v", got[0])
	}
}

func TestWrite_CSV(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, fixtureRows(), Options{Format: FormatCSV}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	recs, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(recs) != 9 {
		t.Fatalf("expected header + 8 rows, got %d", len(recs))
	}
	if diff := cmp.Diff(csvHeader, recs[0]); diff != "" {
		t.Fatalf("header mismatch (-want +got):\n%s", diff)
	}
	want := []string{"8", "Phi-2", "2.7", "PhiForCausalLM", "🔶 fine-tuned", "Microsoft (Azure)", "350", "55", "90", "A+", "2023-12-12"}
	if diff := cmp.Diff(want, recs[8]); diff != "" {
		t.Fatalf("row mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildBOM(t *testing.T) {
	bom := BuildBOM(fixtureRows(), "v1.0.0")
	if !strings.HasPrefix(bom.SerialNumber, "urn:uuid:") {
		t.Fatalf("missing serial number: %q", bom.SerialNumber)
	}
	if bom.Metadata == nil || bom.Metadata.Timestamp == "" || bom.Metadata.Tools == nil {
		t.Fatalf("incomplete metadata: %+v", bom.Metadata)
	}
	tool := (*bom.Metadata.Tools.Components)[0]
	if tool.Name != ToolName || tool.Version != "v1.0.0" {
		t.Fatalf("unexpected tool %+v", tool)
	}
	if bom.Components == nil || len(*bom.Components) != 8 {
		t.Fatalf("expected 8 components")
	}

	c := (*bom.Components)[0]
	if c.Type != cdx.ComponentTypeMachineLearningModel || c.Name != "GPT-4" || c.BOMRef != "model-1" {
		t.Fatalf("unexpected component %+v", c)
	}
	mp := c.ModelCard.ModelParameters
	if mp.ArchitectureFamily != "Transformer" || mp.Task != "💬 chat models" {
		t.Fatalf("unexpected parameters %+v", mp)
	}
	metrics := *c.ModelCard.QuantitativeAnalysis.PerformanceMetrics
	if metrics[0].Type != "overall_score" || metrics[0].Value != "90" {
		t.Fatalf("unexpected metrics %+v", metrics)
	}

	props := map[string]string{}
	for _, p := range *c.Properties {
		props[p.Name] = p.Value
	}
	for name, want := range map[string]string{
		"carbonscope:training_co2_kg": "5000",
		"carbonscope:cloud_provider":  "Microsoft (Azure)",
		"carbonscope:carbon_category": "A+",
	} {
		if props[name] != want {
			t.Errorf("%s = %q, want %q", name, props[name], want)
		}
	}

	// LLaMA-3 has no cloud provider; the property is omitted rather than empty
	for _, p := range *(*bom.Components)[1].Properties {
		if p.Name == "carbonscope:cloud_provider" {
			t.Fatalf("unexpected empty cloud provider property")
		}
	}
}

func TestWriteFile_CycloneDXRoundTrip(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"aibom.cdx.json", "aibom.xml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := WriteFile(path, fixtureRows(), Options{Format: FormatAuto, SpecVersion: "1.6"}); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			f, err := os.Open(path)
			if err != nil {
				t.Fatal(err)
			}
			defer f.Close()

			fileFmt := cdx.BOMFileFormatJSON
			if strings.HasSuffix(name, ".xml") {
				fileFmt = cdx.BOMFileFormatXML
			}
			bom := new(cdx.BOM)
			if err := cdx.NewBOMDecoder(f, fileFmt).Decode(bom); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if bom.Components == nil || len(*bom.Components) != 8 {
				t.Fatalf("components lost in round trip")
			}
		})
	}
}

func TestWriteFile_Errors(t *testing.T) {
	dir := t.TempDir()
	if err := WriteFile(filepath.Join(dir, "x.cdx.json"), nil, Options{SpecVersion: "2.0"}); !apperr.IsUser(err) {
		t.Fatalf("expected user error for spec version, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "x.cdx.json")); err == nil {
		t.Fatalf("no file should be created on invalid options")
	}
	if err := WriteFile(filepath.Join(dir, "x.pdf"), nil, Options{}); !apperr.IsUser(err) {
		t.Fatalf("expected user error for extension, got %v", err)
	}
}

func TestParseSpecVersion(t *testing.T) {
	tcs := []struct {
		in   string
		want cdx.SpecVersion
		ok   bool
	}{
		{"1.0", cdx.SpecVersion1_0, true},
		{"1.4", cdx.SpecVersion1_4, true},
		{" 1.6 ", cdx.SpecVersion1_6, true},
		{"1.7", cdx.SpecVersion1_6, false},
		{"", cdx.SpecVersion1_6, false},
	}
	for _, tc := range tcs {
		got, ok := ParseSpecVersion(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ParseSpecVersion(%q) = (%v,%v), want (%v,%v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
