package export

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/google/go-cmp/cmp"

	"github.com/idlab-discover/carbonscope-cli/internal/apperr"
	"github.com/idlab-discover/carbonscope-cli/internal/catalog"
)

func TestCheck_ExportedFixtures(t *testing.T) {
	for _, name := range []string{"aibom.cdx.json", "aibom.xml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := WriteFile(path, fixtureRows(), Options{}); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			bom, err := ReadBOM(path)
			if err != nil {
				t.Fatalf("ReadBOM: %v", err)
			}
			rep, err := Check(bom)
			if err != nil {
				t.Fatalf("Check: %v", err)
			}
			if !rep.Valid || len(rep.Models) != 8 {
				t.Fatalf("unexpected report %+v", rep)
			}
			gpt := rep.Models[0]
			if gpt.Name != "GPT-4" || gpt.Score != 10.5/12 {
				t.Fatalf("GPT-4 score = %v (%+v)", gpt.Score, gpt)
			}
			if diff := cmp.Diff([]string{"training_energy_mwh", "water_use_million_liters"}, gpt.MissingOptional); diff != "" {
				t.Fatalf("missing optional (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCheck_MissingRequired(t *testing.T) {
	rows := Rows([]catalog.Model{{ID: "x", Name: "Unscored", ParametersBillions: 1, TrainingCO2Kg: 10}}, nil)
	rep, err := Check(BuildBOM(rows, "test"))
	if err != nil {
		t.Fatal(err)
	}
	if rep.Valid {
		t.Fatalf("a model without a carbon score must fail")
	}
	if diff := cmp.Diff([]string{"carbon_score", "carbon_category"}, rep.Models[0].MissingRequired); diff != "" {
		t.Fatalf("missing required (-want +got):\n%s", diff)
	}
	if want := fmt.Sprintf("Validation: FAILED | Models: 1 | Score: %.1f%%", rep.Score*100); rep.Summary() != want {
		t.Fatalf("summary %q, want %q", rep.Summary(), want)
	}
}

func TestCheck_Errors(t *testing.T) {
	if _, err := Check(nil); !apperr.IsUser(err) {
		t.Fatalf("nil bom: %v", err)
	}
	bom := cdx.NewBOM()
	bom.Components = &[]cdx.Component{{Type: cdx.ComponentTypeLibrary, Name: "lib"}}
	if _, err := Check(bom); !apperr.IsUser(err) {
		t.Fatalf("bom without models: %v", err)
	}

	path := filepath.Join(t.TempDir(), "junk.json")
	_ = os.WriteFile(path, []byte("not json"), 0o644)
	if _, err := ReadBOM(path); !apperr.IsUser(err) {
		t.Fatalf("junk file: %v", err)
	}
	if _, err := ReadBOM(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("missing file should fail")
	}
}
