package cmd

import (
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idlab-discover/carbonscope-cli/internal/apperr"
	"github.com/idlab-discover/carbonscope-cli/internal/query"
)

// filterFlag maps a CLI flag to a named query constraint.
type filterFlag struct {
	flag  string
	param string
	usage string
}

var modelFilterFlags = []filterFlag{
	{"min-params", "minParams", "Minimum parameters (billions)"},
	{"max-params", "maxParams", "Maximum parameters (billions)"},
	{"architecture", "architecture", "Exact architecture"},
	{"model-type", "modelType", "Exact model type"},
	{"min-score", "minScore", "Minimum overall score"},
	{"max-score", "maxScore", "Maximum overall score"},
	{"min-co2", "minCO2", "Minimum training CO2 (kg)"},
	{"max-co2", "maxCO2", "Maximum training CO2 (kg)"},
	{"cloud", "cloudProvider", "Exact cloud provider"},
}

var scoreFilterFlags = []filterFlag{
	{"category", "category", "Exact carbon category (A+..F)"},
	{"min-carbon-score", "minCarbonScore", "Minimum carbon score"},
	{"min-params", "minParams", "Minimum parameters (billions)"},
	{"max-params", "maxParams", "Maximum parameters (billions)"},
	{"min-co2", "minCO2", "Minimum training CO2 (kg)"},
	{"max-co2", "maxCO2", "Maximum training CO2 (kg)"},
}

// addQueryFlags registers search, filter, sort and paging flags on cmd and
// binds them under key.<flag>.
func addQueryFlags(cmd *cobra.Command, key string, filters []filterFlag) {
	f := cmd.Flags()
	f.String("search", "", "Case-insensitive substring of the model name")
	for _, ff := range filters {
		f.String(ff.flag, "", ff.usage)
	}
	f.String("sort", "", "Sort field (e.g. model_name, parameters_billions, training_co2_kg)")
	f.String("order", "", "Sort direction: asc|desc")
	f.Int("page", 1, "1-based page number")
	f.Int("page-size", query.DefaultPageSize, "Page size: 10|20|50|100")

	for _, name := range []string{"search", "sort", "order", "page", "page-size"} {
		viper.BindPFlag(key+"."+name, f.Lookup(name))
	}
	for _, ff := range filters {
		viper.BindPFlag(key+"."+ff.flag, f.Lookup(ff.flag))
	}
}

// stateFromFlags builds a query state from the values bound under key.
func stateFromFlags(st *query.State, key string, filters []filterFlag) (*query.State, error) {
	st.SetSearch(strings.TrimSpace(viper.GetString(key + ".search")))
	for _, ff := range filters {
		if err := st.Set(ff.param, viper.GetString(key+"."+ff.flag)); err != nil {
			return nil, err
		}
	}

	if field := strings.TrimSpace(viper.GetString(key + ".sort")); field != "" || viper.GetString(key+".order") != "" {
		if field == "" {
			field = st.Sort.Field
		}
		dir := query.Direction(strings.ToLower(strings.TrimSpace(viper.GetString(key + ".order"))))
		if dir == "" {
			dir = query.Ascending
		}
		if !slices.Contains(st.SortFields(), field) {
			return nil, apperr.Userf("invalid --sort %q (expected one of %s)", field, strings.Join(st.SortFields(), "|"))
		}
		if err := st.SetSort(field, dir); err != nil {
			return nil, err
		}
	}

	if err := st.SetPageSize(viper.GetInt(key + ".page-size")); err != nil {
		return nil, err
	}
	page := viper.GetInt(key + ".page")
	if page < 1 {
		return nil, apperr.Userf("invalid --page %d (must be >= 1)", page)
	}
	st.SetPage(page)
	return st, nil
}
