package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idlab-discover/carbonscope-cli/internal/ui"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "carbonscope",
	Short: "Explore the carbon footprint of AI models",
	Long:  longDescription,

	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initUIAndBanner(cmd)
	},

	// When invoked without a subcommand, show help (with banner) instead of
	// printing a plain usage output.
	RunE: func(cmd *cobra.Command, args []string) error {
		initUIAndBanner(cmd)
		return cmd.Help()
	},
}

var (
	cfgFile string

	apiURL     string
	apiTimeout int
	dataMode   string
	backend    string
	tokenFile  string
	logLevel   string
)

// SetVersion sets the version for the CLI
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetRootCmd returns the root command for use with fang
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.carbonscope.yaml or ./config/defaults.yaml)")
	pf.StringVar(&apiURL, "api-url", "", "CarbonScope backend URL (default "+defaultAPIURL+")")
	pf.IntVar(&apiTimeout, "timeout", 0, "HTTP timeout in seconds")
	pf.StringVar(&dataMode, "mode", "", "Where filtering happens: server|client")
	pf.StringVar(&backend, "backend", "", "Data backend: online|dummy (dummy uses built-in fixtures)")
	pf.StringVar(&tokenFile, "token-file", "", "Where the session token is stored")
	pf.StringVar(&logLevel, "log-level", "", "Log level: quiet|standard|debug")

	viper.BindPFlag("api.url", pf.Lookup("api-url"))
	viper.BindPFlag("api.timeout", pf.Lookup("timeout"))
	viper.BindPFlag("data.mode", pf.Lookup("mode"))
	viper.BindPFlag("data.backend", pf.Lookup("backend"))
	viper.BindPFlag("auth.token-file", pf.Lookup("token-file"))
	viper.BindPFlag("log-level", pf.Lookup("log-level"))

	// Ensure `--help` (and help subcommands) show the banner consistently.
	defaultHelp := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		initUIAndBanner(cmd)
		defaultHelp(cmd, args)
	})

	rootCmd.AddCommand(
		loginCmd, logoutCmd, whoamiCmd, registerCmd,
		modelsCmd, scoresCmd, simulateCmd, browseCmd, exportCmd, favoritesCmd,
	)
}

func initConfig() {
	// Environment variables override the config file, e.g. api.url ->
	// CARBONSCOPE_API_URL, auth.token-file -> CARBONSCOPE_AUTH_TOKEN_FILE.
	viper.SetEnvPrefix("CARBONSCOPE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	var err error
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		err = viper.ReadInConfig()
	} else {
		home, herr := os.UserHomeDir()
		cobra.CheckErr(herr)

		viper.SetConfigType("yaml")
		viper.AddConfigPath(home)
		viper.AddConfigPath("./config")

		viper.SetConfigName(".carbonscope")
		err = viper.ReadInConfig()

		notFound := viper.ConfigFileNotFoundError{}
		if err != nil && errors.As(err, &notFound) {
			viper.SetConfigName("defaults")
			err = viper.ReadInConfig()
		}
	}

	notFound := viper.ConfigFileNotFoundError{}
	switch {
	case err != nil && !errors.As(err, &notFound):
		cobra.CheckErr(err)
	case err != nil:
		// The config file is optional.
	default:
		if viper.GetString("log-level") == "debug" {
			configMsg := ui.Dim.Render("Using config file: ") + ui.Secondary.Render(viper.ConfigFileUsed())
			fmt.Fprintln(os.Stderr, configMsg)
		}
	}
}

const longDescription = "Browse, filter and compare the carbon footprint of AI models, and estimate the emissions of running one."

func initUIAndBanner(cmd *cobra.Command) {
	if cmd == nil {
		return
	}
	cmd.Root().Long = ui.RenderGradientBanner(ui.BannerASCII) + "\n" + longDescription
}
