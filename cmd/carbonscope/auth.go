package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idlab-discover/carbonscope-cli/internal/api"
	"github.com/idlab-discover/carbonscope-cli/internal/catalog"
	"github.com/idlab-discover/carbonscope-cli/internal/ui"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session token",
	Long:  "Sign in to the CarbonScope backend. Without --username/--password an interactive form is shown. The password can also come from CARBONSCOPE_PASSWORD.",
	RunE:  runLogin,
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	username := strings.TrimSpace(viper.GetString("login.username"))
	password := viper.GetString("login.password")
	if password == "" {
		password = os.Getenv("CARBONSCOPE_PASSWORD")
	}
	if username == "" || password == "" {
		creds, err := ui.LoginForm(username)
		if err != nil {
			return err
		}
		username, password = creds.Username, creds.Password
	}

	u, err := ui.Fetch(a.errOut, a.quiet(), "Signing in", func() (*catalog.User, error) {
		return a.session.Login(cmd.Context(), username, password)
	})
	if err != nil {
		return err
	}
	ui.NewProfileUI(a.out).PrintSignedIn(*u)
	return nil
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	RunE:  runRegister,
}

func runRegister(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	r := api.Registration{
		Username: viper.GetString("register.username"),
		Email:    viper.GetString("register.email"),
		FullName: viper.GetString("register.full-name"),
		Password: os.Getenv("CARBONSCOPE_PASSWORD"),
	}
	if r.Username == "" || r.Email == "" || r.Password == "" {
		if r, err = ui.RegisterForm(); err != nil {
			return err
		}
	}
	u, err := ui.Fetch(a.errOut, a.quiet(), "Creating account", func() (*catalog.User, error) {
		return a.session.Register(cmd.Context(), r)
	})
	if err != nil {
		return err
	}
	ui.NewProfileUI(a.out).PrintSignedIn(*u)
	return nil
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := a.session.Logout(); err != nil {
			return err
		}
		ui.NewProfileUI(a.out).PrintSignedOut()
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		a.restore(cmd.Context())
		u := a.session.User()
		if u == nil {
			ui.NewProfileUI(a.out).PrintAnonymous()
			return nil
		}
		ui.NewProfileUI(a.out).PrintUser(*u)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringP("username", "u", "", "Username")
	loginCmd.Flags().StringP("password", "p", "", "Password (prefer CARBONSCOPE_PASSWORD)")
	viper.BindPFlag("login.username", loginCmd.Flags().Lookup("username"))
	viper.BindPFlag("login.password", loginCmd.Flags().Lookup("password"))

	registerCmd.Flags().String("username", "", "Username")
	registerCmd.Flags().String("email", "", "Email address")
	registerCmd.Flags().String("full-name", "", "Full name")
	viper.BindPFlag("register.username", registerCmd.Flags().Lookup("username"))
	viper.BindPFlag("register.email", registerCmd.Flags().Lookup("email"))
	viper.BindPFlag("register.full-name", registerCmd.Flags().Lookup("full-name"))
}
