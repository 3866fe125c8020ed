package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ourdigital/gbp-toolkit/internal/app"
	"github.com/ourdigital/gbp-toolkit/internal/auth"
	"github.com/ourdigital/gbp-toolkit/internal/config"
	"github.com/ourdigital/gbp-toolkit/internal/provider/gbp"
	"github.com/ourdigital/gbp-toolkit/internal/store"
)

var (
	// version is set via ldflags at build time.
	version = "dev"
	cfgFile string

	// jsonFlag enables JSON output for all commands.
	jsonFlag bool

	verboseFlag     bool
	credentialsFlag string
	tokenFlag       string
)

// keyringUser is the keyring account the token is stored under.
const keyringUser = "default"

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "gbp",
		Short:        "Google Business Profile toolkit",
		Long:         "Manage Google Business Profile accounts, locations, reviews and insights from the terminal.",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadEnv()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if shell, _ := cmd.Flags().GetString("generate-completion"); shell != "" {
				switch shell {
				case "bash":
					return cmd.Root().GenBashCompletion(os.Stdout)
				case "zsh":
					return cmd.Root().GenZshCompletion(os.Stdout)
				case "fish":
					return cmd.Root().GenFishCompletion(os.Stdout, true)
				default:
					return fmt.Errorf("unsupported shell: %s (use bash, zsh, or fish)", shell)
				}
			}
			return cmd.Help()
		},
	}
	root.SetVersionTemplate(fmt.Sprintf("gbp %s\n", version))
	root.CompletionOptions.DisableDefaultCmd = true
	root.Flags().String("generate-completion", "", "Generate shell completion (bash, zsh, fish)")
	root.Flags().MarkHidden("generate-completion")
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	root.PersistentFlags().BoolVar(&jsonFlag, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "log API requests to stderr")
	root.PersistentFlags().StringVar(&credentialsFlag, "credentials", "", "OAuth client credentials file (overrides "+config.EnvCredentialsFile+")")
	root.PersistentFlags().StringVar(&tokenFlag, "token", "", "token file (overrides "+config.EnvTokenFile+")")
	root.AddCommand(newAuthCmd())
	root.AddCommand(newAccountsCmd())
	root.AddCommand(newLocationsCmd())
	root.AddCommand(newReviewsCmd())
	root.AddCommand(newInsightsCmd())
	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig loads the config file and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if credentialsFlag != "" {
		cfg.Auth.CredentialsFile = credentialsFlag
	}
	if tokenFlag != "" {
		cfg.Auth.TokenFile = tokenFlag
	}
	return cfg, nil
}

func newLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	if verboseFlag {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

func newTokenStore(cfg *config.Config) store.TokenStore {
	if cfg.Auth.TokenStore == config.TokenStoreKeyring {
		return store.NewKeyringTokenStore(keyringUser, auth.Scope)
	}
	return store.NewFileTokenStore(cfg.Auth.TokenFile, auth.Scope)
}

func newAuthenticator(cfg *config.Config, logger zerolog.Logger) *auth.Authenticator {
	var codes auth.CodeSource = &auth.PromptCodeSource{In: os.Stdin, Out: os.Stderr}
	if cfg.Auth.CallbackServer {
		codes = &auth.CallbackCodeSource{
			RedirectURL: cfg.Auth.RedirectURI,
			Out:         os.Stderr,
			Timeout:     5 * time.Minute,
		}
	}
	return auth.New(auth.Options{
		CredentialsFile: cfg.Auth.CredentialsFile,
		RedirectURL:     cfg.Auth.RedirectURI,
		Scopes:          []string{auth.Scope},
		Store:           newTokenStore(cfg),
		Codes:           codes,
		Logger:          logger,
	})
}

// session holds the authenticated client and manager for one command.
type session struct {
	cfg     *config.Config
	client  *gbp.Client
	manager *app.Manager
}

func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := newLogger()
	ctx := cmd.Context()

	creds, err := newAuthenticator(cfg, logger).Authenticate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}

	client, err := gbp.Connect(ctx, creds, gbp.Options{
		BusinessEndpoint:    cfg.API.BusinessEndpoint,
		PerformanceEndpoint: cfg.API.PerformanceEndpoint,
		LocationsPageSize:   cfg.API.LocationsPageSize,
		ReviewsPageSize:     cfg.API.ReviewsPageSize,
		RequestsPerSecond:   cfg.API.RequestsPerSecond,
		Burst:               cfg.API.Burst,
		Logger:              logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	manager := app.NewManager(client, logger,
		app.WithPageSizes(cfg.API.LocationsPageSize, cfg.API.ReviewsPageSize))
	return &session{cfg: cfg, client: client, manager: manager}, nil
}
