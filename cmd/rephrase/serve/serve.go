package servecmder

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/rephrase/cmd/rephrase/configpath"
	"github.com/papercomputeco/rephrase/pkg/config"
	"github.com/papercomputeco/rephrase/pkg/logger"
	"github.com/papercomputeco/rephrase/pkg/paraphrase"
	"github.com/papercomputeco/rephrase/pkg/prompt"
	"github.com/papercomputeco/rephrase/pkg/provider"
	"github.com/papercomputeco/rephrase/relay"
)

const serveLongDesc string = `Run the paraphrase relay.

The relay accepts POST /api/paraphrase with {"sentence": "..."} and
answers {"paraphrases": "..."} using the configured provider.

Configuration is read from a TOML file (--config, $REPHRASE_CONFIG,
./rephrase.toml or ~/.rephrase/config.toml), then the environment
(OPENAI_API_KEY, SILICONFLOW_API_KEY, REPHRASE_*), then flags.

Examples:
  OPENAI_API_KEY=sk-... rephrase serve
  rephrase serve --provider siliconflow --count 20 --mode exactly
  rephrase serve --config ./rephrase.toml --listen 127.0.0.1:3001 --debug`

const serveShortDesc string = "Run the paraphrase relay server"

type serveCommander struct {
	configPath   string
	listen       string
	providerName string
	model        string
	baseURL      string
	count        int
	mode         string
	debug        bool
}

func NewServeCmd() *cobra.Command {
	return newServeCmd(&serveCommander{})
}

func newServeCmd(cmder *serveCommander) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.configPath, "config", "c", "", "Path to TOML config file")
	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", "", "Address to listen on (default \":3001\")")
	cmd.Flags().StringVarP(&cmder.providerName, "provider", "p", "", "Upstream provider: openai or siliconflow")
	cmd.Flags().StringVar(&cmder.model, "model", "", "Override the provider's default model")
	cmd.Flags().StringVar(&cmder.baseURL, "base-url", "", "Override the provider's API base URL")
	cmd.Flags().IntVar(&cmder.count, "count", 0, "Number of rewordings to request (default 20)")
	cmd.Flags().StringVar(&cmder.mode, "mode", "", "Count mode: at-least or exactly (default depends on provider)")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Enable debug logging")

	return cmd
}

// loadConfig resolves and loads the config file, then applies set flags.
func (c *serveCommander) loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := configpath.ResolveConfigPath(c.configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("could not resolve config: %w", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("listen") {
		cfg.ListenAddr = c.listen
	}
	if flags.Changed("provider") {
		cfg.SetProvider(c.providerName)
	}
	if flags.Changed("model") {
		cfg.Provider.Model = c.model
	}
	if flags.Changed("base-url") {
		cfg.Provider.BaseURL = c.baseURL
	}
	if flags.Changed("count") {
		cfg.Prompt.Count = c.count
	}
	if flags.Changed("mode") {
		cfg.Prompt.Mode = c.mode
	}
	if flags.Changed("debug") {
		cfg.Debug = c.debug
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *serveCommander) run(cmd *cobra.Command) error {
	cfg, err := c.loadConfig(cmd)
	if err != nil {
		return err
	}

	log := logger.NewLoggerTo(cmd.OutOrStdout(), cfg.Debug)
	defer log.Sync()

	r, err := buildRelay(cfg, cmd.Root().Version, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- r.Run()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("relay server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info("shutting down relay")
		if err := r.Shutdown(); err != nil {
			return fmt.Errorf("relay shutdown failed: %w", err)
		}
		return <-errCh
	}
}

// buildRelay wires provider, prompt builder and service into a Relay.
func buildRelay(cfg config.Config, version string, log *zap.Logger) (*relay.Relay, error) {
	p, err := provider.New(cfg.ProviderOptions())
	if err != nil {
		return nil, err
	}

	mode, err := cfg.PromptMode()
	if err != nil {
		return nil, err
	}

	builder, err := prompt.NewBuilder(cfg.Prompt.Count, mode, cfg.Prompt.Template)
	if err != nil {
		return nil, err
	}

	if cfg.Provider.APIKey == "" {
		log.Warn("no provider API key configured; paraphrase requests will fail",
			zap.String("provider", p.Name()),
			zap.String("env", provider.EnvVar(cfg.Provider.Name)),
		)
	}

	log.Info("rephrase relay configured",
		zap.String("listen", cfg.ListenAddr),
		zap.String("provider", p.Name()),
		zap.Int("count", builder.Count()),
		zap.String("mode", string(builder.Mode())),
		zap.Bool("debug", cfg.Debug),
	)

	service := paraphrase.NewService(p, builder, log)

	return relay.New(relay.Config{
		ListenAddr:   cfg.ListenAddr,
		AllowOrigins: cfg.AllowOrigins,
		Version:      version,
	}, service, log)
}
