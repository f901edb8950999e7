package commands

import (
	"context"
	"time"

	"github.com/awnumar/memguard"
	"github.com/spf13/cobra"

	"github.com/systmms/memclear/internal/config"
	mcerrors "github.com/systmms/memclear/internal/errors"
	"github.com/systmms/memclear/internal/execenv"
	"github.com/systmms/memclear/internal/secure"
	"github.com/systmms/memclear/internal/telemetry"
)

func NewExecCommand(cfg *config.Config) *cobra.Command {
	var (
		envFile       string
		varFlags      []string
		printVars     bool
		keepExisting  bool
		workingDir    string
		timeout       time.Duration
		shredAfter    bool
		metricsListen string
	)

	cmd := &cobra.Command{
		Use:   "exec [flags] -- <command> [args...]",
		Short: "Execute command with a sealed ephemeral environment",
		Long: `Execute a command with environment variables loaded from a dotenv file.
Values are sealed in encrypted memory the moment they are read and only
decrypted while the child's environment is assembled. Nothing is written
to disk and the parent wipes its copies when the child exits.

The command must be separated from memclear arguments with '--'.

Examples:
  memclear exec --env-file .env.secret -- npm start
  memclear exec --env-file .env.secret --shred-after -- terraform apply
  memclear exec --var API_KEY=abc --print -- python app.py`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Validate arguments
			if len(args) == 0 {
				return mcerrors.UserError{
					Message:    "No command specified",
					Suggestion: "Use: memclear exec --env-file <path> -- <command> [args...]",
				}
			}

			// Validate command
			if err := execenv.ValidateCommand(args); err != nil {
				cfg.Logger.Warn("Command validation: %s", err.Error())
			}

			// Load configuration
			if err := cfg.Load(); err != nil {
				return err
			}
			def := cfg.Definition

			// Flags win over config defaults
			if envFile == "" {
				envFile = def.Exec.EnvFile
			}
			if !cmd.Flags().Changed("timeout") {
				timeout = def.ExecTimeout()
			}
			if !cmd.Flags().Changed("shred-after") {
				shredAfter = def.Exec.ShredAfter
			}
			if metricsListen == "" {
				metricsListen = def.Exec.MetricsListen
			}

			// Static variables: config first, --var flags on top
			staticEnv := make(map[string]string, len(def.Exec.Env))
			for key, value := range def.Exec.Env {
				staticEnv[key] = value
			}
			flagVars, err := parseVarFlags(varFlags)
			if err != nil {
				return err
			}
			for key, value := range flagVars {
				staticEnv[key] = value
			}

			// Seal the env file into encrypted memory
			var sealed map[string]*secure.Sealed
			if envFile != "" {
				sealed, err = execenv.LoadSealedEnvFile(envFile)
				if err != nil {
					return err
				}
			}
			defer execenv.DestroyAll(sealed)

			cfg.Logger.Info("Prepared %d static and %d sealed variables",
				len(staticEnv), len(sealed))

			// Expose wipe metrics for scraping while the child runs
			if metricsListen != "" {
				serverConfig := telemetry.DefaultServerConfig()
				serverConfig.Addr = metricsListen
				server := telemetry.NewServer(serverConfig)
				if err := server.Start(); err != nil {
					return err
				}
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
					defer cancel()
					_ = server.Stop(shutdownCtx)
				}()
				cfg.Logger.Debug("Metrics listening on %s%s", metricsListen, serverConfig.Path)
			}

			// Create executor
			executor := execenv.New(cfg.Logger)

			options := execenv.ExecOptions{
				Command:      args,
				Environment:  staticEnv,
				Sealed:       sealed,
				KeepExisting: keepExisting,
				PrintVars:    printVars,
				WorkingDir:   workingDir,
				Timeout:      timeout,
			}

			code, err := executor.Exec(cmd.Context(), options)

			// The child has its own copy of the environment; drop ours now
			// rather than at defer time.
			execenv.DestroyAll(sealed)

			if err != nil {
				return err
			}

			if shredAfter && envFile != "" && code == 0 {
				if err := shredFile(envFile, def.Shred.EffectivePasses(), false, true); err != nil {
					cfg.Logger.Warn("Could not shred %s: %v", envFile, err)
				} else {
					cfg.Logger.Info("Shredded %s", envFile)
				}
			}

			if code != 0 {
				cfg.Logger.Debug("Child exited with code %d", code)
				// SafeExit purges every memguard allocation before exiting,
				// since os.Exit skips deferred cleanup.
				memguard.SafeExit(code)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Dotenv file to seal and inject")
	cmd.Flags().StringArrayVar(&varFlags, "var", nil, "Extra KEY=VALUE variable to inject (repeatable)")
	cmd.Flags().BoolVar(&printVars, "print", false, "Print injected variables (values masked)")
	cmd.Flags().BoolVar(&keepExisting, "keep-existing", false, "Existing environment variables win over injected ones")
	cmd.Flags().StringVar(&workingDir, "working-dir", "", "Working directory for the command")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Command timeout (0 for no timeout)")
	cmd.Flags().BoolVar(&shredAfter, "shred-after", false, "Shred the env file after a successful run")
	cmd.Flags().StringVar(&metricsListen, "metrics-listen", "", "Expose wipe metrics on this address while the command runs")

	return cmd
}
