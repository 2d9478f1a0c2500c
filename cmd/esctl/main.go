package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/naturalis/museumapp-api/internal/config"
	"github.com/naturalis/museumapp-api/internal/engine/elastic"
	logpkg "github.com/naturalis/museumapp-api/internal/logger"
	documentrepo "github.com/naturalis/museumapp-api/internal/repository/document"
	indexrepo "github.com/naturalis/museumapp-api/internal/repository/index"
	statusrepo "github.com/naturalis/museumapp-api/internal/repository/status"
	"github.com/naturalis/museumapp-api/internal/usecase/control"
	"github.com/naturalis/museumapp-api/internal/version"
)

var commandHelp = map[string]struct{ use, short string }{
	control.CreateIndex:        {"create_index <mapping.json>", "Create the primary index from a mapping file"},
	control.DeleteIndex:        {"delete_index", "Delete the primary index"},
	control.CreateControlIndex: {"create_control_index <mapping.json>", "Create the control index from a mapping file"},
	control.DeleteControlIndex: {"delete_control_index", "Delete the control index"},
	control.LoadDocuments:      {"load_documents <folder>", "Create one document per .json file in folder"},
	control.DeleteDocument:     {"delete_document <id>", "Delete one document by id"},
	control.DeleteDocuments:    {"delete_documents [query.json]", "Delete every document matching a query (default: all)"},
	control.SetDocumentsStatus: {"set_documents_status <busy|ready>", "Write the documents status record"},
	control.Check:              {"check", "Check that Elasticsearch answers"},
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "esctl [command] [argument]",
		Short: "Elasticsearch control utility for the museumapp API",
		Long: `esctl manages the museumapp indices and documents.

Without arguments the command and its argument are read from
CONTROL_COMMAND and CONTROL_ARGUMENT.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, arg := "", ""
			if len(args) > 0 {
				name = args[0]
			}
			if len(args) > 1 {
				arg = args[1]
			}
			return run(cmd.Context(), name, arg, len(args) == 0)
		},
	}

	for _, name := range control.Commands {
		rootCmd.AddCommand(controlCmd(name))
	}
	rootCmd.AddCommand(versionCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "esctl:", err)
		os.Exit(1)
	}
}

func controlCmd(name string) *cobra.Command {
	help := commandHelp[name]
	return &cobra.Command{
		Use:   help.use,
		Short: help.short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arg := ""
			if len(args) > 0 {
				arg = args[0]
			}
			return run(cmd.Context(), name, arg, false)
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.String("esctl"))
		},
	}
}

// run executes one control command. fromEnv takes command and argument from the environment.
func run(ctx context.Context, name, arg string, fromEnv bool) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.LoadControl()
	if err != nil {
		return err
	}
	if fromEnv {
		name, arg = cfg.Command, cfg.Argument
	}

	env, level := "prod", "info"
	if cfg.Debug {
		env, level = "dev", "debug"
	}
	logger, err := logpkg.NewLogger(env, logpkg.Options{Level: level, File: cfg.LogFile})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	store, err := elastic.NewStore(elastic.Config{
		Scheme:   cfg.Scheme,
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
	})
	if err != nil {
		logger.Error("Failed to create Elasticsearch client", zap.Error(err))
		return err
	}

	svc, err := control.New(
		indexrepo.New(store),
		documentrepo.New(store, cfg.Index),
		statusrepo.New(store, cfg.ControlIndex),
		store,
		control.Indices{Primary: cfg.Index, Control: cfg.ControlIndex},
		logger,
	)
	if err != nil {
		return err
	}

	logger.Debug("Running command",
		zap.String("command", name),
		zap.String("argument", arg),
		zap.String("es", cfg.Host),
		zap.String("index", cfg.Index),
		zap.String("control_index", cfg.ControlIndex),
	)

	// Per-document load failures are reported in the log, not the exit code.
	if _, err := svc.Run(ctx, control.Command{Name: name, Arg: arg}); err != nil {
		if errors.Is(err, control.ErrPrecondition) {
			return err
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
