package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/b2breeze/internal/common"
	"github.com/joseph-ayodele/b2breeze/internal/server"
)

type rootOptions struct {
	configPath string
	addr       string
	logLevel   string

	cfg    *common.Config
	logger *slog.Logger
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "cardctl",
		Short:         "Scan business cards and manage B2Breeze contacts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.init(cmd.ErrOrStderr())
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file (env vars still override)")
	cmd.PersistentFlags().StringVar(&opts.addr, "addr", "", "cardscand gRPC address (default from GRPC_ADDR)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "debug | info | warn | error")

	cmd.AddCommand(
		newParseCommand(opts),
		newOCRCommand(opts),
		newScanCommand(opts),
		newBatchCommand(opts),
		newExportCommand(opts),
		newDBHealthCommand(opts),
		newContactsCommand(opts),
	)
	return cmd
}

func (o *rootOptions) init(logOut io.Writer) error {
	_ = godotenv.Load()

	cfg := common.LoadConfig()
	if o.configPath != "" {
		var err error
		if cfg, err = common.LoadConfigFile(o.configPath); err != nil {
			return err
		}
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.addr != "" {
		cfg.Server.GRPCAddr = o.addr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	o.cfg = cfg
	// CLI output goes to stdout; logs stay out of the way
	o.logger = common.NewLogger(logOut, cfg.Log)
	return nil
}

// dial connects to the daemon; callers close the returned closer.
func (o *rootOptions) dial() (*server.Client, io.Closer, error) {
	addr := o.cfg.Server.GRPCAddr
	if len(addr) > 0 && addr[0] == ':' {
		addr = "localhost" + addr
	}
	c, conn, err := server.Dial(addr)
	if err != nil {
		return nil, nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return c, conn, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func readInput(arg string, stdin io.Reader) ([]byte, error) {
	if arg == "" || arg == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(arg)
}
