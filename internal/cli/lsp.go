package cli

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.lsp.dev/jsonrpc2"
	"go.uber.org/zap"

	"github.com/mcncl/turbo-gherkin-ls/internal/lsp"
)

// stdio joins the command's input and output into one stream
type stdio struct {
	io.Reader
	io.Writer
}

func (stdio) Close() error { return nil }

func newLSPCommand(v *viper.Viper, cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Serve the Language Server Protocol over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLSP(cmd, v, *cfgFile)
		},
	}
}

func runLSP(cmd *cobra.Command, v *viper.Viper, cfgFile string) error {
	rt, err := setup(v, cfgFile, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return serveLSP(ctx, rt, cmd.InOrStdin(), cmd.OutOrStdout())
}

func serveLSP(ctx context.Context, rt *session, in io.Reader, out io.Writer) error {
	server := lsp.NewServer(rt.dispatcher, rt.logger, version)

	var rw io.ReadWriteCloser = stdio{Reader: in, Writer: out}
	stream := jsonrpc2.NewStream(rw)
	conn := jsonrpc2.NewConn(stream)

	// Set the connection in the server so it can send notifications
	server.SetConnection(conn)

	rt.logger.Info("language server started", zap.String("version", version))
	conn.Go(ctx, server.Handler())

	select {
	case <-ctx.Done():
		_ = conn.Close()
		<-conn.Done()
	case <-conn.Done():
	}

	if err := conn.Err(); err != nil && !isClosed(err) {
		return err
	}
	rt.logger.Info("language server stopped")
	return nil
}

func isClosed(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, context.Canceled)
}
