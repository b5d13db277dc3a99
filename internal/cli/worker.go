package cli

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mcncl/turbo-gherkin-ls/internal/message"
)

func newWorkerCommand(v *viper.Viper, cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Answer JSON requests from stdin, one response per line on stdout",
		Long: `Reads a stream of JSON request objects on stdin. Configuration and
document messages are applied silently; every query is answered with one
{"id", "data", "success"} object per line on stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(v, *cfgFile, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return serveWorker(ctx, rt, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// serveWorker processes requests in arrival order until EOF. A malformed
// stream ends the loop since the decoder cannot resynchronize.
func serveWorker(ctx context.Context, rt *session, in io.Reader, out io.Writer) error {
	reader := message.NewReader(in)
	writer := message.NewWriter(out)

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		raw, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			rt.logger.Error("worker input failed", zap.Error(err))
			return err
		}

		resp := rt.dispatcher.ProcessRaw(raw)
		if resp == nil {
			continue
		}
		if err := writer.Write(resp); err != nil {
			return err
		}
	}
}
