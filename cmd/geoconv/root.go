package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.temporal.io/sdk/client"

	natsadapter "github.com/samirrijal/geokit/internal/adapters/nats"
	"github.com/samirrijal/geokit/internal/core/domain"
	"github.com/samirrijal/geokit/internal/core/platform"
	"github.com/samirrijal/geokit/internal/core/usecases"
	"github.com/samirrijal/geokit/internal/pkg/config"
	"github.com/samirrijal/geokit/internal/pkg/featurecsv"
	"github.com/samirrijal/geokit/internal/workflows"
)

// geometryFlags are shared by every command that reads a geometry.
type geometryFlags struct {
	family   string
	from     string
	platform string
}

func (f *geometryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.family, "family", "geometry", "geometry or geography")
	cmd.Flags().StringVar(&f.from, "from", "wkt", "input format: wkt, ewkt, wkb, wkb_hex or geojson")
	cmd.Flags().StringVar(&f.platform, "platform", "postgresql", "storage dialect applying SRID defaults")
}

// request reads the input from args[0], or stdin when it is absent or "-". Raw WKB on stdin is
// binary; on the command line it is base64.
func (f *geometryFlags) request(cmd *cobra.Command, args []string) (usecases.DecodeRequest, error) {
	family, err := domain.ParseFamily(f.family)
	if err != nil {
		return usecases.DecodeRequest{}, err
	}
	format, err := usecases.ParseFormat(f.from)
	if err != nil {
		return usecases.DecodeRequest{}, err
	}

	var input []byte
	if len(args) == 0 || args[0] == "-" {
		if input, err = io.ReadAll(cmd.InOrStdin()); err != nil {
			return usecases.DecodeRequest{}, errors.Wrap(err, "read stdin")
		}
		if format != usecases.FormatWKB {
			input = []byte(strings.TrimSpace(string(input)))
		}
	} else if input, err = usecases.InputBytes(format, args[0]); err != nil {
		return usecases.DecodeRequest{}, err
	}
	return usecases.DecodeRequest{Input: input, Family: family, Format: format}, nil
}

func (f *geometryFlags) service() (*usecases.ConversionService, error) {
	p, err := platform.Lookup(f.platform)
	if err != nil {
		return nil, err
	}
	return usecases.NewConversionService(nil, p, usecases.ConversionOptions{}), nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "geoconv",
		Short: "decode, convert and submit WKT/WKB geometries",
		Long: `
  Decodes and re-encodes spatial geometries between WKT, EWKT, WKB (raw, hex or base64)
  and GeoJSON, and submits them to a geokit deployment over NATS or Temporal.
`,
		SilenceUsage: true,
	}
	root.AddCommand(newDecodeCmd(), newConvertCmd(), newPublishCmd(), newImportCmd())
	return root
}

func newDecodeCmd() *cobra.Command {
	var flags geometryFlags
	cmd := &cobra.Command{
		Use:   "decode [input]",
		Short: "print the structure and summary of a geometry",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := flags.service()
			if err != nil {
				return err
			}
			req, err := flags.request(cmd, args)
			if err != nil {
				return err
			}
			g, err := svc.Decode(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"type":        g.Type().String(),
				"coordinates": g.Coordinates(),
				"summary":     svc.Describe(g),
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newConvertCmd() *cobra.Command {
	var (
		flags     geometryFlags
		to        string
		byteOrder string
	)
	cmd := &cobra.Command{
		Use:   "convert [input]",
		Short: "re-encode a geometry",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := flags.service()
			if err != nil {
				return err
			}
			req, err := flags.request(cmd, args)
			if err != nil {
				return err
			}
			output, err := usecases.ParseFormat(to)
			if err != nil {
				return err
			}
			conv, err := svc.Convert(cmd.Context(), usecases.ConvertRequest{
				DecodeRequest: req,
				Output:        output,
				ByteOrder:     byteOrder,
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), conv.Output)
			return err
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&to, "to", "wkb_hex", "output format: wkt, ewkt, wkb, wkb_hex or geojson")
	cmd.Flags().StringVar(&byteOrder, "byte-order", "ndr", "WKB byte order: ndr (little endian) or xdr (big endian)")
	return cmd
}

func newPublishCmd() *cobra.Command {
	var (
		flags geometryFlags
		name  string
	)
	cmd := &cobra.Command{
		Use:   "publish [input]",
		Short: "validate a geometry and submit it to the ingest stream",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := flags.service()
			if err != nil {
				return err
			}
			req, err := flags.request(cmd, args)
			if err != nil {
				return err
			}
			if _, err := svc.Decode(cmd.Context(), req); err != nil {
				return err
			}

			cfg, err := config.Load("geoconv")
			if err != nil {
				return err
			}
			pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
			if err != nil {
				return errors.Wrap(err, "connect nats")
			}
			defer pub.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			return pub.PublishIngest(ctx, ingestMessage(name, req))
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&name, "name", "", "feature name")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

// ingestMessage carries req over the wire. Raw WKB travels base64.
func ingestMessage(name string, req usecases.DecodeRequest) *domain.IngestMessage {
	msg := &domain.IngestMessage{
		Name:     name,
		Family:   req.Family.String(),
		Encoding: string(req.Format),
		Input:    string(req.Input),
	}
	if req.Format == usecases.FormatWKB {
		msg.Input = base64.StdEncoding.EncodeToString(req.Input)
	}
	return msg
}

func newImportCmd() *cobra.Command {
	var (
		batchID string
		wait    bool
	)
	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "store a CSV batch of geometries all-or-nothing",
		Long: `
  Starts an import workflow on the importer worker. The CSV header must name an input
  column; name, family, encoding and metadata are optional.
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			items, err := featurecsv.ReadAll(f)
			if err != nil {
				return errors.Wrapf(err, "read %s", args[0])
			}
			if len(items) == 0 {
				return errors.New("no rows to import")
			}

			cfg, err := config.Load("geoconv")
			if err != nil {
				return err
			}
			c, err := client.Dial(client.Options{
				HostPort:  cfg.Temporal.HostPort,
				Namespace: cfg.Temporal.Namespace,
			})
			if err != nil {
				return errors.Wrap(err, "temporal client")
			}
			defer c.Close()

			if batchID == "" {
				batchID = fmt.Sprintf("import-%d", time.Now().UnixNano())
			}
			run, err := c.ExecuteWorkflow(cmd.Context(), client.StartWorkflowOptions{
				ID:        batchID,
				TaskQueue: workflows.TaskQueue,
			}, workflows.ImportWorkflow, workflows.ImportInput{BatchID: batchID, Items: items})
			if err != nil {
				return errors.Wrap(err, "start import")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "started %s (run %s), %d items\n", run.GetID(), run.GetRunID(), len(items))
			if !wait {
				return nil
			}

			var result workflows.ImportResult
			if err := run.Get(cmd.Context(), &result); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVar(&batchID, "batch-id", "", "workflow ID; generated when empty")
	cmd.Flags().BoolVar(&wait, "wait", true, "wait for the import to finish")
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
