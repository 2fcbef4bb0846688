package main

import (
	"fmt"
	"os"

	"github.com/go-crm-nosql/internal/application/qr"
	"github.com/spf13/cobra"
)

func newQRCmd(a *app) *cobra.Command {
	var (
		outPath string
		size    int
	)
	cmd := &cobra.Command{
		Use:       "qr <customer|job> <id>",
		Short:     "Print a QR payload and optionally write it as a PNG",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(qr.KindCustomer), string(qr.KindJob)},
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := qr.NewCodec(a.prov.Store).Payload(cmd.Context(), qr.Kind(args[0]), args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), payload)
			if outPath == "" {
				return nil
			}
			img, ok := qr.NewRenderer(size, a.logger).RenderOrPlaceholder(payload)
			if err := os.WriteFile(outPath, img, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", outPath, err)
			}
			if !ok {
				fmt.Fprintf(cmd.ErrOrStderr(), "QR rendering failed; wrote a placeholder to %s\n", outPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Write the QR image to this PNG file")
	cmd.Flags().IntVar(&size, "size", qr.DefaultSize, "Image edge length in pixels")
	return cmd
}
