package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-crm-nosql/internal/domain"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

// formatFor picks the snapshot encoding from an explicit flag or the file
// extension, defaulting to JSON.
func formatFor(flag, path string) (string, error) {
	if flag != "" {
		switch f := strings.ToLower(flag); f {
		case formatJSON, formatYAML:
			return f, nil
		case "yml":
			return formatYAML, nil
		default:
			return "", fmt.Errorf("unknown format %q (want json or yaml)", flag)
		}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML, nil
	}
	return formatJSON, nil
}

// encodeSnapshot writes snap in format. YAML goes through the JSON form so
// money and dates keep their JSON representation.
func encodeSnapshot(w io.Writer, snap *domain.Snapshot, format string) error {
	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	if format == formatJSON {
		_, err = w.Write(append(raw, '\n'))
		return err
	}
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

func decodeSnapshot(data []byte, format string) (domain.Snapshot, error) {
	var snap domain.Snapshot
	if format == formatYAML {
		var doc interface{}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return snap, fmt.Errorf("parse yaml: %v: %w", err, domain.ErrValidation)
		}
		raw, err := json.Marshal(doc)
		if err != nil {
			return snap, fmt.Errorf("convert yaml: %v: %w", err, domain.ErrValidation)
		}
		data = raw
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&snap); err != nil {
		return snap, fmt.Errorf("parse snapshot: %v: %w", err, domain.ErrValidation)
	}
	return snap, nil
}

func newExportCmd(a *app) *cobra.Command {
	var outPath, format string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every customer and job to a JSON or YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmtName, err := formatFor(format, outPath)
			if err != nil {
				return err
			}
			snap, err := a.prov.Store.Export(cmd.Context())
			if err != nil {
				return err
			}
			if outPath == "" || outPath == "-" {
				return encodeSnapshot(cmd.OutOrStdout(), snap, fmtName)
			}
			var buf bytes.Buffer
			if err := encodeSnapshot(&buf, snap, fmtName); err != nil {
				return err
			}
			if err := os.WriteFile(outPath, buf.Bytes(), 0o600); err != nil {
				return fmt.Errorf("write %s: %w", outPath, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d customers and %d jobs to %s\n",
				len(snap.Customers), len(snap.Jobs), outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().StringVar(&format, "format", "", "json or yaml (default from the file extension)")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	var inPath, format string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace all customers and jobs with the contents of a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmtName, err := formatFor(format, inPath)
			if err != nil {
				return err
			}
			var data []byte
			if inPath == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(inPath)
			}
			if err != nil {
				return fmt.Errorf("read %s: %w", inPath, err)
			}
			snap, err := decodeSnapshot(data, fmtName)
			if err != nil {
				return err
			}
			if err := a.prov.Store.Import(cmd.Context(), snap); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d customers and %d jobs\n", len(snap.Customers), len(snap.Jobs))
			return nil
		},
	}
	cmd.Flags().StringVarP(&inPath, "file", "f", "", "Snapshot file, or - for stdin (required)")
	cmd.Flags().StringVar(&format, "format", "", "json or yaml (default from the file extension)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newWipeCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "wipe",
		Short: "Delete every customer and job",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("refusing to wipe without --yes")
			}
			if err := a.prov.Store.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All customers and jobs deleted")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the wipe")
	return cmd
}
