// Command nearest ranks schools from the command line and carries operator
// helpers for the locator service.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/ukydev/school-locator/internal/attachments"
	"github.com/ukydev/school-locator/internal/auth"
	"github.com/ukydev/school-locator/internal/dataset"
	"github.com/ukydev/school-locator/internal/locator"
	"github.com/ukydev/school-locator/internal/logging"
	"github.com/ukydev/school-locator/internal/query"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:          "nearest",
		Short:        "Nearest-school ranking tools",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(logLevel, "text")
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level")
	rootCmd.SetOut(out)

	rootCmd.AddCommand(newQueryCmd(out), newHashSecretCmd(out))
	return rootCmd
}

func newQueryCmd(out io.Writer) *cobra.Command {
	var (
		latitude, longitude string
		length              int
		datasetPath         string
		format              string
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Rank the dataset by distance from a point",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := query.Raw{Latitude: latitude, Longitude: longitude}
			if cmd.Flags().Changed("length") {
				raw.Length = length
			}
			q, err := query.Parse(raw)
			if err != nil {
				return err
			}

			ds, err := loadDataset(datasetPath)
			if err != nil {
				return err
			}
			res, err := locator.NewService(ds, nil, nil).Invoke(cmd.Context(), q)
			if err != nil {
				return err
			}
			return render(out, format, res)
		},
	}
	cmd.Flags().StringVar(&latitude, "latitude", "", "Origin latitude in degrees")
	cmd.Flags().StringVar(&longitude, "longitude", "", "Origin longitude in degrees")
	cmd.Flags().IntVar(&length, "length", query.DefaultLength, "Maximum number of schools to return")
	cmd.Flags().StringVar(&datasetPath, "dataset", "", "Dataset JSON file (defaults to the embedded sample)")
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json or csv")
	return cmd
}

func loadDataset(path string) (*dataset.Dataset, error) {
	if path == "" {
		return dataset.LoadSample()
	}
	return dataset.LoadFile(path)
}

func render(out io.Writer, format string, res *locator.Result) error {
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "csv":
		a, err := attachments.CSV(res.Schools)
		if err != nil {
			return err
		}
		_, err = out.Write(a.Data)
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func newHashSecretCmd(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "hash-secret <secret>",
		Short: "Print the bcrypt hash of a client secret for API_CLIENT_SECRET_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.NewService("", 0).HashSecret(args[0])
			if err != nil {
				return err
			}
			log.Debug("Hashed client secret")
			_, err = fmt.Fprintln(out, hash)
			return err
		},
	}
}
