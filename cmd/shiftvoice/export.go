package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kotoba-labs/shiftvoice/internal/config"
	"github.com/kotoba-labs/shiftvoice/pkg/store"
)

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write a JSON snapshot of the current schedule dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			st, err := store.Open(store.Config{
				Dir:       filepath.Join(cfg.DataDir, config.DefaultCacheDirName),
				RemoteURL: cfg.Dataset.RemoteURL,
				ExportDir: filepath.Join(cfg.DataDir, config.DefaultExportDirName),
				HotTTL:    cfg.Dataset.HotTTL,
			})
			if err != nil {
				return err
			}
			defer st.Close()

			dataset, source, err := st.Load(context.Background())
			if err != nil {
				return err
			}

			path, err := st.Export(dataset)
			if err != nil {
				return err
			}

			fmt.Printf("exported %d people (%s) to %s\n", len(dataset.Users), source, path)
			return nil
		},
	}
}
