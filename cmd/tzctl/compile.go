package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/anttisaari/tzcore/tzc"
)

func newCompileCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "compile <tzdata-source-file>",
		Short: "Compile an IANA tzdata source file into TZif files, one per zone",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runCompile(args[0], outDir)
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "directory to write compiled TZif files into")
	return cmd
}

func runCompile(srcPath, outDir string) error {
	src, err := os.ReadFile(srcPath)
	if err != nil {
		return err
	}

	compiled, err := tzc.CompileBytes(src)
	if err != nil {
		return fmt.Errorf("compile %s: %w", srcPath, err)
	}

	for zone, data := range compiled {
		path := filepath.Join(outDir, zone)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
		fmt.Printf("wrote %s (%d bytes)\n", path, len(data))
	}

	return nil
}
