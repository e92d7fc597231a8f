package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anttisaari/tzcore/tzif"
)

func newInspectCmd() *cobra.Command {
	var showLeaps bool

	cmd := &cobra.Command{
		Use:   "inspect <tzif-file>",
		Short: "Print the header, local time types, and transitions of a TZif file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runInspect(args[0], showLeaps)
		},
	}

	cmd.Flags().BoolVar(&showLeaps, "leaps", false, "also print leap second records")
	return cmd
}

func runInspect(path string, showLeaps bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := tzif.DecodeFile(f)
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	fmt.Printf("version: %s\n", data.Version)
	fmt.Printf("typecnt: %d  timecnt: %d  charcnt: %d  leapcnt: %d\n",
		data.V2Header.Typecnt, data.V2Header.Timecnt, data.V2Header.Charcnt, data.V2Header.Leapcnt)

	fmt.Println("local time types:")
	for i, ltt := range data.V2Data.LocalTimeTypeRecord {
		fmt.Printf("  [%d] utoff=%-7d dst=%-5t abbr=%s\n", i, ltt.Utoff, ltt.Dst, designationAt(data.V2Data.TimeZoneDesignation, ltt.Idx))
	}

	fmt.Println("transitions:")
	for i, tt := range data.V2Data.TransitionTimes {
		ltt := data.V2Data.LocalTimeTypeRecord[data.V2Data.TransitionTypes[i]]
		fmt.Printf("  %-12d type=%d (%s, utoff=%d, dst=%t)\n",
			tt, data.V2Data.TransitionTypes[i], designationAt(data.V2Data.TimeZoneDesignation, ltt.Idx), ltt.Utoff, ltt.Dst)
	}

	fmt.Printf("footer: %s\n", data.V2Footer.TZString)

	if showLeaps {
		fmt.Println("leap seconds:")
		for _, rec := range data.V2Data.LeapSecondRecords {
			fmt.Printf("  occur=%d corr=%d\n", rec.Occur, rec.Corr)
		}
	}

	return nil
}

func designationAt(desig []byte, idx uint8) string {
	rest := desig[idx:]
	for i, b := range rest {
		if b == 0 {
			return string(rest[:i])
		}
	}
	return string(rest)
}
