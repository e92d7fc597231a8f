package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anttisaari/tzcore/tzif"
)

func newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <a.tzif> <b.tzif>",
		Short: "Compare two TZif files' transitions and local time types",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return runDiff(args[0], args[1])
		},
	}
}

func runDiff(aPath, bPath string) error {
	a, err := decodeFilePath(aPath)
	if err != nil {
		return err
	}
	b, err := decodeFilePath(bPath)
	if err != nil {
		return err
	}

	if string(a.V2Footer.TZString) != string(b.V2Footer.TZString) {
		fmt.Printf("footer: %q != %q\n", a.V2Footer.TZString, b.V2Footer.TZString)
	}

	n := len(a.V2Data.TransitionTimes)
	if m := len(b.V2Data.TransitionTimes); m > n {
		n = m
	}

	diffs := 0
	for i := 0; i < n; i++ {
		var at, bt int64
		var aAbbr, bAbbr string
		var aOff, bOff int32

		if i < len(a.V2Data.TransitionTimes) {
			at = a.V2Data.TransitionTimes[i]
			ltt := a.V2Data.LocalTimeTypeRecord[a.V2Data.TransitionTypes[i]]
			aAbbr = designationAt(a.V2Data.TimeZoneDesignation, ltt.Idx)
			aOff = ltt.Utoff
		}
		if i < len(b.V2Data.TransitionTimes) {
			bt = b.V2Data.TransitionTimes[i]
			ltt := b.V2Data.LocalTimeTypeRecord[b.V2Data.TransitionTypes[i]]
			bAbbr = designationAt(b.V2Data.TimeZoneDesignation, ltt.Idx)
			bOff = ltt.Utoff
		}

		if at != bt || aAbbr != bAbbr || aOff != bOff {
			diffs++
			fmt.Printf("[%d] a: time=%d abbr=%s utoff=%d  |  b: time=%d abbr=%s utoff=%d\n",
				i, at, aAbbr, aOff, bt, bAbbr, bOff)
		}
	}

	if diffs == 0 {
		fmt.Println("no differences")
	}
	return nil
}

func decodeFilePath(path string) (tzif.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return tzif.File{}, err
	}
	defer f.Close()

	data, err := tzif.DecodeFile(f)
	if err != nil {
		return tzif.File{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return data, nil
}
