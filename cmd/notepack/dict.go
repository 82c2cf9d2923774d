package main

import (
	"fmt"
	"io"
	"os"

	"github.com/cheggaaa/pb/v3"
	"github.com/fatih/color"
	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/notepack/notepack"
)

var (
	dictOut       string
	dictChunkSize int
	dictMinFreq   int
	dictFast      bool
)

var dictCmd = &cobra.Command{
	Use:   "dict SAMPLE...",
	Short: "Build a global dictionary from sample files",
	Long: `Build a global dictionary by scanning sample files and keeping every
chunk whose fingerprint repeats at least --min-freq times. Encoding against
the dictionary replaces those chunks with stable cross-file symbols.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDict(args)
	},
}

func init() {
	rootCmd.AddCommand(dictCmd)
	f := dictCmd.Flags()
	f.StringVarP(&dictOut, "output", "o", "", "dictionary output path")
	f.IntVar(&dictChunkSize, "chunk-size", notepack.DefaultChunkSize, "chunk size in bytes")
	f.IntVar(&dictMinFreq, "min-freq", notepack.DefaultMinFreq, "minimum occurrences for a chunk to enter the dictionary")
	f.BoolVar(&dictFast, "fast-fingerprint", false, "fingerprint with xxHash32 instead of sha256 (faster, not interoperable)")
	dictCmd.MarkFlagRequired("output")
}

func runDict(samples []string) error {
	var fper notepack.Fingerprinter = notepack.SHA256{}
	if dictFast {
		fper = notepack.XXH32{}
	}
	b := &notepack.DictBuilder{
		ChunkSize:   dictChunkSize,
		MinFreq:     dictMinFreq,
		Fingerprint: fper,
	}

	var bar *pb.ProgressBar
	if verbose {
		var total int64
		for _, path := range samples {
			if fi, err := os.Stat(path); err == nil {
				total += fi.Size()
			}
		}
		bar = pb.Full.Start64(total)
	}
	for _, path := range samples {
		glog.V(1).Infof("scanning %s", path)
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		var r io.Reader = f
		if bar != nil {
			r = bar.NewProxyReader(f)
		}
		err = b.Scan(r)
		f.Close()
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
	}
	if bar != nil {
		bar.Finish()
	}
	glog.V(1).Infof("scanned %d files: %d chunks, %d unique fingerprints",
		len(samples), b.Chunks(), b.Unique())

	dict := b.Dict()
	out, err := os.Create(dictOut)
	if err != nil {
		return err
	}
	if _, err := dict.WriteTo(out); err != nil {
		out.Close()
		os.Remove(dictOut)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	color.Green("Wrote %d dictionary entries to %s", dict.Len(), dictOut)
	return nil
}
