package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cheggaaa/pb/v3"
	"github.com/fatih/color"
	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/notepack/notepack"
	"github.com/notepack/notepack/container"
)

var (
	encodeIn          string
	encodeOut         string
	encodeDict        string
	encodeContexts    string
	encodeFormat      string
	encodeChunkSize   int
	encodeMinPairFreq int
	encodeMaxRules    int
	encodeFast        bool
)

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Encode a file into a compressed template",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEncode()
	},
}

func init() {
	rootCmd.AddCommand(encodeCmd)
	f := encodeCmd.Flags()
	f.StringVarP(&encodeIn, "input", "i", "", "file to encode")
	f.StringVarP(&encodeOut, "output", "o", "", "template output path")
	f.StringVar(&encodeDict, "dict", "", "global dictionary file to deduplicate against")
	f.StringVar(&encodeContexts, "contexts", notepack.DefaultContext, "comma-separated context names to capture")
	f.IntVar(&encodeChunkSize, "chunk-size", notepack.DefaultChunkSize, "chunk size in bytes")
	f.IntVar(&encodeMinPairFreq, "min-pair-freq", notepack.DefaultMinPairFreq, "lowest pair frequency still worth a rule")
	f.IntVar(&encodeMaxRules, "max-rules", notepack.DefaultMaxRules, "grammar rule budget")
	f.StringVar(&encodeFormat, "format", string(container.Zlib), "container format (zlib, zstd, lz4, snappy, brotli)")
	f.BoolVar(&encodeFast, "fast-fingerprint", false, "fingerprint with xxHash32 instead of sha256 (faster, not interoperable)")
	encodeCmd.MarkFlagRequired("input")
	encodeCmd.MarkFlagRequired("output")
}

func runEncode() error {
	in, err := os.Open(encodeIn)
	if err != nil {
		return err
	}
	defer in.Close()

	var global *notepack.GlobalDict
	if encodeDict != "" {
		df, err := os.Open(encodeDict)
		if err != nil {
			return err
		}
		global, err = notepack.ReadGlobalDict(df)
		df.Close()
		if err != nil {
			return err
		}
		glog.V(1).Infof("loaded %d dictionary entries from %s", global.Len(), encodeDict)
	}

	var fper notepack.Fingerprinter = notepack.SHA256{}
	if encodeFast {
		fper = notepack.XXH32{}
	}
	enc := &notepack.Encoder{
		ChunkSize:   encodeChunkSize,
		MinPairFreq: encodeMinPairFreq,
		MaxRules:    encodeMaxRules,
		Contexts:    splitList(encodeContexts),
		Global:      global,
		Fingerprint: fper,
	}

	var src io.ReadSeeker = in
	var bar *pb.ProgressBar
	if verbose {
		if fi, err := in.Stat(); err == nil {
			// Encode streams the input twice.
			bar = pb.Full.Start64(2 * fi.Size())
			src = &meteredReader{f: in, bar: bar}
		}
	}

	glog.V(1).Infof("encoding %s chunk_size=%d contexts=%v", encodeIn, encodeChunkSize, enc.Contexts)
	tpl, err := enc.Encode(src, filepath.Base(encodeIn))
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}
	glog.V(1).Infof("chunks=%d dict_entries=%d rules=%d sequence=%d",
		tpl.Meta.TotalChunks, tpl.Dictionary.Len(), len(tpl.Rules), len(tpl.Sequence))

	blob, err := tpl.Pack(container.Format(encodeFormat))
	if err != nil {
		return err
	}
	if err := os.WriteFile(encodeOut, blob, 0644); err != nil {
		return err
	}

	fmt.Printf("Template written to %s\n", encodeOut)
	if fi, err := in.Stat(); err == nil && fi.Size() > 0 {
		color.Cyan("Original size (in bytes): %d", fi.Size())
		color.Cyan("Template size (in bytes): %d", len(blob))
		color.Green("Compression ratio: %.2f%%", float64(len(blob))/float64(fi.Size())*100)
	}
	return nil
}

// meteredReader feeds a progress bar while preserving seekability for the
// encoder's second pass.
type meteredReader struct {
	f   *os.File
	bar *pb.ProgressBar
}

func (m *meteredReader) Read(p []byte) (int, error) {
	n, err := m.f.Read(p)
	m.bar.Add(n)
	return n, err
}

func (m *meteredReader) Seek(offset int64, whence int) (int64, error) {
	return m.f.Seek(offset, whence)
}
