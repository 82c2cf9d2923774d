package main

import (
	"bufio"
	"os"

	"github.com/cheggaaa/pb/v3"
	"github.com/fatih/color"
	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/notepack/notepack"
	"github.com/notepack/notepack/container"
)

var (
	decodeIn      string
	decodeOut     string
	decodeContext string
	decodeFormat  string
	decodeStrict  bool
)

var decodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Expand a template back into the original bytes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDecode()
	},
}

func init() {
	rootCmd.AddCommand(decodeCmd)
	f := decodeCmd.Flags()
	f.StringVarP(&decodeIn, "input", "i", "", "template file")
	f.StringVarP(&decodeOut, "output", "o", "", "output path")
	f.StringVar(&decodeContext, "context", notepack.DefaultContext, "context to expand terminals under")
	f.StringVar(&decodeFormat, "format", "", "container format; detected from the file when empty")
	f.BoolVar(&decodeStrict, "strict", false, "fail on symbols the template does not define")
	decodeCmd.MarkFlagRequired("input")
	decodeCmd.MarkFlagRequired("output")
}

func runDecode() error {
	blob, err := os.ReadFile(decodeIn)
	if err != nil {
		return err
	}
	tpl, err := notepack.UnpackTemplate(blob, container.Format(decodeFormat))
	if err != nil {
		return err
	}
	glog.V(1).Infof("template for %s: chunks=%d dict_entries=%d rules=%d sequence=%d",
		tpl.Meta.OrigFile, tpl.Meta.TotalChunks, tpl.Dictionary.Len(), len(tpl.Rules), len(tpl.Sequence))

	out, err := os.Create(decodeOut)
	if err != nil {
		return err
	}
	n, err := expandTo(out, tpl)
	if err != nil {
		// Leave no partial output behind.
		out.Close()
		os.Remove(decodeOut)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(decodeOut)
		return err
	}

	color.Green("Decoded %d bytes to %s", n, decodeOut)
	return nil
}

func expandTo(out *os.File, tpl *notepack.Template) (int64, error) {
	x := &notepack.Expander{
		Template: tpl,
		Context:  decodeContext,
		Strict:   decodeStrict,
	}
	w := bufio.NewWriter(out)
	var n int64
	if verbose && len(tpl.Sequence) > 0 {
		bar := pb.StartNew(len(tpl.Sequence))
		for _, sym := range tpl.Sequence {
			b, err := x.Expand(sym)
			if err != nil {
				bar.Finish()
				return n, err
			}
			m, err := w.Write(b)
			n += int64(m)
			if err != nil {
				bar.Finish()
				return n, err
			}
			bar.Increment()
		}
		bar.Finish()
	} else {
		var err error
		n, err = x.WriteTo(w)
		if err != nil {
			return n, err
		}
	}
	if err := w.Flush(); err != nil {
		return n, err
	}
	return n, nil
}
