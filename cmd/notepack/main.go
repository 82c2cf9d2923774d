// notepack encodes files into grammar templates and expands them back.
//
//	notepack encode -i input.bin -o template.np --contexts VIDEO,TEXT
//	notepack decode -i template.np -o output.bin --context VIDEO
//	notepack dict samples/*.bin -o global_dict.json
package main

import (
	"flag"
	"os"
	"strings"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:           "notepack",
	Short:         "Grammar-based deduplicating template compressor",
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			flag.Set("logtostderr", "true")
			flag.Set("v", "1")
		}
		// glog wants flag.Parse before first use.
		flag.CommandLine.Parse(nil)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print per-stage progress")
}

func main() {
	defer glog.Flush()
	if err := rootCmd.Execute(); err != nil {
		glog.Flush()
		rootCmd.PrintErrln("Error:", err)
		os.Exit(1)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
