package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var cmdRoot = &cobra.Command{
	Use:          "archivectl",
	Short:        "Inspect music folders the way the archive sees them",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		envDefaults(cmd.Flags())
	},
}

func main() {
	if err := cmdRoot.Execute(); err != nil {
		os.Exit(1)
	}
}

// envDefaults fills flags left unset from ARCHIVECTL_<FLAG> variables.
func envDefaults(flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			return
		}
		name := "ARCHIVECTL_" + strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
		if v, ok := os.LookupEnv(name); ok {
			_ = f.Value.Set(v)
		}
	})
}
