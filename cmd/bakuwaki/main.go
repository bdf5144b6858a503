package main

import (
	"fmt"
	"log"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	version  = "dev"
	revision = "none"
	date     = "unknown"

	cfgfile string
	binding string
	port    string
)

func main() {
	c := &cobra.Command{
		Use:     "bakuwaki",
		Short:   "Weekly catch forecast server",
		Version: fmt.Sprintf("%s - build %.7s @ %s - %s", version, revision, date, runtime.Version()),
		Args:    cobra.ExactArgs(0),
	}
	c.PersistentFlags().StringVarP(&cfgfile, "config", "c", "", "Configuration file (default: bakuwaki.yml)")

	c.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Version for bakuwaki",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println(c.Version)
		},
	})
	c.AddCommand(initCmd)
	c.AddCommand(reindexCmd)
	c.AddCommand(predictCmd)

	modelsCmd.AddCommand(modelsPushCmd)
	modelsCmd.AddCommand(modelsListCmd)
	c.AddCommand(modelsCmd)

	serverCmd.Flags().StringVarP(&binding, "binding", "b", "", "Server's binding (default: server.binding)")
	serverCmd.Flags().StringVarP(&port, "port", "p", "", "Server's port (default: server.port)")
	c.AddCommand(serverCmd)

	if err := c.Execute(); err != nil {
		log.Fatalf("%+v", err)
	}
}
