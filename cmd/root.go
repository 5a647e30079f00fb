package cmd

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "advisor",
	Short: "Profile-aware context retrieval for student advising",
	Long: `Advisor ingests course catalogs and program handbooks into a
persistent similarity index and retrieves the excerpts most relevant to a
student's question, biased by their major, year, and course history.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".advisor.yml", "config file path")
}
