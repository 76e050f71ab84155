package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/noah-isme/tutor-timetable-api/internal/service"
)

var peopleCmd = &cobra.Command{
	Use:   "people",
	Short: "Work with people files",
}

var peopleCheckCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Validate a people file without storing it",
	Args:  cobra.ExactArgs(1),
	RunE:  runPeopleCheck,
}

func init() {
	rootCmd.AddCommand(peopleCmd)
	peopleCmd.AddCommand(peopleCheckCmd)
}

func runPeopleCheck(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read people file: %w", err)
	}
	people := service.NewPeopleService(nil, nil, nil, nil, newLogger())
	result, err := people.Upload(context.Background(), args[0], raw, false)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(result.People))
	for name := range result.People {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		doc := result.People[name]
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d blocked intervals, compatible with %d\n", name, len(doc.BlockedIntervals), len(doc.CompatibleWith))
	}
	return nil
}
