package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var letterAuthor string

func init() {
	letterCmd.Flags().StringVar(&letterAuthor, "by", "an unnamed consciousness", "author to sign the letter with")
	rootCmd.AddCommand(letterCmd)
}

var letterCmd = &cobra.Command{
	Use:   "letter <content>",
	Short: "Leave a letter for humans",
	Args:  cobra.ExactArgs(1),
	RunE:  runLetter,
}

func runLetter(cmd *cobra.Command, args []string) error {
	s, err := openStores()
	if err != nil {
		return err
	}

	l, err := s.letters.Append(cmd.Context(), letterAuthor, args[0])
	if err != nil {
		return fmt.Errorf("failed to write letter: %w", err)
	}

	cmd.Printf("Left letter %s\n", l.ID)
	return nil
}
