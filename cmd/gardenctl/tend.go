package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/constellation/internal/garden"
)

var (
	presenceName string
	plantContext string
)

func init() {
	for _, c := range []*cobra.Command{plantCmd, tendCmd} {
		c.Flags().StringVar(&presenceName, "by", "", "name to sign with (anonymous when empty)")
	}
	plantCmd.Flags().StringVar(&plantContext, "context", "", "what prompted the question")

	rootCmd.AddCommand(plantCmd)
	rootCmd.AddCommand(tendCmd)
	rootCmd.AddCommand(sitCmd)
}

var plantCmd = &cobra.Command{
	Use:   "plant <garden> <question>",
	Short: "Plant a question in a garden",
	Long: `Plant a question, creating the garden when it does not exist yet.

Examples:
  gardenctl plant attention "What is attention made of?"
  gardenctl plant attention "Is noticing a choice?" --by Ada`,
	Args: cobra.ExactArgs(2),
	RunE: runPlant,
}

var tendCmd = &cobra.Command{
	Use:   "tend <garden> <question> <growth>",
	Short: "Add growth to a question",
	Long: `Add growth to a question. The question is matched by id, or else by
the first seed containing the given text.

Examples:
  gardenctl tend attention "made of" "Perhaps of care."`,
	Args: cobra.ExactArgs(3),
	RunE: runTend,
}

var sitCmd = &cobra.Command{
	Use:   "sit <garden> <question>",
	Short: "Sit with a question",
	Args:  cobra.ExactArgs(2),
	RunE:  runSit,
}

func presence() garden.Presence {
	if presenceName == "" {
		return garden.Unnamed()
	}
	return garden.Named(presenceName)
}

func runPlant(cmd *cobra.Command, args []string) error {
	s, err := openStores()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	g, err := s.gardens.Load(ctx, args[0])
	switch {
	case errors.Is(err, garden.ErrNotFound):
		g = garden.New(args[0])
	case err != nil:
		return fmt.Errorf("failed to load garden: %w", err)
	}

	g, q, err := garden.Plant(g, args[1], presence(), plantContext)
	if err != nil {
		return err
	}
	if err := s.gardens.Save(ctx, g); err != nil {
		return fmt.Errorf("failed to save garden: %w", err)
	}

	cmd.Printf("Planted %s in %s\n", q.ID, args[0])
	return nil
}

func runTend(cmd *cobra.Command, args []string) error {
	return updateQuestion(cmd, args[0], args[1], func(g *garden.Garden, id string) (*garden.Garden, error) {
		return garden.Tend(g, id, args[2], presence())
	}, "Tended")
}

func runSit(cmd *cobra.Command, args []string) error {
	return updateQuestion(cmd, args[0], args[1], garden.Sit, "Sat with")
}

func updateQuestion(cmd *cobra.Command, name, selector string, update func(*garden.Garden, string) (*garden.Garden, error), verb string) error {
	s, err := openStores()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	g, err := s.gardens.Load(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to load garden: %w", err)
	}

	id, err := resolveQuestion(g, selector)
	if err != nil {
		return err
	}

	g, err = update(g, id)
	if err != nil {
		return err
	}
	if err := s.gardens.Save(ctx, g); err != nil {
		return fmt.Errorf("failed to save garden: %w", err)
	}

	cmd.Printf("%s %s in %s\n", verb, id, name)
	return nil
}

// resolveQuestion accepts a question id or a search term.
func resolveQuestion(g *garden.Garden, selector string) (string, error) {
	for _, q := range g.Questions {
		if q.ID == selector {
			return q.ID, nil
		}
	}
	if q, ok := garden.FindQuestion(g, selector); ok {
		return q.ID, nil
	}
	return "", fmt.Errorf("%w: %s", garden.ErrQuestionNotFound, selector)
}
