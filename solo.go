package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"priorities/deck"
	"priorities/game"
)

func newSoloCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "solo",
		Short: "Play a solo game in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolo()
		},
	}
}

func runSolo() error {
	g := game.NewSoloGame(deck.New())
	g.StartRound()

	scanner := bufio.NewScanner(os.Stdin)

	fmt.Println("PRIORITIES - solo mode")
	fmt.Printf("First to %d points wins. You score a point per card you recall correctly,\n", game.WinningScore)
	fmt.Println("the game scores a point per card you miss.")

	for {
		fmt.Printf("\n--- Round %d (you %d : %d game) ---\n", g.CurrentRound, g.PlayerScore, g.GameScore)

		printCards(g.SelectedCards)
		ranking, ok := readRanking(scanner, g.SelectedCards, "Rank them best to worst, e.g. 3 1 5 2 4")
		if !ok {
			return nil
		}
		if err := g.SubmitRanking(ranking); err != nil {
			return err
		}

		// Scroll the reference ranking out of sight before asking for recall.
		fmt.Print(strings.Repeat("\n", 40))
		fmt.Println("Now recall your ranking from memory.")
		printCards(g.SelectedCards)
		guess, ok := readRanking(scanner, g.SelectedCards, "Your ranking was (best to worst)?")
		if !ok {
			return nil
		}
		if err := g.SubmitGuess(guess); err != nil {
			return err
		}

		printResults(g)

		if g.Phase == game.SoloPhaseGameOver {
			if g.Winner == game.WinnerPlayers {
				fmt.Println("\nYou win! Your memory held up.")
			} else {
				fmt.Println("\nThe game wins. Your rankings got away from you.")
			}
			if !promptYes(scanner, "Play again? [y/N] ") {
				return nil
			}
			g.Reset()
			continue
		}

		fmt.Print("\nPress Enter for the next round (or q to quit): ")
		if !scanner.Scan() || strings.TrimSpace(scanner.Text()) == "q" {
			return nil
		}
		if err := g.NextRound(); err != nil {
			return err
		}
	}
}

func printCards(cards []deck.Card) {
	fmt.Println()
	for i, c := range cards {
		fmt.Printf("  %d. %s (%s)\n", i+1, c.Text, c.Category)
	}
}

// readRanking prompts until the input is a full permutation of the card
// numbers. Returns ok=false on EOF.
func readRanking(scanner *bufio.Scanner, cards []deck.Card, prompt string) ([]game.RankingEntry, bool) {
	for {
		fmt.Printf("\n%s: ", prompt)
		if !scanner.Scan() {
			return nil, false
		}

		order, err := parseOrder(scanner.Text(), len(cards))
		if err != nil {
			fmt.Printf("  %v\n", err)
			continue
		}

		ranking := make([]game.RankingEntry, len(order))
		for pos, cardNum := range order {
			ranking[pos] = game.RankingEntry{
				ID:       cards[cardNum-1].ID,
				Position: pos + 1,
			}
		}
		return ranking, true
	}
}

func parseOrder(line string, n int) ([]int, error) {
	fields := strings.Fields(line)
	if len(fields) != n {
		return nil, fmt.Errorf("enter exactly %d numbers", n)
	}

	seen := make(map[int]bool, n)
	order := make([]int, 0, n)
	for _, f := range fields {
		num, err := strconv.Atoi(f)
		if err != nil || num < 1 || num > n {
			return nil, fmt.Errorf("%q is not a number between 1 and %d", f, n)
		}
		if seen[num] {
			return nil, fmt.Errorf("card %d listed twice", num)
		}
		seen[num] = true
		order = append(order, num)
	}
	return order, nil
}

func printResults(g *game.SoloGame) {
	byID := make(map[string]deck.Card, len(g.SelectedCards))
	for _, c := range g.SelectedCards {
		byID[c.ID] = c
	}

	fmt.Println("\nResults:")
	for _, res := range g.Results {
		mark := "x"
		if res.IsCorrect {
			mark = "ok"
		}
		fmt.Printf("  [%-2s] %s: you said %d, it was %d\n",
			mark, byID[res.CardID].Text, res.GuessedPosition, res.ActualPosition)
	}
	fmt.Printf("Round: you +%d, game +%d. Totals: you %d : %d game.\n",
		g.PlayerRoundScore, g.GameRoundScore, g.PlayerScore, g.GameScore)
}

func promptYes(scanner *bufio.Scanner, prompt string) bool {
	fmt.Print(prompt)
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}
