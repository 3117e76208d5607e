package main

import (
	"fmt"
	"path"

	"github.com/spf13/cobra"
)

func runHistory(cmd *cobra.Command, args []string) error {
	subscription := args[0]
	ctx := cmd.Context()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	analyses, err := store.ListAnalyses(ctx, subscription, historyLimit)
	if err != nil {
		return err
	}

	if len(analyses) == 0 {
		fmt.Printf("No analyses found for subscription: %s\n", subscription)
		return nil
	}

	fmt.Printf("Recent analyses for subscription '%s':\n\n", subscription)
	for i, a := range analyses {
		fmt.Printf("%d. %s (run: %s)\n", i+1, path.Base(a.ResourceID), a.RunID)
		fmt.Printf("   Source: %s\n", a.Source)
		fmt.Printf("   SKU: %s -> %s\n", a.CurrentSKU, a.SKU)
		if a.Valid && a.AnnualSavings != nil {
			fmt.Printf("   Savings: $%.2f/yr\n", *a.AnnualSavings)
		} else {
			fmt.Printf("   Reason: %s\n", a.Reason)
		}
		fmt.Printf("   Created: %s\n", a.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Println()
	}
	return nil
}
