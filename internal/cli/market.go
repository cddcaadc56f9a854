package cli

import (
	"github.com/spf13/cobra"

	"marketdash/internal/models"
	"marketdash/internal/session"
	"marketdash/pkg/utils"
)

func newPricesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "prices",
		Short: "Fetch and print current prices for the tracked assets",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			return runOneShot(cmd.Context(), app, func(sess *session.Session) error {
				assets := sess.Assets()
				if output.IsJSON() {
					return output.JSON(map[string]interface{}{"assets": assets})
				}
				printAssetTable(output, assets)
				return nil
			})
		},
	}
}

func printAssetTable(output *Output, assets []models.Asset) {
	output.Bold("%-28s %8s %16s %10s %10s", "Asset", "Symbol", "Price", "1h %", "24h %")
	for _, a := range assets {
		output.Printf("%-28s %8s %16s ", a.Name, a.Symbol, utils.FormatUSD(a.CurrentPrice))
		printChange(output, a.Change1h)
		output.Printf(" ")
		printChange(output, a.Change24h)
		output.Println()
	}
	output.Dim("%d assets tracked", len(assets))
}

func printChange(output *Output, change float64) {
	s := utils.FormatPercent(change)
	if !output.colorEnabled {
		output.Printf("%10s", s)
		return
	}
	color := ColorRed
	if change >= 0 {
		color = ColorGreen
	}
	output.Printf("%s%10s%s", color, s, ColorReset)
}

func newInsightCmd(app *App) *cobra.Command {
	var language string

	cmd := &cobra.Command{
		Use:   "insight",
		Short: "Generate an AI market summary for the tracked assets",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			return runOneShot(cmd.Context(), app, func(sess *session.Session) error {
				if language != "" {
					sess.SetLanguage(models.Language(language))
				}
				summary := sess.GenerateInsight(cmd.Context())
				if output.IsJSON() {
					return output.JSON(map[string]string{"summary": summary})
				}
				output.Bold("AI Market Analysis")
				output.Println(summary)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&language, "language", "", "summary language: en or pt-BR")
	return cmd
}
