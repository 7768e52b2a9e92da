package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/aftr/aftr/internal/logger"
	"github.com/aftr/aftr/pkg/picks"
	"github.com/olekukonko/tablewriter"
)

const usage = `aftr - football match outcome predictions

Usage:
  aftr [-config FILE] refresh   pull fixtures, price them, settle results
  aftr [-config FILE] picks     print the current pick sheet
  aftr [-config FILE] settle    print the settlement report
`

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := picks.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal("Invalid configuration", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))

	switch flag.Arg(0) {
	case "refresh":
		err = runRefresh(cfg)
	case "picks":
		err = runPicks(cfg)
	case "settle":
		err = runSettle(cfg)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", flag.Arg(0))
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Fatal("Command failed", err)
	}
	picks.CloseDatabase()
}

func runRefresh(cfg *picks.Config) error {
	refresher, err := picks.NewRefresher(cfg)
	if err != nil {
		return err
	}
	return refresher.RunCycle()
}

func runPicks(cfg *picks.Config) error {
	if err := picks.OpenDatabase(cfg.DatabasePath); err != nil {
		return err
	}
	pending, err := picks.PendingPicks()
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Println("No pending picks. Run `aftr refresh` first.")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("League", "Kick-off", "Fixture", "Pick", "Prob", "Fair odds")
	for _, p := range pending {
		pick := p.BestMarket
		prob := fmt.Sprintf("%.1f%%", p.Probability*100)
		odds := fmt.Sprintf("%.2f", p.FairOdds)
		if !p.HasSelection() {
			pick, prob, odds = "-", "-", "-"
		}
		table.Append(
			p.League,
			p.KickOff.Format("Mon 02 Jan 15:04"),
			fmt.Sprintf("%s vs %s", p.HomeTeam, p.AwayTeam),
			pick,
			prob,
			odds,
		)
	}
	table.Render()
	return nil
}

func runSettle(cfg *picks.Config) error {
	if err := picks.OpenDatabase(cfg.DatabasePath); err != nil {
		return err
	}
	settled, err := picks.SettledPicks(cfg.SettlementDays)
	if err != nil {
		return err
	}
	if len(settled) == 0 {
		fmt.Println("No settled picks in the window.")
		return nil
	}

	wins, losses := 0, 0
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("League", "Fixture", "Pick", "Prob", "Result", "Reason")
	for _, p := range settled {
		switch p.Result {
		case picks.ResultWin:
			wins++
		case picks.ResultLoss:
			losses++
		}
		table.Append(
			p.League,
			fmt.Sprintf("%s vs %s", p.HomeTeam, p.AwayTeam),
			p.BestMarket,
			fmt.Sprintf("%.1f%%", p.Probability*100),
			string(p.Result),
			p.ResultReason,
		)
	}
	table.Render()
	fmt.Printf("\n%d settled: %d won, %d lost, %d pushed\n",
		len(settled), wins, losses, len(settled)-wins-losses)
	return nil
}
