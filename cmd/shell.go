package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/go-cricket-metrics/internal/features"
	"github.com/pable/go-cricket-metrics/internal/ingest"
	"github.com/pable/go-cricket-metrics/internal/model"
	"github.com/pable/go-cricket-metrics/internal/report"
	"github.com/pable/go-cricket-metrics/internal/storage"
	"github.com/pable/go-cricket-metrics/internal/summary"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cHeader   = color.New(color.FgCyan, color.Bold)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
	cGood     = color.New(color.FgGreen)
	cBad      = color.New(color.FgRed)
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive REPL session",
	Long: `Open a persistent session against the database. History is loaded once,
so repeated predictions are fast. Quote names containing spaces. Type 'help'
for available commands.`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

type shellSession struct {
	cmd     *cobra.Command
	db      *storage.DB
	aliases *ingest.Aliases
	history []model.MatchRecord
	q       *features.Querier
}

func runShell(cmd *cobra.Command, _ []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	aliases, err := loadAliases()
	if err != nil {
		return err
	}
	history, err := loadHistory(db)
	if err != nil {
		return err
	}
	s := &shellSession{cmd: cmd, db: db, aliases: aliases, history: history, q: newQuerier(history, aliases)}

	cGreeting.Println("cricmetrics shell")
	cMuted.Printf("%d matches loaded; type 'help' or 'exit'\n", len(history))
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cPrompt.Print("cricmetrics")
		cMuted.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		tokens := splitArgs(scanner.Text())
		if len(tokens) == 0 {
			continue
		}
		name, args := tokens[0], tokens[1:]

		switch name {
		case "exit", "quit":
			return nil
		case "help":
			shellHelp()
		case "teams":
			s.teams()
		case "list":
			s.list(args)
		case "show":
			if len(args) != 1 {
				cError.Fprintln(os.Stderr, "usage: show <match-id>")
				continue
			}
			s.show(args[0])
		case "h2h":
			if len(args) != 2 {
				cError.Fprintln(os.Stderr, "usage: h2h <team> <team>")
				continue
			}
			s.h2h(args[0], args[1])
		case "trend":
			if len(args) != 1 {
				cError.Fprintln(os.Stderr, "usage: trend <team>")
				continue
			}
			s.trend(args[0])
		case "venue":
			if len(args) != 1 {
				cError.Fprintln(os.Stderr, "usage: venue <venue>")
				continue
			}
			s.venue(args[0])
		case "predict":
			if len(args) < 5 {
				cError.Fprintln(os.Stderr, "usage: predict <team1> <team2> <venue> <toss-winner> <bat|field> [match-type]")
				continue
			}
			s.predict(args)
		default:
			cWarn.Fprintf(os.Stderr, "unknown command %q, type 'help'\n", name)
		}
	}
	return nil
}

func shellHelp() {
	fmt.Println()
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"teams", "list teams in the stored history"},
		{"list [team]", "list stored matches, optionally for one team"},
		{"show <match-id>", "show a match and its pre-match feature row"},
		{"h2h <team> <team>", "head-to-head record"},
		{"trend <team>", "per-season results with confidence intervals"},
		{"venue <venue>", "venue record"},
		{"predict <t1> <t2> <venue> <toss> <dec> [type]", "feature factors for an upcoming match"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Print("  ")
		cCmd.Printf("%-48s", r.cmd)
		fmt.Println(r.desc)
	}
	fmt.Println()
}

func (s *shellSession) teams() {
	teams, err := s.db.Teams()
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	cHeader.Println("TEAMS")
	for _, t := range teams {
		fmt.Println("  " + t)
	}
}

func (s *shellSession) list(args []string) {
	var f storage.MatchFilter
	if len(args) > 0 {
		f.Team = teamName(s.aliases, args[0])
	}
	matches, err := s.db.ListMatches(f)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(matches) == 0 {
		cMuted.Println("No matches stored yet.")
		return
	}
	report.PrintMatchTable(os.Stdout, matches)
}

func (s *shellSession) show(raw string) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		cError.Fprintf(os.Stderr, "invalid match id %q\n", raw)
		return
	}
	m, err := s.db.GetMatch(id)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if m == nil {
		cWarn.Fprintf(os.Stderr, "no match with id %d\n", id)
		return
	}
	report.PrintMatchSummary(os.Stdout, *m)
	report.PrintInningsTable(os.Stdout, *m)

	v, err := featuresFor(s.cmd.Context(), s.history, id)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if v != nil {
		fmt.Println()
		report.PrintFactors(os.Stdout, v.Explain())
	}
}

func (s *shellSession) h2h(a, b string) {
	a, b = teamName(s.aliases, a), teamName(s.aliases, b)
	h := summary.HeadToHead(s.history, a, b, 5)
	if h.Meetings == 0 {
		cMuted.Printf("%s and %s have not met.\n", a, b)
		return
	}
	report.PrintH2H(os.Stdout, h)
}

func (s *shellSession) trend(raw string) {
	team := teamName(s.aliases, raw)
	points, err := summary.TeamTrend(s.cmd.Context(), cfg.FeatureParams(), s.history, team)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(points) == 0 {
		cMuted.Printf("no matches for %s\n", team)
		return
	}
	report.PrintSeasonTable(os.Stdout, summary.BySeason(points))
}

func (s *shellSession) venue(raw string) {
	name := s.aliases.Venue(raw)
	v := summary.VenueSummary(s.history, name)
	if v.Matches == 0 {
		cMuted.Printf("no matches at %s\n", name)
		return
	}
	report.PrintVenueTable(os.Stdout, v)
}

func (s *shellSession) predict(args []string) {
	m := features.Matchup{
		Team1:        args[0],
		Team2:        args[1],
		Venue:        args[2],
		TossWinner:   args[3],
		TossDecision: model.TossDecision(args[4]),
	}
	if len(args) > 5 {
		m.MatchType = ingest.NormalizeMatchType(strings.Join(args[5:], " "))
	}
	m = canonicalMatchup(s.aliases, m)

	v, err := s.q.ComputeFeatures(s.cmd.Context(), m)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	fmt.Println()
	cHeader.Printf("%s v %s at %s\n", m.Team1, m.Team2, m.Venue)
	if v.ColdStart {
		cWarn.Println("cold start: these teams have not met, values are neutral defaults")
	}
	f := v.Explain()
	printLean("venue advantage", f.VenueAdvantage, m.Team1)
	printLean("toss decision", f.TossDecision, m.Team1)
	printLean("recent form", f.RecentForm, m.Team1)
	printLean("head to head", f.HeadToHead-0.5, m.Team1)
	fmt.Println()
}

// printLean colours a diff-style factor by which side it favours.
func printLean(label string, x float64, team1 string) {
	fmt.Printf("  %-16s ", label)
	switch {
	case x > 0:
		cGood.Printf("%+.3f", x)
		cMuted.Printf("  (favours %s)\n", team1)
	case x < 0:
		cBad.Printf("%+.3f\n", x)
	default:
		cMuted.Println("even")
	}
}

// splitArgs splits a line on whitespace, keeping double-quoted runs together.
func splitArgs(line string) []string {
	var (
		out    []string
		cur    strings.Builder
		quoted bool
		inTok  bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
			inTok = true
		case (r == ' ' || r == '\t') && !quoted:
			if inTok {
				out = append(out, cur.String())
				cur.Reset()
				inTok = false
			}
		default:
			cur.WriteRune(r)
			inTok = true
		}
	}
	if inTok {
		out = append(out, cur.String())
	}
	return out
}
