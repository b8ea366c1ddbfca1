package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"subwayroute.dev/engine/internal/models"
	"subwayroute.dev/engine/internal/planner"
)

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{Name: "json", Usage: "print JSON instead of text"}
}

func planCommand() *cli.Command {
	return &cli.Command{
		Name:  "plan",
		Usage: "plan a trip between two stations or coordinates",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "from", Usage: "origin station id, name or \"lat,lon\"", Required: true},
			&cli.StringFlag{Name: "to", Usage: "destination station id, name or \"lat,lon\"", Required: true},
			jsonFlag(),
		},
		Action: func(c *cli.Context) error {
			from, err := parseEndpoint(c.String("from"))
			if err != nil {
				return err
			}
			to, err := parseEndpoint(c.String("to"))
			if err != nil {
				return err
			}

			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			application, err := loadApplication(c, cfg)
			if err != nil {
				return err
			}

			result, err := application.Planner.Plan(c.Context, planner.Request{From: from, To: to})
			if err != nil {
				return err
			}
			if c.Bool("json") {
				return writeJSON(c.App.Writer, result)
			}
			printPlan(c.App.Writer, result)
			return nil
		},
	}
}

func departuresCommand() *cli.Command {
	return &cli.Command{
		Name:  "departures",
		Usage: "list upcoming departures at a station",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "station", Usage: "station id or name", Required: true},
			&cli.StringFlag{Name: "direction", Value: "N", Usage: "N (uptown) or S (downtown)"},
			jsonFlag(),
		},
		Action: func(c *cli.Context) error {
			dir, err := models.ParseDirection(c.String("direction"))
			if err != nil {
				return err
			}
			if dir == models.AnyDirection {
				return errors.New("--direction must be N or S")
			}

			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			application, err := loadApplication(c, cfg)
			if err != nil {
				return err
			}

			board, err := application.Planner.Departures(c.Context, c.String("station"), dir)
			if err != nil {
				return err
			}
			if c.Bool("json") {
				return writeJSON(c.App.Writer, board)
			}
			printBoard(c.App.Writer, board)
			return nil
		},
	}
}

func stationsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stations",
		Usage: "search the station registry",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "name fragment; empty lists every station"},
			&cli.IntFlag{Name: "limit", Value: 0, Usage: "maximum results, 0 for all"},
			jsonFlag(),
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			application, err := loadApplication(c, cfg)
			if err != nil {
				return err
			}

			found := application.Stations.Search(c.String("query"), c.Int("limit"))
			if c.Bool("json") {
				return writeJSON(c.App.Writer, found)
			}
			tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tLINES")
			for _, s := range found {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", s.ID, s.Name, strings.Join(s.Lines, " "))
			}
			return tw.Flush()
		},
	}
}

// parseEndpoint reads "lat,lon" as a coordinate and anything else as a
// station id or name.
func parseEndpoint(s string) (planner.Endpoint, error) {
	s = strings.TrimSpace(s)
	if latStr, lonStr, ok := strings.Cut(s, ","); ok {
		lat, latErr := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
		lon, lonErr := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
		if latErr == nil && lonErr == nil {
			if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
				return planner.Endpoint{}, fmt.Errorf("coordinate out of range: %q", s)
			}
			return planner.Endpoint{Location: &models.Location{Lat: lat, Lon: lon}}, nil
		}
	}
	if s == "" {
		return planner.Endpoint{}, errors.New("empty endpoint")
	}
	return planner.Endpoint{Query: s}, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printPlan(w io.Writer, result *planner.PlanResult) {
	if result.Fallback {
		fmt.Fprintln(w, "No live data: showing estimated routes.")
	}
	for i, r := range result.Routes {
		live := "estimated"
		if r.IsRealTimeData {
			live = "live"
		}
		fmt.Fprintf(w, "Route %d: %d min, %d transfer(s), confidence %d (%s), %s\n",
			i+1, r.TotalMinutes, r.Transfers, r.Confidence, r.ConfidenceLevel, live)
		for j, step := range r.Steps {
			fmt.Fprintf(w, "  %d. %s\n", j+1, step.Instruction)
		}
	}
	for _, s := range result.FeedStatuses {
		if !s.Working {
			fmt.Fprintf(w, "feed %s unavailable: %s\n", s.Group, s.Error)
		}
	}
}

func printBoard(w io.Writer, board *planner.Board) {
	fmt.Fprintf(w, "%s, %s\n", board.Station.Name, board.Direction)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, line := range board.Station.Lines {
		labels := make([]string, 0, len(board.Lines[line]))
		for _, d := range board.Lines[line] {
			labels = append(labels, d.Label)
		}
		source := "live"
		for _, est := range board.Estimated {
			if est == line {
				source = "estimated"
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", line, strings.Join(labels, ", "), source)
		for _, a := range board.Alerts[line] {
			fmt.Fprintf(tw, "\t! %s\t\n", a.Header)
		}
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "as of %s\n", board.GeneratedAt.Format(time.Kitchen))
}
