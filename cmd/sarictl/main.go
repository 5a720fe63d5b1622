// Command sarictl is a small operator client for the sari inventory API.
//
//	sarictl [-api URL] [-token JWT] health
//	sarictl status [-process Kora] [-search E64] [-limit 50]
//	sarictl flow E6421
//	sarictl move -serial E6421 -from Kora -to White -location "Bleach Yard"
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		logger.WithError(err).Fatal("sarictl failed")
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	global := flag.NewFlagSet("sarictl", flag.ContinueOnError)
	apiURL := global.String("api", envOr("SARI_API_URL", "http://localhost:8080/api/v1"), "API base URL")
	token := global.String("token", os.Getenv("SARI_API_TOKEN"), "bearer token for write commands")
	timeout := global.Duration("timeout", 10*time.Second, "request timeout")
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 {
		return fmt.Errorf("missing command: health, status, flow or move")
	}

	client := NewClient(*apiURL, *token, *timeout)
	command, rest := global.Arg(0), global.Args()[1:]

	switch command {
	case "health":
		message, err := client.Health(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, message)
		return nil
	case "status":
		return runStatus(ctx, client, rest, out)
	case "flow":
		return runFlow(ctx, client, rest, out)
	case "move":
		return runMove(ctx, client, rest, out)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func runStatus(ctx context.Context, client *Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	stage := fs.String("process", "", "only saris at this stage")
	search := fs.String("search", "", "serial number or design code fragment")
	limit := fs.Int("limit", 50, "maximum rows")
	if err := fs.Parse(args); err != nil {
		return err
	}

	statuses, err := client.LiveStatus(ctx, *stage, *search, *limit)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SERIAL\tDESIGN\tPROCESS\tLOCATION\tPROGRESS\tLAST MOVE")
	for _, s := range statuses {
		lastMove := "-"
		if s.LastMovementDate != nil {
			lastMove = s.LastMovementDate.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.0f%%\t%s\n",
			s.SerialNumber, s.ItemCode, s.CurrentProcess, s.CurrentLocation, s.Progress, lastMove)
	}
	return tw.Flush()
}

func runFlow(ctx context.Context, client *Client, args []string, out io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: sarictl flow SERIAL")
	}

	flow, err := client.SerialFlow(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s  %s @ %s  (%.0f%%)\n",
		flow.SerialNumber, flow.CurrentStatus.CurrentProcess, flow.CurrentStatus.CurrentLocation, flow.Progress)
	for _, step := range flow.ProcessFlow {
		marker := " "
		if step.IsCurrent {
			marker = ">"
		}
		reached := ""
		if step.Movement != nil {
			reached = step.Movement.MovementDate.Local().Format("2006-01-02 15:04") + " " + step.Movement.ToLocation
		}
		fmt.Fprintf(out, "%s %-14s %-10s %s\n", marker, step.Name, step.Status, reached)
	}
	return nil
}

func runMove(ctx context.Context, client *Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("move", flag.ContinueOnError)
	serial := fs.String("serial", "", "serial number")
	from := fs.String("from", "", "stage the sari is leaving")
	to := fs.String("to", "", "stage the sari is entering")
	location := fs.String("location", "", "destination location")
	operator := fs.String("operator", "", "operator name, defaults to the token subject")
	notes := fs.String("notes", "", "free text notes")
	quality := fs.String("quality", "", "quality grade")
	document := fs.String("doc", "", "document number")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var missing []string
	for name, value := range map[string]string{"serial": *serial, "from": *from, "to": *to, "location": *location} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, "-"+name)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return fmt.Errorf("missing required flags: %s", strings.Join(missing, ", "))
	}

	result, err := client.Move(ctx, MoveRequest{
		SerialNumber:   *serial,
		FromProcess:    *from,
		ToProcess:      *to,
		Location:       *location,
		Operator:       optional(*operator),
		Notes:          optional(*notes),
		Quality:        optional(*quality),
		DocumentNumber: optional(*document),
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "movement %d: %s %s -> %s at %s\n",
		result.Movement.ID, result.Sari.SerialNumber, result.Movement.FromProcess, result.Movement.ToProcess, result.Sari.CurrentLocation)
	return nil
}

func optional(v string) *string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return &v
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
