package output

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
)

// HumanPrinter prints human-readable output.
type HumanPrinter struct{}

// Print renders human output.
func (HumanPrinter) Print(v any) error {
	switch data := v.(type) {
	case Status:
		return printStatus(data)
	case Queue:
		return printQueue(data)
	default:
		_, err := fmt.Fprintln(os.Stdout, "ok")
		return err
	}
}

func printStatus(status Status) error {
	state := "paused"
	if status.Playing {
		state = "playing"
	}

	item := "(empty queue)"
	if status.Track != nil {
		item = formatTrack(status.Track.Artist, status.Track.Title, status.Track.ID)
	}

	position := ""
	if status.Duration > 0 {
		percent := int(status.Position * 100 / status.Duration)
		position = fmt.Sprintf("%s / %s (%d%%)", formatSeconds(status.Position), formatSeconds(status.Duration), percent)
	}

	volume := fmt.Sprintf("vol %d%%", int(status.Gain*100+0.5))
	line := strings.TrimSpace(fmt.Sprintf("[%s]  %s  %s  %s", state, item, position, volume))
	if _, err := fmt.Fprintln(os.Stdout, line); err != nil {
		return err
	}

	_, err := fmt.Fprintf(os.Stdout, "Queue: %d tracks (index %d) repeat %s\n",
		status.QueueLength, status.Index, status.Repeat)
	return err
}

func printQueue(queue Queue) error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, " \tINDEX\tTITLE\tARTIST\tALBUM\tLEN"); err != nil {
		return err
	}
	for idx, entry := range queue.Entries {
		marker := ""
		if idx == queue.Index {
			marker = "*"
		}
		_, err := fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\n",
			marker, idx, entry.Title, entry.Artist, entry.Album, formatSeconds(entry.Duration))
		if err != nil {
			return err
		}
	}
	return tw.Flush()
}

func formatTrack(artist, title, fallback string) string {
	if title != "" && artist != "" {
		return fmt.Sprintf("%s - %s", artist, title)
	}
	if title != "" {
		return title
	}
	return fallback
}

func formatSeconds(seconds float64) string {
	if seconds <= 0 {
		return "0:00"
	}
	whole := int(seconds)
	return fmt.Sprintf("%d:%02d", whole/60, whole%60)
}
