// Package main provides the player CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"

	"github.com/osa030/19player/internal/api/httpapi"
	"github.com/osa030/19player/internal/app/player"
)

var (
	app    = kingpin.New("playerctl", "19player control client")
	server = app.Flag("server", "Server address").Default("http://localhost:8080").Envar("PLAYER_SERVER").String()
	token  = app.Flag("token", "API token (or set PLAYER_API_TOKEN env)").Envar("PLAYER_API_TOKEN").String()

	// state command
	stateCmd = app.Command("state", "Show the player state").Default()

	// songs command
	songsCmd = app.Command("songs", "List the songs of the current source")

	// sources command
	sourcesCmd = app.Command("sources", "List available sources")

	// source command
	sourceCmd  = app.Command("source", "Switch the source")
	sourceKind = sourceCmd.Arg("kind", "Source kind (local, spotify, apple_music, youtube_music)").Required().String()

	// playback commands
	playCmd       = app.Command("play", "Start playback")
	pauseCmd      = app.Command("pause", "Pause playback")
	stopCmd       = app.Command("stop", "Stop playback")
	skipCmd       = app.Command("skip", "Play the next song").Alias("next")
	previousCmd   = app.Command("previous", "Play the previous song").Alias("prev")
	clearErrorCmd = app.Command("clear-error", "Clear the error message")
	positionCmd   = app.Command("position", "Show the position reported by the source")

	// seek command
	seekCmd      = app.Command("seek", "Seek within the current song")
	seekPosition = seekCmd.Arg("position", "Position as m:ss, seconds, or a duration like 1m30s").Required().String()

	// queue commands
	queueCmd       = app.Command("queue", "Manage the queue")
	queueAddCmd    = queueCmd.Command("add", "Queue a song of the current source")
	queueAddSong   = queueAddCmd.Arg("song-id", "Song ID").Required().String()
	queueRemoveCmd = queueCmd.Command("remove", "Remove a queue item").Alias("rm")
	queueRemoveIdx = queueRemoveCmd.Arg("index", "Queue index").Required().Int()
	queueMoveCmd   = queueCmd.Command("move", "Move a queue item")
	queueMoveFrom  = queueMoveCmd.Arg("from", "Current index").Required().Int()
	queueMoveTo    = queueMoveCmd.Arg("to", "New index").Required().Int()
	queueClearCmd  = queueCmd.Command("clear", "Empty the queue")
	queuePlayCmd   = queueCmd.Command("play", "Play a queue item")
	queuePlayIdx   = queuePlayCmd.Arg("index", "Queue index").Required().Int()

	// watch command
	watchCmd = app.Command("watch", "Print session events as they happen")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	client := httpapi.NewClient(nil, *server, *token)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		state *httpapi.StateResponse
		err   error
	)

	// Execute command
	switch command {
	case stateCmd.FullCommand():
		state, err = client.State(ctx)
	case songsCmd.FullCommand():
		err = listSongs(ctx, client)
	case sourcesCmd.FullCommand():
		err = listSources(ctx, client)
	case sourceCmd.FullCommand():
		state, err = client.SetSource(ctx, *sourceKind)
	case playCmd.FullCommand():
		state, err = client.Play(ctx)
	case pauseCmd.FullCommand():
		state, err = client.Pause(ctx)
	case stopCmd.FullCommand():
		state, err = client.Stop(ctx)
	case skipCmd.FullCommand():
		state, err = client.Skip(ctx)
	case previousCmd.FullCommand():
		state, err = client.Previous(ctx)
	case clearErrorCmd.FullCommand():
		state, err = client.ClearError(ctx)
	case positionCmd.FullCommand():
		err = showPosition(ctx, client)
	case seekCmd.FullCommand():
		var pos time.Duration
		if pos, err = parsePosition(*seekPosition); err == nil {
			state, err = client.Seek(ctx, pos.Milliseconds())
		}
	case queueAddCmd.FullCommand():
		state, err = client.AddToQueue(ctx, *queueAddSong)
	case queueRemoveCmd.FullCommand():
		state, err = client.RemoveFromQueue(ctx, *queueRemoveIdx)
	case queueMoveCmd.FullCommand():
		state, err = client.ReorderQueue(ctx, *queueMoveFrom, *queueMoveTo)
	case queueClearCmd.FullCommand():
		state, err = client.ClearQueue(ctx)
	case queuePlayCmd.FullCommand():
		state, err = client.PlaySong(ctx, *queuePlayIdx)
	case watchCmd.FullCommand():
		err = watch(ctx, client)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if state != nil {
		printState(state)
	}
}

func printState(s *httpapi.StateResponse) {
	fmt.Println("\n=== PLAYER STATE ===")
	fmt.Printf("Session ID: %s\n", s.SessionID)
	if s.Source != nil {
		fmt.Printf("Source: %s (%s)\n", s.Source.Name, s.Source.Kind)
	} else {
		fmt.Println("Source: none")
	}
	fmt.Printf("State: %s\n", s.State)
	if s.Error != nil {
		fmt.Printf("Error: %s [%s]\n", s.Error.Message, s.Error.Kind)
	}

	if s.CurrentSong != nil {
		fmt.Printf("\nCurrent Song:\n")
		fmt.Printf("  ID: %s\n", s.CurrentSong.ID)
		fmt.Printf("  Title: %s\n", s.CurrentSong.Title)
		fmt.Printf("  Artist: %s\n", s.CurrentSong.Artist)
		if s.CurrentSong.Album != "" {
			fmt.Printf("  Album: %s\n", s.CurrentSong.Album)
		}
		fmt.Printf("  Progress: %s / %s (%.0f%%)\n", s.Progress.Current, s.Progress.Total, s.Progress.Fraction*100)
	} else {
		fmt.Println("\nNo song selected")
	}

	if len(s.Queue) == 0 {
		fmt.Println("\nQueue is empty")
		fmt.Println()
		return
	}

	fmt.Printf("\nQueue (%d songs):\n", len(s.Queue))
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"", "#", "Title", "Artist", "Length", "Added"})
	for i, item := range s.Queue {
		marker := ""
		if i == s.CurrentIndex {
			marker = "▶"
		}
		t.AppendRow(table.Row{marker, i, item.Song.Title, item.Song.Artist, item.Song.Duration, humanize.Time(item.AddedAt)})
	}
	t.Render()
	fmt.Println()
}

func listSongs(ctx context.Context, client *httpapi.Client) error {
	s, err := client.State(ctx)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Title", "Artist", "Album", "Length"})
	var total int64
	for _, sg := range s.AvailableSongs {
		t.AppendRow(table.Row{sg.ID, sg.Title, sg.Artist, sg.Album, sg.Duration})
		total += sg.DurationMS
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d songs", len(s.AvailableSongs)), "", "", player.FormatTime(time.Duration(total) * time.Millisecond)})
	t.Render()
	return nil
}

func listSources(ctx context.Context, client *httpapi.Client) error {
	infos, err := client.Sources(ctx)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Kind", "Name", "Registered", "Configured"})
	for _, info := range infos {
		t.AppendRow(table.Row{info.Kind, info.DisplayName, info.Registered, info.Configured})
	}
	t.Render()
	return nil
}

func showPosition(ctx context.Context, client *httpapi.Client) error {
	p, err := client.Position(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Position: %s / %s\n", p.Current, p.Total)
	return nil
}

func watch(ctx context.Context, client *httpapi.Client) error {
	fmt.Println("Watching events (Ctrl+C to quit)...")
	return client.Watch(ctx, func(name string, data json.RawMessage) error {
		ts := time.Now().Format("15:04:05")
		switch name {
		case "snapshot":
			var s httpapi.StateResponse
			if err := json.Unmarshal(data, &s); err != nil {
				return err
			}
			printState(&s)
		case player.EventProgress.String():
			var p httpapi.ProgressResponse
			if err := json.Unmarshal(data, &p); err != nil {
				return err
			}
			fmt.Printf("[%s] progress %s / %s\n", ts, p.Current, p.Total)
		case player.EventSong.String():
			var sg *httpapi.SongResponse
			if err := json.Unmarshal(data, &sg); err != nil {
				return err
			}
			if sg == nil {
				fmt.Printf("[%s] song -\n", ts)
			} else {
				fmt.Printf("[%s] song %s - %s (%s)\n", ts, sg.Artist, sg.Title, sg.Duration)
			}
		case "ping":
		default:
			fmt.Printf("[%s] %s %s\n", ts, name, data)
		}
		return nil
	})
}

// parsePosition parses "m:ss", plain seconds, or a Go duration.
func parsePosition(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if m, sec, ok := strings.Cut(s, ":"); ok {
		minutes, err1 := strconv.Atoi(m)
		seconds, err2 := strconv.Atoi(sec)
		if err1 != nil || err2 != nil || minutes < 0 || seconds < 0 || seconds >= 60 {
			return 0, errors.Newf("invalid position %q", s)
		}
		return time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, errors.Newf("invalid position %q", s)
		}
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, errors.Newf("invalid position %q", s)
	}
	return d, nil
}
