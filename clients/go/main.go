// Bate-papo CLI - command line client for the room API
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/XxFULLDLCxX/API-Bate-papo-UOL/clients/go/batepapo"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	baseURL := os.Getenv("BATEPAPO_URL")
	if baseURL == "" {
		baseURL = "http://localhost:5000"
	}

	client := batepapo.NewClient(baseURL)
	client.Name = os.Getenv("BATEPAPO_NAME")
	cmd := os.Args[1]

	switch cmd {
	case "health":
		resp, err := client.Health()
		exitOnError(err)
		fmt.Printf("%s (version %s)\n", resp.Status, resp.Version)

	case "join":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: batepapo join <name>")
			os.Exit(1)
		}
		p, err := client.Register(os.Args[2])
		exitOnError(err)
		fmt.Printf("Joined as: %s\n", p.Name)

		// Keep presence alive until interrupted
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		fmt.Println("Sending heartbeats every 5s, Ctrl+C to leave...")
		if err := client.KeepAlive(ctx, 5*time.Second); err != nil && err != context.Canceled {
			exitOnError(err)
		}

	case "who":
		participants, err := client.ListParticipants()
		exitOnError(err)
		for _, p := range participants {
			fmt.Printf("  %s (last seen %s)\n", p.Name, p.LastStatus.Format("15:04:05"))
		}

	case "send":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: batepapo send <text> [to]")
			os.Exit(1)
		}
		to := batepapo.Broadcast
		msgType := "message"
		if len(os.Args) > 3 {
			to = os.Args[3]
			msgType = "private_message"
		}
		msg, err := client.Send(to, os.Args[2], msgType)
		exitOnError(err)
		fmt.Printf("Sent: %s\n", msg.ID)

	case "read":
		limit := 20
		messages, err := client.Messages(limit)
		exitOnError(err)
		for _, msg := range messages {
			fmt.Printf("[%s] %s -> %s: %s\n", msg.Time, msg.From, msg.To, msg.Text)
		}

	case "help", "--help", "-h":
		usage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println(`Bate-papo CLI - chat room client

Usage: batepapo <command> [options]

Commands:
  join <name>          Join the room and keep presence alive
  send <text> [to]     Send a message (private when a recipient is given)
  read                 Read the 20 most recent visible messages
  who                  List room participants
  health               Check server health

Environment:
  BATEPAPO_URL         Server URL (default http://localhost:5000)
  BATEPAPO_NAME        Identity for send/read/who after joining elsewhere`)
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
