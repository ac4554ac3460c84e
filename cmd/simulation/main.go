package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/fasthttp/websocket"
)

// Simulation client for the research stream: connects to a running server,
// issues one start command, and prints every frame until the run ends.

type startCommand struct {
	Task             string   `json:"task"`
	ReportType       string   `json:"report_type"`
	SourceURLs       []string `json:"source_urls,omitempty"`
	PromptTokenLimit int      `json:"prompt_token_limit,omitempty"`
	TotalWords       int      `json:"total_words,omitempty"`
}

type frame struct {
	Type   string          `json:"type"`
	Output json.RawMessage `json:"output"`
}

func main() {
	wsURL := flag.String("url", "ws://localhost:8000/ws", "research websocket endpoint")
	task := flag.String("task", "impact of interest rates on housing", "research task to run")
	reportType := flag.String("report-type", "research_report", "research_report, resource_report or outline_report")
	totalWords := flag.Int("total-words", 0, "target report length (0 = server default)")
	flag.Parse()

	fmt.Println("=== Research Stream Simulation Client ===")
	fmt.Printf("Connecting to %s\n", *wsURL)

	conn, _, err := websocket.DefaultDialer.Dial(*wsURL, nil)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close()

	payload, err := json.Marshal(startCommand{
		Task:       *task,
		ReportType: *reportType,
		TotalWords: *totalWords,
	})
	if err != nil {
		log.Fatalf("Failed to build start command: %v", err)
	}

	fmt.Printf("\nTASK: %s\n\n", *task)
	start := time.Now()
	if err := conn.WriteMessage(websocket.TextMessage, append([]byte("start "), payload...)); err != nil {
		log.Fatalf("Failed to send start command: %v", err)
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Fatalf("Stream closed: %v", err)
		}

		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			fmt.Printf("?? unparseable frame: %s\n", data)
			continue
		}

		switch f.Type {
		case "logs":
			var line string
			_ = json.Unmarshal(f.Output, &line)
			fmt.Println(line)
		case "usage":
			fmt.Printf("\nUSAGE: %s\n", f.Output)
		case "path":
			fmt.Printf("OUTPUT FILES: %s\n", f.Output)
			fmt.Printf("\nDone in %v\n", time.Since(start).Round(time.Millisecond))
			return
		case "error":
			var msg string
			_ = json.Unmarshal(f.Output, &msg)
			log.Fatalf("Run failed after %v: %s", time.Since(start).Round(time.Millisecond), msg)
		default:
			fmt.Printf("%s: %s\n", f.Type, f.Output)
		}
	}
}
