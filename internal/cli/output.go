package cli

import (
	"encoding/json"
	"fmt"
	"os"
)

// Output handles formatting based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
		return
	}

	switch v := data.(type) {
	case HealthResult:
		o.printHealthResult(v)
	case HistoryResult:
		o.printHistoryResult(v)
	case MovesResult:
		o.printMovesResult(v)
	default:
		o.printJSON(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status:         %s\n", h.Status)
	fmt.Printf("Uptime:         %ds\n", h.UptimeSeconds)
	fmt.Printf("Connections:    %d\n", h.Connections)
	fmt.Printf("Active matches: %d\n", h.ActiveMatches)
	fmt.Printf("Open lobbies:   %d\n", h.OpenLobbies)
}

func (o *Output) printHistoryResult(h HistoryResult) {
	if len(h.Matches) == 0 {
		fmt.Println("No matches found")
		return
	}
	for _, m := range h.Matches {
		winner := "(unfinished)"
		if m.WinnerID != nil {
			winner = *m.WinnerID
		}
		fmt.Printf("%s  %s vs %s  winner=%s  started=%s\n",
			m.ID, m.PlayerA, m.PlayerB, winner, m.StartedAt.Format("2006-01-02 15:04:05"))
	}
}

func (o *Output) printMovesResult(m MovesResult) {
	if len(m.Moves) == 0 {
		fmt.Println("No moves recorded")
		return
	}
	for _, mv := range m.Moves {
		fmt.Printf("%3d  (%d,%d) -> (%d,%d)  %s\n",
			mv.Index, mv.From.Row, mv.From.Col, mv.To.Row, mv.To.Col,
			mv.PlayedAt.Format("15:04:05"))
	}
}
