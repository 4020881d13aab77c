package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

// envelope mirrors the websocket message framing
type envelope struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func newPlayCmd() *cobra.Command {
	var nickname string
	var priorID string

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Connect as a live player",
		Long: `play opens a websocket connection and drives it from stdin.

Commands:
  create                     create a lobby
  list                       list open lobbies
  join <id>                  join a lobby (or rejoin a match you left)
  move <fr> <fc> <tr> <tc>   move a piece (rows and columns are 0-7)
  say <text>                 send a chat message
  leave                      leave the current match
  rejoin                     rejoin the current match
  forfeit                    forfeit the current match
  rematch                    accept a rematch
  quit                       close the connection`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(nickname, priorID)
		},
	}

	cmd.Flags().StringVarP(&nickname, "nickname", "n", "", "Nickname to play under (required)")
	cmd.Flags().StringVar(&priorID, "player-id", "", "Prior player id to reclaim")
	_ = cmd.MarkFlagRequired("nickname")

	return cmd
}

func runPlay(nickname, priorID string) error {
	conn, _, err := websocket.DefaultDialer.Dial(client.WebsocketURL(), nil)
	if err != nil {
		return fmt.Errorf("connecting: %w", err)
	}
	defer func() { _ = conn.Close() }()

	session := &playSession{conn: conn}

	if err := session.send("set-nickname", map[string]string{
		"nickname": nickname,
		"prior_id": priorID,
	}); err != nil {
		return err
	}

	// Reader goroutine prints events as they arrive
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					fmt.Fprintf(os.Stderr, "connection closed: %s\n", err)
				}
				return
			}
			session.printEvent(raw)
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		select {
		case <-done:
			return nil
		default:
		}
		if quit, err := session.handleCommand(scanner.Text()); err != nil {
			fmt.Fprintf(os.Stderr, "error: %s\n", err)
		} else if quit {
			break
		}
	}

	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	<-done
	return nil
}

type playSession struct {
	conn    *websocket.Conn
	matchID string
}

func (s *playSession) send(kind string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.conn.WriteJSON(envelope{Kind: kind, Payload: data})
}

func (s *playSession) handleCommand(line string) (quit bool, err error) {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 {
		return false, nil
	}

	switch fields[0] {
	case "create":
		return false, s.send("create-lobby", struct{}{})
	case "list":
		return false, s.send("list-lobbies", struct{}{})
	case "join":
		if len(fields) != 2 {
			return false, fmt.Errorf("usage: join <id>")
		}
		return false, s.send("join-lobby", map[string]string{"lobby_id": fields[1]})
	case "move":
		if len(fields) != 5 {
			return false, fmt.Errorf("usage: move <fr> <fc> <tr> <tc>")
		}
		coords := make([]int, 4)
		for i, f := range fields[1:] {
			if coords[i], err = strconv.Atoi(f); err != nil {
				return false, fmt.Errorf("bad coordinate %q", f)
			}
		}
		return false, s.send("move", map[string]any{
			"match_id": s.matchID,
			"from":     Square{Row: coords[0], Col: coords[1]},
			"to":       Square{Row: coords[2], Col: coords[3]},
		})
	case "say":
		if len(fields) < 2 {
			return false, fmt.Errorf("usage: say <text>")
		}
		return false, s.send("chat", map[string]string{
			"match_id": s.matchID,
			"text":     strings.Join(fields[1:], " "),
		})
	case "leave":
		return false, s.send("leave-match", map[string]string{"match_id": s.matchID})
	case "rejoin":
		return false, s.send("rejoin-match", map[string]string{"match_id": s.matchID})
	case "forfeit":
		return false, s.send("forfeit-match", map[string]string{"match_id": s.matchID})
	case "rematch":
		return false, s.send("rematch-accept", map[string]string{"match_id": s.matchID})
	case "quit", "exit":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %q", fields[0])
	}
}

// printEvent renders a server event and tracks the current match id
func (s *playSession) printEvent(raw []byte) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		fmt.Printf("<< %s\n", string(raw))
		return
	}

	switch env.Kind {
	case "match-start", "match-rejoined":
		var p struct {
			MatchID string `json:"match_id"`
		}
		if err := json.Unmarshal(env.Payload, &p); err == nil && p.MatchID != "" {
			s.matchID = p.MatchID
		}
	}

	fmt.Printf("<< %s %s\n", env.Kind, string(env.Payload))
}
