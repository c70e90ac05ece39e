package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

type event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

// send wraps a payload into the event envelope and writes it.
func send(c *websocket.Conn, name string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.WriteJSON(event{Name: name, Data: data})
}

func main() {
	addr := flag.String("addr", "localhost:5000", "server address")
	roomID := flag.String("room", "sala01", "room to join")
	name := flag.String("name", "Anon", "display name")
	flag.Parse()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			var ev event
			if err := json.Unmarshal(message, &ev); err != nil {
				log.Printf("Received invalid frame: %s", message)
				continue
			}
			log.Printf("<- RECV (%s): %s", ev.Name, string(ev.Data))
		}
	}()

	log.Printf("Joining room %s as %s...", *roomID, *name)
	if err := send(c, "join_room", map[string]string{"room": *roomID, "name": *name, "symbol": "X", "color": "#000"}); err != nil {
		log.Println("Write error:", err)
		return
	}

	log.Println("Commands: 'move <p1> <p2>', 'stop', 'letter', 'answers <cat>=<word> ...', 'end'")

	// Write loop
	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-done:
			return
		case <-interrupt:
			log.Println("Interrupt received, closing connection.")
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Println("Write close error:", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		default:
			text, _ := reader.ReadString('\n')
			fields := strings.Fields(text)
			if len(fields) == 0 {
				continue
			}

			var err error
			switch fields[0] {
			case "move":
				if len(fields) != 3 {
					log.Println("Usage: move <p1> <p2>")
					continue
				}
				err = send(c, "make_move", map[string]interface{}{
					"room": *roomID, "p1": fields[1], "p2": fields[2],
					"player": *name, "symbol": "X",
				})
			case "stop":
				err = send(c, "join_stop", map[string]string{"room": *roomID, "name": *name})
			case "letter":
				err = send(c, "generate_letter_stop", map[string]string{"room": *roomID})
			case "answers":
				answers := make(map[string]string)
				for _, pair := range fields[1:] {
					parts := strings.SplitN(pair, "=", 2)
					if len(parts) == 2 {
						answers[parts[0]] = parts[1]
					}
				}
				err = send(c, "submit_answers", map[string]interface{}{"room": *roomID, "answers": answers})
			case "end":
				err = send(c, "end_round", map[string]string{"room": *roomID})
			default:
				log.Printf("Unknown command %q", fields[0])
				continue
			}

			if err != nil {
				log.Println("Write error:", err)
				return
			}
		}
	}
}
