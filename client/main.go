// Command client is an interactive websocket client for manual play
// against a running Wor server. It can act as the table display or as one
// phone player.
package main

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
)

const (
	msgTypeRegister       = 100
	msgTypeCreateGame     = 101
	msgTypeJoinGame       = 102
	msgTypeStartGame      = 103
	msgTypePlayCard       = 104
	msgTypeAllPlayedCheck = 105
	msgTypeResultAction   = 106
)

// send frames and sends one packet to the server.
func send(c *websocket.Conn, msgID uint16, payload interface{}) error {
	var data []byte
	if payload != nil {
		var err error
		data, err = json.Marshal(payload)
		if err != nil {
			return err
		}
	}

	packet := make([]byte, 4+len(data))
	binary.BigEndian.PutUint16(packet[0:2], msgID)
	binary.BigEndian.PutUint16(packet[2:4], uint16(len(data)))
	copy(packet[4:], data)

	return c.WriteMessage(websocket.BinaryMessage, packet)
}

func main() {
	u := url.URL{Scheme: "ws", Host: "localhost:8080", Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	// Read loop
	go func() {
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			if len(message) < 4 {
				log.Printf("Received invalid packet of size %d", len(message))
				continue
			}
			msgID := binary.BigEndian.Uint16(message[0:2])
			data := message[4:]
			log.Printf("<- RECV (ID: %d): %s", msgID, string(data))
		}
	}()

	log.Println("Commands:")
	log.Println("  table                     register as the table display")
	log.Println("  phone <player_id>         register as a phone")
	log.Println("  create                    create a new game")
	log.Println("  join <player_id> <name>   join the game")
	log.Println("  start                     start the game")
	log.Println("  play <player_id> <value>  play a card")
	log.Println("  check                     run the all-played check")
	log.Println("  next [stack]              next result action, optional stack 1-4")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		var err error
		switch fields[0] {
		case "table":
			err = send(c, msgTypeRegister, map[string]string{"role": "table"})
		case "phone":
			if len(fields) < 2 {
				log.Println("Usage: phone <player_id>")
				continue
			}
			err = send(c, msgTypeRegister, map[string]string{"role": "phone", "player_id": fields[1]})
		case "create":
			err = send(c, msgTypeCreateGame, nil)
		case "join":
			if len(fields) < 3 {
				log.Println("Usage: join <player_id> <name>")
				continue
			}
			err = send(c, msgTypeJoinGame, map[string]string{"player_id": fields[1], "username": fields[2]})
		case "start":
			err = send(c, msgTypeStartGame, nil)
		case "play":
			if len(fields) < 3 {
				log.Println("Usage: play <player_id> <value>")
				continue
			}
			value, convErr := strconv.Atoi(fields[2])
			if convErr != nil {
				log.Println("Card value must be a number")
				continue
			}
			err = send(c, msgTypePlayCard, map[string]interface{}{"player_id": fields[1], "card_value": value})
		case "check":
			err = send(c, msgTypeAllPlayedCheck, nil)
		case "next":
			payload := map[string]interface{}{"chosen_stack": nil}
			if len(fields) > 1 {
				stack, convErr := strconv.Atoi(fields[1])
				if convErr != nil {
					log.Println("Stack must be a number")
					continue
				}
				payload["chosen_stack"] = stack
			}
			err = send(c, msgTypeResultAction, payload)
		case "quit":
			return
		default:
			log.Printf("Unknown command: %s", fields[0])
			continue
		}

		if err != nil {
			log.Printf("Send failed: %v", err)
			return
		}
	}
}
