// Command client is a small terminal WebSocket client for poking at the
// relay: it prints every inbound frame and sends stdin lines as outbound
// frames. Paste a bearer token to bind an identity, or send a JSON envelope
// like {"type":"broadcast","content":"hi"}.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
)

func main() {
	addr := flag.String("addr", "localhost:8080", "server host:port")
	token := flag.String("token", "", "bearer token to bind immediately after connecting")
	flag.Parse()

	url := fmt.Sprintf("ws://%s/ws", *addr)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		color.Red.Println("dial failed:", err)
		os.Exit(1)
	}
	defer conn.Close()

	color.Green.Println("connected to", url)

	done := make(chan struct{})
	go readFrames(conn, done)

	if *token != "" {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(*token)); err != nil {
			color.Red.Println("binding failed:", err)
			os.Exit(1)
		}
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
			color.Red.Println("write failed:", err)
			break
		}
	}

	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	<-done
}

func readFrames(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			color.Yellow.Println("connection closed:", err)
			return
		}
		printFrame(string(payload))
	}
}

func printFrame(frame string) {
	switch {
	case strings.HasPrefix(frame, "Error:"):
		color.Red.Println(frame)
	case strings.HasPrefix(frame, "Private message"):
		color.Green.Println(frame)
	case strings.HasPrefix(frame, "Broadcast message"):
		color.Cyan.Println(frame)
	default:
		color.Gray.Println(frame)
	}
}
