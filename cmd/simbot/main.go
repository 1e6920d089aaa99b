// Command simbot connects a fleet of simulated players to a running server
// and plays the game over the real WebSocket protocol: hold on green, release
// on red. It exists to load-test the session and to demo the game without a
// room full of phones.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type playerState struct {
	Phase    string  `json:"phase"`
	Light    string  `json:"light"`
	Progress float64 `json:"progress"`
	Alive    bool    `json:"alive"`
	Holding  bool    `json:"holding"`
}

type bot struct {
	name     string
	conn     *websocket.Conn
	reaction time.Duration
	cheat    float64
	rng      *rand.Rand
	verbose  bool

	mu      sync.Mutex
	holding bool
}

func main() {
	serverURL := flag.String("url", "ws://localhost:8080/ws", "Game server WebSocket URL")
	count := flag.Int("bots", 3, "Number of bots to connect")
	prefix := flag.String("prefix", "bot", "Bot name prefix")
	cheat := flag.Float64("cheat", 0.1, "Probability a bot keeps holding through a red light")
	reactionMs := flag.Int("reaction", 300, "Mean reaction time to a light change in milliseconds")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	log.Printf("Connecting %d bots to %s", *count, *serverURL)

	var wg sync.WaitGroup
	for i := 0; i < *count; i++ {
		name := fmt.Sprintf("%s-%d", *prefix, i+1)
		b, err := dial(*serverURL, name, *cheat, time.Duration(*reactionMs)*time.Millisecond, *verbose)
		if err != nil {
			log.Fatalf("Failed to connect %s: %v", name, err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.run()
		}()
		// Staggered joins look more like real players.
		time.Sleep(150 * time.Millisecond)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		<-interrupt
		log.Printf("Interrupted, disconnecting bots")
		os.Exit(0)
	}()

	wg.Wait()
	log.Printf("All bots finished")
}

func dial(url, name string, cheat float64, reaction time.Duration, verbose bool) (*bot, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}

	b := &bot{
		name:     name,
		conn:     conn,
		reaction: reaction,
		cheat:    cheat,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		verbose:  verbose,
	}

	join := map[string]any{"type": "joinGame", "data": map[string]string{"name": name}}
	if err := conn.WriteJSON(join); err != nil {
		conn.Close()
		return nil, err
	}
	return b, nil
}

// run is the bot's event loop: it mirrors what a human thumb would do with the
// light it sees, a beat late.
func (b *bot) run() {
	defer b.conn.Close()

	for {
		var env envelope
		if err := b.conn.ReadJSON(&env); err != nil {
			log.Printf("%s: connection closed: %v", b.name, err)
			return
		}

		switch env.Type {
		case "playerState":
			var st playerState
			if err := json.Unmarshal(env.Data, &st); err != nil {
				continue
			}
			b.react(st)

		case "joinError":
			log.Printf("%s: join rejected: %s", b.name, string(env.Data))
			return

		case "eliminated":
			if b.verbose {
				log.Printf("%s: eliminated", b.name)
			}

		case "kicked", "lobbyReset":
			log.Printf("%s: removed from the game (%s)", b.name, env.Type)
			return

		case "gameOver":
			if b.verbose {
				log.Printf("%s: round over", b.name)
			}
		}
	}
}

// react decides the hold state for the light the bot just saw. A cheater
// sometimes keeps holding into red and eats the elimination.
func (b *bot) react(st playerState) {
	if st.Phase != "playing" || !st.Alive {
		b.setHolding(false)
		return
	}

	wantHold := st.Light == "green"
	if !wantHold && b.holdState() && b.rng.Float64() < b.cheat {
		if b.verbose {
			log.Printf("%s: pushing its luck through the red light", b.name)
		}
		return
	}
	if wantHold == b.holdState() {
		return
	}

	// Humans are not instant.
	delay := b.reaction/2 + time.Duration(b.rng.Int63n(int64(b.reaction)))
	time.AfterFunc(delay, func() {
		action := "holdEnd"
		if wantHold {
			action = "holdStart"
		}
		// Serialize writes: gorilla allows one concurrent writer and the
		// reaction timers can overlap.
		b.mu.Lock()
		defer b.mu.Unlock()
		b.holding = wantHold
		if err := b.conn.WriteJSON(map[string]any{"type": action}); err != nil {
			log.Printf("%s: write failed: %v", b.name, err)
		}
	})
}

func (b *bot) holdState() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.holding
}

func (b *bot) setHolding(v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.holding = v
}
