// Each participant random-walks a point on a small grid and broadcasts its
// position as "x y". Peer positions arrive on the connection's background
// goroutine and flow through a channel to the foreground loop, which owns
// all of the state and renders a one-line status. That channel handoff is
// the recommended pattern whenever a handler feeds a game or render loop.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/peerwire/mqchat"
)

const gridSize = 20

type brokerEnv struct {
	Hostname      string `envconfig:"MQCHAT_BROKER_HOSTNAME" default:"broker.hivemq.com"`
	TCPPort       int    `envconfig:"MQCHAT_BROKER_TCP_PORT" default:"1883"`
	WebSocketPort int    `envconfig:"MQCHAT_BROKER_WS_PORT" default:"8000"`
	UseWebSocket  bool   `envconfig:"MQCHAT_BROKER_USE_WS" default:"false"`
}

type position struct {
	id   int
	x, y int
}

// positionFeed forwards decoded peer positions to the foreground loop.
type positionFeed struct {
	updates chan position
}

func (f *positionFeed) ActOnMessage(message string, senderID int) {
	var x, y int
	if _, err := fmt.Sscanf(message, "%d %d", &x, &y); err != nil {
		return
	}
	select {
	case f.updates <- position{id: senderID, x: x, y: y}:
	default: // a stale position is fine to drop
	}
}

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	fs := pflag.NewFlagSet("walkers", pflag.ContinueOnError)

	var (
		id       = fs.IntP("id", "i", 1, "this walker's number (1, 2, ...)")
		count    = fs.IntP("count", "n", 2, "how many walkers are roaming")
		session  = fs.StringP("session", "s", "", "session id, pick something unique to your group")
		interval = fs.DurationP("interval", "t", 500*time.Millisecond, "how often to take a step")
		logLevel = fs.StringP("log-level", "l", "warn", "log level")
	)
	if err := fs.Parse(os.Args[1:]); err != nil {
		logger.Fatal().Err(err).Msg("failed to parse command line arguments")
	}

	lvl, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse loglevel")
	}
	logger = logger.Level(lvl)

	if *session == "" {
		logger.Fatal().Msg("--session is required")
	}

	var env brokerEnv
	if err = envconfig.Process("", &env); err != nil {
		logger.Fatal().Err(err).Msg("failed to read broker environment")
	}

	feed := &positionFeed{updates: make(chan position, 16)}
	sender := mqchat.NewSender(*id, *count, 0)
	receiver, err := mqchat.NewReceiver(feed, 0)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to construct receiver")
	}

	err = mqchat.Activate(mqchat.Config{
		SessionID: *session,
		Sender:    sender,
		Receiver:  receiver,
		Broker: mqchat.Broker{
			Hostname:      env.Hostname,
			TCPPort:       env.TCPPort,
			WebSocketPort: env.WebSocketPort,
			UseWebSocket:  env.UseWebSocket,
		},
		Logger: &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("could not reach the broker")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var (
		me     = position{id: *id, x: rand.Intn(gridSize), y: rand.Intn(gridSize)}
		peers  = make(map[int]position)
		ticker = time.NewTicker(*interval)
	)
	defer ticker.Stop()

walkLoop:
	for {
		select {
		case <-ctx.Done():
			break walkLoop
		case <-ticker.C:
			me.x = step(me.x)
			me.y = step(me.y)
			sender.Send(fmt.Sprintf("%d %d", me.x, me.y))
		case p := <-feed.updates:
			peers[p.id] = p
		}
		render(me, peers)
	}
	fmt.Println()
}

func step(v int) int {
	v += rand.Intn(3) - 1
	if v < 0 {
		return 0
	}
	if v >= gridSize {
		return gridSize - 1
	}
	return v
}

func render(me position, peers map[int]position) {
	ids := make([]int, 0, len(peers))
	for id := range peers {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var b strings.Builder
	fmt.Fprintf(&b, "\rme %d at (%2d,%2d)", me.id, me.x, me.y)
	for _, id := range ids {
		p := peers[id]
		fmt.Fprintf(&b, "  |  walker %d at (%2d,%2d)", id, p.x, p.y)
	}
	fmt.Print(b.String())
}
