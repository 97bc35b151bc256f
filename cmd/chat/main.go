// A two-party console chat: every line typed here shows up on the other
// computer, and vice versa. Run it on two machines (or in two terminals)
// with the same --session, one with --id 1 and one with --id 2.
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/peerwire/mqchat"
)

type brokerEnv struct {
	Hostname      string `envconfig:"MQCHAT_BROKER_HOSTNAME" default:"broker.hivemq.com"`
	TCPPort       int    `envconfig:"MQCHAT_BROKER_TCP_PORT" default:"1883"`
	WebSocketPort int    `envconfig:"MQCHAT_BROKER_WS_PORT" default:"8000"`
	UseWebSocket  bool   `envconfig:"MQCHAT_BROKER_USE_WS" default:"false"`
}

// friendPrinter shows incoming messages under the friend's name.
type friendPrinter struct {
	name string
}

func (f *friendPrinter) ActOnMessage(message string, _ int) {
	fmt.Printf("%s says: %s\n", f.name, message)
}

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	fs := pflag.NewFlagSet("chat", pflag.ContinueOnError)

	var (
		id        = fs.IntP("id", "i", 1, "this computer's number (1, 2, ...)")
		count     = fs.IntP("count", "n", 2, "how many computers are chatting")
		session   = fs.StringP("session", "s", "", "session id, pick something unique to your group")
		verbosity = fs.IntP("verbosity", "v", 3, "message echo verbosity, 0 silences")
		friend    = fs.StringP("friend", "f", "Friend", "name to show for incoming messages")
		logLevel  = fs.StringP("log-level", "l", "info", "log level")
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

	sender := mqchat.NewSender(*id, *count, *verbosity)
	receiver, err := mqchat.NewReceiver(&friendPrinter{name: *friend}, *verbosity)
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

	fmt.Println("Type messages to send; each line goes to the other computers.")
	in := bufio.NewScanner(os.Stdin)
	for in.Scan() {
		sender.Send(in.Text())
	}
	if err = in.Err(); err != nil {
		logger.Fatal().Err(err).Msg("stdin read failed")
	}
}
