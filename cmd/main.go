package main

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/mqpub/mqpub/client/paho"
	mqpzrlg "github.com/mqpub/mqpub/logger/zerolog"
	"github.com/mqpub/mqpub/mqp"
)

type config struct {
	BrokerURL string `env:"MQTT_BROKER_URL" envDefault:"tcp://127.0.0.1:1883"`
	ClientID  string `env:"MQTT_CLIENT_ID" envDefault:"mqpub-example"`
	Topic     string `env:"MQTT_TOPIC" envDefault:"sensors/temp"`
	Readings  int    `env:"READINGS" envDefault:"10"`
}

func main() {
	_ = godotenv.Load()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Unable to parse the configuration: %v\n", err)
		os.Exit(1)
	}

	l := GetLogger()
	c := paho.NewFromOptions(mqtt.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(cfg.ClientID))

	err := mqp.Run(mqp.Settings{
		StopMode:         mqp.StopWhenDrained,
		DisconnectOnStop: true,
	}, c, func(p *mqp.Publisher) error {
		// Appending returns immediately; the delivery worker drains the
		// queue in the background and Run waits for it on the way out.
		for i := 0; i < cfg.Readings; i++ {
			retainLast := i == cfg.Readings-1
			p.Append(cfg.Topic, []byte(fmt.Sprintf("%.1f", 20.0+float64(i)/2)), retainLast)
		}
		l.Info().Int("queued", p.QueueSize()).Msg("readings queued")
		return nil
	}, mqp.WithLogger(&mqpzrlg.Logger{Logger: l}))

	if err != nil {
		l.Fatal().Err(err).Msg("publishing failed")
	}
	fmt.Println("End!")
}

func GetLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}).
		Level(zerolog.Level(zerolog.DebugLevel)).
		With().
		Timestamp().
		Logger()
}
