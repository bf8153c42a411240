package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTOptions configure the optional MQTT coupling.
type MQTTOptions struct {
	Broker   string
	Port     int
	ClientID string
	Username string
	Password string

	// Topic is the subscription for incoming values.
	Topic string

	// ReplyTopic gets the responses.
	ReplyTopic string

	KeepAlive time.Duration
	Quiesce   uint
}

// NewMQTTOptions makes a FlagSet for MQTT flags.
//
// Flag names follow mosquitto_sub where they can.
func NewMQTTOptions(args []string) (*MQTTOptions, *flag.FlagSet) {
	var (
		o  = &MQTTOptions{}
		fs = flag.NewFlagSet("mq", flag.ExitOnError)
	)

	fs.StringVar(&o.Broker, "h", "tcp://localhost", "Broker hostname")
	fs.IntVar(&o.Port, "p", 1883, "Broker port")
	fs.StringVar(&o.ClientID, "i", "matchd", "Client id")
	fs.StringVar(&o.Username, "u", "", "Username")
	fs.StringVar(&o.Password, "P", "", "Password")
	fs.StringVar(&o.Topic, "t", "matchd/in", "subscription topic")
	fs.StringVar(&o.ReplyTopic, "r", "matchd/out", "reply topic")
	fs.DurationVar(&o.KeepAlive, "k", 10*time.Second, "Keep-alive")

	o.Quiesce = 100

	if args == nil {
		return nil, fs
	}

	fs.Parse(args)

	return o, fs
}

// MQTTService subscribes to the incoming topic and publishes each
// response from Process to the reply topic.
func (s *Service) MQTTService(ctx context.Context, o *MQTTOptions) error {
	mqtt.ERROR = log.New(os.Stderr, "mqtt.error", 0)

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("%s:%d", o.Broker, o.Port))
	opts.SetClientID(o.ClientID)
	opts.SetKeepAlive(o.KeepAlive)
	opts.Username = o.Username
	opts.Password = o.Password

	client := mqtt.NewClient(opts)
	if t := client.Connect(); t.Wait() && t.Error() != nil {
		return t.Error()
	}
	defer client.Disconnect(o.Quiesce)

	log.Printf("MQTTService subscribing to %s", o.Topic)

	handler := func(client mqtt.Client, m mqtt.Message) {
		response := s.Process(ctx, m.Payload())
		if t := client.Publish(o.ReplyTopic, 0, false, response); t.Wait() && t.Error() != nil {
			log.Printf("MQTTService publish error %v", t.Error())
		}
	}

	if t := client.Subscribe(o.Topic, 0, handler); t.Wait() && t.Error() != nil {
		return t.Error()
	}

	<-ctx.Done()

	if t := client.Unsubscribe(o.Topic); t.Wait() && t.Error() != nil {
		return t.Error()
	}

	return nil
}
