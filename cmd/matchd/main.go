// Package main is matchd, a daemon that dispatches values through a
// configured case set.
//
// The configuration declares families and ordered cases with Goja
// handler sources.  Values arrive as JSON over TCP lines, WebSockets,
// stdin, or (optionally) MQTT, and the response from each dispatch
// goes back the way the value came.
package main

import (
	"bufio"
	"context"
	"flag"
	"io/ioutil"
	"log"
	"os"

	"github.com/varmint/varmint/interpreters"

	"gopkg.in/yaml.v2"
)

func main() {

	var (
		configFile = flag.String("c", "matchd.yaml", "configuration filename")
		dbFile     = flag.String("d", "", "optional journal filename")

		tcpAddr = flag.String("t", ":9000", "address for our TCP listener")
		wsAddr  = flag.String("h", "", "address for our WebSockets service")

		listenOnStdin = flag.Bool("I", false, "listen for values on stdin")

		useMQTT = flag.Bool("mqtt", false, "couple to an MQTT broker (see -mq-help)")
		mqHelp  = flag.Bool("mq-help", false, "show MQTT flags")

		verbose = flag.Bool("v", false, "log lots of wonderful things")
	)

	flag.Parse()

	if *mqHelp {
		_, fs := NewMQTTOptions(nil)
		fs.PrintDefaults()
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bs, err := ioutil.ReadFile(*configFile)
	if err != nil {
		log.Fatal(err)
	}

	var cfg Config
	if err := yaml.Unmarshal(bs, &cfg); err != nil {
		log.Fatal(err)
	}

	s, err := NewService(ctx, &cfg, interpreters.Standard())
	if err != nil {
		log.Fatal(err)
	}
	s.Verbose = *verbose

	if *dbFile != "" {
		j := NewJournal(*dbFile)
		if err := j.Open(); err != nil {
			log.Fatal(err)
		}
		defer j.Close()
		s.journal = j
	}

	if *listenOnStdin {
		go func() {
			if err := s.Listener(ctx, bufio.NewReader(os.Stdin), os.Stdout, nil); err != nil {
				log.Printf("Service.Listener os.Stdin os.Stdout error %s", err)
			}
			cancel()
		}()
	}

	if *wsAddr != "" {
		go func() {
			if err := s.WebSocketService(ctx, *wsAddr); err != nil {
				log.Printf("WebSocketService error %s", err)
				cancel()
			}
		}()
	}

	if *useMQTT {
		o, _ := NewMQTTOptions(flag.Args())
		go func() {
			if err := s.MQTTService(ctx, o); err != nil {
				log.Printf("MQTTService error %s", err)
				cancel()
			}
		}()
	}

	if *tcpAddr != "" {
		go func() {
			if err := s.TCPService(ctx, *tcpAddr); err != nil {
				log.Printf("TCPService error %s", err)
			}
			cancel()
		}()
	}

	<-ctx.Done()
}
