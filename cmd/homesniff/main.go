package main

import (
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/robotalks/homectl/pkg/l1/comm/mqtt"
	"github.com/robotalks/homectl/pkg/l1/msgs"
)

var (
	mqttURL = "mqtt://localhost:1883/" + mqtt.DefaultTopicPrefix
)

func init() {
	if val := os.Getenv("HOMECTL_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}

	q.Sub("#", mqtt.Handler(func(topic string, payload []byte) {
		switch {
		case strings.HasSuffix(topic, "/meta"), strings.HasSuffix(topic, "/line"), strings.HasSuffix(topic, "/cmd"):
			log.Printf("%s: %s", topic, string(payload))
			return
		case !strings.Contains(topic, "/report/"):
			log.Printf("%s: %d bytes", topic, len(payload))
			return
		}
		reading, err := msgs.DecodeReading(payload)
		if err != nil {
			log.Printf("%s: bad reading: %v", topic, err)
			return
		}
		log.Printf("%s: [%s %s] %q", topic, reading.Report.Kind,
			reading.Time.Format(time.RFC3339), reading.Report.Line)
	}))
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}
	<-(chan struct{})(nil)
}
