package config

import (
	"flag"
	"fmt"
)

const HelpMessage = `
skytrack - live aircraft map backend

Usage:
  skytrack -mode <service> [-config-path config.yaml]
  skytrack -help

Services:
  map-service      polls the aircraft feed and pushes marker updates to map clients (GET /ws/map)
  ingest-service   reads dump1090 SBS-1 messages and feeder uploads, publishes them to RabbitMQ
  store-service    consumes position messages into PostgreSQL
  api-service      serves the aircraft snapshot feed (GET /aircraft)

Every setting can be given in the YAML file or as an environment variable
(feed.poll_interval -> FEED_POLL_INTERVAL). Environment variables win.
`

func PrintHelp() {
	if HelpMessage != "" {
		fmt.Printf("%s", HelpMessage)
	} else {
		flag.Usage()
	}
}
