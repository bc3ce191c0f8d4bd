// Command feedertoken prints a bearer token a remote feeder uses to upload
// position messages to the ingest-service.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Temutjin2k/skytrack/config"
	"github.com/Temutjin2k/skytrack/internal/service/auth"
	"github.com/Temutjin2k/skytrack/pkg/configparser"
)

var (
	feederID   = flag.String("feeder", "", "Feeder id written to the token subject")
	configPath = flag.String("config-path", "config.yaml", "Path to the config yaml file")
)

func main() {
	flag.Parse()
	if *feederID == "" {
		fmt.Fprintln(os.Stderr, "usage: feedertoken -feeder <id> [-config-path config.yaml]")
		os.Exit(2)
	}

	var cfg config.AuthConfig
	if err := configparser.LoadAndParseYaml(*configPath, &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	token, expiresAt, err := auth.NewTokenService(cfg.FeederSecret, cfg.FeederTokenTTL).Issue(context.Background(), *feederID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to issue token: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "token for %s expires at %s\n", *feederID, expiresAt.Format(time.RFC3339))
	fmt.Println(token)
}
