package main

import (
	"context"
	"log"

	"github.com/Vicktor007/store-lit/internal/client/cli"
	"github.com/Vicktor007/store-lit/internal/client/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
