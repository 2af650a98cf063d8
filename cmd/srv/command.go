package main

import "github.com/urfave/cli/v2"

func (s *srv) loadApp() {
	app := cli.NewApp()
	app.Action = cli.ShowAppHelp
	app.Name = "luckydraw"
	app.Usage = "Lucky draw reward service"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Value: "config.toml",
			Usage: "Path of the toml config file",
		},
		&cli.StringFlag{
			Name:  "env",
			Value: ".env",
			Usage: "Path of the optional dotenv file",
		},
	}
	app.Before = s.loadConfig
	app.Commands = []*cli.Command{
		{
			Action:      s.startApi,
			Name:        "api",
			Usage:       "Start service api",
			Category:    "Api",
			Description: `Serves the draw, inventory and points apis with prometheus metrics.`,
		},
		{
			Action:      s.startMigrate,
			Name:        "migrate",
			Usage:       "Migrate the database",
			Category:    "Database",
			Description: `Applies the embedded sql migrations on mysql, or auto migrates sqlite.`,
		},
		{
			Action:      s.startCron,
			Name:        "cron",
			Usage:       "Start cron jobs",
			Category:    "Worker",
			Description: `Runs the vip expiry job on the configured schedule.`,
		},
		{
			Action:      s.startRecorder,
			Name:        "recorder",
			Usage:       "Start the draw record forwarder",
			Category:    "Worker",
			Description: `Consumes draw records from kafka and forwards them to the remote recorder.`,
		},
		{
			Action:   s.startToken,
			Name:     "token",
			Usage:    "Mint an access token",
			Category: "Tool",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "id",
					Required: true,
					Usage:    "User or service id carried by the token",
				},
				&cli.StringFlag{
					Name:  "role",
					Value: "user",
					Usage: "Either user or service",
				},
				&cli.DurationFlag{
					Name:  "expiration",
					Usage: "Lifetime of the token, the access token expiration by default",
				},
			},
		},
	}

	s.app = app
}
