// Package cmd provides the wikibot CLI application
package cmd

import (
	"errors"
	"fmt"
	"github.com/freecodecampba/wikibot/bot"
	"github.com/freecodecampba/wikibot/config"
	"github.com/freecodecampba/wikibot/util"
	"github.com/urfave/cli/v2"
	"github.com/urfave/cli/v2/altsrc"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// New creates a new CLI application
func New() *cli.App {
	flags := []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, EnvVars: []string{"WIKIBOT_CONFIG_FILE"}, Value: "/etc/wikibot/config.yml", DefaultText: "/etc/wikibot/config.yml", Usage: "config file"},
		&cli.BoolFlag{Name: "debug", EnvVars: []string{"WIKIBOT_DEBUG"}, Value: false, Usage: "enable debugging output"},
		altsrc.NewStringFlag(&cli.StringFlag{Name: "bot-token", Aliases: []string{"t"}, EnvVars: []string{"WIKIBOT_BOT_TOKEN", "BOT_API_KEY"}, DefaultText: "none", Usage: "bot token"}),
		altsrc.NewStringFlag(&cli.StringFlag{Name: "bot-name", Aliases: []string{"n"}, EnvVars: []string{"WIKIBOT_BOT_NAME", "BOT_NAME"}, Value: config.DefaultName, DefaultText: config.DefaultName, Usage: "name of the bot user, the bot also answers to it"}),
		altsrc.NewDurationFlag(&cli.DurationFlag{Name: "send-timeout", Aliases: []string{"T"}, EnvVars: []string{"WIKIBOT_SEND_TIMEOUT"}, Value: config.DefaultSendTimeout, Usage: "timeout for posting a single reply"}),
		altsrc.NewIntFlag(&cli.IntFlag{Name: "max-pending-messages", Aliases: []string{"P"}, EnvVars: []string{"WIKIBOT_MAX_PENDING_MESSAGES"}, Value: config.DefaultMaxPendingMessages, Usage: "max number of messages held back until the bot user is known"}),
	}
	return &cli.App{
		Name:                   "wikibot",
		Usage:                  "Slack/Discord bot that points people asking for books, courses and tutorials to the wiki",
		UsageText:              "wikibot [OPTION..]",
		HideHelp:               true,
		HideVersion:            true,
		EnableBashCompletion:   true,
		UseShortOptionHandling: true,
		Reader:                 os.Stdin,
		Writer:                 os.Stdout,
		ErrWriter:              os.Stderr,
		Action:                 execRun,
		Before:                 initConfigFileInputSource("config", flags),
		Flags:                  flags,
	}
}

func execRun(c *cli.Context) error {
	// Read all the options
	token := c.String("bot-token")
	name := c.String("bot-name")
	sendTimeout := c.Duration("send-timeout")
	maxPendingMessages := c.Int("max-pending-messages")
	debug := c.Bool("debug")

	// Validate options
	if token == "" || token == "MUST_BE_SET" {
		return errors.New("missing bot token, pass --bot-token, set WIKIBOT_BOT_TOKEN env variable or bot-token config option")
	} else if name == "" {
		return errors.New("bot name must not be empty, check --bot-name or WIKIBOT_BOT_NAME")
	} else if sendTimeout < time.Second {
		return errors.New("send timeout has to be at least one second")
	} else if maxPendingMessages < 1 {
		return errors.New("max pending messages must be at least 1")
	}

	// Create main bot
	conf := config.New(token)
	conf.Name = name
	conf.SendTimeout = sendTimeout
	conf.MaxPendingMessages = maxPendingMessages
	conf.Debug = debug
	robot, err := bot.New(conf)
	if err != nil {
		return err
	}

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs // Doesn't matter which
		log.Printf("Signal received. Shutting down.")
		robot.Stop()
	}()

	// Run main bot, can be killed by signal
	if err := robot.Run(); err != nil {
		return err
	}

	log.Printf("Exiting.")
	return nil
}

// initConfigFileInputSource is like altsrc.InitInputSourceWithContext and altsrc.NewYamlSourceFromFlagFunc, but checks
// if the config flag is exists and only loads it if it does. If the flag is set and the file exists, it fails.
func initConfigFileInputSource(configFlag string, flags []cli.Flag) cli.BeforeFunc {
	return func(context *cli.Context) error {
		configFile := context.String(configFlag)
		if context.IsSet(configFlag) && !util.FileExists(configFile) {
			return fmt.Errorf("config file %s does not exist", configFile)
		} else if !context.IsSet(configFlag) && !util.FileExists(configFile) {
			return nil
		}
		inputSource, err := altsrc.NewYamlSourceFromFile(configFile)
		if err != nil {
			return err
		}
		return altsrc.ApplyInputSourceValues(context, inputSource, flags)
	}
}
