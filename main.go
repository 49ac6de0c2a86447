package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	logger "github.com/ElrondNetwork/elrond-go-logger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/matiasbn/Lucky7Bot/bot"
	"github.com/matiasbn/Lucky7Bot/config"
	"github.com/matiasbn/Lucky7Bot/data"
	"github.com/matiasbn/Lucky7Bot/listener"
	"github.com/matiasbn/Lucky7Bot/network"
	"github.com/matiasbn/Lucky7Bot/store"
	"github.com/matiasbn/Lucky7Bot/utils"
	"github.com/urfave/cli"
	"gopkg.in/natefinch/lumberjack.v2"
)

var log = logger.GetOrCreate("main")

var indexFlag = cli.Int64Flag{
	Name:  "index",
	Usage: "wallet index, the Telegram user id for players",
}

func main() {
	app := cli.NewApp()
	app.Name = "lucky7bot"
	app.Usage = "Telegram front end and event projector for the Lucky7 lottery"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config",
			Value: utils.DefaultConfigPath,
			Usage: "path to the TOML configuration file",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "log level pattern overriding the configured one, e.g. *:DEBUG",
		},
	}
	app.Action = runBot
	app.Commands = []cli.Command{
		{
			Name:   "run",
			Usage:  "start the Telegram bot",
			Action: runBot,
		},
		{
			Name:   "snapshot",
			Usage:  "print the game as seen by a wallet",
			Flags:  []cli.Flag{indexFlag},
			Action: printSnapshot,
		},
		{
			Name:   "watch",
			Usage:  "follow the projected state of a wallet",
			Flags:  []cli.Flag{indexFlag},
			Action: watchWallet,
		},
		{
			Name:   "address",
			Usage:  "print the address of a derived wallet",
			Flags:  []cli.Flag{indexFlag},
			Action: printAddress,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Error("exiting", "error", err)
		os.Exit(1)
	}
}

func setup(c *cli.Context) (*data.AppConfig, error) {
	cfg, err := config.NewConfig(c.GlobalString("config"))
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if c.GlobalString("log-level") != "" {
		level = c.GlobalString("log-level")
	}
	if err = logger.SetLogLevel(level); err != nil {
		return nil, err
	}

	if cfg.Log.File != "" {
		rotateLogger := &lumberjack.Logger{
			Filename:   cfg.Log.File,
			MaxSize:    cfg.Log.MaxSize,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAge:     cfg.Log.MaxAge,
			LocalTime:  true,
			Compress:   cfg.Log.Compress,
		}
		if err = logger.AddLogObserver(rotateLogger, &logger.PlainFormatter{}); err != nil {
			return nil, err
		}
	}

	utils.Seedphrase = cfg.Seedphrase

	return cfg, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func connect(ctx context.Context, cfg *data.AppConfig) (*ethclient.Client, *network.NetworkManager, error) {
	client, err := ethclient.DialContext(ctx, cfg.Network.Endpoint)
	if err != nil {
		log.Error("can not connect to node", "endpoint", cfg.Network.Endpoint, "error", err)
		return nil, nil, err
	}

	networkManager, err := network.NewNetworkManager(ctx, cfg, client)
	if err != nil {
		client.Close()
		return nil, nil, err
	}

	return client, networkManager, nil
}

func walletAddress(index int64) (common.Address, error) {
	pk, err := utils.GetPrivateKeyFromSeed(index)
	if err != nil {
		return common.Address{}, err
	}

	return utils.GetAddressFromPrivateKey(pk), nil
}

func runBot(c *cli.Context) error {
	cfg, err := setup(c)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	client, networkManager, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	l, err := listener.NewListener(cfg, client)
	if err != nil {
		return err
	}

	telegramBot, err := bot.NewBot(cfg, networkManager, l, store.NewStore(cfg.Projector))
	if err != nil {
		return err
	}

	if err = telegramBot.StartTasks(ctx); err != nil {
		return err
	}

	log.Info("bot started", "contract", networkManager.ContractAddress().Hex(), "chain", networkManager.ChainID())
	<-ctx.Done()
	log.Info("shutting down")

	return nil
}

func printSnapshot(c *cli.Context) error {
	cfg, err := setup(c)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	client, networkManager, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	owner, err := walletAddress(c.Int64("index"))
	if err != nil {
		return err
	}

	snapshot, err := networkManager.GetGameSnapshot(ctx, owner)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	return encoder.Encode(snapshot)
}

func watchWallet(c *cli.Context) error {
	cfg, err := setup(c)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	client, networkManager, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	owner, err := walletAddress(c.Int64("index"))
	if err != nil {
		return err
	}

	l, err := listener.NewListener(cfg, client)
	if err != nil {
		return err
	}

	s := store.NewStore(cfg.Projector)
	s.AddListener(func(change store.Change) {
		if change.Owner != owner {
			return
		}
		state := change.User
		fmt.Printf("%s mu=%q i=%q ticket=%d muReady=%v iReady=%v paid=%v timedOut=%v\n",
			state.Phase, state.Values.MuParameter, state.Values.IParameter, state.Values.TicketValue,
			state.Values.MuReady, state.Values.IReady, state.Values.UserPaidTicket, state.TimedOut)
	})

	values, err := networkManager.GetUserValues(ctx, owner)
	if err != nil {
		return err
	}
	s.SyncUser(owner, values)

	sub, err := l.Subscribe(ctx, owner)
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	log.Info("watching", "wallet", owner.Hex(), "subscription", sub.ID.String())
	err = s.Consume(ctx, sub.Records())
	if err == context.Canceled {
		return nil
	}

	return err
}

func printAddress(c *cli.Context) error {
	if _, err := setup(c); err != nil {
		return err
	}

	address, err := walletAddress(c.Int64("index"))
	if err != nil {
		return err
	}

	fmt.Println(address.Hex())

	return nil
}
