package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"leviathan-server/internal/jwt"
)

var ttl = flag.Duration("ttl", jwt.DefaultTTL, "how long the token is valid for")

// sign-token issues a bearer token for a player (wallet) ID
// The ID is taken from the first argument, or asked for when stdin is a terminal.
func main() {
	flag.Parse()
	loadDotEnv()

	if err := jwt.LoadKeys(); err != nil {
		logrus.WithError(err).Fatal("could not load keys")
	}

	playerID := flag.Arg(0)
	if playerID == "" {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			logrus.Fatal("usage: sign-token [-ttl 24h] <player-id>")
		}

		playerID = getPlayerID()
		if playerID == "" {
			os.Exit(1)
		}
	}

	token, err := jwt.Sign(playerID, *ttl)
	if err != nil {
		logrus.WithError(err).Fatal("could not sign token")
	}

	fmt.Println(token)
}

func getPlayerID() string {
	reader := bufio.NewReader(os.Stdin)
	for {
		_, _ = fmt.Fprint(os.Stderr, "Player ID: ")
		str, err := reader.ReadString('\n')
		if err != nil {
			logrus.WithError(err).Warn("could not read player ID")
			return ""
		}

		str = strings.TrimSpace(str)
		if str == "" {
			return ""
		}

		if strings.ContainsAny(str, " \t") {
			_, _ = fmt.Fprintln(os.Stderr, "player ID cannot contain whitespace")
			continue
		}

		return str
	}
}

// loadDotEnv sets environment variables from a .env file in the working directory, if there is one
// Variables that are already set win.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.WithError(err).Fatal("could not load .env")
	}
}
