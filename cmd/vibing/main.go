// cmd/vibing/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/vibing/vibing-client/internal/api"
	"github.com/vibing/vibing-client/internal/app"
	"github.com/vibing/vibing-client/internal/config"
	"github.com/vibing/vibing-client/internal/logger"
)

// command is one CLI subcommand. Commands that open the app get a, the
// others (help) get nil.
type command struct {
	usage   string
	summary string
	run     func(ctx context.Context, a *app.App, out io.Writer, args []string) error
}

var commands = map[string]command{
	"login":    {"login -email E [-password P]", "Log in and store the session", runLogin},
	"signup":   {"signup -email E -name N -role buyer|seller [-password P]", "Create an account with a verified phone", runSignup},
	"logout":   {"logout", "Log out and clear stored credentials", runLogout},
	"whoami":   {"whoami", "Show the signed-in user", runWhoami},
	"refresh":  {"refresh", "Exchange the refresh token for a new access token", runRefresh},
	"phone":    {"phone send PHONE | verify CODE | status | reset", "Phone verification", runPhone},
	"products": {"products [-category C] [-search Q] [-price P] [-sort S] [-page N]", "Browse the catalog", runProducts},
	"product":  {"product ID", "Show a product and whether you own it", runProduct},
	"like":     {"like ID", "Toggle a like on a product", runLike},
	"buy":      {"buy ID [-email E]", "Pay for a product and verify the purchase", runBuy},
	"history":  {"history [-status S] [-sort S] [-page N]", "List purchases", runHistory},
	"dispute":  {"dispute PURCHASE_ID REASON", "Request a refund dispute", runDispute},
	"download": {"download PURCHASE_ID", "Save a purchased archive", runDownload},
	"license":  {"license PURCHASE_ID", "Generate a license key", runLicense},
	"stats":    {"stats", "Show purchase statistics", runStats},
	"reviews":  {"reviews PRODUCT_ID [-page N]", "List reviews and the rating distribution", runReviews},
	"review":   {"review PRODUCT_ID -rating N -comment C | edit REVIEW_ID ... | delete REVIEW_ID", "Write, edit or delete a review", runReview},
	"chat":     {"chat list | open ID | send ID TEXT | image ID PATH | start SELLER_ID [PRODUCT_ID] | delete ID | watch", "Messages with sellers", runChat},
	"seller":   {"seller dashboard | products | sales | analytics | create | update ID | delete ID", "Seller tools", runSeller},
	"admin":    {"admin stats | users | role ID ROLE | delete-user ID | products | status ID S | delete-product ID | sales | disputes | process ID | resolve ID TEXT", "Administration", runAdmin},
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out, errOut io.Writer) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		usage(errOut)
		return 2
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(errOut, "unknown command %q\n\n", args[0])
		usage(errOut)
		return 2
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(errOut, "Failed to load configuration:", err)
		return 1
	}
	logger.Init(cfg.Log)
	gin.SetMode(gin.ReleaseMode)

	// Only a watching chat session polls in the background.
	cfg.Chat.AutoPoll = args[0] == "chat" && len(args) > 1 && args[1] == "watch"

	a, err := app.New(cfg, app.WithNotifier(func(msg string) { fmt.Fprintln(errOut, msg) }))
	if err != nil {
		fmt.Fprintln(errOut, "Failed to start:", err)
		return 1
	}
	defer func() {
		if err := a.Close(); err != nil {
			logrus.WithError(err).Warn("Shutdown error")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Init(ctx); err != nil {
		fmt.Fprintln(errOut, "Failed to restore session:", err)
		return 1
	}

	if err := cmd.run(ctx, a, out, args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(errOut, "usage: vibing", cmd.usage)
			return 2
		}
		fmt.Fprintln(errOut, "Error:", api.Message(err))
		return 1
	}
	return 0
}

var errUsage = errors.New("usage")

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: vibing <command> [arguments]")
	fmt.Fprintln(w)
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-10s %s\n", name, commands[name].summary)
	}
}
