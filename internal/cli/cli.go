// Package cli is the terminal view of the places client.
//
// Each invocation runs one command against the controller:
//
//	mesto signup  -email a@b.com -password secret
//	mesto signin  -email a@b.com -password secret
//	mesto signout
//	mesto status
//	mesto feed
//	mesto like    <card-id>
//	mesto add     -name Sunset -link https://x/y.jpg
//	mesto delete  <card-id>
//	mesto profile -name Marie -about Chemist
//	mesto avatar  <link>
//	mesto show    <card-id>
//
// Commands that need a session restore it from the stored token first, the
// way the browser front-end checks its token on every page load.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/sakif/mesto/internal/app"
	"github.com/sakif/mesto/internal/model"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// errUsage marks a mistake on the command line.
var errUsage = errors.New("usage")

// Controller is what the CLI needs from *app.Controller.
type Controller interface {
	Start(ctx context.Context) error
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context) error
	Register(ctx context.Context, email, password string) error
	Navigate(route app.Route)

	OpenEditProfile()
	OpenEditAvatar()
	OpenAddPlace()
	OpenConfirmDelete(card model.Card)
	OpenImagePreview(card model.Card)
	ClosePopups()

	ToggleLike(ctx context.Context, card model.Card) error
	DeleteCard(ctx context.Context, card model.Card) error
	AddCard(ctx context.Context, name, link string) error
	UpdateProfile(ctx context.Context, name, about string) error
	UpdateAvatar(ctx context.Context, link string) error

	Snapshot() app.State
	Subscribe(fn func(app.State)) (unsubscribe func())
}

// CLI renders controller state to out and errors to errOut.
type CLI struct {
	ctrl   Controller
	out    io.Writer
	errOut io.Writer
}

// New creates a CLI.
func New(ctrl Controller, out, errOut io.Writer) *CLI {
	return &CLI{ctrl: ctrl, out: out, errOut: errOut}
}

type command struct {
	name    string
	usage   string
	session bool // restore the stored session first
	run     func(ctx context.Context, c *CLI, args []string) error
}

var commands = []command{
	{"signup", "-email EMAIL -password PASSWORD", false, runSignup},
	{"signin", "-email EMAIL -password PASSWORD", false, runSignin},
	{"signout", "", false, runSignout},
	{"status", "", true, runStatus},
	{"feed", "", true, runFeed},
	{"like", "CARD_ID", true, runLike},
	{"add", "-name NAME -link URL", true, runAdd},
	{"delete", "CARD_ID", true, runDelete},
	{"profile", "-name NAME -about ABOUT", true, runProfile},
	{"avatar", "URL", true, runAvatar},
	{"show", "CARD_ID", true, runShow},
}

// Run executes args (without the program name) and returns an exit code.
func (c *CLI) Run(ctx context.Context, args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		c.printUsage()
		if len(args) == 0 {
			return ExitUsage
		}
		return ExitOK
	}

	cmd, ok := lookup(args[0])
	if !ok {
		fmt.Fprintf(c.errOut, "unknown command %q\n\n", args[0])
		c.printUsage()
		return ExitUsage
	}

	unsubscribe := c.ctrl.Subscribe(c.tooltipView())
	defer unsubscribe()

	if cmd.session {
		if err := c.ctrl.Start(ctx); err != nil {
			fmt.Fprintf(c.errOut, "session check failed: %v\n", err)
		}
		if c.ctrl.Snapshot().Session != app.Authenticated {
			fmt.Fprintln(c.errOut, "not signed in; run: mesto signin -email EMAIL -password PASSWORD")
			return ExitError
		}
	}

	err := cmd.run(ctx, c, args[1:])
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, errUsage):
		fmt.Fprintf(c.errOut, "usage: mesto %s %s\n", cmd.name, cmd.usage)
		return ExitUsage
	case errors.Is(err, flag.ErrHelp):
		return ExitOK
	default:
		fmt.Fprintf(c.errOut, "error: %v\n", err)
		return ExitError
	}
}

func lookup(name string) (command, bool) {
	for _, cmd := range commands {
		if cmd.name == name {
			return cmd, true
		}
	}
	return command{}, false
}

func (c *CLI) printUsage() {
	fmt.Fprintln(c.errOut, "usage: mesto <command> [arguments]")
	fmt.Fprintln(c.errOut)
	w := tabwriter.NewWriter(c.errOut, 0, 4, 2, ' ', 0)
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %s\t%s\n", cmd.name, cmd.usage)
	}
	w.Flush()
}

// tooltipView prints the sign-up/sign-in notification whenever it opens.
func (c *CLI) tooltipView() func(app.State) {
	var shown bool
	return func(s app.State) {
		tip, ok := s.Popup.(app.PopupInfoTooltip)
		if !ok {
			shown = false
			return
		}
		if shown {
			return
		}
		shown = true
		if tip.Success {
			fmt.Fprintln(c.out, "Success! You have now been registered.")
		} else {
			fmt.Fprintln(c.errOut, "Oops, something went wrong! Please try again.")
		}
	}
}

// newFlags returns a FlagSet that reports errors to the CLI's error output.
func (c *CLI) newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	return fs
}

// oneArg returns the single positional argument of a command.
func oneArg(args []string) (string, error) {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return "", errUsage
	}
	return args[0], nil
}

// cardArg finds the card named by the single positional argument.
func (c *CLI) cardArg(args []string) (model.Card, error) {
	id, err := oneArg(args)
	if err != nil {
		return model.Card{}, err
	}
	card, ok := c.ctrl.Snapshot().CardByID(id)
	if !ok {
		return model.Card{}, fmt.Errorf("no card with id %s in the feed", id)
	}
	return card, nil
}

// credentials parses -email and -password.
func (c *CLI) credentials(name string, args []string) (string, string, error) {
	fs := c.newFlags(name)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return "", "", err
	}
	if *email == "" || *password == "" || fs.NArg() != 0 {
		return "", "", errUsage
	}
	return *email, *password, nil
}
