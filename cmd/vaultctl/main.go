package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/vaultpass/zkvault/internal/client"
)

const defaultServer = "http://localhost:8080"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "register":
		err = runRegister(ctx, os.Args[2:])
	case "ls":
		err = runLs(ctx, os.Args[2:])
	case "add":
		err = runAdd(ctx, os.Args[2:])
	case "rm":
		err = runRm(ctx, os.Args[2:])
	case "passwd":
		err = runPasswd(ctx, os.Args[2:])
	case "delete-account":
		err = runDeleteAccount(ctx, os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `Usage: vaultctl <command> [flags]

Commands:
  register        create an account
  ls              list and decrypt all entries
  add             add an entry
  rm <id>         delete an entry
  passwd          change the master password and re-encrypt the vault
  delete-account  delete the account and every entry

Common flags:
  -server URL     API base URL (env ZKVAULT_SERVER, default http://localhost:8080)
  -user NAME      account username (env ZKVAULT_USER)
`)
}

type commonFlags struct {
	server *string
	user   *string
}

func newFlagSet(name string) (*flag.FlagSet, commonFlags) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	cf := commonFlags{
		server: fs.String("server", envOr("ZKVAULT_SERVER", defaultServer), "API base URL"),
		user:   fs.String("user", os.Getenv("ZKVAULT_USER"), "account username"),
	}
	return fs, cf
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// login prompts for the master password and opens a session.
func (cf commonFlags) login(ctx context.Context) (*client.Client, string, error) {
	if *cf.user == "" {
		return nil, "", fmt.Errorf("-user is required")
	}
	secret, err := readSecret("Master password: ")
	if err != nil {
		return nil, "", err
	}
	c := client.New(*cf.server)
	if err := c.Login(ctx, *cf.user, secret); err != nil {
		return nil, "", err
	}
	return c, secret, nil
}

func runRegister(ctx context.Context, args []string) error {
	fs, cf := newFlagSet("register")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *cf.user == "" {
		return fmt.Errorf("-user is required")
	}

	secret, err := readNewSecret("New master password: ")
	if err != nil {
		return err
	}
	if err := client.New(*cf.server).Register(ctx, *cf.user, secret); err != nil {
		return err
	}
	fmt.Printf("Account %q created\n", *cf.user)
	return nil
}

func runLs(ctx context.Context, args []string) error {
	fs, cf := newFlagSet("ls")
	reveal := fs.Bool("reveal", false, "print passwords")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, _, err := cf.login(ctx)
	if err != nil {
		return err
	}
	entries, err := c.ListEntries(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tUSERNAME\tLINK\tPASSWORD")
	for _, e := range entries {
		password := "********"
		if *reveal {
			password = deref(e.Password)
		} else if e.Password == nil {
			password = ""
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.ID, deref(e.Name), deref(e.Username), deref(e.Link), password)
	}
	return tw.Flush()
}

func runAdd(ctx context.Context, args []string) error {
	fs, cf := newFlagSet("add")
	name := fs.String("name", "", "entry name")
	link := fs.String("link", "", "site URL")
	username := fs.String("login", "", "site username")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, _, err := cf.login(ctx)
	if err != nil {
		return err
	}
	password, err := readNewSecret("Entry password: ")
	if err != nil {
		return err
	}

	e, err := c.CreateEntry(ctx, client.Entry{
		Name:     name,
		Link:     link,
		Username: username,
		Password: &password,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Entry %s added\n", e.ID)
	return nil
}

func runRm(ctx context.Context, args []string) error {
	fs, cf := newFlagSet("rm")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: vaultctl rm [flags] <id>")
	}

	c, _, err := cf.login(ctx)
	if err != nil {
		return err
	}
	if err := c.DeleteEntry(ctx, fs.Arg(0)); err != nil {
		return err
	}
	fmt.Printf("Entry %s deleted\n", fs.Arg(0))
	return nil
}

func runPasswd(ctx context.Context, args []string) error {
	fs, cf := newFlagSet("passwd")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, oldSecret, err := cf.login(ctx)
	if err != nil {
		return err
	}
	newSecret, err := readNewSecret("New master password: ")
	if err != nil {
		return err
	}
	if err := c.ChangePassword(ctx, oldSecret, newSecret); err != nil {
		return err
	}
	fmt.Println("Master password changed; other sessions are signed out")
	return nil
}

func runDeleteAccount(ctx context.Context, args []string) error {
	fs, cf := newFlagSet("delete-account")
	force := fs.Bool("force", false, "delete without confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, secret, err := cf.login(ctx)
	if err != nil {
		return err
	}
	if !*force {
		fmt.Fprintf(os.Stderr, "Delete account %q and every entry? Type the username to confirm: ", *cf.user)
		var answer string
		fmt.Scanln(&answer)
		if answer != *cf.user {
			return fmt.Errorf("aborted")
		}
	}
	if err := c.DeleteAccount(ctx, secret); err != nil {
		return err
	}
	fmt.Printf("Account %q deleted\n", *cf.user)
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
