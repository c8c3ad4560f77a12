// Package ctl implements crmctl, the operator command line for the CRM
// server: minting access tokens and working with the field cipher outside
// the server.
package ctl

import (
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/crmkeeper/internal/cryptox"
	"github.com/dmitrijs2005/crmkeeper/internal/server/auth"
	"github.com/joho/godotenv"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// ErrUsage is returned for malformed command lines.
var ErrUsage = errors.New("usage error")

const usage = `usage: crmctl <command> [flags]

commands:
  token     mint an access token
  verifier  print the key verifier of a cipher secret
  decrypt   decrypt stored field values
  secret    generate a random secret or salt
`

type App struct {
	out    io.Writer
	errOut io.Writer
	getenv func(string) string
}

func NewApp(out, errOut io.Writer) *App {
	_ = godotenv.Load()
	return &App{out: out, errOut: errOut, getenv: os.Getenv}
}

// Run executes one command and returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	if err := a.run(ctx, args); err != nil {
		fmt.Fprintln(a.errOut, "error:", err)
		if errors.Is(err, ErrUsage) {
			fmt.Fprint(a.errOut, usage)
			return 2
		}
		return 1
	}
	return 0
}

func (a *App) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "token":
		return a.token(ctx, rest)
	case "verifier":
		return a.verifier(ctx, rest)
	case "decrypt":
		return a.decrypt(ctx, rest)
	case "secret":
		return a.randomSecret(ctx, rest)
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return nil
	}
	return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
}

func (a *App) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

// secret returns the value of env, prompting on the terminal when unset.
func (a *App) secret(env, prompt string) ([]byte, error) {
	if v := a.getenv(env); v != "" {
		return []byte(v), nil
	}
	if _, err := fmt.Fprint(a.errOut, prompt+": "); err != nil {
		return nil, err
	}
	v, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(a.errOut)
	if err != nil {
		return nil, err
	}
	if len(v) == 0 {
		return nil, fmt.Errorf("%w: empty %s", ErrUsage, strings.ToLower(prompt))
	}
	return v, nil
}

func (a *App) token(_ context.Context, args []string) error {
	fs := a.flagSet("token")
	user := fs.String("user", "", "user id")
	org := fs.String("org", "", "organization id")
	email := fs.String("email", "", "user email, recorded as modifier in the audit trail")
	ttl := fs.Duration("ttl", 15*time.Minute, "token validity")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if *user == "" || *org == "" {
		return fmt.Errorf("%w: -user and -org are required", ErrUsage)
	}

	secret, err := a.secret("CRM_JWT_SECRET", "JWT secret")
	if err != nil {
		return err
	}

	defer cryptox.Wipe(secret)

	tok, err := auth.GenerateToken(*user, *org, *email, secret, *ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, tok)
	return nil
}

func (a *App) cipherFlags(name string) (*flag.FlagSet, *string) {
	fs := a.flagSet(name)
	salt := fs.String("salt", a.getenv("CRM_CIPHER_SALT"), "cipher salt")
	return fs, salt
}

func (a *App) verifier(_ context.Context, args []string) error {
	fs, salt := a.cipherFlags("verifier")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if *salt == "" {
		return fmt.Errorf("%w: -salt is required", ErrUsage)
	}

	secret, err := a.secret("CRM_CIPHER_SECRET", "Cipher secret")
	if err != nil {
		return err
	}

	defer cryptox.Wipe(secret)

	_, v, err := cryptox.NewFieldCipherFromSecret(string(secret), *salt)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, hex.EncodeToString(v))
	return nil
}

func (a *App) decrypt(_ context.Context, args []string) error {
	fs, salt := a.cipherFlags("decrypt")
	lenient := fs.Bool("lenient", false, "print undecryptable values as stored instead of failing")
	expect := fs.String("verifier", a.getenv("CRM_CIPHER_VERIFIER"), "expected key verifier (hex)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if *salt == "" || fs.NArg() == 0 {
		return fmt.Errorf("%w: -salt and at least one value are required", ErrUsage)
	}

	secret, err := a.secret("CRM_CIPHER_SECRET", "Cipher secret")
	if err != nil {
		return err
	}

	defer cryptox.Wipe(secret)

	c, v, err := cryptox.NewFieldCipherFromSecret(string(secret), *salt)
	if err != nil {
		return err
	}
	if *expect != "" && *expect != hex.EncodeToString(v) {
		return errors.New("cipher secret does not match verifier")
	}

	for _, value := range fs.Args() {
		if *lenient {
			fmt.Fprintln(a.out, c.DecryptOrRaw(value))
			continue
		}
		plain, err := c.Decrypt(value)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, plain)
	}
	return nil
}

func (a *App) randomSecret(_ context.Context, args []string) error {
	fs := a.flagSet("secret")
	size := fs.Int("bytes", 32, "number of random bytes")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if *size < 16 {
		return fmt.Errorf("%w: -bytes must be at least 16", ErrUsage)
	}

	s, err := cryptox.RandomHex(*size)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, s)
	return nil
}
