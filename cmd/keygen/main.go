package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/uchat-app/uchat/pkg/sign"
)

func main() {
	app := &cli.App{
		Name:  "keygen",
		Usage: "generate the ed25519 keypair the API uses to sign session ids",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Value:   "private_key.base64",
				Usage:   "file to write the encoded private key to",
			},
			&cli.BoolFlag{
				Name:  "stdout",
				Usage: "print the key instead of writing a file",
			},
		},
		Action: generate,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func generate(c *cli.Context) error {
	encoded, _, err := sign.Generate()
	if err != nil {
		return fmt.Errorf("failed to generate keypair: %w", err)
	}

	if c.Bool("stdout") {
		fmt.Println(encoded)
		return nil
	}

	out := c.String("out")
	if err := os.WriteFile(out, []byte(encoded), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}

	fmt.Printf("Private key written to %s\n", out)
	fmt.Printf("Export it before starting the API:\n\n")
	fmt.Printf("  export API_PRIVATE_KEY=$(cat %s)\n", out)
	return nil
}
