package main

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/phrazzld/certs-api/internal/config"
	"github.com/phrazzld/certs-api/internal/service/auth"
)

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Print a signed bearer token for local testing",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "user",
				Usage: "User `ID` to put in the token subject (random when empty)",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			return generateToken(c.Context, cfg.Auth, c.String("user"), c.App.Writer)
		},
	}
}

// generateToken signs a token for userID and writes it to w.
func generateToken(ctx context.Context, cfg config.AuthConfig, userID string, w io.Writer) error {
	id := uuid.New()
	if userID != "" {
		parsed, err := uuid.Parse(userID)
		if err != nil {
			return fmt.Errorf("invalid user id %q: %w", userID, err)
		}
		id = parsed
	}

	jwtService, err := auth.NewJWTService(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	token, err := jwtService.GenerateToken(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	_, err = fmt.Fprintln(w, token)
	return err
}
