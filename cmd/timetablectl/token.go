package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/tutor-timetable-api/internal/models"
	"github.com/noah-isme/tutor-timetable-api/internal/service"
	"github.com/noah-isme/tutor-timetable-api/pkg/config"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an access token signed with JWT_SECRET",
	RunE:  runToken,
}

var (
	tokenUser  string
	tokenEmail string
	tokenRole  string
	tokenTTL   time.Duration
)

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().StringVar(&tokenUser, "user", "operator", "user id placed in the token")
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "email placed in the token")
	tokenCmd.Flags().StringVar(&tokenRole, "role", string(models.RoleAdmin), "ADMIN, TUTOR or VIEWER")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "token lifetime")
}

func runToken(cmd *cobra.Command, args []string) error {
	role := models.UserRole(strings.ToUpper(tokenRole))
	switch role {
	case models.RoleAdmin, models.RoleTutor, models.RoleViewer:
	default:
		return fmt.Errorf("unknown role %q", tokenRole)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	tokens := service.NewTokenService(service.TokenConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})
	token, expires, err := tokens.Issue(tokenUser, tokenEmail, role, tokenTTL)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expires.UTC().Format(time.RFC3339))
	return nil
}
