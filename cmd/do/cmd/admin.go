package cmd

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/cloudly/miniapp/internal/telegram"
)

// HashPasswordCmd prints a bcrypt hash for ADMIN_PASSWORD_HASH.
func HashPasswordCmd() *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH (reads stdin without an argument)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			if len(args) == 1 {
				password = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("failed to read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if password == "" {
				return errors.New("password must not be empty")
			}

			hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(hash))
			return nil
		},
	}

	cmd.Flags().IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	return cmd
}

// InitDataCmd signs a mini app init data payload for local testing of
// POST /api/auth/telegram.
func InitDataCmd() *cobra.Command {
	var (
		token     string
		userID    int64
		firstName string
		username  string
	)

	cmd := &cobra.Command{
		Use:   "initdata",
		Short: "Print signed Telegram init data for a test user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				return errors.New("--token or TELEGRAM_BOT_TOKEN is required")
			}

			user, err := json.Marshal(telegram.UserIdentity{
				ID:        userID,
				FirstName: firstName,
				Username:  username,
			})
			if err != nil {
				return err
			}

			payload := telegram.Encode(map[string]string{
				"user":      string(user),
				"auth_date": strconv.FormatInt(time.Now().Unix(), 10),
			}, token)
			fmt.Fprintln(cmd.OutOrStdout(), payload)
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", envOr("TELEGRAM_BOT_TOKEN", ""), "bot token used to sign the payload")
	cmd.Flags().Int64Var(&userID, "user-id", 1, "telegram user id")
	cmd.Flags().StringVar(&firstName, "first-name", "Test", "first name")
	cmd.Flags().StringVar(&username, "username", "", "username")
	return cmd
}
