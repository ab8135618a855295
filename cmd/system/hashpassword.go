package system

import (
	"bufio"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/studio_backend/config"
	"github.com/Alijeyrad/studio_backend/pkg/util/password"
)

func NewHashPasswordCommand() *cobra.Command {
	var generate int

	cmd := &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print an argon2id hash for admin.password_hash",
		Long: `Hash an admin password with the configured argon2id parameters.

The password is taken from the first argument, or read from stdin when no argument is given.
With --generate N a random password of N characters is created and printed alongside its hash.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
			if err != nil {
				return fmt.Errorf("failed to get config flag: %w", err)
			}
			cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}

			var pw string
			switch {
			case generate > 0:
				pw, err = password.Generate(generate)
				if err != nil {
					return fmt.Errorf("failed to generate password: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "password:", pw)
			case len(args) == 1:
				pw = args[0]
			default:
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("failed to read password from stdin: %w", err)
				}
				pw = strings.TrimRight(line, "\r\n")
			}
			if pw == "" {
				return fmt.Errorf("password must not be empty")
			}

			hash, err := password.NewHasher(password.FromCentralConfig(cfg.Password)).Hash(pw)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}

	cmd.Flags().IntVar(&generate, "generate", 0, "generate a random password of this length instead of reading one")

	return cmd
}
