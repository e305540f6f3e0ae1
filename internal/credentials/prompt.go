package credentials

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// PromptLogin fills in missing username/password interactively. The password
// is read without echo when stdin is a terminal.
func PromptLogin(cfg *Config) error {
	reader := bufio.NewReader(os.Stdin)

	if cfg.Username == "" {
		fmt.Print("OLI Cloud username: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read username: %w", err)
		}
		cfg.Username = strings.TrimSpace(line)
	}

	if cfg.Password == "" {
		fmt.Print("OLI Cloud password: ")
		fd := int(os.Stdin.Fd())
		if term.IsTerminal(fd) {
			pw, err := term.ReadPassword(fd)
			fmt.Println()
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			cfg.Password = string(pw)
		} else {
			line, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			cfg.Password = strings.TrimSpace(line)
		}
	}

	return nil
}
