package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"times-go/internal/app"
	"times-go/internal/config"
	"times-go/internal/times"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and opens the configured store. The caller must
// defer Close. operation names the command in the log.
func newApp(ctx context.Context, operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}
	cfg, err := config.ReadFromFile(defaults.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	a, err := app.NewApp(ctx, cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

func parseID(s, what string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s id %q", what, s)
	}
	return id, nil
}

// readPassphrase prompts on the terminal without echo. With confirm set the
// passphrase must be typed twice.
func readPassphrase(prompt string, confirm bool) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("a terminal is required to read the passphrase")
	}

	fmt.Fprint(os.Stderr, prompt)
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	if !confirm {
		return string(first), nil
	}

	fmt.Fprint(os.Stderr, "Repeat passphrase: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	if string(first) != string(second) {
		return "", fmt.Errorf("passphrases do not match")
	}
	return string(first), nil
}

var rootCmd = &cobra.Command{
	Use:          "times",
	Short:        "Personal record keeping: times, posts and todos",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("getting defaults: %w", err)
		}

		cfg, err := app.InitConfig(defaults, times.UUIDGenerator{})
		if err != nil {
			return err
		}

		fmt.Printf("Configuration initialized at %s\n", defaults.ConfigPath)
		fmt.Printf("Instance ID: %s\n", cfg.InstanceID)
		fmt.Printf("Base Dir:    %s\n", cfg.BaseDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("getting defaults: %w", err)
		}
		cfg, err := config.ReadFromFile(defaults.ConfigPath)
		if err != nil {
			return err
		}

		fmt.Printf("Configuration from %s:\n\n", defaults.ConfigPath)
		fmt.Printf("Instance ID: %s\n", cfg.InstanceID)
		fmt.Printf("Base Dir:    %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:     %s\n", cfg.LogDir)
		fmt.Printf("Store:       %s", cfg.Store.Type)
		switch cfg.Store.Type {
		case "embedded":
			fmt.Printf(" (%s at %s)", cfg.Store.Engine, cfg.Store.Path)
		case "remote":
			fmt.Printf(" (%s)", cfg.Store.Address)
		}
		fmt.Println()
		for _, v := range cfg.Vaults {
			fmt.Printf("Vault:       %s (%s)\n", v.Name, v.Type)
		}
		return nil
	},
}

// encryption command
var encryptionCmd = &cobra.Command{
	Use:   "encryption",
	Short: "Manage snapshot encryption",
}

var encryptionSetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Generate the snapshot key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		passphrase, err := readPassphrase("New passphrase: ", true)
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), "SetupEncryption")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.SetupEncryption(passphrase); err != nil {
			return err
		}
		fmt.Println("Encryption keys generated. Keep the passphrase safe: snapshots cannot be restored without it.")
		return nil
	},
}

// times command
var timesCmd = &cobra.Command{
	Use:   "times",
	Short: "Manage times",
}

var timesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List times",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "ListTimes")
		if err != nil {
			return err
		}
		defer a.Close()

		list, err := a.ListTimes(cmd.Context())
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("No times yet.")
			return nil
		}
		for _, t := range list {
			fmt.Printf("%4d  %s  %s\n", t.ID, t.CreatedAt.Local().Format("2006-01-02 15:04"), t.Title)
		}
		return nil
	},
}

var timesCreateCmd = &cobra.Command{
	Use:   "create TITLE",
	Short: "Create a times",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "CreateTimes")
		if err != nil {
			return err
		}
		defer a.Close()

		t, err := a.CreateTimes(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Created times %d: %s\n", t.ID, t.Title)
		return nil
	},
}

var timesRenameCmd = &cobra.Command{
	Use:   "rename TID TITLE",
	Short: "Rename a times",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tid, err := parseID(args[0], "times")
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), "RenameTimes")
		if err != nil {
			return err
		}
		defer a.Close()

		t, err := a.RenameTimes(cmd.Context(), tid, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Renamed times %d to %s\n", t.ID, t.Title)
		return nil
	},
}

// post command
var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Manage posts",
}

var postAddCmd = &cobra.Command{
	Use:   "add TID TEXT",
	Short: "Add a post",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		attach, _ := cmd.Flags().GetString("attach")
		tid, err := parseID(args[0], "times")
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), "AddPost")
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := a.AddPost(cmd.Context(), tid, args[1], attach)
		if err != nil {
			return err
		}
		fmt.Printf("Posted %d\n", p.ID)
		return nil
	},
}

var postListCmd = &cobra.Command{
	Use:   "list TID",
	Short: "List posts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tid, err := parseID(args[0], "times")
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), "ListPosts")
		if err != nil {
			return err
		}
		defer a.Close()

		posts, err := a.ListPosts(cmd.Context(), tid)
		if err != nil {
			return err
		}
		if len(posts) == 0 {
			fmt.Println("No posts.")
			return nil
		}
		for _, p := range posts {
			attachment := ""
			if p.File != nil {
				attachment = fmt.Sprintf("  [%s %s, %d bytes]", p.File.Kind, p.File.Name, len(p.File.Data))
			}
			fmt.Printf("%4d  %s  %s%s\n", p.ID, p.CreatedAt.Local().Format("2006-01-02 15:04"), p.Text, attachment)
		}
		return nil
	},
}

// todo command
var todoCmd = &cobra.Command{
	Use:   "todo",
	Short: "Manage todos",
}

var todoAddCmd = &cobra.Command{
	Use:   "add TID CONTENT",
	Short: "Add a todo",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tid, err := parseID(args[0], "times")
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), "AddTodo")
		if err != nil {
			return err
		}
		defer a.Close()

		td, err := a.AddTodo(cmd.Context(), tid, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Added todo %d\n", td.ID)
		return nil
	},
}

var todoListCmd = &cobra.Command{
	Use:   "list TID",
	Short: "List todos",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tid, err := parseID(args[0], "times")
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), "ListTodos")
		if err != nil {
			return err
		}
		defer a.Close()

		todos, err := a.ListTodos(cmd.Context(), tid)
		if err != nil {
			return err
		}
		if len(todos) == 0 {
			fmt.Println("No todos.")
			return nil
		}
		for _, td := range todos {
			mark := " "
			if td.DoneAt != nil {
				mark = "x"
			}
			fmt.Printf("%4d  [%s] %s\n", td.ID, mark, td.Content)
		}
		return nil
	},
}

func todoStateCmd(use, short, operation string, done bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " TID TDID",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tid, err := parseID(args[0], "times")
			if err != nil {
				return err
			}
			tdid, err := parseID(args[1], "todo")
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), operation)
			if err != nil {
				return err
			}
			defer a.Close()

			td, err := a.SetTodoDone(cmd.Context(), tid, tdid, done)
			if err != nil {
				return err
			}
			fmt.Printf("Todo %d is %s\n", td.ID, td.State())
			return nil
		},
	}
}

// serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the configured store to remote clients",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "Serve")
		if err != nil {
			return err
		}
		defer a.Close()

		return a.Serve(cmd.Context())
	},
}

// backup command
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Upload an encrypted snapshot of the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "Backup")
		if err != nil {
			return err
		}
		defer a.Close()

		version, err := a.Backup(cmd.Context())
		if err != nil {
			return fmt.Errorf("backup failed: %w", err)
		}
		fmt.Printf("Snapshot uploaded (version %d)\n", version)
		return nil
	},
}

// restore command
var restoreCmd = &cobra.Command{
	Use:   "restore TARGET",
	Short: "Download and decrypt the latest snapshot into TARGET",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		passphrase, err := readPassphrase("Passphrase: ", false)
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), "Restore")
		if err != nil {
			return err
		}
		defer a.Close()

		version, err := a.Restore(cmd.Context(), passphrase, args[0])
		if err != nil {
			return fmt.Errorf("restore failed: %w", err)
		}
		fmt.Printf("Restored snapshot version %d to %s\n", version, args[0])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	encryptionCmd.AddCommand(encryptionSetupCmd)

	timesCmd.AddCommand(timesListCmd)
	timesCmd.AddCommand(timesCreateCmd)
	timesCmd.AddCommand(timesRenameCmd)

	postCmd.AddCommand(postAddCmd)
	postAddCmd.Flags().StringP("attach", "a", "", "Attach a file to the post")
	postCmd.AddCommand(postListCmd)

	todoCmd.AddCommand(todoAddCmd)
	todoCmd.AddCommand(todoListCmd)
	todoCmd.AddCommand(todoStateCmd("done", "Mark a todo done", "DoneTodo", true))
	todoCmd.AddCommand(todoStateCmd("undo", "Mark a todo pending again", "UndoTodo", false))

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(encryptionCmd)
	rootCmd.AddCommand(timesCmd)
	rootCmd.AddCommand(postCmd)
	rootCmd.AddCommand(todoCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
}
