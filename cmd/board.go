package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"tacly.com/taskboard/internal/board"
	"tacly.com/taskboard/internal/client"
	"tacly.com/taskboard/internal/constants"
	model "tacly.com/taskboard/internal/models"
)

var boardOpts struct {
	server      string
	email       string
	password    string
	googleToken string
	timeout     time.Duration
}

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Work with your task board from the terminal",
}

var boardShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the board columns",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBoard(cmd, func(ctx context.Context, bs *boardSession) error {
			return nil
		})
	},
}

var boardMoveCmd = &cobra.Command{
	Use:   "move <task-id> <ToDo|Doing|Done>",
	Short: "Move a task to another column",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		status := constants.TaskStatus(args[1])
		if !status.Valid() {
			return fmt.Errorf("unknown column %q", args[1])
		}
		return withBoard(cmd, func(ctx context.Context, bs *boardSession) error {
			if _, err := bs.find(args[0]); err != nil {
				return err
			}
			return bs.ctrl.Move(ctx, args[0], status)
		})
	},
}

var boardReorderCmd = &cobra.Command{
	Use:   "reorder <task-id> <target-task-id>",
	Short: "Drop a task onto another task",
	Long: "Drops a task onto another task. Within one column this only changes the order " +
		"shown here, it is not saved. Across columns it moves the task.",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBoard(cmd, func(ctx context.Context, bs *boardSession) error {
			return bs.ctrl.Reorder(ctx, args[0], args[1])
		})
	},
}

// boardSession is a signed-in board loaded from the server.
type boardSession struct {
	client  *client.Client
	session client.Session
	ctrl    *board.Controller
}

func (bs *boardSession) find(taskID string) (model.Task, error) {
	task, ok := bs.ctrl.Board().Find(taskID)
	if !ok {
		return model.Task{}, fmt.Errorf("task %s is not on your board", taskID)
	}
	return task, nil
}

// withBoard signs in, loads the board, runs fn and prints the result.
func withBoard(cmd *cobra.Command, fn func(context.Context, *boardSession) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), boardOpts.timeout)
	defer cancel()

	c := client.New(boardOpts.server, nil)
	session, err := signIn(ctx, c)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	bs := &boardSession{
		client:  c,
		session: session,
		ctrl:    board.NewController(c.Backend(session)),
	}
	if err := bs.ctrl.Refresh(ctx); err != nil {
		return err
	}
	if err := fn(ctx, bs); err != nil {
		return err
	}

	return printBoard(cmd.OutOrStdout(), bs.ctrl.Board())
}

// signIn prefers an identity provider token over email and password.
func signIn(ctx context.Context, c *client.Client) (client.Session, error) {
	if boardOpts.googleToken != "" {
		return c.GoogleLogin(ctx, boardOpts.googleToken)
	}
	if boardOpts.email == "" || boardOpts.password == "" {
		return client.Session{}, errors.New("set --email and --password, or --google-token")
	}
	return c.Login(ctx, boardOpts.email, boardOpts.password)
}

func printBoard(out io.Writer, b board.Board) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, status := range constants.Statuses {
		column := b.Column(status)
		fmt.Fprintf(w, "%s (%d)\n", status.Label(), len(column))
		for _, t := range column {
			fmt.Fprintf(w, "  %s\t%s\t%s\t%d file(s)\n", t.ID, t.Title, t.Priority, len(t.Attachments))
		}
		fmt.Fprintln(w, strings.Repeat("-", 40))
	}
	return w.Flush()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func init() {
	flags := boardCmd.PersistentFlags()
	flags.StringVar(&boardOpts.server, "server", envOr("TASKBOARD_URL", "http://127.0.0.1:5001"), "API base URL")
	flags.StringVar(&boardOpts.email, "email", os.Getenv("TASKBOARD_EMAIL"), "account email")
	flags.StringVar(&boardOpts.password, "password", os.Getenv("TASKBOARD_PASSWORD"), "account password")
	flags.StringVar(&boardOpts.googleToken, "google-token", os.Getenv("TASKBOARD_GOOGLE_TOKEN"), "identity provider ID token, used instead of email and password")
	flags.DurationVar(&boardOpts.timeout, "timeout", 30*time.Second, "request timeout")

	boardCmd.AddCommand(boardShowCmd, boardMoveCmd, boardReorderCmd)
	boardCmd.AddCommand(boardRegisterCmd, boardAddCmd, boardEditCmd, boardDeleteCmd, boardDetachCmd, boardShareCmd)
	rootCmd.AddCommand(boardCmd)
}
