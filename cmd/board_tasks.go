package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"tacly.com/taskboard/internal/client"
	"tacly.com/taskboard/internal/constants"
	model "tacly.com/taskboard/internal/models"
)

var taskOpts struct {
	title       string
	description string
	status      string
	priority    string
	files       []string
}

var registerOpts struct {
	name string
}

var boardRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account with --email and --password",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if boardOpts.email == "" || boardOpts.password == "" {
			return errors.New("--email and --password are required")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), boardOpts.timeout)
		defer cancel()

		user, err := client.New(boardOpts.server, nil).Register(ctx, registerOpts.name, boardOpts.email, boardOpts.password)
		if err != nil {
			return fmt.Errorf("register: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "registered %s (%s)\n", user.Email, user.ID)
		return nil
	},
}

var boardAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a task, optionally with attachments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBoard(cmd, func(ctx context.Context, bs *boardSession) error {
			files, closeFiles, err := openFiles(taskOpts.files)
			if err != nil {
				return err
			}
			defer closeFiles()

			if _, err := bs.client.CreateTask(ctx, bs.session, client.NewTask{
				Title:       args[0],
				Description: taskOpts.description,
				Status:      taskOpts.status,
				Priority:    taskOpts.priority,
				Files:       files,
			}); err != nil {
				return fmt.Errorf("create task: %w", err)
			}
			return bs.ctrl.Refresh(ctx)
		})
	},
}

var boardEditCmd = &cobra.Command{
	Use:   "edit <task-id>",
	Short: "Change task fields and upload more attachments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBoard(cmd, func(ctx context.Context, bs *boardSession) error {
			task, err := bs.find(args[0])
			if err != nil {
				return err
			}
			applyTaskFlags(cmd, &task)

			files, closeFiles, err := openFiles(taskOpts.files)
			if err != nil {
				return err
			}
			defer closeFiles()

			if _, err := bs.client.UpdateTask(ctx, bs.session, task, files...); err != nil {
				return fmt.Errorf("update task: %w", err)
			}
			return bs.ctrl.Refresh(ctx)
		})
	},
}

var boardDeleteCmd = &cobra.Command{
	Use:   "delete <task-id>",
	Short: "Delete a task and its attachments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBoard(cmd, func(ctx context.Context, bs *boardSession) error {
			if err := bs.client.DeleteTask(ctx, bs.session, args[0]); err != nil {
				return fmt.Errorf("delete task: %w", err)
			}
			return bs.ctrl.Refresh(ctx)
		})
	},
}

var boardDetachCmd = &cobra.Command{
	Use:   "detach <attachment-id>",
	Short: "Remove one attachment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBoard(cmd, func(ctx context.Context, bs *boardSession) error {
			if err := bs.client.DeleteAttachment(ctx, bs.session, args[0]); err != nil {
				return fmt.Errorf("delete attachment: %w", err)
			}
			return bs.ctrl.Refresh(ctx)
		})
	},
}

var boardShareCmd = &cobra.Command{
	Use:   "share <task-id>",
	Short: "Print the public view of a task",
	Long:  "Prints what anyone with the task ID sees. No login is needed.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), boardOpts.timeout)
		defer cancel()

		task, err := client.New(boardOpts.server, nil).GetShared(ctx, args[0])
		if err != nil {
			return fmt.Errorf("get shared task: %w", err)
		}
		return printShared(cmd.OutOrStdout(), task)
	},
}

// applyTaskFlags copies only the flags given on the command line.
func applyTaskFlags(cmd *cobra.Command, task *model.Task) {
	flags := cmd.Flags()
	if flags.Changed("title") {
		task.Title = taskOpts.title
	}
	if flags.Changed("description") {
		task.Description = taskOpts.description
	}
	if flags.Changed("status") {
		task.Status = constants.TaskStatus(taskOpts.status)
	}
	if flags.Changed("priority") {
		task.Priority = constants.TaskPriority(taskOpts.priority)
	}
}

func openFiles(paths []string) ([]client.File, func(), error) {
	var opened []*os.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	files := make([]client.File, 0, len(paths))
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("open attachment: %w", err)
		}
		opened = append(opened, f)
		files = append(files, client.File{Name: filepath.Base(path), Content: f})
	}
	return files, closeAll, nil
}

func printShared(out io.Writer, task *model.SharedTask) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Title:\t%s\n", task.Title)
	fmt.Fprintf(w, "Status:\t%s\n", task.Status.Label())
	fmt.Fprintf(w, "Priority:\t%s\n", task.Priority)
	fmt.Fprintf(w, "Created:\t%s\n", task.CreatedAt.Format("2006-01-02 15:04"))
	if task.Description != "" {
		fmt.Fprintf(w, "Description:\t%s\n", strings.ReplaceAll(task.Description, "\n", " "))
	}
	for _, a := range task.Attachments {
		fmt.Fprintf(w, "Attachment:\t%s\t%s\n", a.FileName, a.FilePath)
	}
	return w.Flush()
}

func init() {
	boardRegisterCmd.Flags().StringVar(&registerOpts.name, "name", "", "display name")
	_ = boardRegisterCmd.MarkFlagRequired("name")

	for _, c := range []*cobra.Command{boardAddCmd, boardEditCmd} {
		flags := c.Flags()
		flags.StringVar(&taskOpts.description, "description", "", "task description")
		flags.StringVar(&taskOpts.status, "status", "", "ToDo, Doing or Done")
		flags.StringVar(&taskOpts.priority, "priority", "", "Low, Medium or High")
		flags.StringArrayVar(&taskOpts.files, "file", nil, "file to attach, repeatable")
	}
	boardEditCmd.Flags().StringVar(&taskOpts.title, "title", "", "task title")
}
