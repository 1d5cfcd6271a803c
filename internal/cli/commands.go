package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"wikitrans/internal/bootstrap"
	"wikitrans/internal/domain"
	"wikitrans/internal/usecase/importer"
	"wikitrans/internal/usecase/syncer"
)

// ErrCommitFailures is returned by push when at least one record was not
// saved.
var ErrCommitFailures = errors.New("some sentences were not saved")

func newLoginCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the backend and store the token",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVarP(&e.flags.Username, "username", "u", "", "Account name")
	cmd.Flags().StringVarP(&e.flags.Password, "password", "p", "", "Password (read from stdin when empty)")
	_ = cmd.MarkFlagRequired("username")
	cmd.RunE = e.with(func(cmd *cobra.Command, args []string, svc *bootstrap.Services) error {
		password := e.flags.Password
		if password == "" {
			fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				return err
			}
			password = strings.TrimRight(line, "\r\n")
		}
		if _, err := svc.Session.Login(cmd.Context(), e.flags.Username, password); err != nil {
			return fmt.Errorf("login: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", e.flags.Username)
		return nil
	})
	return cmd
}

func newLogoutCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token",
		Args:  cobra.NoArgs,
		RunE: e.with(func(cmd *cobra.Command, args []string, svc *bootstrap.Services) error {
			if err := svc.Session.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		}),
	}
}

func newPushCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push <project>",
		Short: "Apply edits from a CSV or JSON file and commit them",
		Long: `push loads the project's sentences, applies every edit in the file by
sentence ID and commits the changed sentences. It exits non-zero when any
sentence was not saved.`,
		Args: cobra.ExactArgs(1),
	}
	cmd.Flags().StringVarP(&e.flags.File, "file", "f", "", "Edits file (.csv or .json)")
	cmd.Flags().StringVar(&e.flags.EditFormat, "format", "", "Edits format (default: from the file extension)")
	_ = cmd.MarkFlagRequired("file")
	cmd.RunE = e.with(func(cmd *cobra.Command, args []string, svc *bootstrap.Services) error {
		ctx := cmd.Context()
		content, err := os.ReadFile(e.flags.File)
		if err != nil {
			return err
		}
		vm := svc.NewEditor()
		if err := vm.Open(ctx, args[0]); err != nil {
			return err
		}
		res, err := svc.Importer.Import(ctx, vm.Buffer(), importer.ImportArgs{
			Filename: filepath.Base(e.flags.File),
			Format:   formatOf(e.flags.EditFormat, e.flags.File),
			Content:  content,
		})
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Applied %d edits\n", res.Applied)
		for _, id := range res.Unknown {
			fmt.Fprintf(out, "  skipped #%d: not in project\n", id)
		}
		report, err := vm.Commit(ctx)
		if err != nil {
			return err
		}
		printReport(out, report)
		if report.HasFailures() || len(report.Unauthorized) > 0 {
			return ErrCommitFailures
		}
		return nil
	})
	return cmd
}

func newExportCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <project>",
		Short: "Export the project's sentence pairs",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().StringVar(&e.flags.Format, "format", e.flags.Format, "Output format: csv or json")
	cmd.Flags().StringVarP(&e.flags.Out, "out", "o", "", "Output file (default: stdout)")
	cmd.RunE = e.with(func(cmd *cobra.Command, args []string, svc *bootstrap.Services) error {
		vm := svc.NewEditor()
		if err := vm.Open(cmd.Context(), args[0]); err != nil {
			return err
		}
		res, err := svc.Exporter.Export(vm.Buffer(), e.flags.Format)
		if err != nil {
			return err
		}
		if e.flags.Out == "" {
			_, err = cmd.OutOrStdout().Write(res.Content)
			return err
		}
		if err := os.WriteFile(e.flags.Out, res.Content, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", e.flags.Out)
		return nil
	})
	return cmd
}

func newHistoryCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [commit-id]",
		Short: "List recent commits, or the sentences of one commit",
		Args:  cobra.MaximumNArgs(1),
	}
	cmd.Flags().IntVarP(&e.flags.Limit, "limit", "n", e.flags.Limit, "Number of commits to list")
	cmd.RunE = e.with(func(cmd *cobra.Command, args []string, svc *bootstrap.Services) error {
		ctx := cmd.Context()
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		defer w.Flush()
		if len(args) == 1 {
			items, err := svc.Journal.ListItems(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(w, "SENTENCE\tSTATUS\tERROR")
			for _, it := range items {
				fmt.Fprintf(w, "%d\t%s\t%s\n", it.SentenceID, it.Status, it.Error)
			}
			return nil
		}
		entries, err := svc.Journal.List(ctx, e.flags.Limit)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "ID\tPROJECT\tSTATUS\tOK\tFAILED\tSTARTED")
		for _, c := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n", c.ID, c.ProjectID, c.Status, c.Succeeded, c.Failed, c.StartedAt.Local().Format(time.DateTime))
		}
		return nil
	})
	return cmd
}

func printReport(w io.Writer, r *domain.CommitReport) {
	fmt.Fprintln(w, syncer.Summary(r))
	for _, f := range r.Failed {
		fmt.Fprintf(w, "  #%d: %s\n", f.SentenceID, f.Reason)
	}
	if len(r.Unauthorized) > 0 {
		fmt.Fprintln(w, "  session expired; run `wikitrans login` and push again")
	}
}

// formatOf prefers an explicit format and falls back to the file extension.
func formatOf(explicit, path string) string {
	if explicit != "" {
		return strings.ToLower(explicit)
	}
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}
