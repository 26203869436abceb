package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/theirongolddev/aurion/internal/cli"
	"github.com/theirongolddev/aurion/internal/model"
	"github.com/theirongolddev/aurion/internal/store"
	"github.com/theirongolddev/aurion/internal/tracker"

	"github.com/spf13/cobra"
)

// formFlag maps an `add` flag onto a tracker form field.
type formFlag struct {
	name  string
	field string
	usage string
}

// recordCommand describes the list/add/rm tree for one collection.
type recordCommand struct {
	use        string
	short      string
	collection model.Collection
	flags      []formFlag
	table      func(model.Snapshot) cli.Table
}

func newRecordCmd(rc recordCommand) *cobra.Command {
	parent := &cobra.Command{
		Use:   rc.use,
		Short: rc.short,
		Args:  cobra.NoArgs,
		RunE:  func(cmd *cobra.Command, _ []string) error { return runList(cmd, rc) },
	}

	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List entries in creation order",
		Args:    cobra.NoArgs,
		RunE:    func(cmd *cobra.Command, _ []string) error { return runList(cmd, rc) },
	}

	values := make(map[string]*string, len(rc.flags))
	add := &cobra.Command{
		Use:   "add",
		Short: "Add an entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			form := make(map[string]string, len(values))
			for _, f := range rc.flags {
				if cmd.Flags().Changed(f.name) {
					form[f.field] = *values[f.name]
				}
			}
			return runAdd(cmd, rc.collection, form)
		},
	}
	for _, f := range rc.flags {
		values[f.name] = add.Flags().String(f.name, "", f.usage)
	}

	rm := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete an entry by id or unique id prefix",
		Args:    cobra.ExactArgs(1),
		RunE:    func(cmd *cobra.Command, args []string) error { return runRemove(cmd, rc.collection, args[0]) },
	}

	parent.AddCommand(list, add, rm)
	return parent
}

func withStore(fn func(ctx context.Context, st *store.Store) error) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return fn(ctx, st)
}

func runList(cmd *cobra.Command, rc recordCommand) error {
	return withStore(func(ctx context.Context, st *store.Store) error {
		snap, err := st.List(ctx, rc.collection)
		if err != nil {
			return fmt.Errorf("listing %s: %w", rc.collection, err)
		}

		out := cmd.OutOrStdout()
		if flagJSON {
			return printJSON(out, snap.Records())
		}
		if snap.Len() == 0 {
			fmt.Fprintf(out, "\n  No %s yet.\n", rc.use)
			return nil
		}
		fmt.Fprintln(out)
		fmt.Fprint(out, cli.RenderTable(rc.table(snap)))
		return nil
	})
}

func runAdd(cmd *cobra.Command, c model.Collection, form map[string]string) error {
	rec, err := tracker.FromForm(c, form, appCfg.PartnerRoster(), time.Now())
	if err != nil {
		return err
	}

	return withStore(func(ctx context.Context, st *store.Store) error {
		id, err := st.Create(ctx, rec)
		if err != nil {
			return fmt.Errorf("adding to %s: %w", c, err)
		}
		if flagJSON {
			return printJSON(cmd.OutOrStdout(), map[string]string{"id": id})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  Added %s\n", cli.ShortID(id))
		return nil
	})
}

func runRemove(cmd *cobra.Command, c model.Collection, prefix string) error {
	return withStore(func(ctx context.Context, st *store.Store) error {
		snap, err := st.List(ctx, c)
		if err != nil {
			return fmt.Errorf("listing %s: %w", c, err)
		}
		id, err := resolveID(snap, prefix)
		if err != nil {
			return err
		}

		if !flagYes {
			ok, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(), tracker.MsgConfirmDelete)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "  Cancelled.")
				return nil
			}
		}

		if err := st.Delete(ctx, c, id); err != nil {
			return fmt.Errorf("deleting from %s: %w", c, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  Deleted %s\n", cli.ShortID(id))
		return nil
	})
}

// resolveID finds the single record whose id starts with prefix.
func resolveID(snap model.Snapshot, prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", errors.New("empty id")
	}

	var matches []string
	for _, id := range snapshotIDs(snap) {
		if id == prefix {
			return id, nil
		}
		if strings.HasPrefix(id, prefix) {
			matches = append(matches, id)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no %s entry matches %q: %w", snap.Collection, prefix, store.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("id prefix %q matches %d %s entries", prefix, len(matches), snap.Collection)
	}
}

func snapshotIDs(snap model.Snapshot) []string {
	ids := make([]string, 0, snap.Len())
	for _, p := range snap.Projects {
		ids = append(ids, p.ID)
	}
	for _, c := range snap.Costs {
		ids = append(ids, c.ID)
	}
	for _, w := range snap.WorkAttributions {
		ids = append(ids, w.ID)
	}
	for _, e := range snap.Expenses {
		ids = append(ids, e.ID)
	}
	return ids
}

// confirm asks a yes/no question on out and reads the answer from in.
// Anything but y or yes declines.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "  %s [y/N] ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("reading answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
