package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/tagtree/internal/model"
	"github.com/nao1215/tagtree/internal/store"
	"github.com/spf13/cobra"
)

// NewTagsCmd creates the tags command and its subcommands.
func NewTagsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Inspect and edit the tag database",
		Long: `Tags reads and edits the tags and relations stored by previous crawls.

Examples:
  # List every stored tag
  tagtree tags list

  # Show a tag with its aliases, parents and descendants
  tagtree tags show Victorian

  # Give a tag a shorthand and a colour
  tagtree tags set Victorian --shorthand vic --colour "#7b3f00"

  # Mark "Victorian Era" as an alias of "Victorian"
  tagtree tags alias add Victorian "Victorian Era"

  # Make "Steampunk" a child of "Victorian"
  tagtree tags link add Victorian Steampunk

  # Delete a tag and all of its links
  tagtree tags delete Steampunk`,
	}

	cmd.AddCommand(newTagsListCmd())
	cmd.AddCommand(newTagsShowCmd())
	cmd.AddCommand(newTagsSetCmd())
	cmd.AddCommand(newTagsDeleteCmd())
	cmd.AddCommand(newLinkCmd("alias", "Manage alias links", "<canonical> <alias>",
		(*store.Store).AddAliasLink, (*store.Store).RemoveAliasLink))
	cmd.AddCommand(newLinkCmd("link", "Manage parent-child links", "<parent> <child>",
		(*store.Store).AddGraphLink, (*store.Store).RemoveGraphLink))

	return cmd
}

// openStore opens the tag database selected by --db. When create is false a
// missing database is reported instead of created.
func openStore(cmd *cobra.Command, create bool) (*store.Store, error) {
	opts := store.DefaultOptions()
	opts.CreateIfNotExists = create

	db, err := store.Open(cmd.Context(), getDBDir(cmd), opts)
	if err != nil {
		if errors.Is(err, store.ErrDatabaseNotFound) {
			return nil, fmt.Errorf("%w (run 'tagtree crawl' first)", err)
		}
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func newTagsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openStore(cmd, false)
			if err != nil {
				return err
			}
			defer db.Close()

			tags, err := db.ListTags(cmd.Context())
			if err != nil {
				return err
			}

			asJSON, err := cmd.Flags().GetBool("json")
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), tags)
			}

			out := cmd.OutOrStdout()
			if len(tags) == 0 {
				fmt.Fprintln(out, "No tags stored.")
				return nil
			}
			for _, t := range tags {
				fmt.Fprintln(out, formatStoredTag(t))
			}
			return nil
		},
	}
	cmd.Flags().BoolP("json", "j", false, "Output in JSON format")
	return cmd
}

// tagDetails is the output of tags show.
type tagDetails struct {
	Tag         store.StoredTag   `json:"tag"`
	Aliases     []store.StoredTag `json:"aliases"`
	Parents     []store.StoredTag `json:"parents"`
	Descendants []store.StoredTag `json:"descendants"`
}

func newTagsShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show a tag with its aliases, parents and descendants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openStore(cmd, false)
			if err != nil {
				return err
			}
			defer db.Close()

			details, err := loadTagDetails(cmd.Context(), db, args[0])
			if err != nil {
				return err
			}

			asJSON, err := cmd.Flags().GetBool("json")
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), details)
			}
			writeTagDetails(cmd.OutOrStdout(), details)
			return nil
		},
	}
	cmd.Flags().BoolP("json", "j", false, "Output in JSON format")
	return cmd
}

func loadTagDetails(ctx context.Context, db *store.Store, name string) (*tagDetails, error) {
	tag, err := db.GetTagByName(ctx, name)
	if err != nil {
		return nil, err
	}

	d := &tagDetails{Tag: *tag}
	if d.Aliases, err = db.Aliases(ctx, tag.ID); err != nil {
		return nil, err
	}
	if d.Parents, err = db.Parents(ctx, tag.ID); err != nil {
		return nil, err
	}
	if d.Descendants, err = db.Children(ctx, tag.ID); err != nil {
		return nil, err
	}
	return d, nil
}

func writeTagDetails(w io.Writer, d *tagDetails) {
	fmt.Fprintln(w, formatStoredTag(d.Tag))
	for _, section := range []struct {
		title string
		tags  []store.StoredTag
	}{
		{"Aliases", d.Aliases},
		{"Parents", d.Parents},
		{"Descendants", d.Descendants},
	} {
		fmt.Fprintf(w, "\n%s (%d):\n", section.title, len(section.tags))
		for _, t := range section.tags {
			fmt.Fprintf(w, "  %s\n", formatStoredTag(t))
		}
	}
}

func newTagsSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <name>",
		Short: "Change the shorthand, colour or hidden flag of a tag",
		Long: `Set changes display attributes of a stored tag. Only the given flags are
changed. Use --colour "" or --shorthand "" to clear a value.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openStore(cmd, false)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := cmd.Context()
			stored, err := db.GetTagByName(ctx, args[0])
			if err != nil {
				return err
			}

			tag, err := applyTagFlags(cmd, stored.Tag)
			if err != nil {
				return err
			}
			if err := db.UpdateTag(ctx, stored.ID, tag); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatStoredTag(store.StoredTag{ID: stored.ID, Tag: tag}))
			return nil
		},
	}
	cmd.Flags().String("shorthand", "", "Short form of the tag")
	cmd.Flags().String("colour", "", "Colour as #RRGGBB or #RRGGBBAA")
	cmd.Flags().Bool("hidden", false, "Hide the tag")
	return cmd
}

// applyTagFlags returns tag with the explicitly given set flags applied.
func applyTagFlags(cmd *cobra.Command, tag model.Tag) (model.Tag, error) {
	flags := cmd.Flags()

	if flags.Changed("shorthand") {
		v, err := flags.GetString("shorthand")
		if err != nil {
			return tag, err
		}
		tag.Shorthand = v
	}
	if flags.Changed("colour") {
		v, err := flags.GetString("colour")
		if err != nil {
			return tag, err
		}
		if v == "" {
			tag.Colour = nil
		} else {
			c, err := model.ParseColour(v)
			if err != nil {
				return tag, err
			}
			tag.Colour = &c
		}
	}
	if flags.Changed("hidden") {
		v, err := flags.GetBool("hidden")
		if err != nil {
			return tag, err
		}
		tag.Hidden = v
	}
	return tag, nil
}

func newTagsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a tag and every link that touches it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openStore(cmd, false)
			if err != nil {
				return err
			}
			defer db.Close()

			tag, err := db.GetTagByName(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := db.DeleteTag(cmd.Context(), tag.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", tag.Name)
			return nil
		},
	}
}

// linkFunc adds or removes a link between two tag ids.
type linkFunc func(db *store.Store, ctx context.Context, from, to int64) (bool, error)

// newLinkCmd builds the add/remove pair for one link table.
func newLinkCmd(use, short, argsUsage string, add, remove linkFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add " + argsUsage,
		Short: "Add a link, creating missing tags",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openStore(cmd, true)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := cmd.Context()
			from, err := db.UpsertTag(ctx, model.Tag{Name: args[0]})
			if err != nil {
				return err
			}
			to, err := db.UpsertTag(ctx, model.Tag{Name: args[1]})
			if err != nil {
				return err
			}

			added, err := add(db, ctx, from, to)
			if err != nil {
				return err
			}
			if !added {
				fmt.Fprintf(cmd.OutOrStdout(), "%s link %s -> %s already exists\n", use, args[0], args[1])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s link %s -> %s\n", use, args[0], args[1])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove " + argsUsage,
		Short: "Remove a link",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openStore(cmd, false)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := cmd.Context()
			from, err := db.GetTagByName(ctx, args[0])
			if err != nil {
				return err
			}
			to, err := db.GetTagByName(ctx, args[1])
			if err != nil {
				return err
			}

			removed, err := remove(db, ctx, from.ID, to.ID)
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("no %s link %s -> %s", use, args[0], args[1])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s link %s -> %s\n", use, args[0], args[1])
			return nil
		},
	})

	return cmd
}

// formatStoredTag renders a tag on one line with its optional attributes.
func formatStoredTag(t store.StoredTag) string {
	var attrs []string
	if t.Shorthand != "" {
		attrs = append(attrs, "shorthand="+t.Shorthand)
	}
	if t.Colour != nil {
		attrs = append(attrs, "colour="+t.Colour.String())
	}
	if t.Hidden {
		attrs = append(attrs, "hidden")
	}
	s := fmt.Sprintf("#%d %s", t.ID, t.Name)
	if len(attrs) > 0 {
		s += " (" + strings.Join(attrs, ", ") + ")"
	}
	return s
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
