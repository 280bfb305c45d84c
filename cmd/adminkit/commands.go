// ABOUTME: Data commands: seed, reset, list and delete.
// ABOUTME: They drive the same API client and entity manager the console uses.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/2389/adminkit/internal/logging"
	"github.com/2389/adminkit/internal/manager"
	"github.com/2389/adminkit/internal/notify"
	"github.com/2389/adminkit/internal/schema"
	"github.com/2389/adminkit/internal/seed"
	"github.com/2389/adminkit/internal/table"
)

const defaultSeedCount = 8

func newSeedCmd(opts *options) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "seed [entity...]",
		Short: "Seed the API with demo records",
		Long: `Create demo records for every registered entity, or only the named ones.

AI-Powered Generation:
  Set OPENAI_API_KEY to generate realistic records with OpenAI.
  Falls back to static records derived from the field kinds otherwise.

Records go through the entity's API transform and create hook, exactly
like a save from the console.

Note: Seed is not idempotent. Use 'adminkit reset' to clear the demo data first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts.cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			return seedEntities(cmd.Context(), a, args, count)
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", defaultSeedCount, "Records per entity")
	return cmd
}

func seedEntities(ctx context.Context, a *app, slugs []string, count int) error {
	configs, err := entities(slugs)
	if err != nil {
		return err
	}

	gen := seed.NewGenerator(a.cfg.OpenAIKey, a.cfg.OpenAIModel)
	if gen.UsesAI() {
		log.Printf("Seeding with %s...", a.cfg.OpenAIModel)
	} else {
		log.Println("Seeding with static demo data...")
	}

	total := 0
	for _, cfg := range configs {
		records := gen.Generate(ctx, cfg, count)
		n, err := seed.Insert(ctx, a.client, cfg, records)
		total += n
		if err != nil {
			return fmt.Errorf("seed %s: %w", cfg.Key(), err)
		}
		log.Printf("%s: created %d records", cfg.Key(), n)
	}
	log.Printf("\nSeeding complete! Created %d total records", total)
	return nil
}

func newResetCmd(opts *options) *cobra.Command {
	var (
		noSeed bool
		count  int
	)

	cmd := &cobra.Command{
		Use:   "reset [entity...]",
		Short: "Clear the demo collections and reseed them",
		Long: `Delete every record of the demo collections backing the named entities (all
by default), reset their id counters and seed them again.

Only works with the embedded demo API.

Warning: This permanently deletes the demo data!`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !opts.cfg.UseDemoBackend() {
				return errors.New("reset only works with the embedded demo API; unset ADMINKIT_API_URL")
			}
			a, err := newApp(opts.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			configs, err := entities(args)
			if err != nil {
				return err
			}
			for _, cfg := range configs {
				collection := logging.EntityFromPath(cfg.APIEndpoint)
				n, err := a.store.ResetCollection(collection)
				if err != nil {
					return fmt.Errorf("reset %s: %w", collection, err)
				}
				log.Printf("%s: removed %d records", collection, n)
			}
			if noSeed {
				return nil
			}
			return seedEntities(cmd.Context(), a, args, count)
		},
	}
	cmd.Flags().BoolVar(&noSeed, "no-seed", false, "Only clear, do not reseed")
	cmd.Flags().IntVarP(&count, "count", "n", defaultSeedCount, "Records per entity when reseeding")
	return cmd
}

func newListCmd(opts *options) *cobra.Command {
	var (
		page     int
		pageSize int
		search   string
		sortKey  string
	)

	cmd := &cobra.Command{
		Use:   "list <entity>",
		Short: "Print one page of an entity's table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			cfg, err := entityConfig(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			size := pageSize
			if size <= 0 {
				size = a.cfg.PageSize
			}
			m := manager.New(cfg, a.client, manager.WithNotifier(notify.Logger{}), manager.WithPageSize(size))
			switch {
			case search != "":
				m.SetSearch(ctx, search)
			default:
				m.Refresh(ctx)
			}
			if page > 1 {
				m.SetPage(ctx, page)
			}
			if sortKey != "" {
				m.ToggleSort(sortKey)
			}

			writeTable(cmd.OutOrStdout(), cfg, m.Snapshot())
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "Rows per page (default $ADMINKIT_PAGE_SIZE)")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Search term")
	cmd.Flags().StringVar(&sortKey, "sort", "", "Sort the page by this column key")
	return cmd
}

// writeTable prints rows as aligned plain-text columns.
func writeTable(out io.Writer, cfg *schema.EntityConfig, st manager.State) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	headers := []string{"ID"}
	for _, col := range cfg.Columns {
		headers = append(headers, strings.ToUpper(col.Label))
	}
	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	for _, row := range st.Rows {
		id, _ := row.ID()
		cells := []string{id}
		for _, col := range cfg.Columns {
			value, _ := schema.Lookup(row, col.Key)
			cells = append(cells, table.FormatCell(value))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	tw.Flush()

	fmt.Fprintf(out, "\nPage %d of %d (%d %s)\n", st.Page, st.Pages, st.Total, strings.ToLower(cfg.PluralName()))
}

func newDeleteCmd(opts *options) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <entity> <id>...",
		Short: "Delete records through the entity's delete hooks",
		Long: `Delete one or more records. The entity's before-delete hook may veto a
record (for example an active product); vetoed records are skipped.

Asks for confirmation unless --yes is given.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			cfg, err := entityConfig(args[0])
			if err != nil {
				return err
			}

			var confirmer notify.Confirmer = notify.Prompt{}
			if yes {
				confirmer = notify.Always
			}
			m := manager.New(cfg, a.client,
				manager.WithNotifier(notify.Logger{}),
				manager.WithConfirmer(confirmer),
				manager.WithPageSize(100),
			)
			m.Refresh(cmd.Context())

			return deleteRecords(cmd.Context(), m, args[1:])
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// deleteRecords deletes one id directly, or several as one bulk delete when
// the entity supports selection.
func deleteRecords(ctx context.Context, m *manager.Manager, ids []string) error {
	if len(ids) == 1 || !m.Config().Caps().Selectable {
		for _, id := range ids {
			if err := m.Delete(ctx, id); err != nil && !errors.Is(err, manager.ErrVetoed) {
				return err
			}
		}
		return nil
	}

	m.ClearSelection()
	for _, id := range ids {
		m.ToggleSelect(id)
	}
	if _, err := m.DeleteSelected(ctx); err != nil && !errors.Is(err, manager.ErrVetoed) {
		return err
	}
	return nil
}

func entityConfig(slug string) (*schema.EntityConfig, error) {
	configs, err := entities([]string{slug})
	if err != nil {
		return nil, err
	}
	return configs[0], nil
}
