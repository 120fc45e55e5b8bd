package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"flightdesk-service/internal/domain/entity"
	"flightdesk-service/internal/infrastructure/config"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "flightdesk",
		Short:        "Browse and maintain flight bookings",
		SilenceUsage: true,
	}
	root.AddCommand(
		newListCommand(),
		newShowCommand(),
		newCreateCommand(),
		newDeleteCommand(),
		newServeCommand(),
	)
	return root
}

func newListCommand() *cobra.Command {
	var carrid, bookid string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bookings, optionally filtered by carrier and booking id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			col, err := s.load(ctx)
			if err != nil {
				return err
			}

			view := entity.FlightBookingView()
			predicate := entity.NewFilterPredicate(map[string]string{
				entity.FieldCarrid: carrid,
				entity.FieldBookid: bookid,
			}, view.FilterFields)
			if !predicate.IsEmpty() && len(col) > 0 {
				if err := s.ctrl.ApplyFilter(predicate); err != nil {
					return err
				}
				e, err := s.waitFor(ctx, "filtered")
				if err != nil {
					return err
				}
				col = e.collection
			}

			return printCollection(cmd.OutOrStdout(), view.CreateFields, col)
		},
	}
	cmd.Flags().StringVar(&carrid, "carrid", "", "carrier id substring")
	cmd.Flags().StringVar(&bookid, "bookid", "", "booking id substring")
	return cmd
}

func newShowCommand() *cobra.Command {
	var related string
	cmd := &cobra.Command{
		Use:   "show INDEX",
		Short: "Show one booking by its position in the list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid index %q: %w", args[0], err)
			}

			ctx := cmd.Context()
			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			if _, err := s.load(ctx); err != nil {
				return err
			}
			record, err := s.ctrl.Detail(ctx, index)
			if err != nil {
				return err
			}

			if related != "" {
				col, err := s.loadRelated(ctx, record, related)
				if err != nil {
					return err
				}
				var columns []string
				if len(col) > 0 {
					columns = col[0].Names()
				}
				return printCollection(cmd.OutOrStdout(), columns, col)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, f := range record.Fields() {
				fmt.Fprintf(w, "%s:\t%s\n", f.Name, f.Value)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&related, "related", "", "list the set reached through this navigation property instead")
	return cmd
}

func newCreateCommand() *cobra.Command {
	values := make(map[string]*string)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a booking",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			draft := entity.FormDraft{}
			for name, v := range values {
				if *v != "" {
					draft[name] = *v
				}
			}

			ctx := cmd.Context()
			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.ctrl.SubmitCreate(draft); err != nil {
				return err
			}
			if _, err := s.waitFor(ctx, "formCleared"); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Record inserted")
			return nil
		},
	}
	for _, name := range entity.FlightBookingView().CreateFields {
		values[name] = cmd.Flags().String(flagName(name), "", name)
	}
	return cmd
}

func newDeleteCommand() *cobra.Command {
	values := make(map[string]*string)
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a booking by its key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			view := entity.FlightBookingView()
			var fields []entity.Field
			for _, name := range view.KeyFields {
				fields = append(fields, entity.Field{Name: name, Value: *values[name]})
			}
			record := entity.NewRecord(fields...)
			if _, err := view.BuildKey(record); err != nil {
				return err
			}

			ctx := cmd.Context()
			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.ctrl.RequestDelete(record); err != nil {
				return err
			}

			if !yes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Are you sure you want to delete?") {
				s.ctrl.CancelDelete()
				fmt.Fprintln(cmd.OutOrStdout(), "Delete cancelled")
				return nil
			}

			if err := s.ctrl.ConfirmDelete(record); err != nil {
				return err
			}
			// a successful delete reloads the collection
			e, err := s.waitFor(ctx, "collection", "fault")
			if err != nil {
				return err
			}
			return reportDelete(cmd.OutOrStdout(), e)
		},
	}
	for _, name := range entity.FlightBookingView().KeyFields {
		values[name] = cmd.Flags().String(flagName(name), "", name)
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}

func newServeCommand() *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Keep the booking list loaded and expose metrics and a health check",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}

			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			// Reload the list in a goroutine
			go func() {
				ticker := time.NewTicker(interval)
				defer ticker.Stop()
				for {
					if col, err := s.load(ctx); err != nil {
						s.log.Error("Reload failed", "error", err)
					} else {
						s.log.Info("Booking list reloaded", "count", len(col))
					}

					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
					}
				}
			}()

			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("Healthy"))
			})

			server := &http.Server{
				Addr:         ":" + cfg.MetricsPort,
				Handler:      mux,
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 30 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				s.log.Info("Starting HTTP server", "port", cfg.MetricsPort, "version", cfg.AppVersion)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			select {
			case <-ctx.Done():
				s.log.Info("Shutting down")
			case err := <-errCh:
				return fmt.Errorf("HTTP server error: %w", err)
			}

			// Graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				s.log.Error("HTTP server shutdown error", "error", err)
			}
			s.log.Info("Flightdesk stopped")
			return nil
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 30*time.Second, "reload interval")
	return cmd
}

// reportDelete tells a failed delete apart from a failed reload after a
// successful delete
func reportDelete(out io.Writer, e sessionEvent) error {
	if e.kind != "fault" {
		fmt.Fprintln(out, "Record deleted")
		return nil
	}
	if e.fault.Op == "load" {
		fmt.Fprintln(out, "Record deleted")
		return fmt.Errorf("reloading bookings failed: %w", e.fault)
	}
	return fmt.Errorf("record delete failed: %w", e.fault)
}

// flagName turns a field name like OrderDate into order-date
func flagName(field string) string {
	var b strings.Builder
	for i, r := range field {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte('-')
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func printCollection(out io.Writer, columns []string, col entity.Collection) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\t"+strings.Join(columns, "\t"))
	for i, r := range col {
		row := make([]string, len(columns))
		for j, name := range columns {
			row[j], _ = r.Get(name)
		}
		fmt.Fprintf(w, "%d\t%s\n", i, strings.Join(row, "\t"))
	}
	return w.Flush()
}
