package main

import (
	"time"

	"github.com/parlgraph/parlgraph/engine/domain"
	"github.com/parlgraph/parlgraph/engine/service"
	"github.com/spf13/cobra"
)

func scorecardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scorecard <legislator-id>",
		Short: "Compute a legislator's accountability scorecard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.call(cmd, service.OpScorecard, service.IDRequest{ID: args[0]})
		},
	}
}

func legislatorsCmd(a *app) *cobra.Command {
	var f domain.LegislatorFilter
	cmd := &cobra.Command{
		Use:   "legislators [text]",
		Short: "Search legislators",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				f.Text = args[0]
			}
			return a.call(cmd, service.OpSearchLegislators, f)
		},
	}
	cmd.Flags().StringVar(&f.Party, "party", "", "Party code")
	cmd.Flags().BoolVar(&f.CurrentOnly, "current", false, "Only sitting members")
	cmd.Flags().BoolVar(&f.CabinetOnly, "cabinet", false, "Only cabinet members")
	pageFlags(cmd, &f.Page)
	return cmd
}

func billsCmd(a *app) *cobra.Command {
	var (
		f        domain.BillFilter
		from, to string
	)
	cmd := &cobra.Command{
		Use:   "bills [text]",
		Short: "Search bills, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				f.Text = args[0]
			}
			var err error
			if f.Introduced, err = dateRange(from, to); err != nil {
				return err
			}
			return a.call(cmd, service.OpSearchBills, f)
		},
	}
	cmd.Flags().StringVar(&f.Status, "status", "", "Bill status, e.g. Passed")
	cmd.Flags().StringVar(&f.Session, "session", "", "Parliamentary session, e.g. 44-1")
	cmd.Flags().StringVar(&f.Type, "type", "", "government or private")
	cmd.Flags().StringVar(&f.Chamber, "chamber", "", "Originating chamber")
	cmd.Flags().StringVar(&from, "from", "", "Introduced on or after (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Introduced on or before (YYYY-MM-DD)")
	pageFlags(cmd, &f.Page)
	return cmd
}

func statementsCmd(a *app) *cobra.Command {
	var (
		f        domain.StatementFilter
		from, to string
	)
	cmd := &cobra.Command{
		Use:   "statements <text>",
		Short: "Search statements by relevance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f.Text = args[0]
			var err error
			if f.Date, err = dateRange(from, to); err != nil {
				return err
			}
			return a.call(cmd, service.OpSearchStatements, f)
		},
	}
	cmd.Flags().StringVar(&f.Mode, "mode", domain.SearchFullText, "fulltext or semantic")
	cmd.Flags().StringVar(&from, "from", "", "Spoken on or after (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Spoken on or before (YYYY-MM-DD)")
	pageFlags(cmd, &f.Page)
	return cmd
}

func threadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "thread <thread-id>",
		Short: "Show a statement reply thread",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.call(cmd, service.OpStatementThread, service.IDRequest{ID: args[0]})
		},
	}
}

func lobbyingCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lobbying <session> <bill-number>",
		Short: "Summarize lobbying on a bill",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.call(cmd, service.OpBillLobbying, service.BillRequest{Session: args[0], Number: args[1]})
		},
	}
}

func conflictsCmd(a *app) *cobra.Command {
	var req service.LimitRequest
	cmd := &cobra.Command{
		Use:   "conflicts",
		Short: "Rank potential conflicts of interest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.call(cmd, service.OpConflicts, req)
		},
	}
	cmd.Flags().IntVar(&req.Limit, "limit", 0, "Maximum rows (default 20, max 100)")
	return cmd
}

func spendingCmd(a *app) *cobra.Command {
	var year int
	cmd := &cobra.Command{
		Use:   "spending",
		Short: "Party spending per fiscal quarter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var req service.FiscalYearRequest
			if cmd.Flags().Changed("fiscal-year") {
				req.FiscalYear = &year
			}
			return a.call(cmd, service.OpSpendingTrends, req)
		},
	}
	cmd.Flags().IntVar(&year, "fiscal-year", 0, "Restrict to one fiscal year")
	return cmd
}

func committeeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "committee <code>",
		Short: "Committee activity metrics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.call(cmd, service.OpCommitteeActivity, service.CodeRequest{Code: args[0]})
		},
	}
}

func baselineCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "baseline <party-code>",
		Short: "Average scorecard of a party's sitting members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.call(cmd, service.OpPartyBaseline, service.CodeRequest{Code: args[0]})
		},
	}
}

func partiesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "parties",
		Short: "List parties",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.call(cmd, service.OpListParties, nil)
		},
	}
}

func committeesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "committees",
		Short: "List committees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.call(cmd, service.OpListCommittees, nil)
		},
	}
}

func statsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Node and relationship counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.call(cmd, service.OpGraphStats, nil)
		},
	}
}

func pageFlags(cmd *cobra.Command, p *domain.Page) {
	cmd.Flags().IntVar(&p.Limit, "limit", 0, "Page size (default 20, max 100)")
	cmd.Flags().IntVar(&p.Offset, "offset", 0, "Rows to skip")
}

func dateRange(from, to string) (domain.DateRange, error) {
	var (
		r   domain.DateRange
		err error
	)
	if from != "" {
		if r.From, err = time.Parse(time.DateOnly, from); err != nil {
			return r, domain.NewValidationError("from", from, domain.ErrInvalidDateRange)
		}
	}
	if to != "" {
		if r.To, err = time.Parse(time.DateOnly, to); err != nil {
			return r, domain.NewValidationError("to", to, domain.ErrInvalidDateRange)
		}
	}
	return r, nil
}
