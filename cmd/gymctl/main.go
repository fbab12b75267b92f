// Command gymctl runs operator tasks against the gym database: bootstrapping
// the first administrator and listing subscriptions that need attention.
package main

import (
	"alcyxob/gym-manager/internal/app"
	"alcyxob/gym-manager/internal/config"
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/service"
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd(openBackend).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// backend is what the commands need from the application.
type backend struct {
	accounts service.AccountService
	close    func()
}

type opener func(ctx context.Context, configDir string) (*backend, error)

func openBackend(ctx context.Context, configDir string) (*backend, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	repos, closeDB, err := app.OpenRepositories(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	audit := service.NewAuditService(repos.AuditLogs, service.SystemClock, cfg.Audit.WriteTimeout, nil)
	evaluator := service.NewSubscriptionEvaluator(cfg.Accounts.WarningDays)
	return &backend{
		accounts: service.NewAccountService(repos.Users, audit, evaluator, service.SystemClock, cfg.Accounts.DefaultSubscriptionDays, nil),
		close: func() {
			audit.Flush()
			closeDB()
		},
	}, nil
}

func rootCmd(open opener) *cobra.Command {
	var configDir string

	cmd := &cobra.Command{
		Use:           "gymctl",
		Short:         "Gym manager operator tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "Directory holding config.yaml")

	cmd.AddCommand(createAdminCmd(open, &configDir))
	cmd.AddCommand(expiringCmd(open, &configDir))
	return cmd
}

func createAdminCmd(open opener, configDir *string) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := open(cmd.Context(), *configDir)
			if err != nil {
				return err
			}
			defer b.close()

			user, err := b.accounts.CreateUser(cmd.Context(), service.SystemActor, service.NewUser{
				Name:     name,
				Email:    email,
				Password: password,
				Role:     domain.RoleAdmin,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created administrator %s (%s)\n", user.Email, user.ID.Hex())
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "Administrator", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Login email")
	cmd.Flags().StringVar(&password, "password", "", "Initial password (at least 8 characters)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func expiringCmd(open opener, configDir *string) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "expiring",
		Short: "List members whose subscription ends soon or has ended",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := open(cmd.Context(), *configDir)
			if err != nil {
				return err
			}
			defer b.close()

			members, err := b.accounts.ListExpiring(cmd.Context(), days)
			if err != nil {
				return err
			}
			if len(members) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no subscriptions need attention")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "EMAIL\tNAME\tENDS\tSTATE")
			for _, m := range members {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.User.Email, m.User.Name,
					m.User.SubscriptionEndDate.Format(time.DateOnly), m.Subscription.State)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&days, "days", service.DefaultWarningDays, "Warn about subscriptions ending within this many days")
	return cmd
}
